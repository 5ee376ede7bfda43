package apply

import (
	"errors"

	"github.com/Nomadcxx/jellytidy/internal/plans"
)

// Report collects the results of one Apply call.
type Report struct {
	PlanID     string
	DryRun     bool
	Results    []Result
	Done       int
	Failed     int
	Skipped    int
	BytesFreed int64
	BytesMoved int64
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusDone:
		r.Done++
		switch res.Record.Action {
		case plans.ActionDelete:
			r.BytesFreed += res.Record.Size
		case plans.ActionMove:
			r.BytesMoved += res.Record.Size
		}
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

// Complete reports whether every record ran without failure.
func (r *Report) Complete() bool {
	return r.Failed == 0 && r.Skipped == 0
}

// Failures returns the record errors in the order they happened.
func (r *Report) Failures() []*RecordError {
	var out []*RecordError
	for _, res := range r.Results {
		var rerr *RecordError
		if res.Status == StatusFailed && errors.As(res.Err, &rerr) {
			out = append(out, rerr)
		}
	}
	return out
}

// Err joins every record failure, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failures() {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
