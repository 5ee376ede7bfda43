// Package apply executes a reviewed plan against the filesystem.
//
// Deletes run first, then sidecar renames, then video renames. Renames are
// two-phase: every source of a batch is first parked under a temporary name
// in its own directory, then each parked file is renamed to its target. A
// swap (A to B, B to A) therefore never overwrites anything. Existing files
// are never overwritten and moves across filesystems are refused.
package apply

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/Nomadcxx/jellytidy/internal/logging"
	"github.com/Nomadcxx/jellytidy/internal/permissions"
	"github.com/Nomadcxx/jellytidy/internal/plans"
)

var (
	ErrPlanLocked    = errors.New("plan is being applied by another process")
	ErrTargetExists  = errors.New("target already exists")
	ErrSourceMissing = errors.New("source no longer exists")
	ErrCrossDevice   = errors.New("target is on another filesystem")
	ErrNotPermitted  = errors.New("no permission to delete")
	ErrInvalidRecord = errors.New("invalid record")

	errCancelled = errors.New("cancelled before this record ran")
)

const (
	tempPrefix     = ".jellytidy-"
	defaultDirMode = os.FileMode(0755)
)

// RecordError is the failure of one record.
type RecordError struct {
	Record plans.Record
	Op     string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Record.SourcePath, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Status is the outcome of one record.
type Status string

const (
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusDryRun  Status = "dry-run"
)

// Result is what happened to one record.
type Result struct {
	Record plans.Record
	Status Status
	Err    error
}

// Applier runs plans.
type Applier struct {
	fs       afero.Fs
	lockPath string
	dryRun   bool
	policy   permissions.Policy
	logger   *logging.Logger
	onResult func(Result)
}

// Option configures an Applier.
type Option func(*Applier)

// WithLock guards Apply with an exclusive lock on path.
func WithLock(path string) Option {
	return func(a *Applier) {
		a.lockPath = path
	}
}

// WithDryRun reports what would happen without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(a *Applier) {
		a.dryRun = dryRun
	}
}

// WithPolicy sets ownership and modes for moved files and created
// directories.
func WithPolicy(p permissions.Policy) Option {
	return func(a *Applier) {
		a.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Applier) {
		if l != nil {
			a.logger = l
		}
	}
}

// OnResult registers a callback invoked after every record, in order.
func OnResult(fn func(Result)) Option {
	return func(a *Applier) {
		a.onResult = fn
	}
}

// New creates an Applier over fs.
func New(fs afero.Fs, opts ...Option) *Applier {
	a := &Applier{
		fs:     fs,
		policy: permissions.Preserve(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply runs every non-skip record of plan. Per-record failures are
// collected in the report; the returned error is only set when the plan
// could not be run at all or ctx was cancelled.
func (a *Applier) Apply(ctx context.Context, plan *plans.Plan) (*Report, error) {
	if plan == nil {
		return nil, errors.New("nil plan")
	}

	if a.lockPath != "" && !a.dryRun {
		lock := flock.New(a.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock plan: %w", err)
		}
		if !ok {
			return nil, ErrPlanLocked
		}
		defer lock.Unlock()
	}

	report := &Report{PlanID: plan.ID, DryRun: a.dryRun}
	deletes, sidecars, videos := partition(plan.Records)

	a.logger.Info("apply", "applying plan",
		logging.F("plan", plan.ID),
		logging.F("deletes", len(deletes)),
		logging.F("sidecars", len(sidecars)),
		logging.F("videos", len(videos)),
		logging.F("dry_run", a.dryRun))

	for _, r := range deletes {
		if ctx.Err() != nil {
			a.emit(report, Result{Record: r, Status: StatusSkipped, Err: errCancelled})
			continue
		}
		a.emit(report, a.delete(r))
	}
	a.renameBatch(ctx, report, sidecars)
	a.renameBatch(ctx, report, videos)

	a.logger.Info("apply", "plan applied",
		logging.F("plan", plan.ID),
		logging.F("done", report.Done),
		logging.F("failed", report.Failed),
		logging.F("skipped", report.Skipped))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (a *Applier) emit(report *Report, res Result) {
	report.add(res)
	switch res.Status {
	case StatusFailed:
		a.logger.Warn("apply", "record failed",
			logging.F("source", res.Record.SourcePath),
			logging.F("action", string(res.Record.Action)),
			logging.F("error", res.Err.Error()))
	case StatusDone:
		a.logger.Debug("apply", "record applied",
			logging.F("source", res.Record.SourcePath),
			logging.F("target", res.Record.TargetPath))
	}
	if a.onResult != nil {
		a.onResult(res)
	}
}

func partition(records []plans.Record) (deletes, sidecars, videos []plans.Record) {
	for _, r := range records {
		switch r.Action {
		case plans.ActionDelete:
			deletes = append(deletes, r)
		case plans.ActionRename, plans.ActionMove:
			if r.Role == "sidecar" {
				sidecars = append(sidecars, r)
			} else {
				videos = append(videos, r)
			}
		}
	}
	for _, rs := range [][]plans.Record{deletes, sidecars, videos} {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].SourcePath < rs[j].SourcePath })
	}
	return deletes, sidecars, videos
}

func (a *Applier) delete(r plans.Record) Result {
	fail := func(err error) Result {
		return Result{Record: r, Status: StatusFailed, Err: &RecordError{Record: r, Op: "delete", Err: err}}
	}

	info, err := a.fs.Stat(r.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fail(ErrSourceMissing)
		}
		return fail(err)
	}
	if info.IsDir() {
		return fail(fmt.Errorf("%w: %s is a directory", ErrInvalidRecord, r.SourcePath))
	}
	ok, err := permissions.CanDelete(a.fs, r.SourcePath)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(ErrNotPermitted)
	}

	if a.dryRun {
		return Result{Record: r, Status: StatusDryRun}
	}
	if err := a.fs.Remove(r.SourcePath); err != nil {
		return fail(err)
	}
	return Result{Record: r, Status: StatusDone}
}

type parked struct {
	record plans.Record
	temp   string
}

// renameBatch moves a batch with two-phase renames.
func (a *Applier) renameBatch(ctx context.Context, report *Report, records []plans.Record) {
	if len(records) == 0 {
		return
	}

	targets := make(map[string]bool, len(records))
	sources := make(map[string]bool, len(records))
	for _, r := range records {
		sources[r.SourcePath] = true
	}

	// phase 1: validate and park
	var ready []parked
	for _, r := range records {
		if ctx.Err() != nil {
			a.emit(report, Result{Record: r, Status: StatusSkipped, Err: errCancelled})
			continue
		}
		if err := a.check(r, sources, targets); err != nil {
			a.emit(report, Result{Record: r, Status: StatusFailed, Err: &RecordError{Record: r, Op: string(r.Action), Err: err}})
			continue
		}
		targets[r.TargetPath] = true

		if a.dryRun {
			a.emit(report, Result{Record: r, Status: StatusDryRun})
			continue
		}

		temp := filepath.Join(filepath.Dir(r.SourcePath), tempPrefix+uuid.NewString()+".tmp")
		if err := a.fs.Rename(r.SourcePath, temp); err != nil {
			delete(targets, r.TargetPath)
			a.emit(report, Result{Record: r, Status: StatusFailed, Err: &RecordError{Record: r, Op: string(r.Action), Err: err}})
			continue
		}
		ready = append(ready, parked{record: r, temp: temp})
	}

	// phase 2: every parked file must leave its temporary name, even after
	// cancellation
	for _, p := range ready {
		a.emit(report, a.place(p))
	}
}

// check validates a rename before anything is touched.
func (a *Applier) check(r plans.Record, sources, targets map[string]bool) error {
	if r.TargetPath == "" || !filepath.IsAbs(r.TargetPath) {
		return fmt.Errorf("%w: target %q", ErrInvalidRecord, r.TargetPath)
	}
	if targets[r.TargetPath] {
		return fmt.Errorf("%w: %s is the target of another record", ErrTargetExists, r.TargetPath)
	}

	info, err := a.fs.Stat(r.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSourceMissing
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidRecord, r.SourcePath)
	}

	// a target that is itself a source of this batch is freed in phase 1
	if !sources[r.TargetPath] {
		if _, err := a.fs.Stat(r.TargetPath); err == nil {
			return fmt.Errorf("%w: %s", ErrTargetExists, r.TargetPath)
		} else if !os.IsNotExist(err) {
			return err
		}
	}

	sameDevice, err := a.sameDevice(filepath.Dir(r.SourcePath), nearestDir(a.fs, filepath.Dir(r.TargetPath)))
	if err != nil {
		return err
	}
	if !sameDevice {
		return ErrCrossDevice
	}
	return nil
}

// place renames a parked file to its target. On failure the file goes back
// to its source name.
func (a *Applier) place(p parked) Result {
	r := p.record
	fail := func(err error) Result {
		if rerr := a.fs.Rename(p.temp, r.SourcePath); rerr != nil {
			err = fmt.Errorf("%w (left at %s: %v)", err, p.temp, rerr)
		}
		return Result{Record: r, Status: StatusFailed, Err: &RecordError{Record: r, Op: string(r.Action), Err: err}}
	}

	dir := filepath.Dir(r.TargetPath)
	if err := a.mkdirAll(dir); err != nil {
		return fail(err)
	}
	if _, err := a.fs.Stat(r.TargetPath); err == nil {
		return fail(fmt.Errorf("%w: %s", ErrTargetExists, r.TargetPath))
	}
	if err := a.fs.Rename(p.temp, r.TargetPath); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			err = ErrCrossDevice
		}
		return fail(err)
	}
	if err := permissions.Fix(a.fs, r.TargetPath, a.policy); err != nil {
		a.logger.Warn("apply", "failed to set permissions",
			logging.F("path", r.TargetPath),
			logging.F("error", err.Error()))
	}
	return Result{Record: r, Status: StatusDone}
}

// mkdirAll creates dir and any missing parents, applying the directory
// policy to each one it creates.
func (a *Applier) mkdirAll(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := a.fs.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}
	if len(missing) == 0 {
		return nil
	}

	mode := a.policy.DirMode
	if mode == 0 {
		mode = defaultDirMode
	}
	if err := a.fs.MkdirAll(dir, mode); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := permissions.Fix(a.fs, missing[i], a.policy); err != nil {
			a.logger.Warn("apply", "failed to set directory permissions",
				logging.F("path", missing[i]),
				logging.F("error", err.Error()))
		}
	}
	return nil
}

// nearestDir returns dir or its closest existing ancestor.
func nearestDir(fs afero.Fs, dir string) string {
	for {
		if _, err := fs.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
