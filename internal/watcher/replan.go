package watcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Nomadcxx/jellytidy/internal/library"
	"github.com/Nomadcxx/jellytidy/internal/logging"
	"github.com/Nomadcxx/jellytidy/internal/plans"
)

// Replanner is the Handler that rebuilds the plan for the watched roots on
// every batch and hands it to Save.
type Replanner struct {
	FS      afero.Fs
	Roots   []string
	Dest    string
	Builder *plans.Builder
	Ext     library.Extensions
	Walk    library.WalkOptions
	Save    func(*plans.Plan) error
	Logger  *logging.Logger
}

// IsRelevant reports whether a path can change the plan.
func (r *Replanner) IsRelevant(path string) bool {
	ext := filepath.Ext(path)
	return r.Ext.IsPrimary(ext) || r.Ext.IsSidecar(ext) || library.IsOSJunk(filepath.Base(path))
}

// HandleBatch walks the roots, builds a plan and saves it.
func (r *Replanner) HandleBatch(ctx context.Context, events []FileEvent) error {
	items, err := library.Walk(ctx, r.FS, r.Roots, r.Walk)
	if err != nil {
		return fmt.Errorf("rescan failed: %w", err)
	}
	records, err := r.Builder.Build(items)
	if err != nil {
		return fmt.Errorf("replan failed: %w", err)
	}

	plan := plans.NewPlan("watch", r.Roots, r.Dest, records)
	if r.Logger != nil {
		r.Logger.Info("watcher", "plan rebuilt",
			logging.F("plan", plan.ID),
			logging.F("events", len(events)),
			logging.F("pending", len(plan.Pending())))
	}
	if r.Save == nil {
		return nil
	}
	return r.Save(plan)
}
