package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/logging"
	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/ui"
	"github.com/Nomadcxx/jellytidy/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		destFlag string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [root...]",
		Short: "Keep the pending plan up to date while files change",
		Long: `Watch the roots and rebuild the pending plan whenever files settle.
Nothing is applied; run 'jellytidy apply' when ready.

The quiet period defaults to [watch] debounce_seconds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			roots, err := a.roots(args)
			if err != nil {
				return err
			}
			dest, err := a.dest(destFlag)
			if err != nil {
				return err
			}
			if err := plans.ValidateDestination(roots, dest); err != nil {
				return err
			}

			if debounce <= 0 {
				debounce = time.Duration(a.cfg.Watch.DebounceSeconds) * time.Second
			}

			replanner := &watcher.Replanner{
				FS:      a.fs,
				Roots:   roots,
				Dest:    dest,
				Builder: a.builder(dest),
				Ext:     a.cfg.Extensions(),
				Walk:    a.walkOptions(),
				Save:    a.savePlan,
				Logger:  a.logger,
			}

			w, err := watcher.NewWatcher(replanner,
				watcher.WithDebounce(debounce),
				watcher.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Watch(roots); err != nil {
				return fmt.Errorf("failed to watch: %w", err)
			}

			ctx := cmd.Context()
			if err := replanner.HandleBatch(ctx, nil); err != nil {
				return err
			}
			ui.InfoMsg("Watching %d root(s), plan saved to %s (Ctrl+C to stop)", len(roots), a.planPath)
			a.logger.Info("watcher", "watching", logging.F("roots", len(roots)), logging.F("debounce", debounce.String()))

			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			ui.InfoMsg("Stopped watching")
			return nil
		},
	}

	cmd.Flags().StringVarP(&destFlag, "dest", "d", "", "library destination for sorted moves")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before replanning (e.g. 10s)")

	return cmd
}
