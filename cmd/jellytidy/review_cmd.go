package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/database"
	"github.com/Nomadcxx/jellytidy/internal/review"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

func newReviewCmd() *cobra.Command {
	var applyNow bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Pick which changes of the pending plan to keep",
		Long: `Open the pending plan in an interactive list. Toggle records with space,
include or exclude everything with a / n and show only flagged records with f.
Excluding a video also excludes its subtitles and metadata.

Press enter and type YES to save the reduced plan. With --apply the reduced
plan is applied right away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ui.IsInteractive() {
				return errors.New("review needs an interactive terminal")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := a.loadPlan()
			if err != nil {
				return err
			}
			if plan.IsNoop() {
				ui.SuccessMsg("Pending plan has nothing to change")
				return nil
			}

			reviewed, approved, err := review.Run(plan)
			if err != nil {
				return err
			}
			if !approved {
				ui.WarningMsg("Review aborted, pending plan unchanged")
				return nil
			}

			if err := a.savePlan(reviewed); err != nil {
				return err
			}
			ui.SuccessMsg("Kept %d of %d changes", len(reviewed.Pending()), len(plan.Pending()))

			if !applyNow {
				return nil
			}
			return a.applyPlan(cmd.Context(), reviewed, a.planPath, database.ExecReview)
		},
	}

	cmd.Flags().BoolVar(&applyNow, "apply", false, "apply the reviewed plan immediately")

	return cmd
}
