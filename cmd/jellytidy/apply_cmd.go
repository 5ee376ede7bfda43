package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/apply"
	"github.com/Nomadcxx/jellytidy/internal/database"
	"github.com/Nomadcxx/jellytidy/internal/logging"
	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/privilege"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

const approvePhrase = "YES"

func newApplyCmd() *cobra.Command {
	var (
		yes      bool
		withSudo bool
		from     string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the pending plan",
		Long: `Apply every change in the pending plan: deletions first, then subtitle
and metadata renames, then video renames and moves.

Records whose source has changed since planning are skipped, and no existing
file is ever overwritten. A fully applied plan is removed; a partially applied
plan is archived next to it so it can be inspected.

With --from, a plan exported by 'plan --export' or 'history export' and
possibly edited (JSON, YAML or CSV) is applied instead of the pending plan,
which is left untouched.

Unless --yes or --dry-run is given you are asked to type YES.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			plan, planFile, err := a.planToApply(from, format)
			if err != nil {
				return err
			}
			if plan.IsNoop() {
				ui.SuccessMsg("Plan has nothing to change")
				return nil
			}

			policy, err := a.cfg.Permissions.Policy()
			if err != nil {
				return fmt.Errorf("invalid permissions: %w", err)
			}
			if privilege.RequiredFor(policy) && !dryRun {
				if withSudo {
					return privilege.Escalate(os.Stderr, "change the owner of moved files")
				}
				ui.WarningMsg("Changing ownership needs root; ownership changes will fail (use --sudo)")
			}

			printSummary(plan)
			if !yes && !dryRun {
				if !ui.IsInteractive() {
					return errors.New("refusing to apply without a terminal (pass --yes)")
				}
				fmt.Println()
				if !ui.ConfirmPhrase(os.Stdin, os.Stdout, "Apply these changes?", approvePhrase) {
					ui.WarningMsg("Aborted, nothing changed")
					return nil
				}
			}
			return a.applyPlan(cmd.Context(), plan, planFile, database.ExecCLI)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&withSudo, "sudo", false, "re-run under sudo when [permissions] changes ownership")
	cmd.Flags().StringVar(&from, "from", "", "apply an exported plan file instead of the pending plan")
	cmd.Flags().StringVarP(&format, "format", "f", "", "format of the --from file (json, csv or yaml)")

	return cmd
}

// planToApply loads the pending plan, or the exported plan at from. The
// returned file is the one to settle after applying; imported plans have none.
func (a *app) planToApply(from, format string) (*plans.Plan, string, error) {
	if from == "" {
		plan, err := a.loadPlan()
		return plan, a.planPath, err
	}

	f, err := resolveFormat(from, format, "")
	if err != nil {
		return nil, "", err
	}
	plan, err := plans.ImportFile(from, f)
	if err != nil {
		return nil, "", err
	}
	a.logger.Info("plan", "plan imported", logging.F("plan", plan.ID), logging.F("path", from))
	// the apply lock lives next to the pending plan
	if err := os.MkdirAll(filepath.Dir(a.planPath), 0755); err != nil {
		return nil, "", err
	}
	if a.cfg.Plan.History && !dryRun {
		// operations are logged against the imported plan
		if err := a.withHistory(func(h *database.HistoryDB) error { return h.SavePlan(plan) }); err != nil {
			ui.WarningMsg("Imported plan not archived: %v", err)
		}
	}
	return plan, "", nil
}

// applyPlan runs plan, records every result in the history and settles
// planFile. An empty planFile leaves every plan file alone.
func (a *app) applyPlan(ctx context.Context, plan *plans.Plan, planFile string, by database.ExecutedBy) error {
	policy, err := a.cfg.Permissions.Policy()
	if err != nil {
		return fmt.Errorf("invalid permissions: %w", err)
	}

	var history *database.HistoryDB
	if a.cfg.Plan.History {
		history, err = database.Open()
		if err != nil {
			a.logger.Warn("history", "history unavailable, operations not logged", logging.F("error", err.Error()))
		} else {
			defer history.Close()
		}
	}

	bar := ui.NewProgressBar(len(plan.Pending()), "Applying")
	applier := apply.New(a.fs,
		apply.WithLock(a.planPath+".lock"),
		apply.WithDryRun(dryRun),
		apply.WithPolicy(policy),
		apply.WithLogger(a.logger),
		apply.OnResult(func(res apply.Result) {
			bar.Increment()
			if history == nil || res.Status == apply.StatusDryRun {
				return
			}
			if err := history.LogOperation(operationFor(plan.ID, res, by)); err != nil {
				a.logger.Warn("history", "failed to log operation", logging.F("error", err.Error()))
			}
		}),
	)

	report, err := applier.Apply(ctx, plan)
	if report == nil {
		return err
	}

	status := a.settlePlan(report, planFile)
	if history != nil {
		if serr := history.SetStatus(plan.ID, status); serr != nil {
			a.logger.Warn("history", "failed to update plan status", logging.F("error", serr.Error()))
		}
	}

	printReport(report)
	if err != nil {
		return fmt.Errorf("apply interrupted: %w", err)
	}
	if !report.Complete() {
		return fmt.Errorf("%d of %d changes did not apply", report.Failed+report.Skipped, len(report.Results))
	}
	return nil
}

// settlePlan removes a fully applied plan file or archives a partial one.
func (a *app) settlePlan(report *apply.Report, planFile string) database.PlanStatus {
	switch {
	case report.DryRun:
		return database.StatusDryRun
	case report.Complete():
		if planFile != "" {
			if err := plans.DeleteFrom(planFile); err != nil {
				a.logger.Warn("plan", "failed to remove applied plan", logging.F("error", err.Error()))
			}
		}
		return database.StatusApplied
	default:
		if planFile == "" {
			return database.StatusPartial
		}
		if err := plans.ArchiveFrom(planFile); err != nil {
			a.logger.Warn("plan", "failed to archive partial plan", logging.F("error", err.Error()))
		} else {
			ui.InfoMsg("Partial plan archived to %s.old", planFile)
		}
		return database.StatusPartial
	}
}

func operationFor(planID string, res apply.Result, by database.ExecutedBy) database.OperationLog {
	op := database.OperationLog{
		PlanID:        planID,
		OperationType: string(res.Record.Action),
		SourcePath:    res.Record.SourcePath,
		TargetPath:    res.Record.TargetPath,
		Reason:        string(res.Record.Reason),
		Bytes:         res.Record.Size,
		ExecutedBy:    by,
	}
	switch res.Status {
	case apply.StatusDone:
		op.Status = database.OpDone
	case apply.StatusFailed:
		op.Status = database.OpFailed
	default:
		op.Status = database.OpSkipped
	}
	if res.Err != nil {
		op.Error = res.Err.Error()
	}
	return op
}

func printReport(report *apply.Report) {
	title := "Result"
	if report.DryRun {
		title = "Dry run"
	}
	ui.Section(title)

	if report.DryRun {
		fmt.Print(ui.KeyValues([][2]string{
			{"Would apply", ui.FormatCount(len(report.Results) - report.Failed - report.Skipped)},
			{"Would fail", ui.FormatCount(report.Failed)},
		}))
	} else {
		fmt.Print(ui.KeyValues([][2]string{
			{"Applied", ui.FormatCount(report.Done)},
			{"Failed", ui.FormatCount(report.Failed)},
			{"Skipped", ui.FormatCount(report.Skipped)},
			{"Freed", ui.FormatBytes(report.BytesFreed)},
			{"Moved", ui.FormatBytes(report.BytesMoved)},
		}))
	}

	var problems []apply.Result
	for _, res := range report.Results {
		if res.Status == apply.StatusFailed || res.Status == apply.StatusSkipped {
			problems = append(problems, res)
		}
	}
	if len(problems) == 0 {
		return
	}
	tbl := ui.NewTable("Status", "Action", "Source", "Error")
	for _, res := range problems {
		msg := ""
		if res.Err != nil {
			msg = res.Err.Error()
		}
		tbl.AddRow(ui.Error(string(res.Status)), ui.Action(string(res.Record.Action)), res.Record.SourcePath, msg)
	}
	tbl.Print()
}
