package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/database"
	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived plans and applied operations",
		Long: `Every saved plan is archived in ~/.config/jellytidy/history.db together
with the outcome of every record apply ran. Plans are addressed by any unique
prefix of their id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of plans to list (0 for all)")

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryExportCmd(),
		newHistoryRestoreCmd(),
		newHistoryPruneCmd(),
		newHistoryOpsCmd(),
	)
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived plans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of plans to list (0 for all)")
	return cmd
}

func listHistory(limit int) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	return a.withHistory(func(h *database.HistoryDB) error {
		runs, err := h.ListPlans(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			ui.InfoMsg("No plans archived yet")
			return nil
		}
		printRuns(runs)
		return nil
	})
}

func printRuns(runs []database.PlanRun) {
	tbl := ui.NewTable("ID", "Created", "Command", "Status", "Renames", "Moves", "Deletes", "Flagged", "Roots").
		SetAlign(ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignRight, ui.AlignRight, ui.AlignRight, ui.AlignRight)
	for _, run := range runs {
		tbl.AddRow(
			shortID(run.ID),
			ui.FormatAge(run.CreatedAt),
			run.Command,
			statusLabel(run.Status),
			ui.FormatCount(run.Summary.Renames),
			ui.FormatCount(run.Summary.Moves),
			ui.FormatCount(run.Summary.Deletes),
			ui.FormatCount(run.Summary.Flagged),
			strings.Join(run.Roots, ", "),
		)
	}
	tbl.Print()
}

func statusLabel(s database.PlanStatus) string {
	switch s {
	case database.StatusApplied:
		return ui.Success(string(s))
	case database.StatusPartial:
		return ui.Warning(string(s))
	case database.StatusDiscarded:
		return ui.Dim(string(s))
	default:
		return string(s)
	}
}

// loadArchived resolves an id prefix and reads the archived plan.
func loadArchived(h *database.HistoryDB, prefix string) (*plans.Plan, database.PlanStatus, error) {
	id, err := h.ResolveID(prefix)
	if err != nil {
		return nil, "", err
	}
	return h.LoadPlan(id)
}

func newHistoryShowCmd() *cobra.Command {
	var (
		all     bool
		flagged bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.withHistory(func(h *database.HistoryDB) error {
				plan, status, err := loadArchived(h, args[0])
				if err != nil {
					return err
				}
				printSummary(plan)
				fmt.Print(ui.KeyValues([][2]string{
					{"Created", plan.CreatedAt.Local().Format(time.DateTime)},
					{"Status", statusLabel(status)},
				}))
				printRecords(selectRecords(plan, all, flagged), 0)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include unchanged files")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "only records flagged for review")
	return cmd
}

func newHistoryExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <id> <file>",
		Short: "Write an archived plan to a file",
		Long: `Write an archived plan as JSON, CSV, YAML or a standalone SQLite plan file.
The format comes from --format, then the file extension. '-' writes to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.withHistory(func(h *database.HistoryDB) error {
				plan, _, err := loadArchived(h, args[0])
				if err != nil {
					return err
				}
				if err := exportPlan(args[1], format, a.cfg.Plan.Format, plan); err != nil {
					return err
				}
				if args[1] != "-" {
					ui.SuccessMsg("Exported plan %s to %s", shortID(plan.ID), args[1])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, csv, yaml or sqlite")
	return cmd
}

func newHistoryRestoreCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Make an archived plan the pending plan again",
		Long: `Replace the pending plan with an archived one. Records whose files have
changed since are skipped when the plan is applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := plans.LoadFrom(a.planPath); err == nil && !force {
				return fmt.Errorf("a pending plan exists at %s (use --force to replace it)", a.planPath)
			}

			return a.withHistory(func(h *database.HistoryDB) error {
				plan, _, err := loadArchived(h, args[0])
				if err != nil {
					return err
				}
				if err := plans.SaveTo(a.planPath, plan); err != nil {
					return err
				}
				ui.SuccessMsg("Plan %s is pending again", shortID(plan.ID))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing pending plan")
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete archived plans older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			cutoff := time.Now().Add(-olderThan)
			if dryRun {
				ui.InfoMsg("Would delete plans created before %s", cutoff.Format(time.DateTime))
				return nil
			}
			return a.withHistory(func(h *database.HistoryDB) error {
				n, err := h.PruneBefore(cutoff)
				if err != nil {
					return err
				}
				ui.SuccessMsg("Deleted %d archived plan(s)", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age cutoff (e.g. 720h)")
	return cmd
}

func newHistoryOpsCmd() *cobra.Command {
	var (
		planPrefix string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List applied operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.withHistory(func(h *database.HistoryDB) error {
				planID := ""
				if planPrefix != "" {
					id, err := h.ResolveID(planPrefix)
					if err != nil {
						return err
					}
					planID = id
				}

				ops, err := h.GetRecentOperations(planID, limit)
				if err != nil {
					return err
				}
				if len(ops) == 0 {
					ui.InfoMsg("No operations logged")
					return nil
				}
				tbl := ui.NewTable("When", "Plan", "By", "Action", "Status", "Source", "Target", "Error")
				for _, op := range ops {
					tbl.AddRow(
						ui.FormatAge(op.ExecutedAt),
						shortID(op.PlanID),
						string(op.ExecutedBy),
						ui.Action(op.OperationType),
						opStatusLabel(op.Status),
						op.SourcePath,
						op.TargetPath,
						op.Error,
					)
				}
				tbl.Print()

				counts, freed, err := h.GetOperationStats()
				if err != nil {
					return err
				}
				types := make([]string, 0, len(counts))
				for t := range counts {
					types = append(types, t)
				}
				sort.Strings(types)
				pairs := make([][2]string, 0, len(types)+1)
				for _, t := range types {
					pairs = append(pairs, [2]string{t, ui.FormatCount(counts[t])})
				}
				pairs = append(pairs, [2]string{"freed", ui.FormatBytes(freed)})
				ui.Subsection("All time")
				fmt.Print(ui.KeyValues(pairs))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&planPrefix, "plan", "p", "", "only operations of this plan")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "number of operations to list")
	return cmd
}

func opStatusLabel(s database.OperationStatus) string {
	switch s {
	case database.OpDone:
		return ui.Success(string(s))
	case database.OpFailed:
		return ui.Error(string(s))
	default:
		return ui.Warning(string(s))
	}
}
