package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

func newPlanCmd() *cobra.Command {
	var (
		destFlag   string
		exportPath string
		format     string
		all        bool
		noSave     bool
	)

	cmd := &cobra.Command{
		Use:   "plan [root...]",
		Short: "Scan directories and build a change plan",
		Long: `Scan one or more directories and build a plan of renames, moves and
deletions. The plan is saved as the pending plan; nothing on disk changes.

With --dest (or library.dest in the config) movies are planned into
<dest>/movies/<Letter>/<Title (Year)>/ and episodes into
<dest>/tv/<Show>/Season NN/. The destination may not be inside a root.

Examples:
  jellytidy plan /srv/downloads
  jellytidy plan /srv/downloads --dest /srv/media
  jellytidy plan /srv/downloads --export plan.csv
  jellytidy plan /srv/downloads --export plan.db --no-save`,
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

			analysis, err := a.analyze(cmd.Context(), roots, dest)
			if err != nil {
				return err
			}
			plan := plans.NewPlan("plan", roots, dest, analysis.Records)

			printSummary(plan)
			limit := defaultRowLimit
			if all {
				limit = 0
			}
			printRecords(plan.Pending(), limit)

			if exportPath != "" {
				if err := exportPlan(exportPath, format, a.cfg.Plan.Format, plan); err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
				if exportPath != "-" {
					ui.SuccessMsg("Exported plan to %s", exportPath)
				}
			}

			if plan.IsNoop() {
				ui.SuccessMsg("Library is already normalized")
				return nil
			}
			if noSave {
				return nil
			}
			if err := a.savePlan(plan); err != nil {
				return fmt.Errorf("failed to save plan: %w", err)
			}
			ui.SuccessMsg("Plan saved to %s", a.planPath)
			fmt.Fprintln(os.Stdout, "\nNext: 'jellytidy review' to pick changes or 'jellytidy apply' to apply them all.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&destFlag, "dest", "d", "", "library destination for sorted moves")
	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "also write the plan to a file ('-' for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "export format: json, csv, yaml, sqlite (default from extension)")
	cmd.Flags().BoolVar(&all, "all", false, "list every pending record")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not replace the pending plan")

	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		all     bool
		flagged bool
		format  string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the pending plan",
		Long: `Show the pending plan. By default only records that change something
are listed; --all includes unchanged files and --flagged keeps only records
that need a human look (ambiguous year or directory, unknown quality,
collisions, alternate versions).

--format json|csv|yaml prints the records in that format instead of a table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := a.loadPlan()
			if err != nil {
				return err
			}
			records := selectRecords(plan, all, flagged)

			if format != "" && format != "table" {
				return writeRecords(cmd.OutOrStdout(), format, plan, records)
			}
			printSummary(plan)
			printRecords(records, 0)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include unchanged files")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "only records flagged for review")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json, csv, yaml")

	return cmd
}
