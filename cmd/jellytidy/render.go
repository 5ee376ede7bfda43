package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/jellytidy/internal/database"
	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

// defaultRowLimit caps record tables unless --all is given.
const defaultRowLimit = 50

func printSummary(plan *plans.Plan) {
	s := plan.Summary
	ui.Section("Plan " + shortID(plan.ID))
	fmt.Print(ui.KeyValues([][2]string{
		{"Roots", strings.Join(plan.Roots, ", ")},
		{"Files", ui.FormatCount(s.Total)},
		{"Renames", ui.FormatCount(s.Renames)},
		{"Moves", fmt.Sprintf("%s (%s)", ui.FormatCount(s.Moves), ui.FormatBytes(s.BytesToMove))},
		{"Deletes", fmt.Sprintf("%s (%s)", ui.FormatCount(s.Deletes), ui.FormatBytes(s.BytesToDelete))},
		{"Unchanged", ui.FormatCount(s.Skips)},
		{"Flagged", ui.FormatCount(s.Flagged)},
	}))
	if plan.Dest != "" {
		fmt.Print(ui.KeyValues([][2]string{{"Library", plan.Dest}}))
	}
}

// printRecords renders records as a table, at most limit rows when limit > 0.
func printRecords(records []plans.Record, limit int) {
	if len(records) == 0 {
		ui.InfoMsg("Nothing to change")
		return
	}
	tbl := ui.NewTable("Action", "Color", "Source", "Target", "Reason")
	for i, r := range records {
		if limit > 0 && i == limit {
			break
		}
		tbl.AddRow(ui.Action(string(r.Action)), ui.QualityColor(r.QualityColor), r.SourcePath, targetLabel(r), reasonLabel(r))
	}
	tbl.Print()
	if limit > 0 && len(records) > limit {
		fmt.Println(ui.Dim(fmt.Sprintf("  ... %d more (use --all to list everything)", len(records)-limit)))
	}
}

func targetLabel(r plans.Record) string {
	switch {
	case r.Action == plans.ActionDelete:
		return ui.Dim("(deleted)")
	case filepath.Dir(r.TargetPath) == filepath.Dir(r.SourcePath):
		return filepath.Base(r.TargetPath)
	default:
		return r.TargetPath
	}
}

func reasonLabel(r plans.Record) string {
	reason := string(r.Reason)
	for _, f := range r.Flags {
		if string(f) != reason {
			reason += ", " + string(f)
		}
	}
	if len(r.Flags) > 0 {
		return ui.Warning(reason)
	}
	return reason
}

// selectRecords applies the --all / --flagged view filters.
func selectRecords(plan *plans.Plan, all, flagged bool) []plans.Record {
	records := plan.Pending()
	if all {
		records = plan.Records
	}
	if !flagged {
		return records
	}
	var out []plans.Record
	for _, r := range records {
		if len(r.Flags) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// exportPlan writes plan to path. The format comes from the flag, then the
// file extension, then [plan] format.
func exportPlan(path, flagFormat, cfgFormat string, plan *plans.Plan) error {
	format, err := resolveFormat(path, flagFormat, cfgFormat)
	if err != nil {
		return err
	}
	if format == plans.FormatSQLite {
		return database.ExportPlan(path, plan)
	}

	if path == "-" {
		return plans.Export(os.Stdout, format, plan)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := plans.Export(f, format, plan); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func resolveFormat(path, flagFormat, cfgFormat string) (plans.Format, error) {
	if flagFormat != "" {
		return plans.ParseFormat(flagFormat)
	}
	if f, err := plans.FormatFromPath(path); err == nil {
		return f, nil
	}
	if cfgFormat != "" {
		return plans.ParseFormat(cfgFormat)
	}
	return plans.FormatJSON, nil
}

// writeRecords streams records to w in a text format, for show --format.
func writeRecords(w io.Writer, format string, plan *plans.Plan, records []plans.Record) error {
	f, err := plans.ParseFormat(format)
	if err != nil {
		return err
	}
	view := *plan
	view.Records = records
	view.Summary = plans.Summarize(records)
	return plans.Export(w, f, &view)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
