package plans

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format is a plan export format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// ParseFormat accepts a format name ("yml" and "db" are aliases).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "sqlite", "db", "sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unknown plan format %q", s)
	}
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

var csvHeader = []string{
	"source_path", "target_path", "action", "reason_code", "quality_color",
	"flags", "role", "kind", "title", "year", "size",
}

// Export writes the plan to w. SQLite is written by the database package.
func Export(w io.Writer, format Format, plan *Plan) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		return WriteCSV(w, plan.Records)
	default:
		return fmt.Errorf("format %q cannot be streamed", format)
	}
}

// WriteCSV writes records as a spreadsheet-friendly table with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		flags := make([]string, len(r.Flags))
		for i, f := range r.Flags {
			flags[i] = string(f)
		}
		year := ""
		if r.Year > 0 {
			year = strconv.Itoa(r.Year)
		}
		row := []string{
			r.SourcePath, r.TargetPath, string(r.Action), string(r.Reason), r.QualityColor,
			strings.Join(flags, ";"), r.Role, r.Kind, r.Title, year, strconv.FormatInt(r.Size, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import reads a plan written by Export, possibly edited by hand. The summary
// is recounted from the records. A CSV file carries records only, so it
// becomes a new plan whose roots are the directories of its sources.
func Import(r io.Reader, format Format) (*Plan, error) {
	var plan Plan
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&plan); err != nil {
			return nil, fmt.Errorf("failed to parse json plan: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&plan); err != nil {
			return nil, fmt.Errorf("failed to parse yaml plan: %w", err)
		}
	case FormatCSV:
		records, err := ReadCSV(r)
		if err != nil {
			return nil, err
		}
		return NewPlan("import", sourceDirs(records), "", records), nil
	default:
		return nil, fmt.Errorf("format %q cannot be imported", format)
	}

	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	for i, rec := range plan.Records {
		if err := checkAction(rec.Action); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	plan.Summary = Summarize(plan.Records)
	return &plan, nil
}

// ImportFile reads the plan at path with Import.
func ImportFile(path string, format Format) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan: %w", err)
	}
	defer f.Close()
	return Import(f, format)
}

func sourceDirs(records []Record) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, r := range records {
		dir := filepath.Dir(r.SourcePath)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func checkAction(a Action) error {
	switch a {
	case ActionRename, ActionMove, ActionSkip, ActionDelete:
		return nil
	default:
		return fmt.Errorf("unknown action %q", a)
	}
}

// ReadCSV reads records written by WriteCSV.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		return nil, fmt.Errorf("unexpected csv header %v", rows[0])
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec := Record{
			SourcePath:   row[0],
			TargetPath:   row[1],
			Action:       Action(row[2]),
			Reason:       Reason(row[3]),
			QualityColor: row[4],
			Role:         row[6],
			Kind:         row[7],
			Title:        row[8],
		}
		if err := checkAction(rec.Action); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if row[5] != "" {
			for _, f := range strings.Split(row[5], ";") {
				rec.Flags = append(rec.Flags, Flag(f))
			}
		}
		if row[9] != "" {
			if rec.Year, err = strconv.Atoi(row[9]); err != nil {
				return nil, fmt.Errorf("row %d: bad year: %w", i+2, err)
			}
		}
		if rec.Size, err = strconv.ParseInt(row[10], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d: bad size: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
