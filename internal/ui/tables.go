package ui

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Align is a column alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table collects rows and renders them with go-pretty.
type Table struct {
	headers []string
	aligns  []Align
	rows    [][]string
	footer  []string
	title   string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// SetTitle sets a caption rendered above the header.
func (t *Table) SetTitle(title string) *Table {
	t.title = title
	return t
}

// SetAlign sets per-column alignment. Missing columns are left-aligned.
func (t *Table) SetAlign(aligns ...Align) *Table {
	t.aligns = aligns
	return t
}

// AddRow appends a row. Short rows are padded, long rows truncated.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// SetFooter sets a totals row.
func (t *Table) SetFooter(cells ...string) {
	t.footer = make([]string, len(t.headers))
	copy(t.footer, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the table text. An empty header set renders nothing.
func (t *Table) Render() string {
	columns := len(t.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if IsTerminal() {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
		tw.Style().Options.SeparateRows = false
	}
	if t.title != "" {
		tw.SetTitle(t.title)
	}
	tw.AppendHeader(toRow(t.headers))
	for _, row := range t.rows {
		tw.AppendRow(toRow(row))
	}
	if t.footer != nil {
		tw.AppendFooter(toRow(t.footer))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(t.aligns) && t.aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			AlignFooter:      align,
			WidthMax:         80,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// Print writes the rendered table to the message output.
func (t *Table) Print() {
	if s := t.Render(); s != "" {
		fmt.Fprintln(out, s)
	}
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// KeyValues renders aligned "key: value" lines, for summaries.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "  %-*s  %s\n", width+1, p[0]+":", p[1])
	}
	return b.String()
}
