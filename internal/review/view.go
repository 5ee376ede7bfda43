package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Nomadcxx/jellytidy/internal/plans"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("236"))
	excludedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	flagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	colorStyles = map[string]lipgloss.Style{
		"BLUE":   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"GREEN":  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"YELLOW": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"RED":    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

func (m Model) View() string {
	if m.mode == modeDone {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Review plan %s", shortID(m.plan.ID))))
	fmt.Fprintf(&b, "  %d of %d changes included", m.Included(), len(m.pending))
	if m.flaggedOnly {
		b.WriteString(flagStyle.Render("  [flagged only]"))
	}
	b.WriteString("\n\n")

	if m.mode == modeConfirm {
		b.WriteString(m.confirmSummary())
		b.WriteString("\n")
		fmt.Fprintf(&b, "Type %s and press enter to apply, esc to go back.\n\n", ConfirmPhrase)
		b.WriteString(m.confirm.View())
		b.WriteString("\n")
		if m.status != "" {
			b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
		}
		return b.String()
	}

	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("  nothing to show"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.pageSize(), len(m.visible))
	for row := m.offset; row < end; row++ {
		b.WriteString(m.renderRecord(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderRecord(row int) string {
	r := m.pending[m.visible[row]]
	check := "[x]"
	if m.excluded[r.SourcePath] {
		check = "[ ]"
	}

	color := r.QualityColor
	if style, ok := colorStyles[color]; ok {
		color = style.Render(fmt.Sprintf("%-6s", color))
	} else {
		color = fmt.Sprintf("%-6s", color)
	}

	desc := describe(r)
	if m.width > 0 {
		desc = truncate(desc, max(m.width-24, 20))
	}
	line := fmt.Sprintf("%s %-6s %s  %s", check, r.Action, color, desc)
	if len(r.Flags) > 0 {
		flags := make([]string, len(r.Flags))
		for i, f := range r.Flags {
			flags[i] = string(f)
		}
		line += " " + flagStyle.Render("("+strings.Join(flags, ", ")+")")
	}

	switch {
	case row == m.cursor:
		return cursorStyle.Render("> " + line)
	case m.excluded[r.SourcePath]:
		return "  " + excludedStyle.Render(line)
	default:
		return "  " + line
	}
}

func (m Model) confirmSummary() string {
	s := m.Result().Summary
	return fmt.Sprintf("  %d renames, %d moves, %d deletes\n", s.Renames, s.Moves, s.Deletes)
}

// describe renders "source -> target", shortening the target to its base name
// when it stays in the same directory.
func describe(r plans.Record) string {
	if r.Action == plans.ActionDelete {
		return r.SourcePath
	}
	target := r.TargetPath
	if filepath.Dir(r.SourcePath) == filepath.Dir(r.TargetPath) {
		target = filepath.Base(r.TargetPath)
	}
	return r.SourcePath + " -> " + target
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
