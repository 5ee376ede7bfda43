// Package review is the interactive plan reviewer. Every pending record can be
// excluded before the plan is approved, and approval requires typing YES.
package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nomadcxx/jellytidy/internal/plans"
)

// ConfirmPhrase must be typed to approve a plan.
const ConfirmPhrase = "YES"

type mode int

const (
	modeBrowse mode = iota
	modeConfirm
	modeDone
)

// Model is the bubbletea model of the reviewer.
type Model struct {
	plan     *plans.Plan
	pending  []plans.Record
	excluded map[string]bool

	visible     []int
	cursor      int
	offset      int
	flaggedOnly bool

	width  int
	height int

	mode     mode
	approved bool
	status   string

	confirm textinput.Model
	keys    keyMap
	help    help.Model
}

// New creates a reviewer for plan.
func New(plan *plans.Plan) Model {
	ti := textinput.New()
	ti.Placeholder = ConfirmPhrase
	ti.CharLimit = 8
	ti.Width = 10
	ti.Prompt = "> "

	m := Model{
		plan:     plan,
		pending:  plan.Pending(),
		excluded: make(map[string]bool),
		height:   24,
		width:    100,
		confirm:  ti,
		keys:     defaultKeys(),
		help:     help.New(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeConfirm {
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.mode = modeDone
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PageUp):
		m.cursor = max(m.cursor-m.pageSize(), 0)
	case key.Matches(msg, m.keys.PageDown):
		m.cursor = max(min(m.cursor+m.pageSize(), len(m.visible)-1), 0)

	case key.Matches(msg, m.keys.Toggle):
		if len(m.visible) > 0 {
			m.toggle(m.visible[m.cursor])
		}
	case key.Matches(msg, m.keys.IncludeAll):
		m.excluded = make(map[string]bool)
	case key.Matches(msg, m.keys.ExcludeAll):
		for _, r := range m.pending {
			m.excluded[r.SourcePath] = true
		}
	case key.Matches(msg, m.keys.Flagged):
		m.flaggedOnly = !m.flaggedOnly
		m.refresh()

	case key.Matches(msg, m.keys.Approve):
		if m.Included() == 0 {
			m.status = "nothing is included"
			return m, nil
		}
		m.mode = modeConfirm
		m.status = ""
		m.confirm.Reset()
		return m, m.confirm.Focus()
	}
	m.clamp()
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.mode = modeDone
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.confirm.Blur()
		return m, nil
	case tea.KeyEnter:
		if strings.TrimSpace(m.confirm.Value()) == ConfirmPhrase {
			m.approved = true
			m.mode = modeDone
			return m, tea.Quit
		}
		m.status = fmt.Sprintf("type %s to approve or esc to go back", ConfirmPhrase)
		m.confirm.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	return m, cmd
}

// toggle flips a record, and the sidecars that follow it when it is a
// primary.
func (m *Model) toggle(i int) {
	r := m.pending[i]
	state := !m.excluded[r.SourcePath]
	m.set(r.SourcePath, state)
	if r.Role == "sidecar" {
		return
	}
	for _, j := range m.followers(i) {
		m.set(m.pending[j].SourcePath, state)
	}
}

func (m *Model) set(path string, excluded bool) {
	if excluded {
		m.excluded[path] = true
		return
	}
	delete(m.excluded, path)
}

// followers returns the pending sidecars named after the primary at i.
func (m *Model) followers(i int) []int {
	p := m.pending[i]
	dir := filepath.Dir(p.SourcePath)
	stem := strings.TrimSuffix(filepath.Base(p.SourcePath), filepath.Ext(p.SourcePath)) + "."
	var out []int
	for j, r := range m.pending {
		if j == i || r.Role != "sidecar" || filepath.Dir(r.SourcePath) != dir {
			continue
		}
		if strings.HasPrefix(filepath.Base(r.SourcePath), stem) {
			out = append(out, j)
		}
	}
	return out
}

func (m *Model) refresh() {
	m.visible = m.visible[:0]
	for i, r := range m.pending {
		if m.flaggedOnly && len(r.Flags) == 0 {
			continue
		}
		m.visible = append(m.visible, i)
	}
	m.cursor = 0
	m.offset = 0
}

func (m *Model) pageSize() int {
	// header, blank, status and help lines
	return max(m.height-7, 3)
}

func (m *Model) clamp() {
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
}

// Included returns how many pending records are still included.
func (m Model) Included() int {
	return len(m.pending) - len(m.excluded)
}

// Approved reports whether the user typed the confirmation phrase.
func (m Model) Approved() bool {
	return m.approved
}

// Result returns the plan reduced to the included records. Skips are kept so
// the plan still describes every file.
func (m Model) Result() *plans.Plan {
	return m.plan.Filter(func(r plans.Record) bool {
		return r.IsNoop() || !m.excluded[r.SourcePath]
	})
}

// Run shows the reviewer and returns the approved plan. approved is false
// when the user aborted.
func Run(plan *plans.Plan, opts ...tea.ProgramOption) (*plans.Plan, bool, error) {
	if plan.IsNoop() {
		return plan, false, nil
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(New(plan), opts...).Run()
	if err != nil {
		return nil, false, fmt.Errorf("review failed: %w", err)
	}
	m := final.(Model)
	if !m.Approved() {
		return nil, false, nil
	}
	return m.Result(), true, nil
}
