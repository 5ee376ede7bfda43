package review

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Toggle     key.Binding
	IncludeAll key.Binding
	ExcludeAll key.Binding
	Flagged    key.Binding
	Approve    key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Toggle: key.NewBinding(
			// bubbletea reports space as " " or "space" depending on version
			key.WithKeys(" ", "space", "x"),
			key.WithHelp("space", "include/exclude"),
		),
		IncludeAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "include all"),
		),
		ExcludeAll: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "exclude all"),
		),
		Flagged: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "flagged only"),
		),
		Approve: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "approve"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "abort"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Flagged, k.Approve, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Toggle, k.IncludeAll, k.ExcludeAll, k.Flagged},
		{k.Approve, k.Quit},
	}
}
