package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"helpr/internal/model"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Detail  key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding

	// student
	New    key.Binding
	Cancel key.Binding

	// tutor
	Claim        key.Binding
	Resolve      key.Binding
	Revert       key.Binding
	Reprioritise key.Binding
	End          key.Binding
}

func newKeyMap(role model.Role) keyMap {
	k := keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Detail:  key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter", "details")),
		Refresh: key.NewBinding(key.WithKeys("g", "ctrl+r"), key.WithHelp("g", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new request")),
		Cancel: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel request")),

		Claim:        key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "help")),
		Resolve:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resolve")),
		Revert:       key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "revert")),
		Reprioritise: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "reprioritise")),
		End:          key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "end session")),
	}
	student := role == model.RoleStudent
	for _, b := range []*key.Binding{&k.New, &k.Cancel} {
		b.SetEnabled(student)
	}
	for _, b := range []*key.Binding{&k.Up, &k.Down, &k.Detail, &k.Claim, &k.Resolve, &k.Revert, &k.Reprioritise, &k.End} {
		b.SetEnabled(!student)
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Cancel, k.Claim, k.Resolve, k.Revert, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Detail},
		{k.New, k.Cancel, k.Claim, k.Resolve, k.Revert},
		{k.Reprioritise, k.End},
		{k.Refresh, k.Help, k.Quit},
	}
}
