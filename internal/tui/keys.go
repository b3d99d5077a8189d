package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of the preview.
type KeyMap struct {
	Increase key.Binding
	Decrease key.Binding
	Empty    key.Binding
	Fill     key.Binding
	Pause    key.Binding
	Reverse  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Increase: key.NewBinding(key.WithKeys("up", "k", "+"), key.WithHelp("↑/k", "more")),
		Decrease: key.NewBinding(key.WithKeys("down", "j", "-"), key.WithHelp("↓/j", "less")),
		Empty:    key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "empty")),
		Fill:     key.NewBinding(key.WithKeys("end", "f"), key.WithHelp("f", "fill")),
		Pause:    key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
		Reverse:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// manual disables the bindings that only a caller-driven indicator honors.
func (k KeyMap) manual(enabled bool) KeyMap {
	for _, b := range []*key.Binding{&k.Increase, &k.Decrease, &k.Empty, &k.Fill, &k.Reverse} {
		b.SetEnabled(enabled)
	}
	return k
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increase, k.Decrease, k.Pause, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increase, k.Decrease, k.Empty, k.Fill},
		{k.Pause, k.Reverse},
		{k.Help, k.Quit},
	}
}
