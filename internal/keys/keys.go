package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the notification client.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Notification center
	Center    key.Binding
	MarkRead  key.Binding
	MarkAll   key.Binding
	Delete    key.Binding
	DeleteAll key.Binding
	Open      key.Binding
	CopyLink  key.Binding

	// Toasts
	OpenToast    key.Binding
	DismissToast key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Poll now
	Refresh key.Binding

	// Chime on/off
	Mute key.Binding

	// Telegram preferences
	Prefs key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Center: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "notifications"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("enter", "m"),
			key.WithHelp("enter/m", "mark read"),
		),
		MarkAll: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark all read"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		DeleteAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete all"),
		),
		Open: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "open task"),
		),
		CopyLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy task link"),
		),
		OpenToast: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open newest toast"),
		),
		DismissToast: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss newest toast"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Mute: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle sound"),
		),
		Prefs: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "telegram preferences"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Center, k.Refresh, k.OpenToast, k.DismissToast,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Quit},
		{k.Center, k.MarkRead, k.MarkAll, k.Delete, k.DeleteAll},
		{k.Open, k.CopyLink, k.OpenToast, k.DismissToast},
		{k.Command, k.Help, k.Refresh, k.Mute, k.Prefs},
	}
}
