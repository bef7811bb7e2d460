package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknotify/internal/keys"
	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/theme"
)

// Model is the help overlay: key bindings plus a legend of
// notification types.
type Model struct {
	keys    *keys.KeyMap
	help    help.Model
	catalog *notify.Catalog
	width   int
	height  int
}

// New creates a new help view model. catalog supplies server labels
// for the legend and may be nil.
func New(keys *keys.KeyMap, catalog *notify.Catalog, width, height int) Model {
	if catalog == nil {
		catalog = notify.NewCatalog()
	}
	h := help.New()
	h.Width = width
	return Model{
		keys:    keys,
		help:    h,
		catalog: catalog,
		width:   width,
		height:  height,
	}
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	var legend strings.Builder
	for _, t := range model.NotificationTypes {
		legend.WriteString(theme.TypeStyle(t).Render(t.Icon() + "  " + m.catalog.Label(t)))
		legend.WriteString("\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		titleStyle.Render("Notification Types"),
		legend.String(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
