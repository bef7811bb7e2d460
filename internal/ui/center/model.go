// Package center is the interactive view of the notification center.
package center

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknotify/internal/browser"
	"github.com/nhle/tasknotify/internal/keys"
	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/theme"
	"github.com/nhle/tasknotify/internal/ui"
)

// actionTimeout bounds one center operation, retries included.
const actionTimeout = 30 * time.Second

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// CloseMsg signals the parent that the center was closed.
type CloseMsg struct{}

// StateMsg carries a new center state rendered by notify.Center.
type StateMsg struct {
	State notify.CenterState
}

type actionDoneMsg struct {
	what string
	err  error
}

type copyResultMsg struct {
	url string
	err error
}

type formBindings struct {
	confirm bool
}

// Config holds the collaborators of the view.
type Config struct {
	Center    *notify.Center
	Catalog   *notify.Catalog
	Navigator notify.Navigator
	WebURL    string
	Keys      *keys.KeyMap
}

// Model is the Bubble Tea model of the notification center.
type Model struct {
	center      *notify.Center
	catalog     *notify.Catalog
	nav         notify.Navigator
	webURL      string
	keys        *keys.KeyMap
	state       notify.CenterState
	badge       notify.BadgeState
	selectedIdx int
	spinner     spinner.Model
	spinning    bool
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	now         func() time.Time
	width       int
	height      int
}

// New creates a center view.
func New(cfg Config, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	catalog := cfg.Catalog
	if catalog == nil {
		catalog = notify.NewCatalog()
	}
	return Model{
		center:  cfg.Center,
		catalog: catalog,
		nav:     cfg.Navigator,
		webURL:  cfg.WebURL,
		keys:    cfg.Keys,
		spinner: sp,
		fb:      &formBindings{},
		now:     time.Now,
		width:   width,
		height:  height,
	}
}

// Init opens the center, which issues a fresh fetch.
func (m Model) Init() tea.Cmd {
	c := m.center
	return m.run("load notifications", func(ctx context.Context) error {
		return c.Open(ctx)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StateMsg:
		return m.applyState(msg.State)

	case spinner.TickMsg:
		if !m.state.Loading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Could not %s", msg.what)
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.statusMsg = "Copied " + msg.url
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirmForm != nil {
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.confirmForm != nil {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) applyState(s notify.CenterState) (Model, tea.Cmd) {
	m.state = s
	if m.selectedIdx >= len(s.Items) {
		m.selectedIdx = len(s.Items) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}

	var cmds []tea.Cmd
	if s.Loading && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}

	switch {
	case s.ConfirmingDeleteAll && m.confirmForm == nil:
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		cmds = append(cmds, m.confirmForm.Init())
	case !s.ConfirmingDeleteAll:
		m.confirmForm = nil
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	c := m.center

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg {
			c.Close()
			return CloseMsg{}
		}

	case key.Matches(msg, m.keys.Down):
		if len(m.state.Items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.state.Items)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.state.Items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.state.Items) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = ""
		return m, m.run("load notifications", c.Refresh)

	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.statusMsg = ""
		return m, m.run("mark notification read", func(ctx context.Context) error {
			return c.MarkOne(ctx, n.ID)
		})

	case key.Matches(msg, m.keys.MarkAll):
		m.statusMsg = ""
		return m, m.run("mark all notifications read", c.MarkAll)

	case key.Matches(msg, m.keys.Delete):
		n, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.statusMsg = ""
		return m, m.run("delete notification", func(ctx context.Context) error {
			return c.DeleteOne(ctx, n.ID)
		})

	case key.Matches(msg, m.keys.DeleteAll):
		if len(m.state.Items) == 0 {
			return m, nil
		}
		return m, func() tea.Msg {
			c.RequestDeleteAll()
			return nil
		}

	case key.Matches(msg, m.keys.Open):
		n, ok := m.Selected()
		if !ok || !n.HasTaskLocation() || m.nav == nil {
			return m, nil
		}
		return m, m.openTask(n)

	case key.Matches(msg, m.keys.CopyLink):
		n, ok := m.Selected()
		if !ok || !n.HasTaskLocation() {
			m.statusMsg = "No task link for this notification"
			return m, nil
		}
		url := browser.TaskURL(m.webURL, *n.ProjectID, *n.TaskID)
		return m, func() tea.Msg {
			return copyResultMsg{url: url, err: writeClipboard(url)}
		}
	}
	return m, nil
}

// openTask marks the item read, then navigates to its task.
func (m Model) openTask(n model.Notification) tea.Cmd {
	c := m.center
	nav := m.nav
	return m.run("open task", func(ctx context.Context) error {
		if err := c.MarkOne(ctx, n.ID); err != nil {
			return err
		}
		return nav.Navigate(*n.ProjectID, *n.TaskID)
	})
}

// run executes fn off the UI goroutine. Failures were already alerted
// by the center; the result only feeds the inline status line.
func (m Model) run(what string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{what: what, err: fn(ctx)}
	}
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete all %d notifications?", len(m.state.Items))).
				Description("This cannot be undone.").
				Affirmative("Yes, delete all").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}

	c := m.center
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.confirmForm = nil
		if m.fb.confirm {
			return m, m.run("delete all notifications", c.ConfirmDeleteAll)
		}
		return m, func() tea.Msg {
			c.CancelDeleteAll()
			return nil
		}
	case huh.StateAborted:
		m.confirmForm = nil
		return m, func() tea.Msg {
			c.CancelDeleteAll()
			return nil
		}
	}
	return m, cmd
}

// Selected returns the focused notification.
func (m Model) Selected() (model.Notification, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.state.Items) {
		return model.Notification{}, false
	}
	return m.state.Items[m.selectedIdx], true
}

// Confirming reports whether the delete-all confirmation is showing.
func (m Model) Confirming() bool {
	return m.confirmForm != nil
}

// SetBadge updates the center's own unread badge.
func (m *Model) SetBadge(state notify.BadgeState) {
	m.badge = state
}

// View renders the center.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := titleStyle.Render("Notifications")
	if badge := ui.RenderBadge(m.badge); badge != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge)
	}
	if m.state.Loading {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", m.spinner.View())
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.confirmForm != nil {
		b.WriteString(m.confirmForm.View())
		return m.frame(b.String())
	}

	if len(m.state.Items) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		if m.state.Loading {
			b.WriteString(emptyStyle.Render("Loading…"))
		} else {
			b.WriteString(emptyStyle.Render("You're all caught up."))
		}
	} else {
		now := m.now()
		for i, n := range m.state.Items {
			row := m.renderRow(n, now)
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(row))
			} else {
				b.WriteString(theme.ListItemStyle.Render(row))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	return m.frame(b.String())
}

func (m Model) renderRow(n model.Notification, now time.Time) string {
	marker := " "
	if !n.IsRead {
		marker = theme.UnreadMarker
	}

	label := theme.TypeStyle(n.Type).Render(n.Type.Icon() + " " + m.catalog.Label(n.Type))
	title := ui.Truncate(n.Title, m.width/2)
	age := theme.HelpStyle.Render(ui.FormatAge(n.CreatedAt.Time, now))

	line := fmt.Sprintf("%s %s  %s  %s", marker, label, title, age)
	if n.IsRead {
		return theme.ReadItemStyle.Render(line)
	}
	return line
}

func (m Model) frame(content string) string {
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(content)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}
