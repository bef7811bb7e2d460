// Package prefs is the view where the user picks which notification
// types the server also forwards to Telegram.
package prefs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/theme"
)

const requestTimeout = 15 * time.Second

// Profile reads and updates the authenticated user. api.Client
// satisfies it.
type Profile interface {
	Me(ctx context.Context) (*model.User, error)
	UpdateMe(ctx context.Context, upd model.UserUpdate) (*model.User, error)
}

// CloseMsg signals the parent that the view is done. User is set when
// the preferences were saved.
type CloseMsg struct {
	User *model.User
}

type loadedMsg struct {
	user *model.User
	err  error
}

type savedMsg struct {
	user *model.User
	err  error
}

type formBindings struct {
	types []model.NotificationType
}

// Model is the Telegram preferences view.
type Model struct {
	profile   Profile
	catalog   *notify.Catalog
	form      *huh.Form
	fb        *formBindings
	spinner   spinner.Model
	loading   bool
	saving    bool
	statusMsg string
	width     int
	height    int
}

// New creates a view that loads the current preferences on Init.
func New(profile Profile, catalog *notify.Catalog, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if catalog == nil {
		catalog = notify.NewCatalog()
	}
	return Model{
		profile: profile,
		catalog: catalog,
		fb:      &formBindings{},
		spinner: sp,
		loading: true,
		width:   width,
		height:  height,
	}
}

// Init fetches the user's current selection.
func (m Model) Init() tea.Cmd {
	profile := m.profile
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		u, err := profile.Me(ctx)
		return loadedMsg{user: u, err: err}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Could not load preferences: %v", msg.err)
			return m, nil
		}
		m.fb.types = append([]model.NotificationType(nil), msg.user.TelegramNotifyTypes...)
		m.form = m.buildForm()
		return m, m.form.Init()

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Could not save preferences: %v", msg.err)
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		user := msg.user
		return m, func() tea.Msg { return CloseMsg{User: user} }

	case spinner.TickMsg:
		if !m.loading && !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	if m.form == nil {
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.saving = true
		m.statusMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.save())
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, cmd
}

// save sends the selection. An empty selection is sent as an empty list,
// which clears the setting on the server.
func (m Model) save() tea.Cmd {
	profile := m.profile
	types := append(make([]model.NotificationType, 0, len(m.fb.types)), m.fb.types...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		u, err := profile.UpdateMe(ctx, model.UserUpdate{TelegramNotifyTypes: types})
		return savedMsg{user: u, err: err}
	}
}

func (m Model) buildForm() *huh.Form {
	opts := make([]huh.Option[model.NotificationType], len(model.NotificationTypes))
	for i, t := range model.NotificationTypes {
		opts[i] = huh.NewOption(t.Icon()+" "+m.catalog.Label(t), t)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[model.NotificationType]().
				Title("Forward to Telegram").
				Description("space toggles, enter saves, esc cancels").
				Options(opts...).
				Value(&m.fb.types),
		),
	).WithWidth(m.formWidth())
}

// Selected returns the types currently ticked in the form.
func (m Model) Selected() []model.NotificationType {
	return m.fb.types
}

// View renders the view.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := titleStyle.Render("Telegram notifications")
	if m.loading || m.saving {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", m.spinner.View())
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render("Loading your preferences…"))
	case m.saving:
		b.WriteString(theme.HelpStyle.Render("Saving…"))
	case m.form != nil:
		b.WriteString(m.form.View())
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}
