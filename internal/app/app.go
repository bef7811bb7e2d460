package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknotify/internal/keys"
	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/theme"
	"github.com/nhle/tasknotify/internal/ui"
	centerview "github.com/nhle/tasknotify/internal/ui/center"
	"github.com/nhle/tasknotify/internal/ui/command"
	helpview "github.com/nhle/tasknotify/internal/ui/help"
	"github.com/nhle/tasknotify/internal/ui/prefs"
	"github.com/nhle/tasknotify/internal/ui/toasts"
)

// Badge names registered with the badge set.
const (
	headerBadge = "header"
	centerBadge = "center"
)

// opTimeout bounds one user-triggered background operation.
const opTimeout = 30 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewHome ViewState = iota
	ViewCenter
	ViewHelp
	ViewCommand
	ViewPrefs
)

type startedMsg struct {
	err error
}

type alertExpiredMsg struct {
	seq int
}

type configSavedMsg struct {
	err error
}

// Session is the part of the session gate the UI needs.
type Session interface {
	User() model.User
	OnEnd(fn func(reason string))
}

// Options are the collaborators of the root model. Profile enables the
// Telegram preferences view. ConfigPath is where sound changes are saved.
type Options struct {
	Service    *notify.Service
	Bridge     *Bridge
	Session    Session
	Navigator  notify.Navigator
	Profile    prefs.Profile
	Config     *model.AppConfig
	ConfigPath string
}

// Model is the root Bubble Tea model. It routes between views, renders
// the shared frame and drains the notify ports through the bridge.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	svc          *notify.Service
	bridge       *Bridge
	user         model.User
	cfg          *model.AppConfig
	configPath   string
	profile      prefs.Profile
	toastView    toasts.Model
	centerView   centerview.Model
	helpView     helpview.Model
	commandView  command.Model
	prefsView    prefs.Model
	badges       map[string]notify.BadgeState
	lastCycle    *notify.CycleResult
	alert        string
	alertSeq     int
	ended        string
	startErr     error
	audioPrimed  bool
	ready        bool
	now          func() time.Time
}

// New creates the root model and hooks it to the service's ports.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	k := keys.DefaultKeyMap()
	svc := opts.Service
	b := opts.Bridge

	svc.Badges().Register(headerBadge, b.Badge(headerBadge))
	svc.Poller().OnCycle(b.CycleDone)
	opts.Session.OnEnd(b.SessionEnded)

	return Model{
		currentView: ViewHome,
		keys:        k,
		svc:         svc,
		bridge:      b,
		user:        opts.Session.User(),
		cfg:         cfg,
		configPath:  opts.ConfigPath,
		profile:     opts.Profile,
		toastView:   toasts.New(40),
		centerView: centerview.New(centerview.Config{
			Center:    svc.Center(),
			Catalog:   svc.Catalog(),
			Navigator: opts.Navigator,
			WebURL:    cfg.Server.WebURL,
			Keys:      k,
		}, 80, 24),
		helpView:    helpview.New(k, svc.Catalog(), 80, 24),
		commandView: command.New(80, 24),
		badges:      make(map[string]notify.BadgeState),
		now:         time.Now,
	}
}

// Init starts the notification service and begins draining the bridge.
func (m Model) Init() tea.Cmd {
	svc := m.svc
	return tea.Batch(
		m.bridge.Wait(),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			return startedMsg{err: svc.Start(ctx)}
		},
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.toastView.SetSize(m.layout.ToastWidth)
		m.centerView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.prefsView.SetSize(contentWidth, contentHeight)
		return m, nil

	case startedMsg:
		m.startErr = msg.err
		return m, nil

	case toasts.AddedMsg, toasts.PhaseMsg, toasts.RemovedMsg:
		var cmd tea.Cmd
		m.toastView, cmd = m.toastView.Update(msg)
		return m, tea.Batch(cmd, m.bridge.Wait())

	case centerview.StateMsg:
		var cmd tea.Cmd
		m.centerView, cmd = m.centerView.Update(msg)
		return m, tea.Batch(cmd, m.bridge.Wait())

	case badgeMsg:
		m.badges[msg.name] = msg.state
		if msg.name == centerBadge {
			m.centerView.SetBadge(msg.state)
		}
		return m, m.bridge.Wait()

	case alertMsg:
		return m, tea.Batch(m.showAlert(msg.text), m.bridge.Wait())

	case alertExpiredMsg:
		if msg.seq == m.alertSeq {
			m.alert = ""
		}
		return m, nil

	case cycleMsg:
		r := msg.result
		m.lastCycle = &r
		return m, m.bridge.Wait()

	case sessionEndedMsg:
		m.ended = msg.reason
		return m, m.bridge.Wait()

	case audioChangedMsg:
		m.cfg.Audio.Enabled = msg.enabled
		m.svc.SetMuted(!msg.enabled)
		return m, m.bridge.Wait()

	case configSavedMsg:
		if msg.err != nil {
			return m, m.showAlert("Could not save sound setting: " + msg.err.Error())
		}
		return m, nil

	case prefs.CloseMsg:
		m.currentView = ViewHome
		if msg.User == nil {
			return m, nil
		}
		m.user.TelegramNotifyTypes = msg.User.TelegramNotifyTypes
		return m, m.showAlert("Telegram preferences saved")

	case centerview.CloseMsg:
		m.svc.Badges().Unregister(centerBadge)
		m.currentView = ViewHome
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		primeCmd := m.primeAudio()

		// Global keys that work regardless of current view
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "?":
			if m.currentView == ViewCommand || m.currentView == ViewPrefs || m.centerView.Confirming() {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, primeCmd
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, primeCmd

		case ":":
			if m.currentView == ViewPrefs || m.centerView.Confirming() {
				break
			}
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, primeCmd
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, tea.Batch(primeCmd, m.commandView.Focus())

		case "esc":
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, primeCmd
			}
		}

		if m.currentView == ViewHome {
			next, cmd := m.handleHomeKey(msg)
			return next, tea.Batch(primeCmd, cmd)
		}
		next, cmd := m.updateActiveView(msg)
		return next, tea.Batch(primeCmd, cmd)
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleHomeKey handles keys on the home panel.
func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Center):
		return m, m.openCenter()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.pollNow()

	case key.Matches(msg, m.keys.OpenToast):
		t, ok := m.svc.Toasts().Newest()
		if !ok {
			return m, nil
		}
		svc := m.svc
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			svc.ClickToast(ctx, t.Key)
			return nil
		}

	case key.Matches(msg, m.keys.DismissToast):
		t, ok := m.svc.Toasts().Newest()
		if !ok {
			return m, nil
		}
		presenter := m.svc.Toasts()
		return m, func() tea.Msg {
			presenter.Dismiss(t.Key)
			return nil
		}

	case key.Matches(msg, m.keys.Mute):
		return m, m.setSound(m.svc.Chime().Muted())

	case key.Matches(msg, m.keys.Prefs):
		return m, m.openPrefs()
	}
	return m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewCenter:
		m.centerView, cmd = m.centerView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewPrefs:
		m.prefsView, cmd = m.prefsView.Update(msg)
	}

	return m, cmd
}

// openPrefs switches to a fresh preferences view.
func (m *Model) openPrefs() tea.Cmd {
	if m.profile == nil {
		return nil
	}
	m.previousView = ViewHome
	m.currentView = ViewPrefs
	m.prefsView = prefs.New(m.profile, m.svc.Catalog(), m.layout.ContentWidth(), m.layout.ContentHeight())
	return m.prefsView.Init()
}

// setSound turns the chime on or off and writes the choice back to the
// config file.
func (m *Model) setSound(enabled bool) tea.Cmd {
	m.svc.SetMuted(!enabled)
	m.cfg.Audio.Enabled = enabled
	if m.configPath == "" {
		return nil
	}
	path := m.configPath
	snapshot := *m.cfg
	return func() tea.Msg {
		return configSavedMsg{err: model.SaveConfig(path, &snapshot)}
	}
}

// showAlert puts text in the status bar until it expires or another
// alert replaces it.
func (m *Model) showAlert(text string) tea.Cmd {
	m.alert = text
	m.alertSeq++
	seq := m.alertSeq
	return tea.Tick(m.cfg.Notify.AlertDuration(), func(time.Time) tea.Msg {
		return alertExpiredMsg{seq: seq}
	})
}

// openCenter switches to the center and registers its badge. Anything
// that renders into the bridge runs as a command: Update is the bridge's
// only reader and must never block on it.
func (m *Model) openCenter() tea.Cmd {
	if m.currentView != ViewCenter {
		m.previousView = ViewHome
		m.currentView = ViewCenter
	}
	badges := m.svc.Badges()
	badge := m.bridge.Badge(centerBadge)
	register := func() tea.Msg {
		badges.Register(centerBadge, badge)
		return nil
	}
	return tea.Batch(register, m.centerView.Init())
}

func (m Model) pollNow() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		svc.PollNow(ctx)
		return nil
	}
}

// primeAudio opens the audio device on the first key press, so the
// first chime does not pay for it.
func (m *Model) primeAudio() tea.Cmd {
	if m.audioPrimed {
		return nil
	}
	m.audioPrimed = true
	chime := m.svc.Chime()
	return func() tea.Msg {
		chime.EnsureReady()
		return nil
	}
}

func (m Model) quit() tea.Cmd {
	m.bridge.Close()
	m.svc.Close()
	return tea.Quit
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh", "poll":
		return m.pollNow()
	case "center", "notifications":
		return m.openCenter()
	case "mute":
		return m.setSound(false)
	case "unmute":
		return m.setSound(true)
	case "prefs", "preferences":
		return m.openPrefs()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		return m.quit()
	default:
		return nil
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("tasknotify", m.badges[headerBadge], m.pollerStatus())
	body := m.layout.RenderBody(m.renderContent(), m.toastView.View())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.alert)

	return m.layout.RenderWithFrame(header, body, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCenter:
		return m.centerView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewPrefs:
		return m.prefsView.View()
	default:
		return m.renderHome()
	}
}

// renderHome renders the session and poller summary.
func (m Model) renderHome() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(14)
	row := func(label, value string) string {
		return labelStyle.Render(label) + value + "\n"
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	welcome := "Welcome"
	if name := m.user.DisplayName(); name != "" {
		welcome += ", " + name
	}
	b.WriteString(titleStyle.Render(welcome))
	b.WriteString("\n\n")

	if m.user.Username != "" {
		b.WriteString(row("Account", "@"+m.user.Username))
	}
	b.WriteString(row("Server", m.cfg.Server.BaseURL))
	b.WriteString(row("Poller", m.svc.Poller().State().String()))
	b.WriteString(row("Watermark", fmt.Sprintf("#%d", m.svc.Watermark().Value())))

	last := "none yet"
	if m.lastCycle != nil {
		last = fmt.Sprintf("%s, %d new", ui.FormatAge(m.lastCycle.At, m.now()), len(m.lastCycle.Delta))
	}
	b.WriteString(row("Last cycle", last))

	unread := "0"
	if s, ok := m.badges[headerBadge]; ok && s.Visible {
		unread = fmt.Sprint(s.Count)
	}
	b.WriteString(row("Unread", unread))
	b.WriteString(row("Sound", m.svc.Chime().Status()))
	if m.profile != nil {
		b.WriteString(row("Telegram", fmt.Sprintf("%d of %d types", len(m.user.TelegramNotifyTypes), len(model.NotificationTypes))))
	}

	if m.ended != "" {
		b.WriteString("\n")
		b.WriteString(theme.AlertStyle.Render(fmt.Sprintf(
			"Session ended (%s). Run `tasknotify login` to sign in again.", m.ended)))
	} else if m.startErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.AlertStyle.Render("Polling is not running: " + m.startErr.Error()))
	}

	return theme.PanelStyle.
		Width(m.layout.ContentWidth() - 4).
		Height(m.layout.ContentHeight() - 4).
		Render(b.String())
}

// pollerStatus returns a short string describing the poller.
func (m Model) pollerStatus() string {
	if m.ended != "" {
		return "signed out"
	}
	switch m.svc.Poller().State() {
	case notify.PollerRunning:
		return fmt.Sprintf("polling every %s", m.cfg.Notify.PollInterval())
	case notify.PollerInitializing:
		return "starting"
	default:
		return m.svc.Poller().State().String()
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | tab complete | enter execute | esc back"
	case ViewPrefs:
		return "space toggle | enter save | esc cancel"
	case ViewCenter:
		if m.centerView.Confirming() {
			return "←/→ choose | enter confirm | esc cancel"
		}
		return "j/k move | m read | M all read | d delete | D delete all | g open | y copy link | esc back"
	default:
		return "n notifications | r refresh | o open toast | x dismiss | s sound | p telegram | ? help | q quit"
	}
}
