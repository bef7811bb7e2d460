package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/session"
	centerview "github.com/nhle/tasknotify/internal/ui/center"
	"github.com/nhle/tasknotify/internal/ui/command"
	"github.com/nhle/tasknotify/internal/ui/prefs"
)

type stubDirectory struct {
	mu     sync.Mutex
	items  []model.Notification
	unread int
}

func (d *stubDirectory) ListNotifications(context.Context, bool, int) ([]model.Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Notification(nil), d.items...), nil
}

func (d *stubDirectory) UnreadCount(context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unread, nil
}

func (d *stubDirectory) MarkRead(context.Context, int64) error { return nil }
func (d *stubDirectory) MarkAllRead(context.Context) error     { return nil }
func (d *stubDirectory) Delete(context.Context, int64) error   { return nil }
func (d *stubDirectory) DeleteAll(context.Context) error       { return nil }

type testEnv struct {
	model  Model
	svc    *notify.Service
	bridge *Bridge
	gate   *session.Gate
	dir    *stubDirectory
}

type stubProfile struct {
	user model.User
}

func (p *stubProfile) Me(context.Context) (*model.User, error) {
	u := p.user
	return &u, nil
}

func (p *stubProfile) UpdateMe(_ context.Context, upd model.UserUpdate) (*model.User, error) {
	p.user.TelegramNotifyTypes = upd.TelegramNotifyTypes
	u := p.user
	return &u, nil
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()

	cfg := model.DefaultAppConfig()
	cfg.Notify.PollIntervalSec = 3600
	cfg.Server.BaseURL = "http://tracker.test"

	gate := session.New("token")
	gate.SetUser(model.User{ID: 1, Username: "alice", FullName: "Alice Doe"})

	dir := &stubDirectory{}
	bridge := NewBridge()
	svc, err := notify.New(notify.Options{
		Directory:  dir,
		Gate:       gate,
		ToastView:  bridge,
		CenterView: bridge,
		Alerter:    bridge,
		Config:     *cfg,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		bridge.Close()
		svc.Close()
	})

	o := Options{Service: svc, Bridge: bridge, Session: gate, Config: cfg}
	for _, fn := range opts {
		fn(&o)
	}
	m := New(o)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &testEnv{model: next.(Model), svc: svc, bridge: bridge, gate: gate, dir: dir}
}

// next returns the next message queued on the bridge.
func (e *testEnv) next(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-e.bridge.ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message on the bridge")
		return nil
	}
}

func (e *testEnv) update(msg tea.Msg) tea.Cmd {
	next, cmd := e.model.Update(msg)
	e.model = next.(Model)
	return cmd
}

// run executes cmd and any commands it batches, returning their messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, run(c)...)
	}
	return out
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBeforeWindowSize(t *testing.T) {
	env := newTestEnv(t)
	m := New(Options{Service: env.svc, Bridge: env.bridge, Session: env.gate})
	assert.Equal(t, "Loading...", m.View())
}

func TestHomeShowsSession(t *testing.T) {
	env := newTestEnv(t)

	out := env.model.View()
	assert.Contains(t, out, "Welcome, Alice Doe")
	assert.Contains(t, out, "@alice")
	assert.Contains(t, out, "http://tracker.test")
	assert.Contains(t, out, "idle")
}

func TestHeaderBadgeFollowsSync(t *testing.T) {
	env := newTestEnv(t)
	env.dir.unread = 7

	env.svc.SyncBadges(context.Background())
	cmd := env.update(env.next(t))

	assert.NotNil(t, cmd)
	assert.Contains(t, env.model.View(), " 7 ")
}

func TestToastMessagesReachTheStack(t *testing.T) {
	env := newTestEnv(t)

	env.bridge.AddToast(notify.Toast{Key: "a", Notification: model.Notification{ID: 5, Title: "Deploy finished"}, Label: "Task updated"})
	env.bridge.SetToastPhase("a", notify.ToastVisible)
	env.update(env.next(t))
	env.update(env.next(t))

	assert.Equal(t, 1, env.model.toastView.Len())
	assert.Contains(t, env.model.View(), "Deploy finished")

	env.bridge.RemoveToast("a")
	env.update(env.next(t))
	assert.Zero(t, env.model.toastView.Len())
}

func TestAlertExpires(t *testing.T) {
	env := newTestEnv(t)

	env.update(alertMsg{text: "Could not delete notification: boom"})
	assert.Contains(t, env.model.View(), "Could not delete notification")

	env.update(alertExpiredMsg{seq: env.model.alertSeq - 1})
	assert.Contains(t, env.model.View(), "Could not delete notification")

	env.update(alertExpiredMsg{seq: env.model.alertSeq})
	assert.NotContains(t, env.model.View(), "Could not delete notification")
}

func TestCenterRegistersItsBadgeWhileOpen(t *testing.T) {
	env := newTestEnv(t)

	env.model.audioPrimed = true
	cmd := env.update(press("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewCenter, env.model.currentView)

	run(cmd)
	assert.Contains(t, env.svc.Badges().Names(), centerBadge)

	env.update(centerview.CloseMsg{})
	assert.Equal(t, ViewHome, env.model.currentView)
	assert.NotContains(t, env.svc.Badges().Names(), centerBadge)
}

func TestCenterStateIsForwarded(t *testing.T) {
	env := newTestEnv(t)
	env.update(press("n"))

	env.update(centerview.StateMsg{State: notify.CenterState{
		Open:  true,
		Items: []model.Notification{{ID: 1, Title: "Design review requested"}},
	}})

	assert.Contains(t, env.model.View(), "Design review requested")
}

func TestCommandPaletteMute(t *testing.T) {
	env := newTestEnv(t)

	env.update(press(":"))
	assert.Equal(t, ViewCommand, env.model.currentView)

	env.update(command.CommandMsg("mute"))
	assert.Equal(t, ViewHome, env.model.currentView)
	assert.True(t, env.svc.Chime().Muted())

	env.update(command.CommandMsg("unmute"))
	assert.False(t, env.svc.Chime().Muted())
}

func TestAudioSettingChange(t *testing.T) {
	env := newTestEnv(t)

	env.bridge.AudioChanged(false)
	env.update(env.next(t))
	assert.True(t, env.svc.Chime().Muted())
	assert.Contains(t, env.model.View(), "muted")
}

func TestHelpToggle(t *testing.T) {
	env := newTestEnv(t)

	env.update(press("?"))
	assert.Equal(t, ViewHelp, env.model.currentView)
	assert.Contains(t, env.model.View(), "Keyboard Shortcuts")

	env.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewHome, env.model.currentView)
}

func TestSessionEndShowsSignedOut(t *testing.T) {
	env := newTestEnv(t)

	env.gate.End("token rejected")
	env.update(env.next(t))

	out := env.model.View()
	assert.Contains(t, out, "signed out")
	assert.Contains(t, out, "tasknotify login")
}

func TestStartFailureIsShown(t *testing.T) {
	env := newTestEnv(t)

	env.update(startedMsg{err: errors.New("starting poller: session ended")})
	assert.Contains(t, env.model.View(), "Polling is not running")
}

func TestQuitStopsService(t *testing.T) {
	env := newTestEnv(t)
	env.model.audioPrimed = true

	cmd := env.update(press("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Nil(t, env.bridge.Wait()())
}

func TestKeysDoNotBlockOnAFullBridge(t *testing.T) {
	env := newTestEnv(t)
	env.model.audioPrimed = true

	env.svc.Toasts().Schedule(model.Notification{ID: 9, Title: "Build failed"}, 0)
	env.update(env.next(t))
	for filled := false; !filled; {
		select {
		case env.bridge.ch <- alertMsg{text: "filler"}:
		default:
			filled = true
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		env.update(press("x"))
		env.update(press("n"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("update blocked on the bridge")
	}
	assert.Equal(t, ViewCenter, env.model.currentView)
}

func TestSoundTogglePersistsToConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	env := newTestEnv(t, func(o *Options) { o.ConfigPath = path })
	env.model.audioPrimed = true

	for _, msg := range run(env.update(press("s"))) {
		env.update(msg)
	}
	assert.True(t, env.svc.Chime().Muted())

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, "http://tracker.test", cfg.Server.BaseURL)

	run(env.update(command.CommandMsg("unmute")))
	assert.False(t, env.svc.Chime().Muted())

	cfg, err = model.LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Audio.Enabled)
}

func TestSoundSaveFailureIsShown(t *testing.T) {
	env := newTestEnv(t)

	env.update(configSavedMsg{err: errors.New("read-only file system")})
	assert.Contains(t, env.model.View(), "Could not save sound setting")
}

func TestPrefsNeedAProfile(t *testing.T) {
	env := newTestEnv(t)
	env.model.audioPrimed = true

	assert.Nil(t, env.update(press("p")))
	assert.Equal(t, ViewHome, env.model.currentView)
}

func TestPrefsOpenAndSave(t *testing.T) {
	profile := &stubProfile{user: model.User{ID: 1, Username: "alice"}}
	env := newTestEnv(t, func(o *Options) { o.Profile = profile })
	env.model.audioPrimed = true

	cmd := env.update(press("p"))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewPrefs, env.model.currentView)
	assert.Contains(t, env.model.View(), "Telegram notifications")

	env.update(press("?"))
	assert.Equal(t, ViewPrefs, env.model.currentView)

	saved := []model.NotificationType{model.TypeTaskAssigned, model.TypeCommentAdded}
	env.update(prefs.CloseMsg{User: &model.User{ID: 1, Username: "alice", TelegramNotifyTypes: saved}})

	assert.Equal(t, ViewHome, env.model.currentView)
	out := env.model.View()
	assert.Contains(t, out, "Telegram preferences saved")
	assert.Contains(t, out, fmt.Sprintf("2 of %d types", len(model.NotificationTypes)))
}

func TestPrefsCancelKeepsSelection(t *testing.T) {
	profile := &stubProfile{user: model.User{ID: 1, Username: "alice"}}
	env := newTestEnv(t, func(o *Options) { o.Profile = profile })
	env.model.audioPrimed = true

	env.update(command.CommandMsg("prefs"))
	assert.Equal(t, ViewPrefs, env.model.currentView)

	env.update(prefs.CloseMsg{})
	assert.Equal(t, ViewHome, env.model.currentView)
	assert.NotContains(t, env.model.View(), "Telegram preferences saved")
}
