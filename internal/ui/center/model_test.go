package center

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknotify/internal/keys"
	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
)

type stubDirectory struct {
	mu      sync.Mutex
	items   []model.Notification
	marked  []int64
	deleted []int64
	markAll int
}

func (d *stubDirectory) ListNotifications(_ context.Context, unreadOnly bool, limit int) ([]model.Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Notification
	for _, n := range d.items {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *stubDirectory) UnreadCount(context.Context) (int, error) { return 0, nil }

func (d *stubDirectory) MarkRead(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marked = append(d.marked, id)
	for i := range d.items {
		if d.items[i].ID == id {
			d.items[i].IsRead = true
		}
	}
	return nil
}

func (d *stubDirectory) MarkAllRead(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markAll++
	for i := range d.items {
		d.items[i].IsRead = true
	}
	return nil
}

func (d *stubDirectory) Delete(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, id)
	kept := d.items[:0]
	for _, n := range d.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	d.items = kept
	return nil
}

func (d *stubDirectory) DeleteAll(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = nil
	return nil
}

type lastState struct {
	mu    sync.Mutex
	state notify.CenterState
}

func (l *lastState) RenderCenter(s notify.CenterState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *lastState) get() notify.CenterState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

type tripRecorder struct {
	trips [][2]int64
}

func (r *tripRecorder) Navigate(projectID, taskID int64) error {
	r.trips = append(r.trips, [2]int64{projectID, taskID})
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func int64p(v int64) *int64 { return &v }

func newTestModel(t *testing.T) (Model, *stubDirectory, *lastState, *tripRecorder) {
	t.Helper()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	dir := &stubDirectory{items: []model.Notification{
		{ID: 3, Type: model.TypeCommentAdded, Title: "Comment on login page", CreatedAt: model.NewTimestamp(now.Add(-2 * time.Minute)), ProjectID: int64p(4), TaskID: int64p(9)},
		{ID: 2, Type: model.TypeStageChanged, Title: "Moved to review", CreatedAt: model.NewTimestamp(now.Add(-2 * time.Hour))},
		{ID: 1, Type: model.TypeTaskAssigned, Title: "You were assigned", IsRead: true, CreatedAt: model.NewTimestamp(now.Add(-72 * time.Hour))},
	}}
	view := &lastState{}
	nav := &tripRecorder{}
	c := notify.NewCenter(notify.CenterDeps{Directory: dir, View: view}, 100)

	m := New(Config{Center: c, Navigator: nav, WebURL: "https://tracker.example.com", Keys: keys.DefaultKeyMap()}, 100, 30)
	m.now = func() time.Time { return now }

	msg := m.Init()()
	require.Equal(t, actionDoneMsg{what: "load notifications"}, msg)
	m, _ = m.Update(StateMsg{State: view.get()})
	return m, dir, view, nav
}

func TestViewDistinguishesUnread(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	out := m.View()
	assert.Contains(t, out, "Comment on login page")
	assert.Contains(t, out, "Moved to review")
	assert.Contains(t, out, "You were assigned")
	assert.Contains(t, out, "2m ago")
	assert.Contains(t, out, "●")
}

func TestEmptyCenter(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m, _ = m.Update(StateMsg{State: notify.CenterState{Open: true}})

	assert.Contains(t, m.View(), "all caught up")
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestMarkSelectedRead(t *testing.T) {
	m, dir, view, _ := newTestModel(t)

	m, _ = m.Update(runes("j"))
	n, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(2), n.ID)

	_, cmd := m.Update(runes("m"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []int64{2}, dir.marked)
	assert.True(t, view.get().Items[1].IsRead)
}

func TestMarkReadOnReadItemStillRequests(t *testing.T) {
	m, dir, _, _ := newTestModel(t)

	m, _ = m.Update(runes("k"))
	n, _ := m.Selected()
	assert.Equal(t, int64(1), n.ID)

	_, cmd := m.Update(runes("m"))
	require.NotNil(t, cmd)
	assert.Equal(t, actionDoneMsg{what: "mark notification read"}, cmd())
	assert.Equal(t, []int64{1}, dir.marked)
}

func TestMarkAllWithNothingUnreadStillRequests(t *testing.T) {
	m, dir, view, _ := newTestModel(t)

	_, cmd := m.Update(runes("M"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, dir.markAll)

	m, _ = m.Update(StateMsg{State: view.get()})
	assert.Zero(t, view.get().Unread())

	_, cmd = m.Update(runes("M"))
	require.NotNil(t, cmd)
	assert.Equal(t, actionDoneMsg{what: "mark all notifications read"}, cmd())
	assert.Equal(t, 2, dir.markAll)
}

func TestDeleteSelected(t *testing.T) {
	m, dir, view, _ := newTestModel(t)

	_, cmd := m.Update(runes("d"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []int64{3}, dir.deleted)
	assert.Len(t, view.get().Items, 2)
}

func TestDeleteAllAsksForConfirmation(t *testing.T) {
	m, dir, view, _ := newTestModel(t)

	_, cmd := m.Update(runes("D"))
	require.NotNil(t, cmd)
	cmd()
	require.True(t, view.get().ConfirmingDeleteAll)
	assert.Len(t, dir.items, 3)

	m, _ = m.Update(StateMsg{State: view.get()})
	assert.True(t, m.Confirming())

	m, _ = m.Update(StateMsg{State: notify.CenterState{Open: true, Items: view.get().Items}})
	assert.False(t, m.Confirming())
}

func TestOpenTaskMarksAndNavigates(t *testing.T) {
	m, dir, _, nav := newTestModel(t)

	_, cmd := m.Update(runes("g"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []int64{3}, dir.marked)
	assert.Equal(t, [][2]int64{{4, 9}}, nav.trips)
}

func TestOpenTaskWithoutLocationDoesNothing(t *testing.T) {
	m, _, _, nav := newTestModel(t)

	m, _ = m.Update(runes("j"))
	_, cmd := m.Update(runes("g"))
	assert.Nil(t, cmd)
	assert.Empty(t, nav.trips)
}

func TestCopyLink(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	m, _, _, _ := newTestModel(t)

	_, cmd := m.Update(runes("y"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, "https://tracker.example.com/projects/4?task=9", copied)
	assert.Contains(t, m.View(), "Copied")
}

func TestEscClosesCenter(t *testing.T) {
	m, _, view, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, CloseMsg{}, cmd())
	assert.False(t, view.get().Open)
}

func TestBadgeShownInTitle(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m.SetBadge(notify.NewBadgeState(2, 99))

	assert.Contains(t, m.View(), "Notifications")
	assert.Contains(t, m.View(), " 2 ")
}
