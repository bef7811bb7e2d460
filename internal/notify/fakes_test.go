package notify

import (
	"context"
	"errors"
	"sort"
	gosync "sync"
	"time"

	"github.com/nhle/tasknotify/internal/model"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     gosync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward, firing due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// pending counts timers that have neither fired nor been stopped.
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeDirectory is an in-memory notification directory.
type fakeDirectory struct {
	mu     gosync.Mutex
	items  map[int64]model.Notification
	nextID int64

	listErr   error
	listFails int
	countErr  error
	mutateErr error
	onList    func()

	listCalls  int
	countCalls int
	markCalls  []int64
	types      []model.TypeLabel
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{items: make(map[int64]model.Notification), nextID: 1}
}

func (d *fakeDirectory) add(ids ...int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		d.items[id] = model.Notification{
			ID:    id,
			Type:  model.TypeTaskUpdated,
			Title: "Task changed",
		}
		if id >= d.nextID {
			d.nextID = id + 1
		}
	}
}

func (d *fakeDirectory) put(n model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items[n.ID] = n
}

func (d *fakeDirectory) setListErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listErr = err
}

func (d *fakeDirectory) setOnList(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onList = fn
}

func (d *fakeDirectory) lists() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listCalls
}

func (d *fakeDirectory) ListNotifications(_ context.Context, unreadOnly bool, limit int) ([]model.Notification, error) {
	d.mu.Lock()
	d.listCalls++
	hook := d.onList
	if d.listFails > 0 {
		d.listFails--
		d.mu.Unlock()
		return nil, errors.New("temporarily unavailable")
	}
	if d.listErr != nil {
		err := d.listErr
		d.mu.Unlock()
		return nil, err
	}

	out := make([]model.Notification, 0, len(d.items))
	for _, n := range d.items {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if hook != nil {
		hook()
	}
	return out, nil
}

func (d *fakeDirectory) UnreadCount(context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.countCalls++
	if d.countErr != nil {
		return 0, d.countErr
	}
	n := 0
	for _, item := range d.items {
		if !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (d *fakeDirectory) MarkRead(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markCalls = append(d.markCalls, id)
	if d.mutateErr != nil {
		return d.mutateErr
	}
	if n, ok := d.items[id]; ok {
		n.IsRead = true
		d.items[id] = n
	}
	return nil
}

func (d *fakeDirectory) MarkAllRead(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mutateErr != nil {
		return d.mutateErr
	}
	for id, n := range d.items {
		n.IsRead = true
		d.items[id] = n
	}
	return nil
}

func (d *fakeDirectory) Delete(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mutateErr != nil {
		return d.mutateErr
	}
	delete(d.items, id)
	return nil
}

func (d *fakeDirectory) DeleteAll(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mutateErr != nil {
		return d.mutateErr
	}
	d.items = make(map[int64]model.Notification)
	return nil
}

func (d *fakeDirectory) NotificationTypes(context.Context) ([]model.TypeLabel, error) {
	return d.types, nil
}

// fakeGate is a switchable session.
type fakeGate struct {
	mu     gosync.Mutex
	active bool
	onEnd  []func(string)
}

func (g *fakeGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *fakeGate) OnEnd(fn func(string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onEnd = append(g.onEnd, fn)
}

func (g *fakeGate) End() {
	g.mu.Lock()
	g.active = false
	fns := g.onEnd
	g.mu.Unlock()
	for _, fn := range fns {
		fn("logout")
	}
}

type sinkEntry struct {
	op  string
	err error
}

type recordingSink struct {
	mu      gosync.Mutex
	entries []sinkEntry
}

func (s *recordingSink) Report(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, sinkEntry{op: op, err: err})
}

func (s *recordingSink) ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		ops = append(ops, e.op)
	}
	return ops
}

type scheduledToast struct {
	id    int64
	delay time.Duration
}

type recordingScheduler struct {
	mu        gosync.Mutex
	scheduled []scheduledToast
}

func (r *recordingScheduler) Schedule(n model.Notification, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, scheduledToast{id: n.ID, delay: delay})
}

func (r *recordingScheduler) ids() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.scheduled))
	for _, s := range r.scheduled {
		ids = append(ids, s.id)
	}
	return ids
}

type countingCue struct {
	mu    gosync.Mutex
	plays int
	err   error
}

func (c *countingCue) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
	return c.err
}

func (c *countingCue) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

type countingBadges struct {
	mu    gosync.Mutex
	syncs int
	err   error
}

func (b *countingBadges) Sync(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncs++
	return b.err
}

func (b *countingBadges) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syncs
}

type viewEvent struct {
	kind  string
	key   string
	phase ToastPhase
}

type recordingToastView struct {
	mu     gosync.Mutex
	events []viewEvent
	toasts []Toast
}

func (v *recordingToastView) AddToast(t Toast) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toasts = append(v.toasts, t)
	v.events = append(v.events, viewEvent{kind: "add", key: t.Key, phase: t.Phase})
}

func (v *recordingToastView) SetToastPhase(key string, phase ToastPhase) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, viewEvent{kind: "phase", key: key, phase: phase})
}

func (v *recordingToastView) RemoveToast(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, viewEvent{kind: "remove", key: key})
}

func (v *recordingToastView) count(kind string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, e := range v.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

type navigation struct {
	projectID int64
	taskID    int64
}

type recordingNavigator struct {
	mu    gosync.Mutex
	trips []navigation
}

func (n *recordingNavigator) Navigate(projectID, taskID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trips = append(n.trips, navigation{projectID, taskID})
	return nil
}

type recordingBadge struct {
	mu     gosync.Mutex
	states []BadgeState
}

func (b *recordingBadge) Render(s BadgeState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = append(b.states, s)
}

func (b *recordingBadge) last() (BadgeState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.states) == 0 {
		return BadgeState{}, false
	}
	return b.states[len(b.states)-1], true
}

type recordingCenterView struct {
	mu     gosync.Mutex
	states []CenterState
}

func (v *recordingCenterView) RenderCenter(s CenterState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.states = append(v.states, s)
}

type recordingAlerter struct {
	mu       gosync.Mutex
	messages []string
}

func (a *recordingAlerter) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, msg)
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.messages)
}

func int64p(v int64) *int64 { return &v }
