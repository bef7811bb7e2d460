package notify

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tasknotify/internal/model"
)

// ToastPhase is the visual state of a toast.
type ToastPhase int

const (
	// ToastEntering is the off-screen state a toast is created in.
	ToastEntering ToastPhase = iota
	// ToastVisible is the on-screen state.
	ToastVisible
	// ToastLeaving is the exit transition before removal.
	ToastLeaving
)

func (p ToastPhase) String() string {
	switch p {
	case ToastEntering:
		return "entering"
	case ToastVisible:
		return "visible"
	case ToastLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Toast is one on-screen card for a surfaced notification.
type Toast struct {
	Key          string
	Notification model.Notification
	Icon         string
	Label        string
	Phase        ToastPhase
	ShownAt      time.Time
}

// ToastConfig holds toast timings.
type ToastConfig struct {
	// Duration is how long a toast stays before it starts leaving.
	Duration time.Duration
	// Exit is the length of the leaving transition.
	Exit time.Duration
	// Frame is the deferral between creation and the entrance transition.
	Frame time.Duration
}

// DefaultToastConfig returns the standard toast timings.
func DefaultToastConfig() ToastConfig {
	return ToastConfig{
		Duration: 8 * time.Second,
		Exit:     300 * time.Millisecond,
		Frame:    16 * time.Millisecond,
	}
}

type toastEntry struct {
	toast   Toast
	enter   Timer
	expire  Timer
	remove  Timer
	leaving bool
}

func (e *toastEntry) stopTimers() {
	for _, t := range []Timer{e.enter, e.expire, e.remove} {
		if t != nil {
			t.Stop()
		}
	}
}

// ToastPresenter owns the lifecycle of every toast: staggered creation,
// entrance, auto-expiry, dismissal and click-through. Each toast has its
// own timers; toasts never affect one another.
type ToastPresenter struct {
	clock   Clock
	view    ToastView
	dir     Directory
	nav     Navigator
	catalog *Catalog
	cfg     ToastConfig

	mu      gosync.Mutex
	toasts  map[string]*toastEntry
	order   []string
	pending map[int]Timer
	nextID  int
	closed  bool
}

// NewToastPresenter creates a presenter. nav may be nil when the client
// cannot navigate.
func NewToastPresenter(
	clock Clock,
	view ToastView,
	dir Directory,
	nav Navigator,
	catalog *Catalog,
	cfg ToastConfig,
) *ToastPresenter {
	if clock == nil {
		clock = SystemClock()
	}
	if view == nil {
		view = nopToastView{}
	}
	if nav == nil {
		nav = nopNavigator{}
	}
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &ToastPresenter{
		clock:   clock,
		view:    view,
		dir:     dir,
		nav:     nav,
		catalog: catalog,
		cfg:     cfg,
		toasts:  make(map[string]*toastEntry),
		pending: make(map[int]Timer),
	}
}

// Schedule shows a toast for n once delay has elapsed.
func (p *ToastPresenter) Schedule(n model.Notification, delay time.Duration) {
	if delay <= 0 {
		p.create(n)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	id := p.nextID
	p.nextID++
	p.pending[id] = p.clock.AfterFunc(delay, func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
		p.create(n)
	})
}

func (p *ToastPresenter) create(n model.Notification) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	key := uuid.NewString()
	entry := &toastEntry{
		toast: Toast{
			Key:          key,
			Notification: n,
			Icon:         n.Type.Icon(),
			Label:        p.catalog.Label(n.Type),
			Phase:        ToastEntering,
			ShownAt:      p.clock.Now(),
		},
	}
	p.toasts[key] = entry
	p.order = append(p.order, key)

	entry.enter = p.clock.AfterFunc(p.cfg.Frame, func() { p.setVisible(key) })
	entry.expire = p.clock.AfterFunc(p.cfg.Duration, func() { p.leave(key) })
	toast := entry.toast
	p.mu.Unlock()

	p.view.AddToast(toast)
}

func (p *ToastPresenter) setVisible(key string) {
	p.mu.Lock()
	entry, ok := p.toasts[key]
	if !ok || entry.leaving {
		p.mu.Unlock()
		return
	}
	entry.toast.Phase = ToastVisible
	p.mu.Unlock()

	p.view.SetToastPhase(key, ToastVisible)
}

// leave starts the exit transition; the toast is removed once it ends.
func (p *ToastPresenter) leave(key string) {
	p.mu.Lock()
	entry, ok := p.toasts[key]
	if !ok || entry.leaving {
		p.mu.Unlock()
		return
	}
	entry.leaving = true
	entry.toast.Phase = ToastLeaving
	if entry.enter != nil {
		entry.enter.Stop()
	}
	entry.remove = p.clock.AfterFunc(p.cfg.Exit, func() { p.remove(key) })
	p.mu.Unlock()

	p.view.SetToastPhase(key, ToastLeaving)
}

func (p *ToastPresenter) remove(key string) {
	p.mu.Lock()
	entry, ok := p.toasts[key]
	if !ok {
		p.mu.Unlock()
		return
	}
	entry.stopTimers()
	delete(p.toasts, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.mu.Unlock()

	p.view.RemoveToast(key)
}

// Dismiss removes a toast right away. Dismissing a toast that is already
// leaving or gone is a no-op.
func (p *ToastPresenter) Dismiss(key string) {
	p.remove(key)
}

// Click marks the toast's notification read and, when it carries a task
// location, navigates there. The toast is removed either way. Failures
// do not prevent navigation or removal; they are returned joined.
func (p *ToastPresenter) Click(ctx context.Context, key string) error {
	p.mu.Lock()
	entry, ok := p.toasts[key]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	n := entry.toast.Notification
	p.mu.Unlock()

	var errs []error
	if p.dir != nil {
		if err := p.dir.MarkRead(ctx, n.ID); err != nil {
			errs = append(errs, fmt.Errorf("marking notification %d read: %w", n.ID, err))
		}
	}

	if n.HasTaskLocation() {
		if err := p.nav.Navigate(*n.ProjectID, *n.TaskID); err != nil {
			errs = append(errs, fmt.Errorf("navigating to task %d: %w", *n.TaskID, err))
		}
	}

	p.remove(key)
	return errors.Join(errs...)
}

// Active returns the toasts currently on screen, oldest first.
func (p *ToastPresenter) Active() []Toast {
	p.mu.Lock()
	defer p.mu.Unlock()

	toasts := make([]Toast, 0, len(p.order))
	for _, key := range p.order {
		toasts = append(toasts, p.toasts[key].toast)
	}
	return toasts
}

// Newest returns the most recently created toast that is not leaving.
func (p *ToastPresenter) Newest() (Toast, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.order) - 1; i >= 0; i-- {
		entry := p.toasts[p.order[i]]
		if !entry.leaving {
			return entry.toast, true
		}
	}
	return Toast{}, false
}

// Close cancels every pending and displayed toast without rendering
// anything further.
func (p *ToastPresenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	for id, t := range p.pending {
		t.Stop()
		delete(p.pending, id)
	}
	for key, entry := range p.toasts {
		entry.stopTimers()
		delete(p.toasts, key)
	}
	p.order = nil
}
