package notify

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	gosync "sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nhle/tasknotify/internal/model"
)

// PollerState is the lifecycle state of a Poller.
type PollerState int

const (
	PollerIdle PollerState = iota
	PollerInitializing
	PollerRunning
	PollerStopped
)

func (s PollerState) String() string {
	switch s {
	case PollerIdle:
		return "idle"
	case PollerInitializing:
		return "initializing"
	case PollerRunning:
		return "running"
	case PollerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// PollerConfig holds the poll period and batching parameters.
type PollerConfig struct {
	// Interval is the period between cycles.
	Interval time.Duration
	// Limit bounds how many unread notifications one cycle fetches.
	Limit int
	// Stagger is the display offset between consecutive toasts of a cycle.
	Stagger time.Duration
	// CycleTimeout bounds a scheduled cycle's network work.
	CycleTimeout time.Duration
}

// DefaultPollerConfig returns a 10s period, 10 items per cycle and a
// 300ms stagger.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:     10 * time.Second,
		Limit:        10,
		Stagger:      300 * time.Millisecond,
		CycleTimeout: 30 * time.Second,
	}
}

// ToastScheduler accepts notifications to present after a delay.
type ToastScheduler interface {
	Schedule(n model.Notification, delay time.Duration)
}

// Cue is an audible signal for new notifications.
type Cue interface {
	Play() error
}

// BadgeSyncer refreshes the unread-count badges.
type BadgeSyncer interface {
	Sync(ctx context.Context) error
}

// CycleResult describes one completed poll cycle.
type CycleResult struct {
	// Delta holds the newly surfaced notifications, oldest first.
	Delta     []model.Notification
	Watermark int64
	At        time.Time

	// Failures of the side effects of a non-empty delta. They never fail
	// the cycle itself.
	CueErr   error
	BadgeErr error
}

// Poller periodically fetches the most recent unread notifications and
// surfaces the ones newer than the watermark. Cycles never overlap: a
// tick that fires while a cycle is in flight is skipped.
type Poller struct {
	dir     Directory
	gate    SessionGate
	mark    *Watermark
	toasts  ToastScheduler
	cue     Cue
	badges  BadgeSyncer
	sink    ErrorSink
	clock   Clock
	cfg     PollerConfig
	cronLog cron.Logger

	mu      gosync.Mutex
	state   PollerState
	run     uint64
	sched   *cron.Cron
	last    CycleResult
	onCycle func(CycleResult)
}

// PollerDeps are the collaborators of a Poller. Cue and Badges may be nil.
type PollerDeps struct {
	Directory Directory
	Gate      SessionGate
	Watermark *Watermark
	Toasts    ToastScheduler
	Cue       Cue
	Badges    BadgeSyncer
	Sink      ErrorSink
	Clock     Clock
	CronLog   cron.Logger
}

// NewPoller creates an idle poller.
func NewPoller(deps PollerDeps, cfg PollerConfig) *Poller {
	d := DefaultPollerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = d.Interval
	}
	if cfg.Limit <= 0 {
		cfg.Limit = d.Limit
	}
	if cfg.Stagger < 0 {
		cfg.Stagger = 0
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = d.CycleTimeout
	}

	p := &Poller{
		dir:     deps.Directory,
		gate:    deps.Gate,
		mark:    deps.Watermark,
		toasts:  deps.Toasts,
		cue:     deps.Cue,
		badges:  deps.Badges,
		sink:    deps.Sink,
		clock:   deps.Clock,
		cfg:     cfg,
		cronLog: deps.CronLog,
	}
	if p.mark == nil {
		p.mark = &Watermark{}
	}
	if p.sink == nil {
		p.sink = nopSink{}
	}
	if p.clock == nil {
		p.clock = SystemClock()
	}
	if p.cronLog == nil {
		p.cronLog = cron.DiscardLogger
	}
	return p
}

// OnCycle registers an observer called after every completed cycle.
func (p *Poller) OnCycle(fn func(CycleResult)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCycle = fn
}

// State returns the current lifecycle state.
func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastCycle returns the most recent completed cycle, if any.
func (p *Poller) LastCycle() (CycleResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, !p.last.At.IsZero()
}

// Watermark returns the tracker the poller advances.
func (p *Poller) Watermark() *Watermark {
	return p.mark
}

// Start seeds the watermark from the most recent unread notification and
// begins periodic cycles. A failed seed is reported and leaves the
// watermark at 0. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) error {
	if p.gate == nil || !p.gate.Active() {
		return ErrNoSession
	}

	p.mu.Lock()
	if p.state == PollerInitializing || p.state == PollerRunning {
		p.mu.Unlock()
		return nil
	}
	p.state = PollerInitializing
	p.run++
	run := p.run
	p.mu.Unlock()

	var seed int64
	latest, err := p.dir.ListNotifications(ctx, true, 1)
	if err != nil {
		p.sink.Report("poller.seed", err)
	} else if len(latest) > 0 {
		seed = latest[0].ID
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run != run || p.state != PollerInitializing {
		return ErrStopped
	}
	p.mark.Initialize(seed)

	sched := cron.New(
		cron.WithLogger(p.cronLog),
		cron.WithChain(cron.SkipIfStillRunning(p.cronLog)),
	)
	sched.Schedule(cron.Every(p.cfg.Interval), cron.FuncJob(p.tick))
	sched.Start()

	p.sched = sched
	p.state = PollerRunning
	return nil
}

// Stop cancels the periodic schedule. A cycle already in flight is not
// aborted; its result is discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sched != nil {
		p.sched.Stop()
		p.sched = nil
	}
	if p.state != PollerIdle {
		p.state = PollerStopped
	}
}

func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.CycleTimeout)
	defer cancel()

	res, err := p.RunCycle(ctx)
	switch {
	case errors.Is(err, ErrStopped), errors.Is(err, ErrNoSession):
		return
	case err != nil:
		p.sink.Report("poller.cycle", err)
		return
	}
	if res.CueErr != nil {
		p.sink.Report("poller.cue", res.CueErr)
	}
	if res.BadgeErr != nil {
		p.sink.Report("poller.badges", res.BadgeErr)
	}
}

// RunCycle performs one fetch-delta-present-sync cycle. It stops the
// poller when the session has ended. Results that arrive after Stop are
// discarded with ErrStopped.
func (p *Poller) RunCycle(ctx context.Context) (CycleResult, error) {
	p.mu.Lock()
	run, state := p.run, p.state
	p.mu.Unlock()
	if state != PollerRunning {
		return CycleResult{}, ErrStopped
	}

	if !p.gate.Active() {
		p.Stop()
		return CycleResult{}, ErrNoSession
	}

	unread, err := p.dir.ListNotifications(ctx, true, p.cfg.Limit)
	if err != nil {
		return CycleResult{}, fmt.Errorf("fetching unread notifications: %w", err)
	}

	if !p.gate.Active() {
		p.Stop()
		return CycleResult{}, ErrNoSession
	}
	p.mu.Lock()
	current := p.run == run && p.state == PollerRunning
	p.mu.Unlock()
	if !current {
		return CycleResult{}, ErrStopped
	}

	delta := p.mark.ComputeDelta(unread)
	slices.SortStableFunc(delta, func(a, b model.Notification) int {
		return cmp.Compare(a.ID, b.ID)
	})

	res := CycleResult{
		Delta:     delta,
		Watermark: p.mark.Value(),
		At:        p.clock.Now(),
	}

	if len(delta) > 0 {
		for i, n := range delta {
			p.toasts.Schedule(n, time.Duration(i)*p.cfg.Stagger)
		}
		if p.cue != nil {
			res.CueErr = p.cue.Play()
		}
		if p.badges != nil {
			res.BadgeErr = p.badges.Sync(ctx)
		}
	}

	p.mu.Lock()
	p.last = res
	onCycle := p.onCycle
	p.mu.Unlock()
	if onCycle != nil {
		onCycle(res)
	}

	return res, nil
}
