package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/nhle/tasknotify/internal/model"
)

// Options wires a Service. Directory and Gate are required; every
// rendering port may be nil.
type Options struct {
	Directory Directory
	Gate      SessionLifecycle
	Sink      ErrorSink
	Clock     Clock

	ToastView  ToastView
	Navigator  Navigator
	CenterView CenterView
	Alerter    Alerter

	// AudioOpener reaches the audio device on the first chime. Nil
	// disables the chime.
	AudioOpener AudioOpener

	Config      model.AppConfig
	CronLogger  cron.Logger
	IsPermanent func(error) bool
}

// Service is the notification core of one session: it owns the
// watermark, poller, chime, toasts, badges and center, and stops
// polling when the session ends.
type Service struct {
	gate    SessionLifecycle
	dir     Directory
	sink    ErrorSink
	catalog *Catalog
	mark    *Watermark
	toasts  *ToastPresenter
	chime   *Chime
	badges  *BadgeSynchronizer
	center  *Center
	poller  *Poller
}

// New builds a stopped service for the session behind opts.Gate.
func New(opts Options) (*Service, error) {
	if opts.Directory == nil {
		return nil, errors.New("notify: directory is required")
	}
	if opts.Gate == nil {
		return nil, errors.New("notify: session gate is required")
	}
	if opts.Sink == nil {
		opts.Sink = nopSink{}
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}

	cfg := opts.Config
	s := &Service{
		gate:    opts.Gate,
		dir:     opts.Directory,
		sink:    opts.Sink,
		catalog: NewCatalog(),
		mark:    &Watermark{},
	}

	s.toasts = NewToastPresenter(opts.Clock, opts.ToastView, opts.Directory, opts.Navigator, s.catalog, ToastConfig{
		Duration: cfg.Notify.ToastDuration(),
		Exit:     cfg.Notify.ToastExit(),
		Frame:    DefaultToastConfig().Frame,
	})

	chimeCfg := DefaultChimeConfig()
	if cfg.Audio.BaseHz > 0 {
		chimeCfg.BaseHz = cfg.Audio.BaseHz
	}
	if cfg.Audio.HarmonicHz > 0 {
		chimeCfg.HarmonicHz = cfg.Audio.HarmonicHz
	}
	if d := cfg.Audio.Duration(); d > 0 {
		chimeCfg.Duration = d
	}
	if cfg.Audio.Volume > 0 {
		chimeCfg.Volume = cfg.Audio.Volume
	}
	s.chime = NewChime(opts.AudioOpener, chimeCfg)
	s.chime.SetMuted(!cfg.Audio.Enabled)

	s.badges = NewBadgeSynchronizer(opts.Directory, NewBadgeSet(), cfg.Notify.BadgeCap)

	s.center = NewCenter(CenterDeps{
		Directory:   opts.Directory,
		Badges:      s.badges,
		View:        opts.CenterView,
		Alerter:     opts.Alerter,
		Sink:        opts.Sink,
		IsPermanent: opts.IsPermanent,
	}, cfg.Notify.CenterLimit)

	s.poller = NewPoller(PollerDeps{
		Directory: opts.Directory,
		Gate:      opts.Gate,
		Watermark: s.mark,
		Toasts:    s.toasts,
		Cue:       s.chime,
		Badges:    s.badges,
		Sink:      opts.Sink,
		Clock:     opts.Clock,
		CronLog:   opts.CronLogger,
	}, PollerConfig{
		Interval: cfg.Notify.PollInterval(),
		Limit:    cfg.Notify.PollLimit,
		Stagger:  cfg.Notify.Stagger(),
	})

	opts.Gate.OnEnd(func(string) { s.Stop() })

	return s, nil
}

// Start loads the type catalogue, starts polling and syncs the badges
// once. Catalogue and badge failures are reported, not returned.
func (s *Service) Start(ctx context.Context) error {
	if !s.gate.Active() {
		return ErrNoSession
	}

	if src, ok := s.dir.(TypeSource); ok {
		types, err := src.NotificationTypes(ctx)
		if err != nil {
			s.sink.Report("service.types", err)
		} else {
			s.catalog.Load(types)
		}
	}

	if err := s.poller.Start(ctx); err != nil {
		return fmt.Errorf("starting poller: %w", err)
	}

	s.SyncBadges(ctx)
	return nil
}

// Stop halts polling and releases the audio device. Toasts already on
// screen keep their own timers.
func (s *Service) Stop() {
	s.poller.Stop()
	if err := s.chime.Suspend(); err != nil {
		s.sink.Report("service.audio", err)
	}
}

// Close stops the service and discards every toast.
func (s *Service) Close() {
	s.Stop()
	s.toasts.Close()
}

// SyncBadges refreshes every badge, reporting failures to the sink.
func (s *Service) SyncBadges(ctx context.Context) {
	if err := s.badges.Sync(ctx); err != nil {
		s.sink.Report("service.badges", err)
	}
}

// PollNow runs one cycle outside the schedule.
func (s *Service) PollNow(ctx context.Context) {
	res, err := s.poller.RunCycle(ctx)
	switch {
	case errors.Is(err, ErrStopped), errors.Is(err, ErrNoSession):
		return
	case err != nil:
		s.sink.Report("service.poll", err)
		return
	}
	if res.CueErr != nil {
		s.sink.Report("service.cue", res.CueErr)
	}
	if res.BadgeErr != nil {
		s.sink.Report("service.badges", res.BadgeErr)
	}
}

// ClickToast activates a toast. Mark-read failures are reported to the
// sink; navigation and removal happen regardless.
func (s *Service) ClickToast(ctx context.Context, key string) {
	if err := s.toasts.Click(ctx, key); err != nil {
		s.sink.Report("toast.click", err)
	}
}

// SetMuted silences or restores the chime.
func (s *Service) SetMuted(muted bool) {
	s.chime.SetMuted(muted)
}

func (s *Service) Poller() *Poller         { return s.poller }
func (s *Service) Center() *Center         { return s.center }
func (s *Service) Toasts() *ToastPresenter { return s.toasts }
func (s *Service) Badges() *BadgeSet       { return s.badges.Set() }
func (s *Service) Chime() *Chime           { return s.chime }
func (s *Service) Watermark() *Watermark   { return s.mark }
func (s *Service) Catalog() *Catalog       { return s.catalog }
