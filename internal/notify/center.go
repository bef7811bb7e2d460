package notify

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/eapache/go-resiliency/retrier"

	"github.com/nhle/tasknotify/internal/model"
)

// DefaultCenterLimit bounds how many notifications the center lists.
const DefaultCenterLimit = 100

// CenterState is what the notification center displays.
type CenterState struct {
	Open                bool
	Loading             bool
	Items               []model.Notification
	ConfirmingDeleteAll bool
}

// Unread returns how many listed items are unread.
func (s CenterState) Unread() int {
	n := 0
	for _, item := range s.Items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// CenterDeps are the collaborators of a Center.
type CenterDeps struct {
	Directory Directory
	Badges    BadgeSyncer
	View      CenterView
	Alerter   Alerter
	Sink      ErrorSink

	// IsPermanent reports errors that retrying cannot fix (e.g.
	// authentication failures). Nil retries every error.
	IsPermanent func(error) bool
}

// Center is the on-demand list of read and unread notifications with
// per-item and bulk mutations. It never touches the poller's watermark.
// Failures are alerted to the user and leave the displayed state as it
// was.
type Center struct {
	dir     Directory
	badges  BadgeSyncer
	view    CenterView
	alert   Alerter
	sink    ErrorSink
	limit   int
	retrier *retrier.Retrier

	mu    gosync.Mutex
	state CenterState
}

type permanentClassifier func(error) bool

func (c permanentClassifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retrier.Fail
	case c != nil && c(err):
		return retrier.Fail
	default:
		return retrier.Retry
	}
}

// NewCenter creates a closed center listing up to limit items.
func NewCenter(deps CenterDeps, limit int) *Center {
	if limit <= 0 {
		limit = DefaultCenterLimit
	}
	c := &Center{
		dir:    deps.Directory,
		badges: deps.Badges,
		view:   deps.View,
		alert:  deps.Alerter,
		sink:   deps.Sink,
		limit:  limit,
		retrier: retrier.New(
			retrier.ExponentialBackoff(2, 200*time.Millisecond),
			permanentClassifier(deps.IsPermanent),
		),
	}
	if c.view == nil {
		c.view = nopCenterView{}
	}
	if c.alert == nil {
		c.alert = nopAlerter{}
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	return c
}

// State returns a snapshot of the center.
func (c *Center) State() CenterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Center) snapshot() CenterState {
	s := c.state
	s.Items = append([]model.Notification(nil), c.state.Items...)
	return s
}

// update applies fn to the state under the lock and renders the result.
func (c *Center) update(fn func(s *CenterState)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.snapshot()
	c.mu.Unlock()

	c.view.RenderCenter(snap)
}

// Open shows the center and loads a fresh list.
func (c *Center) Open(ctx context.Context) error {
	c.update(func(s *CenterState) {
		s.Open = true
		s.ConfirmingDeleteAll = false
	})
	return c.Refresh(ctx)
}

// Refresh re-fetches the list. On failure the previous items stay.
func (c *Center) Refresh(ctx context.Context) error {
	c.update(func(s *CenterState) { s.Loading = true })

	var items []model.Notification
	err := c.retrier.RunCtx(ctx, func(ctx context.Context) error {
		var err error
		items, err = c.dir.ListNotifications(ctx, false, c.limit)
		return err
	})
	if err != nil {
		c.update(func(s *CenterState) { s.Loading = false })
		c.alert.Alert(fmt.Sprintf("Could not load notifications: %v", err))
		return fmt.Errorf("loading notifications: %w", err)
	}

	c.update(func(s *CenterState) {
		s.Loading = false
		s.Items = items
	})
	return nil
}

// Close hides the center and abandons a pending delete-all.
func (c *Center) Close() {
	c.update(func(s *CenterState) {
		s.Open = false
		s.ConfirmingDeleteAll = false
	})
}

// MarkOne marks a notification read.
func (c *Center) MarkOne(ctx context.Context, id int64) error {
	return c.mutate(ctx, "mark notification read", func(ctx context.Context) error {
		return c.dir.MarkRead(ctx, id)
	})
}

// MarkAll marks every notification read.
func (c *Center) MarkAll(ctx context.Context) error {
	return c.mutate(ctx, "mark all notifications read", c.dir.MarkAllRead)
}

// DeleteOne deletes a notification.
func (c *Center) DeleteOne(ctx context.Context, id int64) error {
	return c.mutate(ctx, "delete notification", func(ctx context.Context) error {
		return c.dir.Delete(ctx, id)
	})
}

// RequestDeleteAll asks the user to confirm deleting everything.
func (c *Center) RequestDeleteAll() {
	c.update(func(s *CenterState) { s.ConfirmingDeleteAll = true })
}

// CancelDeleteAll withdraws a pending delete-all request.
func (c *Center) CancelDeleteAll() {
	c.update(func(s *CenterState) { s.ConfirmingDeleteAll = false })
}

// ConfirmDeleteAll deletes every notification. It fails with
// ErrNoPendingDeleteAll unless RequestDeleteAll was called first.
func (c *Center) ConfirmDeleteAll(ctx context.Context) error {
	c.mu.Lock()
	pending := c.state.ConfirmingDeleteAll
	c.mu.Unlock()
	if !pending {
		return ErrNoPendingDeleteAll
	}

	c.update(func(s *CenterState) { s.ConfirmingDeleteAll = false })
	return c.mutate(ctx, "delete all notifications", c.dir.DeleteAll)
}

// mutate runs a remote mutation, then refreshes the list and the badges.
func (c *Center) mutate(ctx context.Context, what string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		c.alert.Alert(fmt.Sprintf("Could not %s: %v", what, err))
		return fmt.Errorf("%s: %w", what, err)
	}

	refreshErr := c.Refresh(ctx)

	if c.badges != nil {
		if err := c.badges.Sync(ctx); err != nil {
			c.sink.Report("center.badges", err)
		}
	}
	return refreshErr
}
