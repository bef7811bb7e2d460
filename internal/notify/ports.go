package notify

import (
	"context"
	"time"

	"github.com/nhle/tasknotify/internal/model"
)

// Directory is the remote collection of the user's notifications.
// MarkRead and Delete must treat unknown ids as success.
type Directory interface {
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// TypeSource is implemented by directories that can describe their
// notification types.
type TypeSource interface {
	NotificationTypes(ctx context.Context) ([]model.TypeLabel, error)
}

// SessionGate reports whether an authenticated session exists.
type SessionGate interface {
	Active() bool
}

// SessionLifecycle is a SessionGate that announces its own end.
type SessionLifecycle interface {
	SessionGate
	OnEnd(fn func(reason string))
}

// ErrorSink collects failures of background work that are never shown
// to the user.
type ErrorSink interface {
	Report(op string, err error)
}

// ToastView renders toasts. Calls may arrive from any goroutine.
type ToastView interface {
	AddToast(t Toast)
	SetToastPhase(key string, phase ToastPhase)
	RemoveToast(key string)
}

// Navigator moves the client to a task-scoped location.
type Navigator interface {
	Navigate(projectID, taskID int64) error
}

// Badge is one unread-count indicator.
type Badge interface {
	Render(state BadgeState)
}

// CenterView renders the notification center.
type CenterView interface {
	RenderCenter(state CenterState)
}

// Alerter shows a transient, auto-dismissing message to the user.
type Alerter interface {
	Alert(message string)
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The system clock is used outside tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type nopSink struct{}

func (nopSink) Report(string, error) {}

type nopToastView struct{}

func (nopToastView) AddToast(Toast)                   {}
func (nopToastView) SetToastPhase(string, ToastPhase) {}
func (nopToastView) RemoveToast(string)               {}

type nopNavigator struct{}

func (nopNavigator) Navigate(int64, int64) error { return nil }

type nopCenterView struct{}

func (nopCenterView) RenderCenter(CenterState) {}

type nopAlerter struct{}

func (nopAlerter) Alert(string) {}
