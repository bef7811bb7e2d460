package store

import (
	"context"
	"errors"

	"github.com/nhle/tasknotify/internal/model"
)

// ErrNotFound is returned when a row addressed by id does not exist for
// the requesting user.
var ErrNotFound = errors.New("not found")

// NotificationFilter controls which notifications a listing returns.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}

// TaskRef is the slice of a task that notifications point at.
type TaskRef struct {
	ID        int64
	ProjectID int64
	Title     string
}

// Store defines the persistence interface of the development backend.
type Store interface {
	// === Users ===

	EnsureUser(ctx context.Context, username, fullName string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	SetTelegramNotifyTypes(ctx context.Context, userID int64, types []model.NotificationType) error

	// === Tasks ===

	UpsertTask(ctx context.Context, task TaskRef) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID int64, filter NotificationFilter) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
	DeleteNotification(ctx context.Context, userID, id int64) error
	DeleteAllNotifications(ctx context.Context, userID int64) (int64, error)
}
