package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/tasknotify/internal/model"
)

const notificationColumns = `
	n.id, n.user_id, n.notification_type, n.title, n.message, n.is_read, n.created_at,
	n.task_id, t.project_id, t.title`

const notificationFrom = `
	FROM notifications n
	LEFT JOIN tasks t ON t.id = n.task_id`

// CreateNotification inserts n for n.UserID and returns it with its
// assigned id. A zero CreatedAt is set to now.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) (*model.Notification, error) {
	if strings.TrimSpace(n.Title) == "" {
		return nil, fmt.Errorf("notification title must not be empty")
	}
	if n.Type == "" {
		return nil, fmt.Errorf("notification type must not be empty")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = model.NewTimestamp(time.Now().UTC())
	}

	var taskID sql.NullInt64
	if n.TaskID != nil {
		taskID = sql.NullInt64{Int64: *n.TaskID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, task_id, notification_type, title, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, taskID, string(n.Type), n.Title, n.Message, boolToInt(n.IsRead), n.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading notification id: %w", err)
	}

	return s.getNotification(ctx, n.UserID, id)
}

func (s *SQLiteStore) getNotification(ctx context.Context, userID, id int64) (*model.Notification, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT"+notificationColumns+notificationFrom+" WHERE n.user_id = ? AND n.id = ?",
		userID, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification %d: %w", id, err)
	}
	return &n, nil
}

// ListNotifications returns the user's notifications, most recent first.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	userID int64,
	filter NotificationFilter,
) ([]model.Notification, error) {
	query := "SELECT" + notificationColumns + notificationFrom + " WHERE n.user_id = ?"
	args := []interface{}{userID}
	if filter.UnreadOnly {
		query += " AND n.is_read = 0"
	}
	query += " ORDER BY n.created_at DESC, n.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadCount counts the user's unread notifications.
func (s *SQLiteStore) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks one of the user's notifications read.
// Marking an already-read notification succeeds.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of the user
// read and returns how many changed.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// DeleteNotification removes one of the user's notifications.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, userID, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAllNotifications removes every notification of the user and
// returns how many were deleted.
func (s *SQLiteStore) DeleteAllNotifications(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("deleting all notifications: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func scanNotification(row interface {
	Scan(dest ...interface{}) error
}) (model.Notification, error) {
	var (
		n         model.Notification
		typ       string
		isRead    int
		createdAt time.Time
		taskID    sql.NullInt64
		projectID sql.NullInt64
		taskTitle sql.NullString
	)
	err := row.Scan(
		&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &isRead, &createdAt,
		&taskID, &projectID, &taskTitle,
	)
	if err != nil {
		return model.Notification{}, err
	}

	n.Type = model.NotificationType(typ)
	n.IsRead = isRead != 0
	n.CreatedAt = model.NewTimestamp(createdAt.UTC())
	if taskID.Valid {
		id := taskID.Int64
		n.TaskID = &id
	}
	if projectID.Valid {
		id := projectID.Int64
		n.ProjectID = &id
	}
	n.TaskTitle = taskTitle.String
	return n, nil
}
