package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nhle/tasknotify/internal/model"
)

const (
	notificationsPath = "/api/notifications"
	mePath            = "/api/auth/me"
)

// CreateNotificationRequest is the payload for emitting a notification.
// Only the development server accepts it.
type CreateNotificationRequest struct {
	UserID    int64                  `json:"user_id,omitempty"`
	TaskID    *int64                 `json:"task_id,omitempty"`
	ProjectID *int64                 `json:"project_id,omitempty"`
	TaskTitle string                 `json:"task_title,omitempty"`
	Type      model.NotificationType `json:"notification_type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message,omitempty"`
}

// ListNotifications returns up to limit notifications, most recent first.
func (c *Client) ListNotifications(
	ctx context.Context,
	unreadOnly bool,
	limit int,
) ([]model.Notification, error) {
	params := url.Values{}
	params.Set("unread_only", strconv.FormatBool(unreadOnly))
	params.Set("limit", strconv.Itoa(limit))

	var notifications []model.Notification
	if err := c.get(ctx, notificationsPath+"/?"+params.Encode(), &notifications); err != nil {
		return nil, fmt.Errorf("client.ListNotifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var count model.UnreadCount
	if err := c.get(ctx, notificationsPath+"/unread-count", &count); err != nil {
		return 0, fmt.Errorf("client.UnreadCount: %w", err)
	}
	return count.Count, nil
}

// MarkRead marks one notification read. An unknown id counts as success.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d/read", notificationsPath, id)
	if err := c.post(ctx, path, nil, nil); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil
		}
		return fmt.Errorf("client.MarkRead: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification of the current user read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.post(ctx, notificationsPath+"/read-all", nil, nil); err != nil {
		return fmt.Errorf("client.MarkAllRead: %w", err)
	}
	return nil
}

// Delete removes one notification. An unknown id counts as success.
func (c *Client) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d", notificationsPath, id)
	if err := c.delete(ctx, path); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil
		}
		return fmt.Errorf("client.Delete: %w", err)
	}
	return nil
}

// DeleteAll removes every notification of the current user.
func (c *Client) DeleteAll(ctx context.Context) error {
	if err := c.delete(ctx, notificationsPath+"/delete-all"); err != nil {
		return fmt.Errorf("client.DeleteAll: %w", err)
	}
	return nil
}

// NotificationTypes returns the server's catalogue of types and labels.
func (c *Client) NotificationTypes(ctx context.Context) ([]model.TypeLabel, error) {
	var types []model.TypeLabel
	if err := c.get(ctx, notificationsPath+"/types", &types); err != nil {
		return nil, fmt.Errorf("client.NotificationTypes: %w", err)
	}
	return types, nil
}

// CreateNotification emits a notification (development server only).
func (c *Client) CreateNotification(
	ctx context.Context,
	req CreateNotificationRequest,
) (*model.Notification, error) {
	var created model.Notification
	if err := c.post(ctx, notificationsPath+"/", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateNotification: %w", err)
	}
	return &created, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.get(ctx, mePath, &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// UpdateMe changes the authenticated user's profile and returns the
// stored result.
func (c *Client) UpdateMe(ctx context.Context, upd model.UserUpdate) (*model.User, error) {
	var u model.User
	if err := c.put(ctx, mePath, upd, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateMe: %w", err)
	}
	return &u, nil
}
