package model

import "slices"

// NotificationType identifies what happened to a task.
type NotificationType string

const (
	TypeTaskUpdated     NotificationType = "task_updated"
	TypeCommentAdded    NotificationType = "comment_added"
	TypeAttachmentAdded NotificationType = "attachment_added"
	TypeStageChanged    NotificationType = "stage_changed"
	TypeTaskAssigned    NotificationType = "task_assigned"
)

// NotificationTypes lists the known types in display order.
var NotificationTypes = []NotificationType{
	TypeTaskAssigned,
	TypeTaskUpdated,
	TypeStageChanged,
	TypeCommentAdded,
	TypeAttachmentAdded,
}

// Icon returns the glyph shown next to a notification of this type.
// Unknown types get the generic bell.
func (t NotificationType) Icon() string {
	switch t {
	case TypeTaskUpdated:
		return "✎"
	case TypeCommentAdded:
		return "💬"
	case TypeAttachmentAdded:
		return "📎"
	case TypeStageChanged:
		return "⇄"
	case TypeTaskAssigned:
		return "👤"
	default:
		return "🔔"
	}
}

// Label returns the built-in human-readable caption for the type.
func (t NotificationType) Label() string {
	switch t {
	case TypeTaskUpdated:
		return "Task updated"
	case TypeCommentAdded:
		return "New comment"
	case TypeAttachmentAdded:
		return "New file"
	case TypeStageChanged:
		return "Stage changed"
	case TypeTaskAssigned:
		return "Task assigned"
	default:
		return "Notification"
	}
}

// Known reports whether t is one of the enumerated types.
func (t NotificationType) Known() bool {
	for _, k := range NotificationTypes {
		if k == t {
			return true
		}
	}
	return false
}

// TypeLabel pairs a notification type with the label the server uses for it.
type TypeLabel struct {
	Type  NotificationType `json:"type"`
	Label string           `json:"label"`
}

// Notification is a server-owned alert about activity on a task.
// IDs are assigned in creation order, so a larger ID is always newer.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id,omitempty"`
	Type      NotificationType `json:"notification_type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt Timestamp        `json:"created_at"`

	// Navigation context. Usually all present or all absent.
	ProjectID *int64 `json:"project_id,omitempty"`
	TaskID    *int64 `json:"task_id,omitempty"`
	TaskTitle string `json:"task_title,omitempty"`
}

// HasTaskLocation reports whether the notification carries enough context
// to navigate to its task.
func (n Notification) HasTaskLocation() bool {
	return n.ProjectID != nil && n.TaskID != nil
}

// UnreadCount is the payload of the unread-count endpoint.
type UnreadCount struct {
	Count int `json:"count"`
}

// User is the authenticated account behind a session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`

	// TelegramNotifyTypes are the types the server also forwards to
	// Telegram.
	TelegramNotifyTypes []NotificationType `json:"telegram_notify_types"`
}

// DefaultTelegramNotifyTypes is what a user forwards before choosing.
func DefaultTelegramNotifyTypes() []NotificationType {
	return append([]NotificationType(nil), NotificationTypes...)
}

// ForwardsToTelegram reports whether notifications of type t are
// forwarded to Telegram.
func (u User) ForwardsToTelegram(t NotificationType) bool {
	return slices.Contains(u.TelegramNotifyTypes, t)
}

// UserUpdate changes the authenticated user's own profile. A nil
// TelegramNotifyTypes leaves the setting alone; an empty one clears it.
type UserUpdate struct {
	TelegramNotifyTypes []NotificationType `json:"telegram_notify_types"`
}

// DisplayName returns the full name when set, otherwise the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
