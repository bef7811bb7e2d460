package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/tasknotify/internal/model"
)

// EnsureUser returns the user called username, creating it on first use.
func (s *SQLiteStore) EnsureUser(ctx context.Context, username, fullName string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username must not be empty")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (username, full_name) VALUES (?, ?)",
		username, fullName)
	if err != nil {
		return nil, fmt.Errorf("creating user %s: %w", username, err)
	}
	return s.GetUserByUsername(ctx, username)
}

// GetUserByUsername looks a user up by login name. A user who never
// chose Telegram types gets the defaults.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var (
		u     model.User
		types sql.NullString
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT id, username, full_name, telegram_notify_types FROM users WHERE username = ?", username,
	).Scan(&u.ID, &u.Username, &u.FullName, &types)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", username, err)
	}

	if !types.Valid {
		u.TelegramNotifyTypes = model.DefaultTelegramNotifyTypes()
		return &u, nil
	}
	if err := json.Unmarshal([]byte(types.String), &u.TelegramNotifyTypes); err != nil {
		return nil, fmt.Errorf("decoding telegram types of %s: %w", username, err)
	}
	if u.TelegramNotifyTypes == nil {
		u.TelegramNotifyTypes = []model.NotificationType{}
	}
	return &u, nil
}

// SetTelegramNotifyTypes replaces the types forwarded to Telegram for
// the user. An empty list forwards nothing.
func (s *SQLiteStore) SetTelegramNotifyTypes(
	ctx context.Context,
	userID int64,
	types []model.NotificationType,
) error {
	if types == nil {
		types = []model.NotificationType{}
	}
	data, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("encoding telegram types: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET telegram_notify_types = ? WHERE id = ?", string(data), userID)
	if err != nil {
		return fmt.Errorf("updating telegram types of user %d: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating telegram types of user %d: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}
