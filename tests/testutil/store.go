package testutil

import (
	"context"
	"testing"

	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedUser creates a user in s and returns it.
func SeedUser(t *testing.T, s *store.SQLiteStore, username string) *model.User {
	t.Helper()

	u, err := s.EnsureUser(context.Background(), username, "")
	if err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return u
}
