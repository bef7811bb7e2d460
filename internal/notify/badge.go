package notify

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	gosync "sync"
)

// DefaultBadgeCap is the largest count a badge shows verbatim.
const DefaultBadgeCap = 99

// BadgeState is what every badge displays.
type BadgeState struct {
	// Count is the exact unread count.
	Count int
	// Label is the display text, capped (e.g. "99+").
	Label string
	// Visible is false when there is nothing unread.
	Visible bool
}

// NewBadgeState derives the display state for count.
func NewBadgeState(count, limit int) BadgeState {
	if count <= 0 {
		return BadgeState{Count: 0}
	}
	if limit <= 0 {
		limit = DefaultBadgeCap
	}
	label := strconv.Itoa(count)
	if count > limit {
		label = strconv.Itoa(limit) + "+"
	}
	return BadgeState{Count: count, Label: label, Visible: true}
}

// BadgeSet is the registry of badges currently present in the UI.
type BadgeSet struct {
	mu     gosync.Mutex
	badges map[string]Badge
	last   *BadgeState
}

// NewBadgeSet creates an empty registry.
func NewBadgeSet() *BadgeSet {
	return &BadgeSet{badges: make(map[string]Badge)}
}

// Register adds (or replaces) the badge called name. If a count is
// already known it is rendered right away.
func (s *BadgeSet) Register(name string, b Badge) {
	s.mu.Lock()
	s.badges[name] = b
	last := s.last
	s.mu.Unlock()

	if last != nil {
		b.Render(*last)
	}
}

// Unregister removes the badge called name.
func (s *BadgeSet) Unregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.badges, name)
}

// Names returns the registered badge names, sorted.
func (s *BadgeSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.badges))
	for name := range s.badges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// renderAll writes state into every registered badge.
func (s *BadgeSet) renderAll(state BadgeState) {
	s.mu.Lock()
	s.last = &state
	badges := make([]Badge, 0, len(s.badges))
	for _, b := range s.badges {
		badges = append(badges, b)
	}
	s.mu.Unlock()

	for _, b := range badges {
		b.Render(state)
	}
}

// BadgeSynchronizer refreshes every badge from the unread-count endpoint.
type BadgeSynchronizer struct {
	dir   Directory
	set   *BadgeSet
	limit int
}

// NewBadgeSynchronizer creates a synchronizer writing into set.
func NewBadgeSynchronizer(dir Directory, set *BadgeSet, limit int) *BadgeSynchronizer {
	return &BadgeSynchronizer{dir: dir, set: set, limit: limit}
}

// Set returns the badge registry.
func (s *BadgeSynchronizer) Set() *BadgeSet {
	return s.set
}

// Sync fetches the unread count and renders it into every badge. On
// failure the badges keep their previous state.
func (s *BadgeSynchronizer) Sync(ctx context.Context) error {
	count, err := s.dir.UnreadCount(ctx)
	if err != nil {
		return fmt.Errorf("syncing badges: %w", err)
	}
	s.set.renderAll(NewBadgeState(count, s.limit))
	return nil
}
