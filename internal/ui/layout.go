package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/theme"
)

// minToastColumn is the narrowest terminal that gets a toast column.
const minToastColumn = 72

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
	ToastWidth      int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1. Terminals narrower than
// minToastColumn stack toasts under the content instead of beside it.
func NewLayout(width, height int) Layout {
	l := Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
	if width >= minToastColumn {
		l.ToastWidth = width / 3
		if l.ToastWidth > 44 {
			l.ToastWidth = 44
		}
	}
	return l
}

// ContentWidth returns the width left for the main panel.
func (l Layout) ContentWidth() int {
	return l.Width - l.ToastWidth
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderBadge renders an unread-count pill, or "" when nothing is unread.
func RenderBadge(state notify.BadgeState) string {
	if !state.Visible {
		return ""
	}
	return theme.BadgeStyle.Render(state.Label)
}

// RenderHeader renders the top header bar: title, badge, then a
// right-aligned status.
func (l Layout) RenderHeader(title string, badge notify.BadgeState, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	badgeRendered := RenderBadge(badge)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(status)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(badgeRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		badgeRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar. A non-empty alert
// replaces the keyboard hints.
func (l Layout) RenderStatusBar(hints, alert string) string {
	var rendered string
	if alert != "" {
		rendered = theme.StatusBarStyle.Inherit(theme.AlertStyle).Render(alert)
	} else {
		rendered = theme.StatusBarStyle.Render(hints)
	}

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderBody places the toast column beside (or under) the content.
func (l Layout) RenderBody(content, toasts string) string {
	if toasts == "" {
		return content
	}
	if l.ToastWidth == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, toasts, content)
	}
	column := lipgloss.NewStyle().Width(l.ToastWidth).Render(toasts)
	return lipgloss.JoinHorizontal(lipgloss.Top, content, column)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
