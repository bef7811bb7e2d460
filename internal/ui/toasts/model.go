// Package toasts renders the stack of transient notification cards.
package toasts

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/theme"
)

// AddedMsg announces a toast created off-screen.
type AddedMsg struct {
	Toast notify.Toast
}

// PhaseMsg moves a toast to a new phase.
type PhaseMsg struct {
	Key   string
	Phase notify.ToastPhase
}

// RemovedMsg drops a toast from the stack.
type RemovedMsg struct {
	Key string
}

// Model is the toast stack. Newest toasts render first.
type Model struct {
	toasts []notify.Toast
	width  int
}

// New creates an empty stack.
func New(width int) Model {
	return Model{width: width}
}

// Update applies toast lifecycle messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AddedMsg:
		m.toasts = append(m.toasts, msg.Toast)
	case PhaseMsg:
		for i := range m.toasts {
			if m.toasts[i].Key == msg.Key {
				m.toasts[i].Phase = msg.Phase
			}
		}
	case RemovedMsg:
		kept := m.toasts[:0:0]
		for _, t := range m.toasts {
			if t.Key != msg.Key {
				kept = append(kept, t)
			}
		}
		m.toasts = kept
	}
	return m, nil
}

// Len returns the number of toasts in any phase.
func (m Model) Len() int {
	return len(m.toasts)
}

// View renders visible and leaving toasts. Entering toasts are still
// off-screen and render nothing.
func (m Model) View() string {
	var cards []string
	for i := len(m.toasts) - 1; i >= 0; i-- {
		t := m.toasts[i]
		if t.Phase == notify.ToastEntering {
			continue
		}
		cards = append(cards, m.renderCard(t))
	}
	if len(cards) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) renderCard(t notify.Toast) string {
	n := t.Notification
	style := theme.ToastStyle
	if t.Phase == notify.ToastLeaving {
		style = theme.LeavingToastStyle
	}

	var b strings.Builder
	b.WriteString(theme.TypeStyle(n.Type).Render(fmt.Sprintf("%s %s", t.Icon, t.Label)))
	b.WriteString("\n")
	b.WriteString(n.Title)
	if msg := strings.TrimSpace(n.Message); msg != "" {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render(msg))
	}
	if task := strings.TrimSpace(n.TaskTitle); task != "" {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("↳ " + task))
	}

	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return style.Width(w).Render(b.String())
}

// SetSize updates the column width.
func (m *Model) SetSize(width int) {
	m.width = width
}
