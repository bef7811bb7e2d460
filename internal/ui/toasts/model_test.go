package toasts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
)

func toast(key, title string) notify.Toast {
	return notify.Toast{
		Key:          key,
		Notification: model.Notification{ID: 1, Type: model.TypeCommentAdded, Title: title},
		Icon:         model.TypeCommentAdded.Icon(),
		Label:        "New comment",
	}
}

func TestEnteringToastIsNotRendered(t *testing.T) {
	m := New(40)
	m, _ = m.Update(AddedMsg{Toast: toast("a", "Review the draft")})

	assert.Equal(t, 1, m.Len())
	assert.Empty(t, m.View())

	m, _ = m.Update(PhaseMsg{Key: "a", Phase: notify.ToastVisible})
	assert.Contains(t, m.View(), "Review the draft")
	assert.Contains(t, m.View(), "New comment")
}

func TestRemovedToastLeavesOthers(t *testing.T) {
	m := New(40)
	m, _ = m.Update(AddedMsg{Toast: toast("a", "First")})
	m, _ = m.Update(AddedMsg{Toast: toast("b", "Second")})
	m, _ = m.Update(PhaseMsg{Key: "a", Phase: notify.ToastVisible})
	m, _ = m.Update(PhaseMsg{Key: "b", Phase: notify.ToastVisible})

	m, _ = m.Update(RemovedMsg{Key: "a"})

	assert.Equal(t, 1, m.Len())
	assert.NotContains(t, m.View(), "First")
	assert.Contains(t, m.View(), "Second")
}

func TestLeavingToastStillRenders(t *testing.T) {
	m := New(40)
	m, _ = m.Update(AddedMsg{Toast: toast("a", "Going away")})
	m, _ = m.Update(PhaseMsg{Key: "a", Phase: notify.ToastLeaving})

	assert.Contains(t, m.View(), "Going away")
}

func TestToastShowsMessageAndTaskContext(t *testing.T) {
	tt := toast("a", "Task updated")
	tt.Notification.Message = "Status changed"
	tt.Notification.TaskTitle = "Fix login bug"

	m := New(40)
	m, _ = m.Update(AddedMsg{Toast: tt})
	m, _ = m.Update(PhaseMsg{Key: "a", Phase: notify.ToastVisible})

	view := m.View()
	assert.Contains(t, view, "Task updated")
	assert.Contains(t, view, "Status changed")
	assert.Contains(t, view, "↳ Fix login bug")
}

func TestToastWithoutTaskHasNoContextLine(t *testing.T) {
	m := New(40)
	m, _ = m.Update(AddedMsg{Toast: toast("a", "Review the draft")})
	m, _ = m.Update(PhaseMsg{Key: "a", Phase: notify.ToastVisible})

	assert.NotContains(t, m.View(), "↳")
}
