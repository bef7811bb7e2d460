package notify

import (
	gosync "sync"

	"github.com/nhle/tasknotify/internal/model"
)

// Watermark tracks the highest notification id already surfaced in this
// session. It only moves forward between initializations.
type Watermark struct {
	mu    gosync.Mutex
	value int64
}

// Initialize seeds the watermark at session start with the id of the most
// recent unread notification, or 0 when there is none.
func (w *Watermark) Initialize(latestUnreadID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if latestUnreadID < 0 {
		latestUnreadID = 0
	}
	w.value = latestUnreadID
}

// Value returns the current watermark.
func (w *Watermark) Value() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// ComputeDelta returns the candidates whose id exceeds the watermark, in
// their original order. When anything is returned the watermark advances
// to the largest id among all candidates.
func (w *Watermark) ComputeDelta(candidates []model.Notification) []model.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		delta []model.Notification
		maxID = w.value
	)
	for _, n := range candidates {
		if n.ID > w.value {
			delta = append(delta, n)
		}
		if n.ID > maxID {
			maxID = n.ID
		}
	}

	if len(delta) > 0 {
		w.value = maxID
	}
	return delta
}
