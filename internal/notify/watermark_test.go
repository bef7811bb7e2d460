package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/tasknotify/internal/model"
)

func notifications(ids ...int64) []model.Notification {
	out := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Notification{ID: id, Title: "n"})
	}
	return out
}

func ids(ns []model.Notification) []int64 {
	out := make([]int64, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestWatermarkComputeDelta(t *testing.T) {
	var w Watermark
	w.Initialize(12)

	delta := w.ComputeDelta(notifications(13, 12, 11, 10))
	assert.Equal(t, []int64{13}, ids(delta))
	assert.Equal(t, int64(13), w.Value())

	assert.Empty(t, w.ComputeDelta(notifications(13, 12)))
	assert.Equal(t, int64(13), w.Value())
}

func TestWatermarkEmptyCandidatesLeaveValue(t *testing.T) {
	var w Watermark
	w.Initialize(7)

	assert.Empty(t, w.ComputeDelta(nil))
	assert.Equal(t, int64(7), w.Value())
}

func TestWatermarkKeepsCandidateOrder(t *testing.T) {
	var w Watermark
	w.Initialize(3)

	delta := w.ComputeDelta(notifications(9, 2, 5, 4))
	assert.Equal(t, []int64{9, 5, 4}, ids(delta))
	assert.Equal(t, int64(9), w.Value())
}

func TestWatermarkNeverDecreases(t *testing.T) {
	var w Watermark
	w.Initialize(0)

	batches := [][]int64{{5, 3}, {2}, {8, 1}, {}, {7, 6}, {10}}
	prev := w.Value()
	for _, batch := range batches {
		w.ComputeDelta(notifications(batch...))
		assert.GreaterOrEqual(t, w.Value(), prev)
		prev = w.Value()
	}
	assert.Equal(t, int64(10), w.Value())
}

func TestWatermarkInitializeClampsNegative(t *testing.T) {
	var w Watermark
	w.Initialize(-4)
	assert.Equal(t, int64(0), w.Value())
}
