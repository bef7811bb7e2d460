package app

import (
	gosync "sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasknotify/internal/notify"
	centerview "github.com/nhle/tasknotify/internal/ui/center"
	"github.com/nhle/tasknotify/internal/ui/toasts"
)

// bridgeBuffer is how many port calls may queue before senders block.
const bridgeBuffer = 128

type badgeMsg struct {
	name  string
	state notify.BadgeState
}

type alertMsg struct {
	text string
}

type cycleMsg struct {
	result notify.CycleResult
}

type sessionEndedMsg struct {
	reason string
}

type audioChangedMsg struct {
	enabled bool
}

// Bridge turns calls on the notify rendering ports, which arrive from
// timer and network goroutines, into Bubble Tea messages. The root model
// drains it one message at a time with Wait.
type Bridge struct {
	ch   chan tea.Msg
	done chan struct{}
	once gosync.Once
}

// NewBridge creates an open bridge.
func NewBridge() *Bridge {
	return &Bridge{
		ch:   make(chan tea.Msg, bridgeBuffer),
		done: make(chan struct{}),
	}
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// Wait returns a command that blocks until the next port call. It
// yields nil once the bridge is closed.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close releases blocked senders and waiters.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// AddToast implements notify.ToastView.
func (b *Bridge) AddToast(t notify.Toast) {
	b.send(toasts.AddedMsg{Toast: t})
}

// SetToastPhase implements notify.ToastView.
func (b *Bridge) SetToastPhase(key string, phase notify.ToastPhase) {
	b.send(toasts.PhaseMsg{Key: key, Phase: phase})
}

// RemoveToast implements notify.ToastView.
func (b *Bridge) RemoveToast(key string) {
	b.send(toasts.RemovedMsg{Key: key})
}

// RenderCenter implements notify.CenterView.
func (b *Bridge) RenderCenter(state notify.CenterState) {
	b.send(centerview.StateMsg{State: state})
}

// Alert implements notify.Alerter.
func (b *Bridge) Alert(message string) {
	b.send(alertMsg{text: message})
}

// CycleDone forwards a completed poll cycle.
func (b *Bridge) CycleDone(r notify.CycleResult) {
	b.send(cycleMsg{result: r})
}

// SessionEnded forwards the end of the session.
func (b *Bridge) SessionEnded(reason string) {
	b.send(sessionEndedMsg{reason: reason})
}

// AudioChanged forwards a change of the audio.enabled setting.
func (b *Bridge) AudioChanged(enabled bool) {
	b.send(audioChangedMsg{enabled: enabled})
}

// Badge returns the badge port called name.
func (b *Bridge) Badge(name string) notify.Badge {
	return badgePort{bridge: b, name: name}
}

type badgePort struct {
	bridge *Bridge
	name   string
}

func (p badgePort) Render(state notify.BadgeState) {
	p.bridge.send(badgeMsg{name: p.name, state: state})
}
