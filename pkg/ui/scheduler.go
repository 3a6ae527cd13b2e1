package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg drives one animation step.
type frameMsg time.Time

// frameScheduler adapts the chart's frame requests to bubbletea ticks. The
// controller requests frames while Update runs; Update then collects them
// with take and returns the tick command.
type frameScheduler struct {
	interval time.Duration
	now      func() time.Time
	pending  bool
}

func newFrameScheduler(interval time.Duration, now func() time.Time) *frameScheduler {
	if now == nil {
		now = time.Now
	}
	return &frameScheduler{interval: interval, now: now}
}

func (s *frameScheduler) Now() time.Time { return s.now() }

func (s *frameScheduler) RequestFrame() { s.pending = true }

// take returns a tick command if a frame was requested since the last call.
func (s *frameScheduler) take() tea.Cmd {
	if !s.pending {
		return nil
	}
	s.pending = false
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
