package watcher

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_ChunkedWriteReportsOnce(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	for range 5 {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d after Cancel, want 0", n)
	}
	if NewDebouncer(0).Duration() != DefaultDebounceDuration {
		t.Error("zero duration should fall back to the default")
	}
}
