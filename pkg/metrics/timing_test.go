package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("count = %d, want 2", s.Count)
	}
	if s.MinMs != 2 || s.MaxMs != 4 || s.AvgMs != 3 || s.TotalMs != 6 {
		t.Errorf("stats = %+v", s)
	}

	m.Reset()
	if m.Count() != 0 || m.Stats().MaxMs != 0 {
		t.Error("Reset left data behind")
	}
}

func TestTimingMetricConcurrent(t *testing.T) {
	m := newTimingMetric("parallel")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.Record(d)
		}(time.Duration(i) * time.Microsecond)
	}
	wg.Wait()

	s := m.Stats()
	if s.Count != 50 {
		t.Errorf("count = %d, want 50", s.Count)
	}
	if s.MinMs != 0.001 || s.MaxMs != 0.05 {
		t.Errorf("min/max = %v/%v, want 0.001/0.05", s.MinMs, s.MaxMs)
	}
}

func TestDisabled(t *testing.T) {
	defer SetEnabled(Enabled())
	SetEnabled(false)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Millisecond)
	if m.Count() != 0 {
		t.Error("disabled metrics should not record")
	}
}

func TestSummary(t *testing.T) {
	defer SetEnabled(Enabled())
	SetEnabled(true)
	ResetAll()
	defer ResetAll()

	Timer(Paint)()
	out := Summary()
	if !strings.Contains(out, "paint") {
		t.Errorf("summary lacks the recorded metric:\n%s", out)
	}
	if strings.Contains(out, "tree_build") {
		t.Errorf("summary lists a metric without data:\n%s", out)
	}
	if Timer(nil) == nil {
		t.Error("Timer(nil) must still return a func")
	}
}
