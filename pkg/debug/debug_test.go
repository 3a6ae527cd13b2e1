package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	was := enabled
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	t.Cleanup(func() { enabled = was })
	return &buf
}

func TestLog(t *testing.T) {
	buf := capture(t)
	Log("built %d nodes", 3)
	LogTiming("paint", 2*time.Millisecond)
	LogIf(false, "hidden")
	LogIf(true, "shown")
	Section("exports")

	out := buf.String()
	for _, want := range []string{prefix, "built 3 nodes", "paint took 2ms", "shown", "=== exports ==="} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("LogIf(false) wrote a line")
	}
}

func TestLogEnterExit(t *testing.T) {
	buf := capture(t)
	LogEnterExit("reload")()
	out := buf.String()
	if !strings.Contains(out, "-> reload") || !strings.Contains(out, "<- reload") {
		t.Errorf("output = %q", out)
	}
}

func TestDisabledIsSilent(t *testing.T) {
	buf := capture(t)
	SetEnabled(false)
	Log("nothing")
	LogEnterExit("nothing")()
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}
