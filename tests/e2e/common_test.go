package main_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/testutil"
)

var burstBinaryPath string
var burstBinaryDir string

var (
	scriptTUISupported      = true
	scriptTUIDisabledReason string
)

func TestMain(m *testing.M) {
	// Keep the developer's config and recent list out of the runs.
	stateDir, err := os.MkdirTemp("", "burst-e2e-home-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create state dir: %v\n", err)
		os.Exit(1)
	}
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(stateDir, "config"))
	os.Setenv("XDG_STATE_HOME", filepath.Join(stateDir, "state"))

	// Build the binary once for all tests
	if err := buildBurstOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build burst binary: %v\n", err)
		os.Exit(1)
	}

	scriptTUISupported, scriptTUIDisabledReason = detectScriptTUICapability(burstBinaryPath)

	code := m.Run()
	if burstBinaryDir != "" {
		_ = os.RemoveAll(burstBinaryDir)
	}
	_ = os.RemoveAll(stateDir)
	os.Exit(code)
}

func detectScriptTUICapability(burstPath string) (bool, string) {
	if _, err := exec.LookPath("script"); err != nil {
		return false, "script command not available"
	}
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return false, "script TUI harness unsupported on this OS"
	}
	if burstPath == "" {
		return false, "burst binary path is empty"
	}

	tempDir, err := os.MkdirTemp("", "burst-e2e-tui-cap-*")
	if err != nil {
		return false, fmt.Sprintf("failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := os.WriteFile(filepath.Join(tempDir, "meta.json"), []byte(testutil.ToJSON(testutil.Scenario())), 0o644); err != nil {
		return false, fmt.Sprintf("failed to write meta.json: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := scriptTUICommand(ctx, burstPath)
	if cmd == nil {
		return false, "script command unavailable"
	}
	cmd.Dir = tempDir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"BURST_TUI_AUTOCLOSE_MS=250",
	)

	outFile := filepath.Join(tempDir, "script.out")
	f, err := os.Create(outFile)
	if err != nil {
		return false, fmt.Sprintf("failed to create output file: %v", err)
	}
	cmd.Stdout = f
	cmd.Stderr = f

	runErr := cmd.Run()
	_ = f.Close()

	if ctx.Err() == context.DeadlineExceeded {
		return false, "burst did not auto-exit under script (PTY/CI mismatch)"
	}
	if runErr != nil {
		return false, fmt.Sprintf("script TUI run failed: %v", runErr)
	}

	return true, ""
}

func buildBurstOnce() error {
	tempDir, err := os.MkdirTemp("", "burst-e2e-build-*")
	if err != nil {
		return err
	}
	burstBinaryDir = tempDir

	binName := "burst"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(tempDir, binName)

	cmd := exec.Command("go", "build", "-o", binPath, "../../cmd/burst")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("go build failed: %v\n%s", err, out)
	}

	burstBinaryPath = binPath
	return nil
}

// burstBinary returns the path to the pre-built binary.
func burstBinary(t *testing.T) string {
	t.Helper()
	if burstBinaryPath == "" {
		t.Fatal("burst binary not built")
	}
	return burstBinaryPath
}

// writeMetafile stores m as dir/rel and returns its path.
func writeMetafile(t *testing.T, dir, rel string, m *metafile.Metafile) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(testutil.ToJSON(m)), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// skipIfNoScript skips the test if the script command is unavailable.
func skipIfNoScript(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("script"); err != nil {
		t.Skip("skipping: script command not available")
	}
	if !scriptTUISupported {
		if scriptTUIDisabledReason != "" {
			t.Skipf("skipping: %s", scriptTUIDisabledReason)
		}
		t.Skip("skipping: script-based TUI harness unavailable")
	}
}

// scriptTUICommand creates an exec.Cmd that runs the burst binary under
// `script` to provide a pseudo-TTY for TUI tests.
func scriptTUICommand(ctx context.Context, burstPath string, args ...string) *exec.Cmd {
	if _, err := exec.LookPath("script"); err != nil {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		scriptArgs := []string{"-q", "/dev/null", burstPath}
		scriptArgs = append(scriptArgs, args...)
		return exec.CommandContext(ctx, "script", scriptArgs...)

	case "linux":
		cmdStr := burstPath
		for _, arg := range args {
			if strings.ContainsAny(arg, " \t") {
				cmdStr += " \"" + arg + "\""
			} else {
				cmdStr += " " + arg
			}
		}
		return exec.CommandContext(ctx, "script", "-q", "-e", "-f", "-c", cmdStr, "/dev/null")

	default:
		return nil
	}
}

// ensureCmdStdinCloses wires a controllable stdin for command execution.
func ensureCmdStdinCloses(t *testing.T, ctx context.Context, cmd *exec.Cmd, closeAfter time.Duration) {
	t.Helper()
	if cmd == nil || cmd.Stdin != nil {
		return
	}
	stdinR, stdinW := io.Pipe()
	cmd.Stdin = stdinR
	t.Cleanup(func() {
		_ = stdinW.Close()
		_ = stdinR.Close()
	})

	go func() {
		select {
		case <-ctx.Done():
			_ = stdinW.Close()
		case <-time.After(closeAfter):
			_ = stdinW.Close()
		}
	}()
}

// runCmdToFile runs a command and captures stdout+stderr to a temp file.
func runCmdToFile(t *testing.T, cmd *exec.Cmd) ([]byte, error) {
	t.Helper()
	if cmd == nil {
		return nil, fmt.Errorf("nil cmd")
	}

	outPath := filepath.Join(t.TempDir(), "cmd.out")
	f, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	cmd.Stdout = f
	cmd.Stderr = f

	runErr := cmd.Run()
	_ = f.Close()

	out, readErr := os.ReadFile(outPath)
	if readErr != nil {
		return nil, fmt.Errorf("read output file: %w (run err: %v)", readErr, runErr)
	}
	return out, runErr
}
