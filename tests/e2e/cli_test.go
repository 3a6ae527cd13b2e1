package main_test

import (
	"database/sql"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/burst/pkg/testutil"
	"github.com/vanderheijden86/burst/pkg/version"
)

func TestVersionFlag(t *testing.T) {
	out, err := exec.Command(burstBinary(t), "--version").CombinedOutput()
	if err != nil {
		t.Fatalf("--version failed: %v\n%s", err, out)
	}
	if got := strings.TrimSpace(string(out)); got != "burst "+version.Version {
		t.Errorf("--version = %q", got)
	}
}

func TestSnapshotAndSQLiteFromBuildDir(t *testing.T) {
	repoDir := t.TempDir()
	writeMetafile(t, repoDir, filepath.Join("dist", "meta.json"), testutil.Scenario())
	outDir := t.TempDir()
	dbPath := filepath.Join(outDir, "tree.sqlite3")

	cmd := exec.Command(burstBinary(t),
		"--snapshot", filepath.Join(outDir, "chart.svg")+","+filepath.Join(outDir, "chart.png"),
		"--size", "240",
		"--sqlite", dbPath,
	)
	cmd.Dir = repoDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}

	svg, err := os.ReadFile(filepath.Join(outDir, "chart.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), `width="240"`) {
		t.Errorf("svg ignores --size:\n%.300s", svg)
	}
	if _, err := os.Stat(filepath.Join(outDir, "chart.png")); err != nil {
		t.Errorf("png missing: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var bytes int64
	if err := db.QueryRow(`SELECT bytes FROM nodes WHERE path = 'b/c.js'`).Scan(&bytes); err != nil {
		t.Fatalf("query nodes: %v", err)
	}
	if bytes != 300 {
		t.Errorf("b/c.js bytes = %d, want 300", bytes)
	}
}

func TestSnapshotFocus(t *testing.T) {
	dir := t.TempDir()
	meta := writeMetafile(t, dir, "meta.json", testutil.Scenario())
	out := filepath.Join(dir, "b.svg")

	if b, err := exec.Command(burstBinary(t), "--snapshot", out, "--focus", "b", meta).CombinedOutput(); err != nil {
		t.Fatalf("focused snapshot failed: %v\n%s", err, b)
	}
	svg, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), "300 bytes") {
		t.Errorf("focused chart should total 300 bytes:\n%.400s", svg)
	}

	b, err := exec.Command(burstBinary(t), "--snapshot", out, "--focus", "nope", meta).CombinedOutput()
	if err == nil {
		t.Fatalf("unknown focus should fail:\n%s", b)
	}
}

func TestNoMetafile(t *testing.T) {
	cmd := exec.Command(burstBinary(t), "--snapshot", "x.svg")
	cmd.Dir = t.TempDir()
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected failure without a metafile:\n%s", out)
	}
	if !strings.Contains(string(out), "no metafile found") {
		t.Errorf("output = %q", out)
	}
}

func TestNonTerminalViewerRefuses(t *testing.T) {
	dir := t.TempDir()
	meta := writeMetafile(t, dir, "meta.json", testutil.Scenario())
	out, err := exec.Command(burstBinary(t), meta).CombinedOutput()
	if err == nil {
		t.Fatalf("viewer without a terminal should fail:\n%s", out)
	}
	if !strings.Contains(string(out), "needs a terminal") {
		t.Errorf("output = %q", out)
	}
}
