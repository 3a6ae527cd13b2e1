package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/burst/internal/datasource"
	"github.com/vanderheijden86/burst/pkg/config"
	"github.com/vanderheijden86/burst/pkg/testutil"
)

func TestParseSnapshotPaths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a.svg", []string{"a.svg"}},
		{"a.svg, b.png", []string{"a.svg", "b.png"}},
		{" ,a.svg,,", []string{"a.svg"}},
	}
	for _, tt := range tests {
		if got := parseSnapshotPaths(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseSnapshotPaths(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExportJobsEmpty(t *testing.T) {
	if !(exportJobs{Focus: "b"}).empty() {
		t.Error("focus alone is not an export")
	}
	if (exportJobs{SQLite: "out.db"}).empty() {
		t.Error("sqlite export should count")
	}
}

func TestRunExports(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Snapshot.Size = 200
	cfg.Snapshot.Dir = dir

	jobs := exportJobs{
		Snapshots: []string{"chart.svg", "chart.png"},
		SQLite:    filepath.Join(dir, "tree.db"),
		Focus:     "b",
	}
	if err := runExports(context.Background(), testutil.Scenario(), cfg, jobs); err != nil {
		t.Fatalf("runExports: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "chart.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg output lacks an svg element")
	}
	png, err := os.ReadFile(filepath.Join(dir, "chart.png"))
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("png output lacks the PNG signature")
	}

	m, err := datasource.LoadFromSource(datasource.DataSource{
		Type: datasource.SourceTypeSQLite,
		Path: jobs.SQLite,
	})
	if err != nil {
		t.Fatalf("reopen sqlite export: %v", err)
	}
	if got := m.Outputs["out.js"].Inputs["b/c.js"].BytesInOutput; got != 300 {
		t.Errorf("b/c.js contribution = %d, want 300", got)
	}
}

func TestRunExports_UnknownFocus(t *testing.T) {
	dir := t.TempDir()
	jobs := exportJobs{
		Snapshots: []string{filepath.Join(dir, "chart.svg")},
		Focus:     "missing",
	}
	err := runExports(context.Background(), testutil.Scenario(), config.DefaultConfig(), jobs)
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("err = %v, want an unknown focus error", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "chart.svg")); !os.IsNotExist(err) {
		t.Error("nothing should be written when the focus is unknown")
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got %v", err)
	}
	if !reflect.DeepEqual(cfg, config.DefaultConfig()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("snapshot:\n  size: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("an out-of-range size should be rejected")
	}
}

func isolateDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func TestRun_ExitCodes(t *testing.T) {
	dir := isolateDirs(t)
	meta := testutil.WriteMetafile(t, dir, "meta.json", testutil.Scenario())

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"--version"}, 0},
		{"help", []string{"--help"}, 0},
		{"unknown flag", []string{"--bogus"}, 2},
		{"two targets", []string{"a.json", "b.json"}, 2},
		{"missing metafile", []string{filepath.Join(dir, "absent.json")}, 1},
		{"export", []string{"--snapshot", filepath.Join(dir, "out.svg"), meta}, 0},
		{"export unknown focus", []string{"--focus", "nope", "--snapshot", filepath.Join(dir, "x.svg"), meta}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRun_FlushesCPUProfileOnEarlyExit(t *testing.T) {
	dir := isolateDirs(t)
	meta := testutil.WriteMetafile(t, dir, "meta.json", testutil.Scenario())

	for name, args := range map[string][]string{
		"export": {"--snapshot", filepath.Join(dir, "out.svg"), meta},
		"error":  {filepath.Join(dir, "absent.json")},
	} {
		t.Run(name, func(t *testing.T) {
			prof := filepath.Join(t.TempDir(), "cpu.prof")
			run(append([]string{"--cpu-profile", prof}, args...))

			info, err := os.Stat(prof)
			if err != nil {
				t.Fatalf("stat profile: %v", err)
			}
			if info.Size() == 0 {
				t.Error("CPU profile is empty; it was not stopped before exit")
			}
		})
	}
}
