package datasource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/burst/pkg/export"
	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/sunburst"
	"github.com/vanderheijden86/burst/pkg/testutil"
)

// writeAt writes content to dir/name with the given modification time.
func writeAt(t *testing.T, dir, name, content string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want SourceType
		ok   bool
	}{
		{"meta.json", SourceTypeMetafile, true},
		{"esbuild-metafile.JSON", SourceTypeMetafile, true},
		{"package.json", "", false},
		{"burst.sqlite3", SourceTypeSQLite, true},
		{"sizes.db", SourceTypeSQLite, true},
		{"main.js", "", false},
	}
	for _, tt := range tests {
		got, ok := classify(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("classify(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDiscoverSources_FindsBuildDirs(t *testing.T) {
	dir := t.TempDir()
	scenario := testutil.ToJSON(testutil.Scenario())
	writeAt(t, dir, "meta.json", scenario, base)
	writeAt(t, dir, "dist/metafile.json", scenario, base.Add(time.Hour))
	writeAt(t, dir, "package.json", `{"name":"x"}`, base)
	writeAt(t, dir, "src/meta.json", scenario, base)

	var logs []string
	sources, err := DiscoverSources(DiscoveryOptions{
		Dir:     dir,
		Verbose: true,
		Logger:  func(msg string) { logs = append(logs, msg) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d: %v", len(sources), sources)
	}
	if filepath.Base(filepath.Dir(sources[0].Path)) != "dist" {
		t.Errorf("expected freshest (dist) first, got %s", sources[0].Path)
	}
	if len(logs) == 0 {
		t.Error("expected verbose logging")
	}
}

func TestDiscoverSources_Validation(t *testing.T) {
	dir := t.TempDir()
	writeAt(t, dir, "meta.json", testutil.ToJSON(testutil.Scenario()), base)
	writeAt(t, dir, "broken-meta.json", "{not json", base.Add(time.Hour))
	writeAt(t, dir, "empty-meta.json", "{}", base.Add(2*time.Hour))

	sources, err := DiscoverSources(DiscoveryOptions{Dir: dir, ValidateAfterDiscovery: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || filepath.Base(sources[0].Path) != "meta.json" {
		t.Fatalf("expected only meta.json, got %v", sources)
	}
	if sources[0].InputCount != 2 || sources[0].OutputCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", sources[0].InputCount, sources[0].OutputCount)
	}

	all, err := DiscoverSources(DiscoveryOptions{Dir: dir, ValidateAfterDiscovery: true, IncludeInvalid: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sources with invalid ones, got %d", len(all))
	}
	for _, s := range all {
		if !s.Valid && s.ValidationError == "" {
			t.Errorf("%s invalid without a reason", s.Path)
		}
		if !strings.Contains(s.String(), s.Path) {
			t.Errorf("String() = %q lacks the path", s.String())
		}
	}
}

func TestSelectBestSource(t *testing.T) {
	sources := []DataSource{
		{Path: "/old", Valid: true, ModTime: base, Priority: PriorityMetafile},
		{Path: "/invalid", Valid: false, ModTime: base.Add(2 * time.Hour), Priority: PriorityMetafile},
		{Path: "/db", Valid: true, ModTime: base.Add(time.Hour), Priority: PrioritySQLite},
		{Path: "/json", Valid: true, ModTime: base.Add(time.Hour), Priority: PriorityMetafile},
	}
	best, err := SelectBestSource(sources)
	if err != nil {
		t.Fatal(err)
	}
	if best.Path != "/json" {
		t.Errorf("expected /json (freshest, metafile wins the tie), got %s", best.Path)
	}

	if _, err := SelectBestSource([]DataSource{{Path: "/x"}}); !errors.Is(err, ErrNoMetafile) {
		t.Errorf("expected ErrNoMetafile, got %v", err)
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	path := writeAt(t, dir, "stats.json", testutil.ToJSON(testutil.Scenario()), base)

	s, err := Resolve(path, ResolveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Type != SourceTypeMetafile || !s.Valid {
		t.Errorf("unexpected source %v", s)
	}

	bad := writeAt(t, dir, "bad.json", "[]", base)
	if _, err := Resolve(bad, ResolveOptions{}); err == nil {
		t.Error("expected error for a file that is not a metafile")
	}
}

func TestResolve_EmptyDirectory(t *testing.T) {
	_, err := Resolve(t.TempDir(), ResolveOptions{})
	if !errors.Is(err, ErrNoMetafile) {
		t.Errorf("expected ErrNoMetafile, got %v", err)
	}
}

func TestResolve_PickerOnAmbiguity(t *testing.T) {
	dir := t.TempDir()
	scenario := testutil.ToJSON(testutil.Scenario())
	writeAt(t, dir, "a-meta.json", scenario, base)
	writeAt(t, dir, "b-meta.json", scenario, base.Add(time.Hour))

	var offered []DataSource
	s, err := Resolve(dir, ResolveOptions{Picker: func(sources []DataSource) (DataSource, error) {
		offered = sources
		return sources[len(sources)-1], nil
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(offered) != 2 {
		t.Fatalf("picker offered %d sources, want 2", len(offered))
	}
	if filepath.Base(s.Path) != "a-meta.json" {
		t.Errorf("expected the picked source, got %s", s.Path)
	}

	s, err = Resolve(dir, ResolveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(s.Path) != "b-meta.json" {
		t.Errorf("without a picker expected the freshest, got %s", s.Path)
	}
}

func TestLoad_SQLiteExport(t *testing.T) {
	dir := t.TempDir()
	m := testutil.Scenario()
	out := m.Outputs["out.js"]
	out.EntryPoint = "a.js"
	m.Outputs["out.js"] = out
	// Tree-shaken: present in inputs, absent from every output.
	m.Inputs["dead.js"] = metafile.Input{Bytes: 50}

	dbPath := filepath.Join(dir, "burst.sqlite3")
	if err := export.NewSQLiteExporter(sunburst.Build(m, sunburst.BuildOptions{}), m).Export(dbPath); err != nil {
		t.Fatal(err)
	}

	loaded, source, err := Load(dbPath, ResolveOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if source.Type != SourceTypeSQLite {
		t.Errorf("type = %s, want sqlite", source.Type)
	}

	got := loaded.Outputs["out.js"]
	if got.Bytes != 400 || got.EntryPoint != "a.js" {
		t.Errorf("out.js = %+v", got)
	}
	if got.Inputs["b/c.js"].BytesInOutput != 300 {
		t.Errorf("b/c.js contribution = %d, want 300", got.Inputs["b/c.js"].BytesInOutput)
	}

	if in, ok := loaded.Inputs["dead.js"]; !ok || in.Bytes != 50 {
		t.Errorf("dead.js input = %+v (present %v), want 50 bytes", in, ok)
	}
	if in := loaded.Inputs["a.js"]; in.Bytes != 100 {
		t.Errorf("a.js input bytes = %d, want 100", in.Bytes)
	}

	// The rebuilt dataset produces the same tree.
	tree := sunburst.Build(loaded, sunburst.BuildOptions{})
	if tree.Root.Bytes != 400 {
		t.Errorf("root bytes = %d, want 400", tree.Root.Bytes)
	}
	dead := tree.Lookup("dead.js")
	if dead == nil {
		t.Fatal("dead.js missing from the rebuilt tree")
	}
	if dead.Bytes != 0 {
		t.Errorf("dead.js bytes = %d, want 0", dead.Bytes)
	}
	testutil.AssertRootTotal(t, tree, loaded)
	testutil.AssertTreeInvariants(t, tree)
}

func TestNewSQLiteReader_RejectsForeignDatabase(t *testing.T) {
	dir := t.TempDir()
	path := writeAt(t, dir, "other.db", "", base)

	s, err := SourceFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSQLiteReader(s); err == nil {
		t.Error("expected error for a database without export_meta")
	}
	if _, err := NewSQLiteReader(DataSource{Type: SourceTypeMetafile, Path: path}); err == nil {
		t.Error("expected error for a non-SQLite source")
	}
}

func TestPickerOptions(t *testing.T) {
	sources := []DataSource{
		{Path: "/proj/dist/meta.json", InputCount: 12, Size: 2048, ModTime: base},
		{Path: "/elsewhere/meta.json", InputCount: 1, Size: 10, ModTime: base},
	}
	opts := PickerOptions(sources, "/proj")
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
	if !strings.HasPrefix(opts[0].Key, filepath.Join("dist", "meta.json")) {
		t.Errorf("expected path relative to base, got %q", opts[0].Key)
	}
	if !strings.Contains(opts[0].Key, "12 inputs") || !strings.Contains(opts[0].Key, "2.0 KiB") {
		t.Errorf("label lacks counts: %q", opts[0].Key)
	}
	if opts[1].Value != 1 {
		t.Errorf("option value = %d, want index 1", opts[1].Value)
	}
}
