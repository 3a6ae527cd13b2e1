// Package datasource finds the metafile to show. Given a directory it
// discovers candidate metafiles and earlier SQLite exports, validates them,
// and selects the freshest valid one.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/burst/pkg/metafile"
)

// ErrNoMetafile is returned when discovery finds nothing usable.
var ErrNoMetafile = errors.New("no metafile found")

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeMetafile is a bundler metafile (JSON)
	SourceTypeMetafile SourceType = "metafile"
	// SourceTypeSQLite is a database written by the SQLite export
	SourceTypeSQLite SourceType = "sqlite"
)

// Priority values for source types (higher = more authoritative)
const (
	PriorityMetafile = 100
	PrioritySQLite   = 50
)

// buildDirs are searched one level below the discovery root.
var buildDirs = []string{"dist", "build", "out"}

// DataSource is one candidate dataset on disk.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// InputCount and OutputCount are set during validation
	InputCount  int `json:"input_count"`
	OutputCount int `json:"output_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, mod=%s, inputs=%d, outputs=%d, %s)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.InputCount, s.OutputCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is the directory to search (uses cwd if empty)
	Dir string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds candidate sources in Dir and its common build
// output directories, freshest first.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", dir))
	}

	sources, err := discoverIn(dir, opts)
	if err != nil {
		return nil, err
	}
	for _, sub := range buildDirs {
		found, err := discoverIn(filepath.Join(dir, sub), opts)
		if err != nil {
			continue
		}
		sources = append(sources, found...)
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Path, err))
			}
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sortSources(sources)

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

func discoverIn(dir string, opts DiscoveryOptions) ([]DataSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		typ, ok := classify(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		s := DataSource{
			Type:    typ,
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		}
		switch typ {
		case SourceTypeMetafile:
			s.Priority = PriorityMetafile
		case SourceTypeSQLite:
			s.Priority = PrioritySQLite
		}
		sources = append(sources, s)

		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found %s: %s (mod=%s)", typ, s.Path, info.ModTime().Format(time.RFC3339)))
		}
	}
	return sources, nil
}

// classify decides from the file name alone whether a file may hold a
// dataset. Bundlers conventionally name metafiles meta.json or
// metafile.json, often with a prefix.
func classify(name string) (SourceType, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".json"):
		if strings.Contains(lower, "meta") {
			return SourceTypeMetafile, true
		}
	case strings.HasSuffix(lower, ".sqlite3"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".db"):
		return SourceTypeSQLite, true
	}
	return "", false
}

// SourceFromPath describes a single file without searching.
func SourceFromPath(path string) (DataSource, error) {
	if path == "" {
		return DataSource{}, metafile.ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, err
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("%s is a directory", path)
	}

	s := DataSource{
		Type:     SourceTypeMetafile,
		Path:     abs,
		Priority: PriorityMetafile,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}
	if typ, ok := classify(info.Name()); ok && typ == SourceTypeSQLite {
		s.Type = SourceTypeSQLite
		s.Priority = PrioritySQLite
	}
	return s, nil
}

// ValidateSource loads s and records whether it holds a usable dataset.
func ValidateSource(s *DataSource) error {
	m, err := LoadFromSource(*s)
	if err == nil && len(m.Inputs) == 0 && len(m.Outputs) == 0 {
		err = errors.New("no inputs or outputs")
	}
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.Valid = true
	s.ValidationError = ""
	s.InputCount = len(m.Inputs)
	s.OutputCount = len(m.Outputs)
	return nil
}

// SelectBestSource returns the freshest valid source, preferring metafiles
// over exports when modification times are equal.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	var valid []DataSource
	for _, s := range sources {
		if s.Valid {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return DataSource{}, ErrNoMetafile
	}
	sortSources(valid)
	return valid[0], nil
}

func sortSources(sources []DataSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			if sources[i].Priority != sources[j].Priority {
				return sources[i].Priority > sources[j].Priority
			}
			return sources[i].Path < sources[j].Path
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}
