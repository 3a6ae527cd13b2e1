package datasource

import (
	"fmt"
	"os"
	"time"

	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/metafile"
)

// Picker chooses among several valid sources. Sources arrive freshest first.
type Picker func(sources []DataSource) (DataSource, error)

// ResolveOptions configures Resolve.
type ResolveOptions struct {
	// Picker is asked when a directory holds more than one valid metafile.
	// Nil selects the freshest.
	Picker Picker
	// Verbose and Logger are passed to discovery
	Verbose bool
	Logger  func(msg string)
}

// Resolve turns a command-line argument into a source. A file is used as
// is; a directory (or "" for the working directory) is searched.
func Resolve(path string, opts ResolveOptions) (DataSource, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return DataSource{}, err
		}
		if !info.IsDir() {
			s, err := SourceFromPath(path)
			if err != nil {
				return DataSource{}, err
			}
			if err := ValidateSource(&s); err != nil {
				return s, fmt.Errorf("%s: %w", s.Path, err)
			}
			return s, nil
		}
	}

	sources, err := DiscoverSources(DiscoveryOptions{
		Dir:                    path,
		ValidateAfterDiscovery: true,
		Verbose:                opts.Verbose,
		Logger:                 opts.Logger,
	})
	if err != nil {
		return DataSource{}, err
	}
	if len(sources) == 0 {
		if path == "" {
			path = "."
		}
		return DataSource{}, fmt.Errorf("%w in %s", ErrNoMetafile, path)
	}

	var metafiles []DataSource
	for _, s := range sources {
		if s.Type == SourceTypeMetafile {
			metafiles = append(metafiles, s)
		}
	}
	if len(metafiles) > 1 && opts.Picker != nil {
		return opts.Picker(metafiles)
	}
	return SelectBestSource(sources)
}

// LoadFromSource loads the dataset from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(source DataSource) (*metafile.Metafile, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadMetafile()

	case SourceTypeMetafile:
		return metafile.Load(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// Load resolves path and loads the selected source.
func Load(path string, opts ResolveOptions) (*metafile.Metafile, DataSource, error) {
	source, err := Resolve(path, opts)
	if err != nil {
		return nil, source, err
	}
	start := time.Now()
	m, err := LoadFromSource(source)
	if err != nil {
		return nil, source, err
	}
	debug.LogTiming("datasource: loading "+source.String(), time.Since(start))
	return m, source, nil
}
