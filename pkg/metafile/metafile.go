// Package metafile models the bundler metafile that burst visualizes: which
// input files exist and how many bytes each contributes to every output file.
package metafile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/metrics"
)

// ErrEmptyPath is returned by Load when no path is given.
var ErrEmptyPath = errors.New("metafile path is empty")

// Import is one import edge recorded for an input file.
type Import struct {
	Path     string `json:"path"`
	Kind     string `json:"kind,omitempty"`
	Original string `json:"original,omitempty"`
	External bool   `json:"external,omitempty"`
}

// Input describes one source file fed to the bundler.
type Input struct {
	Bytes   int64    `json:"bytes"`
	Imports []Import `json:"imports,omitempty"`
	Format  string   `json:"format,omitempty"`
}

// OutputInput is the contribution of one input file to an output file.
type OutputInput struct {
	BytesInOutput int64 `json:"bytesInOutput"`
}

// Output describes one file written by the bundler.
type Output struct {
	Bytes      int64                  `json:"bytes"`
	Inputs     map[string]OutputInput `json:"inputs"`
	EntryPoint string                 `json:"entryPoint,omitempty"`
}

// Metafile is the whole dataset. Only the membership of Inputs matters to the
// tree; the rest of Input is used by the detail report.
type Metafile struct {
	Inputs  map[string]Input  `json:"inputs"`
	Outputs map[string]Output `json:"outputs"`
}

// Parse decodes a metafile from JSON. Missing sections are replaced with
// empty maps so callers never need nil checks.
func Parse(data []byte) (*Metafile, error) {
	defer metrics.Timer(metrics.MetafileParse)()

	var m Metafile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing metafile: %w", err)
	}
	m.normalize()
	debug.Log("metafile: %d inputs, %d outputs", len(m.Inputs), len(m.Outputs))
	return &m, nil
}

// Decode reads and parses a metafile from r.
func Decode(r io.Reader) (*Metafile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading metafile: %w", err)
	}
	return Parse(data)
}

// Load reads and parses the metafile at path.
func Load(path string) (*Metafile, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metafile: %w", err)
	}
	return Parse(data)
}

func (m *Metafile) normalize() {
	if m.Inputs == nil {
		m.Inputs = make(map[string]Input)
	}
	if m.Outputs == nil {
		m.Outputs = make(map[string]Output)
	}
	for path, out := range m.Outputs {
		if out.Inputs == nil {
			out.Inputs = make(map[string]OutputInput)
			m.Outputs[path] = out
		}
	}
}

// HasInput reports whether path is a known input.
func (m *Metafile) HasInput(path string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Inputs[path]
	return ok
}

// InputPaths returns the input paths in sorted order.
func (m *Metafile) InputPaths() []string {
	if m == nil {
		return nil
	}
	return sortedKeys(m.Inputs)
}

// OutputPaths returns the output paths in sorted order.
func (m *Metafile) OutputPaths() []string {
	if m == nil {
		return nil
	}
	return sortedKeys(m.Outputs)
}

// TotalBytes sums the contributions of every non-source-map output. Negative
// contributions count as zero.
func (m *Metafile) TotalBytes(isSourceMap func(string) bool) int64 {
	if m == nil {
		return 0
	}
	if isSourceMap == nil {
		isSourceMap = IsSourceMapPath
	}
	var total int64
	for o, out := range m.Outputs {
		if isSourceMap(o) {
			continue
		}
		for _, in := range out.Inputs {
			total += max(in.BytesInOutput, 0)
		}
	}
	return total
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
