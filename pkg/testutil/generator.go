// Package testutil provides deterministic metafile fixtures and tree
// assertions shared by the package tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/burst/pkg/metafile"
)

// GeneratorConfig controls metafile generation.
type GeneratorConfig struct {
	Seed        int64   // Random seed for determinism (0 = use current time)
	MaxDepth    int     // Deepest directory nesting (default 4)
	MaxFanout   int     // Most entries per directory (default 5)
	MaxBytes    int64   // Largest contribution of one input (default 10_000)
	ShakenRatio float64 // Share of inputs that contribute 0 bytes
	Outputs     int     // Number of JS outputs (default 1)
	SourceMaps  bool    // Also emit a .map output for each output
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		MaxDepth:    4,
		MaxFanout:   5,
		MaxBytes:    10_000,
		ShakenRatio: 0.1,
		Outputs:     1,
	}
}

// Generator creates synthetic metafiles.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 4
	}
	if cfg.MaxFanout <= 0 {
		cfg.MaxFanout = 5
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10_000
	}
	if cfg.Outputs <= 0 {
		cfg.Outputs = 1
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Metafile generates a random project tree and spreads every input over the
// outputs.
func (g *Generator) Metafile() *metafile.Metafile {
	var paths []string
	g.dir("src", 1, &paths)

	m := &metafile.Metafile{
		Inputs:  make(map[string]metafile.Input, len(paths)),
		Outputs: make(map[string]metafile.Output, g.cfg.Outputs),
	}
	for _, p := range paths {
		m.Inputs[p] = metafile.Input{Bytes: g.cfg.MaxBytes}
	}
	for i := 0; i < g.cfg.Outputs; i++ {
		name := fmt.Sprintf("out/chunk-%d.js", i)
		out := metafile.Output{Inputs: make(map[string]metafile.OutputInput)}
		for _, p := range paths {
			if g.rng.Float64() < g.cfg.ShakenRatio {
				continue
			}
			if i > 0 && g.rng.Intn(2) == 0 {
				continue
			}
			b := 1 + g.rng.Int63n(g.cfg.MaxBytes)
			out.Inputs[p] = metafile.OutputInput{BytesInOutput: b}
			out.Bytes += b
		}
		m.Outputs[name] = out
		if g.cfg.SourceMaps {
			m.Outputs[name+".map"] = metafile.Output{
				Bytes:  out.Bytes * 3,
				Inputs: map[string]metafile.OutputInput{paths[0]: {BytesInOutput: 999_999}},
			}
		}
	}
	return m
}

func (g *Generator) dir(prefix string, depth int, paths *[]string) {
	n := 1 + g.rng.Intn(g.cfg.MaxFanout)
	for i := 0; i < n; i++ {
		if depth < g.cfg.MaxDepth && g.rng.Intn(3) == 0 {
			g.dir(fmt.Sprintf("%s/dir%d", prefix, i), depth+1, paths)
			continue
		}
		*paths = append(*paths, fmt.Sprintf("%s/file%d.js", prefix, i))
	}
}

// Scenario is the two-file fixture: a.js with 100 bytes and b/c.js with 300.
func Scenario() *metafile.Metafile {
	return &metafile.Metafile{
		Inputs: map[string]metafile.Input{
			"a.js":   {Bytes: 100},
			"b/c.js": {Bytes: 300},
		},
		Outputs: map[string]metafile.Output{
			"out.js": {
				Bytes: 400,
				Inputs: map[string]metafile.OutputInput{
					"a.js":   {BytesInOutput: 100},
					"b/c.js": {BytesInOutput: 300},
				},
			},
		},
	}
}

// Flat builds a metafile with one output and the given contributions.
func Flat(sizes map[string]int64) *metafile.Metafile {
	m := &metafile.Metafile{
		Inputs:  make(map[string]metafile.Input, len(sizes)),
		Outputs: map[string]metafile.Output{"out.js": {Inputs: make(map[string]metafile.OutputInput, len(sizes))}},
	}
	for p, b := range sizes {
		m.Inputs[p] = metafile.Input{Bytes: b}
		m.Outputs["out.js"].Inputs[p] = metafile.OutputInput{BytesInOutput: b}
	}
	return m
}

// ToJSON encodes m the way bundlers write metafiles.
func ToJSON(m *metafile.Metafile) string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal metafile: %v", err))
	}
	return string(data)
}
