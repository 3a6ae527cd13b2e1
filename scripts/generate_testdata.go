//go:build ignore

// generate_testdata.go creates synthetic esbuild metafiles for benchmarking
// and manual testing of the viewer.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	tests/testdata/benchmark/small.json   (shallow tree, one output)
//	tests/testdata/benchmark/medium.json  (deeper tree, two outputs)
//	tests/testdata/benchmark/large.json   (deep, wide tree with source maps)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/testutil"
)

type datasetSpec struct {
	name   string
	depth  int
	fanout int
	desc   string
}

var datasets = []datasetSpec{
	{"small", 3, 4, "shallow tree, one output"},
	{"medium", 5, 6, "deeper tree, two outputs"},
	{"large", 7, 8, "deep, wide tree with source maps"},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for i, ds := range datasets {
		fmt.Printf("Generating %s dataset (%s)...\n", ds.name, ds.desc)

		cfg := testutil.GeneratorConfig{
			Seed:        int64(ds.depth*100 + ds.fanout), // Reproducible per-size
			MaxDepth:    ds.depth,
			MaxFanout:   ds.fanout,
			MaxBytes:    50_000,
			ShakenRatio: 0.1,
			Outputs:     i + 1,
			SourceMaps:  ds.name == "large",
		}

		m := testutil.New(cfg).Metafile()
		data := testutil.ToJSON(m)

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, []byte(data), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d inputs, %s bundled)\n",
			outputPath, len(m.Inputs), metafile.FormatBytes(bundledBytes(m)))
	}

	fmt.Println("\nDone! Test metafiles created in", outputDir)
}

func bundledBytes(m *metafile.Metafile) int64 {
	var total int64
	for path, out := range m.Outputs {
		if metafile.IsSourceMapPath(path) {
			continue
		}
		for _, in := range out.Inputs {
			total += in.BytesInOutput
		}
	}
	return total
}
