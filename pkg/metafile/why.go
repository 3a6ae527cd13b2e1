package metafile

import (
	"fmt"
	"sort"
	"strings"
)

// OutputShare is the number of bytes one output holds from an input.
type OutputShare struct {
	Output string
	Bytes  int64
}

// Importer is an input that imports the file being explained.
type Importer struct {
	Path string
	Kind string
}

// WhyReport explains why an input file ended up in the bundle.
type WhyReport struct {
	Path      string
	Bytes     int64
	Outputs   []OutputShare
	Importers []Importer
	// Chain is the shortest import chain from an entry point to Path, entry
	// point first. Empty when no chain could be found.
	Chain []string
}

// Why collects the detail report for path. The path is matched against input
// paths with the disabled prefix stripped.
func (m *Metafile) Why(path string, bytes int64) WhyReport {
	r := WhyReport{Path: path, Bytes: bytes}
	if m == nil {
		return r
	}

	for _, o := range m.OutputPaths() {
		if IsSourceMapPath(o) {
			continue
		}
		for in, contrib := range m.Outputs[o].Inputs {
			if StripDisabledPathPrefix(in) == path {
				r.Outputs = append(r.Outputs, OutputShare{Output: o, Bytes: contrib.BytesInOutput})
			}
		}
	}
	sort.SliceStable(r.Outputs, func(i, j int) bool {
		return r.Outputs[i].Bytes > r.Outputs[j].Bytes
	})

	for _, in := range m.InputPaths() {
		for _, imp := range m.Inputs[in].Imports {
			if StripDisabledPathPrefix(imp.Path) == path {
				r.Importers = append(r.Importers, Importer{Path: StripDisabledPathPrefix(in), Kind: imp.Kind})
				break
			}
		}
	}

	r.Chain = m.importChain(path)
	return r
}

// importChain runs a breadth-first search from every entry point along the
// import graph and returns the first chain that reaches target.
func (m *Metafile) importChain(target string) []string {
	var entries []string
	seenEntry := make(map[string]bool)
	for _, o := range m.OutputPaths() {
		ep := m.Outputs[o].EntryPoint
		if ep != "" && !seenEntry[ep] {
			seenEntry[ep] = true
			entries = append(entries, ep)
		}
	}

	prev := make(map[string]string)
	visited := make(map[string]bool)
	queue := make([]string, 0, len(entries))
	for _, ep := range entries {
		visited[ep] = true
		queue = append(queue, ep)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if StripDisabledPathPrefix(cur) == target {
			chain := []string{StripDisabledPathPrefix(cur)}
			for p, ok := prev[cur]; ok; p, ok = prev[p] {
				chain = append(chain, StripDisabledPathPrefix(p))
			}
			for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
				chain[i], chain[j] = chain[j], chain[i]
			}
			return chain
		}
		for _, imp := range m.Inputs[cur].Imports {
			if imp.External || visited[imp.Path] {
				continue
			}
			visited[imp.Path] = true
			prev[imp.Path] = cur
			queue = append(queue, imp.Path)
		}
	}
	return nil
}

// Markdown renders the report for the detail dialog.
func (r WhyReport) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Path)
	fmt.Fprintf(&sb, "**%s** in the bundle", FormatBytes(r.Bytes))
	if r.Bytes == 0 {
		sb.WriteString(" (removed by tree shaking)")
	}
	sb.WriteString(".\n\n")

	if len(r.Outputs) > 0 {
		sb.WriteString("## Outputs\n\n| Output | Size |\n|---|---|\n")
		for _, o := range r.Outputs {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", o.Output, FormatBytes(o.Bytes))
		}
		sb.WriteString("\n")
	}

	if len(r.Chain) > 1 {
		sb.WriteString("## Import path\n\n")
		for i, p := range r.Chain {
			fmt.Fprintf(&sb, "%s- `%s`\n", strings.Repeat("  ", i), p)
		}
		sb.WriteString("\n")
	}

	if len(r.Importers) > 0 {
		sb.WriteString("## Imported by\n\n")
		for _, imp := range r.Importers {
			if imp.Kind != "" {
				fmt.Fprintf(&sb, "- `%s` (%s)\n", imp.Path, imp.Kind)
			} else {
				fmt.Fprintf(&sb, "- `%s`\n", imp.Path)
			}
		}
	}
	return sb.String()
}
