package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/metafile"
)

// detailDialog explains why one input file is in the bundle. The report is
// rendered as markdown and scrolled in a viewport.
type detailDialog struct {
	path     string
	markdown string
	view     viewport.Model
}

func newDetailDialog(m *metafile.Metafile, path string, bytes int64, width, height int) *detailDialog {
	d := &detailDialog{
		path:     path,
		markdown: m.Why(path, bytes).Markdown(),
	}
	d.resize(width, height)
	return d
}

// resize fits the dialog to the screen and re-renders the report for the
// new wrap width.
func (d *detailDialog) resize(width, height int) {
	w := max(width-4, 20)
	h := max(height-4, 3)
	d.view = viewport.New(w, h)
	d.view.SetContent(renderMarkdown(d.markdown, w-2))
}

func (d *detailDialog) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.view, cmd = d.view.Update(msg)
	return cmd
}

func (d *detailDialog) render() string {
	return FocusedPanelStyle.Render(d.view.View())
}

// renderMarkdown falls back to the raw markdown when glamour fails.
func renderMarkdown(md string, wrap int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		debug.Log("ui: markdown renderer: %v", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		debug.Log("ui: render markdown: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}
