// Package ui is the terminal viewer: a rasterised sunburst on the left, the
// listing of the current directory on the right, and a dialog explaining why
// a file is in the bundle.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/burst/pkg/config"
	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/export"
	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/metrics"
	"github.com/vanderheijden86/burst/pkg/sunburst"
	"github.com/vanderheijden86/burst/pkg/watcher"
)

const (
	minChartCols = 20
	headerLines  = 1
	footerLines  = 1
)

// FileChangedMsg is sent when the metafile changes on disk
type FileChangedMsg struct {
	Event watcher.Event
}

// reloadedMsg carries the result of re-reading the metafile.
type reloadedMsg struct {
	meta *metafile.Metafile
	err  error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Changed()
		if !ok {
			return nil
		}
		return FileChangedMsg{Event: ev}
	}
}

// Options configures NewModel.
type Options struct {
	Config config.Config
	// Source names the dataset in the header.
	Source string
	// Watcher, when set, triggers Reload on every change.
	Watcher *watcher.Watcher
	Reload  func() (*metafile.Metafile, error)
	// Focus is the path of the node to open first.
	Focus string
	// Now replaces the clock, for tests.
	Now func() time.Time
}

// presenter receives controller callbacks. It lives behind a pointer so the
// controller keeps reaching it while bubbletea copies the Model.
type presenter struct {
	width, height int
	detail        *detailDialog
	changed       bool
}

func (p *presenter) Refresh() { p.changed = true }

func (p *presenter) ShowDetail(m *metafile.Metafile, path string, bytes int64) {
	debug.Log("ui: detail for %q", path)
	p.detail = newDetailDialog(m, path, bytes, p.width, p.height)
}

// Model is the bubbletea model of the viewer.
type Model struct {
	theme Theme
	cfg   config.Config
	opts  Options

	meta  *metafile.Metafile
	tree  *sunburst.Tree
	ctrl  *sunburst.Controller
	sched *frameScheduler
	pres  *presenter
	panel *panel

	// cursor is the keyboard-selected panel row; -1 while the pointer
	// drives the hover.
	cursor      int
	lastCurrent *sunburst.Node

	width, height int
	chartCols     int
	geom          chartGeometry

	statusMsg     string
	statusIsError bool
}

// NewModel builds the viewer for m. The model starts with default
// dimensions so it renders before the first WindowSizeMsg arrives.
func NewModel(m *metafile.Metafile, opts Options) Model {
	if opts.Config.Animation.FrameMS <= 0 {
		opts.Config = config.DefaultConfig()
	}
	model := Model{
		theme:  DefaultTheme(lipgloss.DefaultRenderer()),
		cfg:    opts.Config,
		opts:   opts,
		sched:  newFrameScheduler(opts.Config.FrameInterval(), opts.Now),
		pres:   &presenter{},
		panel:  &panel{},
		cursor: -1,
		width:  80,
		height: 24,
	}
	model.load(m)
	if opts.Focus != "" {
		if n := model.tree.Lookup(opts.Focus); n != nil && n.IsDir() {
			model.ctrl.SelectCurrent(n)
		} else {
			model.setStatus(fmt.Sprintf("No directory %q in the bundle", opts.Focus), true)
		}
	}
	model.layout()
	return model
}

// load replaces the dataset and resets the view to the tree root.
func (m *Model) load(meta *metafile.Metafile) {
	m.meta = meta
	m.tree = sunburst.Build(meta, sunburst.BuildOptions{})
	radius := m.cfg.RadiusFunc()
	m.ctrl = sunburst.NewController(m.tree, meta, m.sched, sunburst.ControllerOptions{
		Presenter: m.pres,
		Radius:    radius,
		MaxRadius: float64(radius.CanvasSize(m.tree.MaxDepth)) / 2,
		Duration:  m.cfg.AnimationDuration(),
	})
	m.lastCurrent = m.ctrl.Current()
	m.cursor = -1
}

// layout splits the screen between chart and panel.
func (m *Model) layout() {
	bodyRows := max(m.height-headerLines-footerLines, 0)
	panelWidth := m.cfg.UI.PanelWidth
	if m.width-panelWidth-1 < minChartCols {
		panelWidth = 0
	}
	m.chartCols = m.width
	if panelWidth > 0 {
		m.chartCols = m.width - panelWidth - 1
	}
	m.geom = newChartGeometry(m.chartCols, bodyRows, m.ctrl.MaxRadius())
	m.panel.width = panelWidth
	m.panel.height = bodyRows
	m.pres.width = m.width
	m.pres.height = m.height
	if m.pres.detail != nil {
		m.pres.detail.resize(m.width, m.height)
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.opts.Watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
	}
	cmds = append(cmds, m.sched.take())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.syncCursor()
	return m, tea.Batch(cmd, m.sched.take())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return nil

	case frameMsg:
		m.ctrl.Tick()
		return nil

	case FileChangedMsg:
		debug.Log("ui: %s changed (%d bytes)", msg.Event.Path, msg.Event.Size)
		var cmds []tea.Cmd
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		if m.opts.Reload != nil {
			cmds = append(cmds, reloadCmd(m.opts.Reload))
		}
		return tea.Batch(cmds...)

	case reloadedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Reload error: %v", msg.err), true)
			return nil
		}
		m.reload(msg.meta)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil
	}
	return nil
}

func reloadCmd(reload func() (*metafile.Metafile, error)) tea.Cmd {
	return func() tea.Msg {
		meta, err := reload()
		return reloadedMsg{meta: meta, err: err}
	}
}

// reload swaps in a new dataset, keeping the current directory and the
// hovered node when they still exist.
func (m *Model) reload(meta *metafile.Metafile) {
	defer debug.LogEnterExit("ui.reload")()
	currentPath := m.ctrl.Current().Path
	var hoveredPath string
	if h := m.ctrl.Hovered(); h != nil {
		hoveredPath = h.Path
	}

	m.pres.detail = nil
	m.load(meta)
	if n := m.tree.Find(currentPath); n != nil && n.IsDir() {
		m.ctrl.SelectCurrent(n)
	}
	if hoveredPath != "" {
		m.ctrl.SelectHovered(m.tree.Find(hoveredPath))
	}
	m.layout()
	m.setStatus(fmt.Sprintf("Reloaded %s inputs", humanize.Comma(int64(len(meta.Inputs)))), false)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if d := m.pres.detail; d != nil {
		switch msg.String() {
		case "esc", "q", "enter", "backspace":
			m.pres.detail = nil
			return nil
		case "ctrl+c":
			return tea.Quit
		}
		return d.update(msg)
	}

	m.statusMsg = ""
	rows := panelRows(m.ctrl.Current())

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		m.moveCursor(-1, rows)
	case "down", "j":
		m.moveCursor(1, rows)
	case "enter", "right", "l":
		i := m.cursor
		if i < 0 {
			i = hoveredRow(rows, m.ctrl.Hovered())
		}
		if i >= 0 && i < len(rows) {
			m.activateRow(rows[i])
		}
	case "esc", "backspace", "left", "h":
		m.zoomOut()
	case "home", "g":
		m.ctrl.SelectCurrent(m.tree.Root)
	case "c":
		m.copyPath()
	case "s":
		m.saveSnapshot()
	}
	return nil
}

// moveCursor steps the keyboard selection and hovers the selected row.
func (m *Model) moveCursor(delta int, rows []panelRow) {
	if len(rows) == 0 {
		return
	}
	if m.cursor < 0 {
		m.cursor = hoveredRow(rows, m.ctrl.Hovered())
		if m.cursor < 0 {
			m.cursor = 0
			delta = 0
		}
	}
	m.cursor = max(min(m.cursor+delta, len(rows)-1), 0)
	m.ctrl.SelectHovered(rows[m.cursor].node)
}

func (m *Model) activateRow(r panelRow) {
	if r.parent {
		m.ctrl.SelectCurrent(r.node)
		return
	}
	m.ctrl.Activate(r.node)
}

// zoomOut acts like a click on the center of the chart.
func (m *Model) zoomOut() {
	root, _ := m.ctrl.Animator().Animated()
	if root != nil && root.Parent != nil {
		m.ctrl.Click(root.Parent)
	}
}

// syncCursor puts the keyboard selection back on the first row whenever the
// current directory changes.
func (m *Model) syncCursor() {
	if !m.pres.changed {
		return
	}
	m.pres.changed = false
	if cur := m.ctrl.Current(); cur != m.lastCurrent {
		m.lastCurrent = cur
		m.panel.offset = 0
		if m.cursor >= 0 {
			m.cursor = 0
		}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.pres.detail != nil {
		m.pres.detail.update(msg)
		return
	}

	press := msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
	wheel := msg.Action == tea.MouseActionPress && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown)
	row := msg.Y - headerLines

	if m.geom.contains(msg.X, row) {
		m.cursor = -1
		x, y := m.geom.toChart(msg.X, row)
		m.ctrl.PointerMove(x, y)
		if press {
			m.ctrl.PointerClick(x, y)
		}
		return
	}

	px := msg.X - m.chartCols - 1
	if m.panel.width > 0 && px >= 0 && row >= 0 && row < m.panel.height {
		rows := panelRows(m.ctrl.Current())
		if wheel {
			delta := 1
			if msg.Button == tea.MouseButtonWheelUp {
				delta = -1
			}
			m.panel.offset += delta
			m.panel.scrollTo(-1, len(rows))
			return
		}
		if row == 0 {
			if press {
				m.ctrl.SelectCurrent(crumbAt(breadcrumbs(m.ctrl.Current(), m.panel.width), px))
			}
			return
		}
		i := m.panel.rowAt(row, len(rows))
		m.cursor = -1
		if i < 0 {
			m.ctrl.SelectHovered(nil)
			return
		}
		m.ctrl.SelectHovered(rows[i].node)
		if press {
			m.activateRow(rows[i])
		}
		return
	}

	m.ctrl.PointerLeave()
}

func (m *Model) copyPath() {
	n := m.ctrl.Hovered()
	if n == nil {
		n = m.ctrl.Current()
	}
	if n == nil || n.Path == "" {
		m.setStatus("Nothing to copy", true)
		return
	}
	if err := clipboard.WriteAll(n.Path); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s", n.Path), false)
}

func (m *Model) saveSnapshot() {
	now := m.sched.Now()
	path := m.cfg.SnapshotPath(fmt.Sprintf("burst-%s.svg", now.Format("20060102-150405")))
	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:    path,
		Title:   m.opts.Source,
		Size:    m.cfg.Snapshot.Size,
		Tree:    m.tree,
		Focus:   m.ctrl.Current(),
		Hovered: m.ctrl.Hovered(),
		Radius:  m.cfg.RadiusFunc(),
	})
	if err != nil {
		m.setStatus(fmt.Sprintf("Snapshot failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Saved %s", path), false)
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	body := m.renderBody()
	if m.pres.detail != nil {
		body = lipgloss.Place(m.width, m.panel.height, lipgloss.Center, lipgloss.Center, m.pres.detail.render())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.Header.Render("burst")
	source := m.opts.Source
	if source == "" {
		source = "metafile"
	}
	info := fmt.Sprintf(" %s  %s in %s inputs",
		source,
		metafile.FormatBytes(m.tree.Root.Bytes),
		humanize.Comma(int64(len(m.meta.InputPaths()))))
	room := m.width - lipgloss.Width(title)
	return title + t.MutedText.Render(truncate(info, room))
}

func (m Model) renderBody() string {
	rows := m.panel.height
	chart := lipgloss.NewStyle().Width(m.chartCols).Height(rows).MaxHeight(rows).
		Render(renderChart(m.ctrl, m.geom, m.theme))
	if m.panel.width == 0 {
		return chart
	}
	sep := lipgloss.NewStyle().Foreground(ColorBgHighlight).
		Render(strings.TrimSuffix(strings.Repeat("│\n", rows), "\n"))
	list := m.panel.render(m.ctrl.Current(), m.ctrl.Hovered(), m.cursor, m.theme)
	return lipgloss.JoinHorizontal(lipgloss.Top, chart, sep, list)
}

func (m Model) renderFooter() string {
	t := m.theme
	if m.statusMsg != "" {
		if m.statusIsError {
			return t.ErrorText.Render(truncate(m.statusMsg, m.width))
		}
		return t.Renderer.NewStyle().Foreground(ColorSuccess).Render(truncate(m.statusMsg, m.width))
	}
	if tip, ok := m.ctrl.Tooltip(m.ctrl.Hovered()); ok {
		return truncateLeft(tip.Prefix, max(m.width-len(tip.Name)-len(tip.Size)-3, 0)) +
			t.PrimaryBold.Render(tip.Name) + t.MutedText.Render(" - "+tip.Size)
	}
	return t.MutedText.Render(truncate("click/enter open · backspace up · ↑↓ select · c copy · s snapshot · q quit", m.width))
}
