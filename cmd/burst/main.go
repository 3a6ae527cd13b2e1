package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/burst/internal/datasource"
	"github.com/vanderheijden86/burst/pkg/config"
	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/export"
	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/metrics"
	"github.com/vanderheijden86/burst/pkg/sunburst"
	"github.com/vanderheijden86/burst/pkg/ui"
	"github.com/vanderheijden86/burst/pkg/version"
	"github.com/vanderheijden86/burst/pkg/watcher"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run holds the whole command so deferred cleanup finishes before the
// process exits. It returns the exit code.
func run(args []string) int {
	fs := flag.NewFlagSet("burst", flag.ContinueOnError)
	cpuProfile := fs.String("cpu-profile", "", "Write CPU profile to file")
	help := fs.Bool("help", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")
	snapshotFlag := fs.String("snapshot", "", "Write the chart to these .svg/.png files (comma-separated) and exit")
	sizeFlag := fs.Int("size", 0, "Snapshot side in pixels (default from config)")
	sqliteFlag := fs.String("sqlite", "", "Export the size tree to a SQLite database and exit")
	focusFlag := fs.String("focus", "", "Start zoomed into this directory (e.g. node_modules/react)")
	watchFlag := fs.Bool("watch", false, "Reload the chart when the metafile changes")
	noMouse := fs.Bool("no-mouse", false, "Disable mouse hover and click")
	configPath := fs.String("config", "", "Read configuration from this file instead of the XDG default")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		usage(fs)
		return 0
	}

	if *versionFlag {
		fmt.Printf("burst %s\n", version.Version)
		return 0
	}

	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expected at most one metafile or directory")
		return 2
	}
	target := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if *sizeFlag > 0 {
		cfg.Snapshot.Size = *sizeFlag
	}
	if *noMouse {
		off := false
		cfg.UI.Mouse = &off
	}

	base := target
	if base == "" {
		base, _ = os.Getwd()
	}
	meta, source, err := datasource.Load(target, datasource.ResolveOptions{
		Picker:  datasource.InteractivePicker(base),
		Verbose: debug.Enabled(),
		Logger:  func(msg string) { debug.Log("%s", msg) },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading metafile: %v\n", err)
		if errors.Is(err, datasource.ErrNoMetafile) {
			fmt.Fprintln(os.Stderr, "Build with esbuild's --metafile=meta.json and pass the file or its directory.")
		}
		return 1
	}
	if err := config.AddRecent(source.Path); err != nil {
		debug.Log("recent: %v", err)
	}

	jobs := exportJobs{
		Snapshots: parseSnapshotPaths(*snapshotFlag),
		SQLite:    *sqliteFlag,
		Focus:     *focusFlag,
	}
	if !jobs.empty() {
		err := runExports(context.Background(), meta, cfg, jobs)
		printMetrics()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			return 1
		}
		return 0
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: the viewer needs a terminal; use --snapshot or --sqlite for non-interactive output")
		return 1
	}

	opts := ui.Options{
		Config: cfg,
		Source: source.String(),
		Focus:  *focusFlag,
		Reload: func() (*metafile.Metafile, error) {
			return datasource.LoadFromSource(source)
		},
	}
	if *watchFlag {
		w, err := startWatcher(source.Path, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: not watching %s: %v\n", source.Path, err)
		} else {
			defer w.Stop()
			opts.Watcher = w
		}
	}

	if debug.Enabled() {
		if f, err := openDebugLog(); err == nil {
			defer f.Close()
			debug.SetOutput(f)
		}
	}

	m := ui.NewModel(meta, opts)
	if err := runTUIProgram(m, cfg.MouseEnabled()); err != nil {
		fmt.Fprintf(os.Stderr, "Error running burst: %v\n", err)
		return 1
	}
	printMetrics()
	return 0
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: burst [options] [metafile.json|dir]")
	fmt.Fprintln(os.Stderr, "\nAn interactive sunburst of what makes up an esbuild bundle.")
	fmt.Fprintln(os.Stderr, "Without an argument the current directory and its dist/, build/ and out/ are searched.")
	fmt.Fprintln(os.Stderr)
	fs.PrintDefaults()
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// parseSnapshotPaths splits the --snapshot value, dropping blanks.
func parseSnapshotPaths(v string) []string {
	var paths []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// exportJobs lists the non-interactive outputs requested on the command line.
type exportJobs struct {
	Snapshots []string
	SQLite    string
	Focus     string
}

func (j exportJobs) empty() bool {
	return len(j.Snapshots) == 0 && j.SQLite == ""
}

// runExports builds the tree once and writes every requested output
// concurrently. The tree is read-only, so the writers share it.
func runExports(ctx context.Context, meta *metafile.Metafile, cfg config.Config, jobs exportJobs) error {
	debug.Section("exports")
	tree := sunburst.Build(meta, sunburst.BuildOptions{})

	var focus *sunburst.Node
	if jobs.Focus != "" {
		focus = tree.Lookup(jobs.Focus)
		if focus == nil {
			return fmt.Errorf("--focus %q: no such node in the bundle", jobs.Focus)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range jobs.Snapshots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := cfg.SnapshotPath(path)
			err := export.SaveSnapshot(export.SnapshotOptions{
				Path:   out,
				Title:  filepath.Base(out),
				Size:   cfg.Snapshot.Size,
				Tree:   tree,
				Focus:  focus,
				Radius: cfg.RadiusFunc(),
			})
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", out, err)
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		})
	}
	if jobs.SQLite != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := export.NewSQLiteExporter(tree, meta).Export(jobs.SQLite); err != nil {
				return fmt.Errorf("sqlite %s: %w", jobs.SQLite, err)
			}
			fmt.Printf("Wrote %s\n", jobs.SQLite)
			return nil
		})
	}
	return g.Wait()
}

func startWatcher(path string, cfg config.Config) (*watcher.Watcher, error) {
	w, err := watcher.NewWatcher(path,
		watcher.WithDebounceDuration(cfg.DebounceDuration()),
		watcher.WithForcePoll(cfg.Watch.ForcePoll),
		watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	if w.IsPolling() {
		debug.Log("watcher: polling %s every %s (%s)", path, w.PollInterval(), w.FilesystemType())
	}
	return w, nil
}

// openDebugLog moves debug output off the terminal while the viewer owns it.
func openDebugLog() (*os.File, error) {
	dir := config.StateDir()
	if dir == "" {
		return nil, fmt.Errorf("cannot determine state directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func printMetrics() {
	if debug.Enabled() && metrics.Enabled() {
		fmt.Fprint(os.Stderr, metrics.Summary())
	}
}

func runTUIProgram(m ui.Model, mouse bool) error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(m, opts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set BURST_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("BURST_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
