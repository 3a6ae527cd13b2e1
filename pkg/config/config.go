// Package config handles loading and saving burst configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/burst/config.yaml
//   - State:   ~/.local/state/burst/ (recently opened metafiles)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/burst/pkg/sunburst"
)

// AnimationConfig controls zoom transitions.
type AnimationConfig struct {
	DurationMS int `yaml:"duration_ms,omitempty"` // Zoom transition length
	FrameMS    int `yaml:"frame_ms,omitempty"`    // Frame tick interval in the terminal viewer
}

// RadiusConfig shapes the ring radii.
type RadiusConfig struct {
	Scale   float64 `yaml:"scale,omitempty"`
	Divisor float64 `yaml:"divisor,omitempty"`
}

// SnapshotConfig holds defaults for --snapshot.
type SnapshotConfig struct {
	Size int    `yaml:"size,omitempty"` // Chart side in pixels
	Dir  string `yaml:"dir,omitempty"`  // Directory for relative snapshot paths
}

// UIConfig holds terminal viewer preferences.
type UIConfig struct {
	PanelWidth int   `yaml:"panel_width,omitempty"` // Side panel columns
	Mouse      *bool `yaml:"mouse,omitempty"`       // Mouse hover and click (default on)
}

// WatchConfig controls metafile reloading.
type WatchConfig struct {
	DebounceMS int  `yaml:"debounce_ms,omitempty"`
	ForcePoll  bool `yaml:"force_poll,omitempty"`
}

// Config is the top-level configuration for burst.
type Config struct {
	Animation AnimationConfig `yaml:"animation,omitempty"`
	Radius    RadiusConfig    `yaml:"radius,omitempty"`
	Snapshot  SnapshotConfig  `yaml:"snapshot,omitempty"`
	UI        UIConfig        `yaml:"ui,omitempty"`
	Watch     WatchConfig     `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	r := sunburst.DefaultRadius()
	return Config{
		Animation: AnimationConfig{
			DurationMS: int(sunburst.DefaultAnimationDuration / time.Millisecond),
			FrameMS:    16,
		},
		Radius: RadiusConfig{
			Scale:   r.Scale,
			Divisor: r.Divisor,
		},
		Snapshot: SnapshotConfig{
			Size: 800,
		},
		UI: UIConfig{
			PanelWidth: 36,
		},
		Watch: WatchConfig{
			DebounceMS: 200,
		},
	}
}

// ConfigDir returns the XDG config directory for burst.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "burst")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "burst")
}

// StateDir returns the XDG state directory for burst.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "burst")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "burst")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Keys missing from the file keep
// their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Snapshot.Dir = expandHome(cfg.Snapshot.Dir)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate reports every out-of-range value.
func (c Config) Validate() error {
	var errs []error
	if c.Animation.DurationMS <= 0 {
		errs = append(errs, fmt.Errorf("animation.duration_ms must be positive, got %d", c.Animation.DurationMS))
	}
	if c.Animation.FrameMS <= 0 {
		errs = append(errs, fmt.Errorf("animation.frame_ms must be positive, got %d", c.Animation.FrameMS))
	}
	if c.Radius.Scale <= 0 {
		errs = append(errs, fmt.Errorf("radius.scale must be positive, got %g", c.Radius.Scale))
	}
	if c.Radius.Divisor <= 0 {
		errs = append(errs, fmt.Errorf("radius.divisor must be positive, got %g", c.Radius.Divisor))
	}
	if c.Snapshot.Size < 64 {
		errs = append(errs, fmt.Errorf("snapshot.size must be at least 64, got %d", c.Snapshot.Size))
	}
	if c.UI.PanelWidth < 16 {
		errs = append(errs, fmt.Errorf("ui.panel_width must be at least 16, got %d", c.UI.PanelWidth))
	}
	if c.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS))
	}
	return errors.Join(errs...)
}

// AnimationDuration is the configured zoom transition length.
func (c Config) AnimationDuration() time.Duration {
	return time.Duration(c.Animation.DurationMS) * time.Millisecond
}

// FrameInterval is the terminal viewer's tick interval.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.Animation.FrameMS) * time.Millisecond
}

// DebounceDuration is the watcher's quiet period.
func (c Config) DebounceDuration() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// RadiusFunc returns the configured ring radius function.
func (c Config) RadiusFunc() sunburst.RadiusFunc {
	return sunburst.RadiusFunc{Scale: c.Radius.Scale, Divisor: c.Radius.Divisor}
}

// MouseEnabled reports whether mouse input is on (the default).
func (c Config) MouseEnabled() bool {
	return c.UI.Mouse == nil || *c.UI.Mouse
}

// SnapshotPath resolves a relative snapshot path against Snapshot.Dir.
func (c Config) SnapshotPath(path string) string {
	if c.Snapshot.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Snapshot.Dir, path)
}

const maxRecent = 10

func recentPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "recent.yaml")
}

// LoadRecent returns recently opened metafiles, most recent first.
func LoadRecent() []string {
	path := recentPath()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var recent []string
	if err := yaml.Unmarshal(data, &recent); err != nil {
		return nil
	}
	return recent
}

// AddRecent records path as the most recently opened metafile.
func AddRecent(path string) error {
	file := recentPath()
	if file == "" {
		return fmt.Errorf("cannot determine state directory")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	recent := slices.DeleteFunc(LoadRecent(), func(p string) bool { return p == abs })
	recent = append([]string{abs}, recent...)
	if len(recent) > maxRecent {
		recent = recent[:maxRecent]
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(recent)
	if err != nil {
		return fmt.Errorf("marshaling recent list: %w", err)
	}
	return os.WriteFile(file, data, 0o644)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
