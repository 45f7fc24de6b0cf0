// Package config loads heatmap command configuration from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/internal/export"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config is the top-level configuration.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Grid     GridConfig     `toml:"grid"`
	Stream   StreamConfig   `toml:"stream"`
	Gradient GradientConfig `toml:"gradient"`
	Render   RenderConfig   `toml:"render"`
	Output   OutputConfig   `toml:"output"`
	Scenario ScenarioConfig `toml:"scenario"`
}

// ViewportConfig is the render target size in pixels.
type ViewportConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// GridConfig is the sample grid size.
type GridConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// StreamConfig controls AddRow.
type StreamConfig struct {
	// MaxRows caps the history; 0 keeps every row.
	MaxRows   int    `toml:"max_rows"`
	Direction string `toml:"direction"`
}

// GradientConfig selects a preset or lists explicit stops. Stops win when
// both are set; with neither, commands use the scenario's own gradient. With a preset, Min and Max give the data range the preset
// is stretched over; both zero leaves it in [0, 1].
type GradientConfig struct {
	Preset string       `toml:"preset"`
	Min    float64      `toml:"min"`
	Max    float64      `toml:"max"`
	Stops  []StopConfig `toml:"stops"`
}

// StopConfig is one gradient stop. Color is "#RGB", "#RGBA", "#RRGGBB" or
// "#RRGGBBAA"; Alpha, when set, overrides the color's alpha.
type StopConfig struct {
	Color  string   `toml:"color"`
	Alpha  *float64 `toml:"alpha"`
	Offset float64  `toml:"offset"`
}

// RenderConfig holds device and pipeline settings.
type RenderConfig struct {
	// Backend is a registered backend name; empty picks the default.
	Backend    string  `toml:"backend"`
	Opacity    float64 `toml:"opacity"`
	Filter     string  `toml:"filter"`
	Transposed bool    `toml:"transposed"`
	Eager      bool    `toml:"eager"`
}

// OutputConfig controls frame export.
type OutputConfig struct {
	Dir    string  `toml:"dir"`
	Prefix string  `toml:"prefix"`
	Format string  `toml:"format"`
	Scale  float64 `toml:"scale"`
	Smooth bool    `toml:"smooth"`
	// Every writes one frame out of every N; 0 writes only the last.
	Every int `toml:"every"`
}

// ScenarioConfig selects the synthetic data source.
type ScenarioConfig struct {
	Name   string `toml:"name"`
	Frames int    `toml:"frames"`
	Seed   int64  `toml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: 512, Height: 512},
		Grid:     GridConfig{Width: 128, Height: 128},
		Stream:   StreamConfig{MaxRows: 128, Direction: "start"},
		Render:   RenderConfig{Opacity: 1, Filter: "linear"},
		Output:   OutputConfig{Dir: "frames", Prefix: "frame-", Format: "png", Scale: 1},
		Scenario: ScenarioConfig{Name: "pulse", Frames: 60, Seed: 1},
	}
}

// DefaultPath returns the default config file path using XDG conventions.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "heatmap", "config.toml")
}

// Load reads the file at path over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	cfg.Output.Dir = expandPath(cfg.Output.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandPath expands ~ to $HOME and then expands all environment variables.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = "$HOME" + path[1:]
	}
	return os.ExpandEnv(path)
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, c.Viewport.Width, c.Viewport.Height)
	}
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalid, c.Grid.Width, c.Grid.Height)
	}
	if c.Stream.MaxRows < 0 {
		return fmt.Errorf("%w: stream.max_rows %d", ErrInvalid, c.Stream.MaxRows)
	}
	if _, err := c.Direction(); err != nil {
		return fmt.Errorf("%w: stream.direction: %w", ErrInvalid, err)
	}
	if _, err := c.GradientStops(); err != nil {
		return fmt.Errorf("%w: gradient: %w", ErrInvalid, err)
	}
	if c.Render.Opacity < 0 || c.Render.Opacity > 1 {
		return fmt.Errorf("%w: render.opacity %v not in [0, 1]", ErrInvalid, c.Render.Opacity)
	}
	if _, err := c.Filter(); err != nil {
		return fmt.Errorf("%w: render.filter: %w", ErrInvalid, err)
	}
	if _, err := c.Format(); err != nil {
		return fmt.Errorf("%w: output.format: %w", ErrInvalid, err)
	}
	if c.Output.Scale < 0 || c.Output.Every < 0 {
		return fmt.Errorf("%w: output.scale %v, output.every %d", ErrInvalid, c.Output.Scale, c.Output.Every)
	}
	if c.Scenario.Frames < 0 {
		return fmt.Errorf("%w: scenario.frames %d", ErrInvalid, c.Scenario.Frames)
	}
	return nil
}

// Direction parses stream.direction.
func (c *Config) Direction() (heatmap.Direction, error) {
	return heatmap.ParseDirection(strings.ToLower(c.Stream.Direction))
}

// Filter parses render.filter: "linear" (default when empty) or "nearest".
func (c *Config) Filter() (heatmap.FilterMode, error) {
	switch strings.ToLower(c.Render.Filter) {
	case "", "linear":
		return heatmap.FilterLinear, nil
	case "nearest":
		return heatmap.FilterNearest, nil
	default:
		return 0, fmt.Errorf("unknown filter %q", c.Render.Filter)
	}
}

// Format parses output.format.
func (c *Config) Format() (export.Format, error) {
	return export.ParseFormat(c.Output.Format)
}

// GradientStops builds and validates the configured gradient. It returns
// nil without error when neither stops nor a preset are set, leaving the
// choice to the caller.
func (c *Config) GradientStops() (heatmap.Gradient, error) {
	gc := c.Gradient
	if len(gc.Stops) > 0 {
		g := make(heatmap.Gradient, len(gc.Stops))
		for i, s := range gc.Stops {
			col, err := heatmap.ParseHex(s.Color)
			if err != nil {
				return nil, fmt.Errorf("stop %d: %w", i, err)
			}
			if s.Alpha != nil {
				col.A = *s.Alpha
			}
			g[i] = heatmap.Stop{Color: col, Offset: s.Offset}
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return g, nil
	}
	if gc.Preset == "" {
		return nil, nil
	}
	g, ok := heatmap.Preset(gc.Preset)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", gc.Preset, heatmap.PresetNames())
	}
	if gc.Min != 0 || gc.Max != 0 {
		if gc.Max <= gc.Min {
			return nil, fmt.Errorf("preset range [%v, %v] is empty", gc.Min, gc.Max)
		}
		g = g.Rescale(gc.Min, gc.Max)
	}
	return g, nil
}

// Options returns the heatmap options for this configuration.
func (c *Config) Options() ([]heatmap.Option, error) {
	filter, err := c.Filter()
	if err != nil {
		return nil, err
	}
	opts := []heatmap.Option{
		heatmap.WithViewport(c.Viewport.Width, c.Viewport.Height),
		heatmap.WithOpacity(float32(c.Render.Opacity)),
		heatmap.WithFilter(filter),
	}
	if c.Render.Eager {
		opts = append(opts, heatmap.WithEagerRebake())
	}
	return opts, nil
}

// FrameWriter returns the exporter for output frames.
func (c *Config) FrameWriter() (*export.FrameWriter, error) {
	f, err := c.Format()
	if err != nil {
		return nil, err
	}
	return &export.FrameWriter{
		Dir:    c.Output.Dir,
		Prefix: c.Output.Prefix,
		Format: f,
		Scale:  c.Output.Scale,
		Smooth: c.Output.Smooth,
	}, nil
}

// FitPresetToData reports whether the configured gradient is a preset
// without an explicit range, which commands stretch over the data range.
func (c *Config) FitPresetToData() bool {
	gc := c.Gradient
	return len(gc.Stops) == 0 && gc.Preset != "" && gc.Min == 0 && gc.Max == 0
}
