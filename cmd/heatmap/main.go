// Command heatmap renders synthetic heatmap scenarios headlessly and writes
// the frames to disk.
//
// Usage:
//
//	heatmap -scenario serpent -frames 300 -every 30 -format webp
//	heatmap -config heatmap.toml -backend software
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/backend"
	_ "github.com/gogpu/heatmap/backend/software"
	_ "github.com/gogpu/heatmap/backend/wgpu"
	"github.com/gogpu/heatmap/config"
	"github.com/gogpu/heatmap/internal/export"
	"github.com/gogpu/heatmap/internal/synth"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "heatmap:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "TOML config file (defaults apply when empty)")
		scenario   = fs.String("scenario", "", "data scenario: "+strings.Join(synth.Names(), ", "))
		frames     = fs.Int("frames", 0, "number of frames to render")
		seed       = fs.Int64("seed", 0, "random seed")
		backendArg = fs.String("backend", "", "backend name: "+strings.Join(backend.Available(), ", ")+" (default: best available)")
		outDir     = fs.String("out", "", "output directory")
		format     = fs.String("format", "", "output format: png, webp, tga")
		every      = fs.Int("every", 0, "write every Nth frame (0: last frame only)")
		width      = fs.Int("width", 0, "viewport width")
		height     = fs.Int("height", 0, "viewport height")
		cols       = fs.Int("cols", 0, "grid columns")
		rows       = fs.Int("rows", 0, "grid rows")
		preset     = fs.String("preset", "", "gradient preset: "+strings.Join(heatmap.PresetNames(), ", "))
		transposed = fs.Bool("transposed", false, "swap screen axes")
		verbose    = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags override the file only when given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scenario":
			cfg.Scenario.Name = *scenario
		case "frames":
			cfg.Scenario.Frames = *frames
		case "seed":
			cfg.Scenario.Seed = *seed
		case "backend":
			cfg.Render.Backend = *backendArg
		case "out":
			cfg.Output.Dir = *outDir
		case "format":
			cfg.Output.Format = *format
		case "every":
			cfg.Output.Every = *every
		case "width":
			cfg.Viewport.Width = *width
		case "height":
			cfg.Viewport.Height = *height
		case "cols":
			cfg.Grid.Width = *cols
		case "rows":
			cfg.Grid.Height = *rows
		case "preset":
			cfg.Gradient = config.GradientConfig{Preset: *preset}
		case "transposed":
			cfg.Render.Transposed = *transposed
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	heatmap.SetLogger(logger)

	return render(cfg, logger)
}

func openDevice(name string) (heatmap.Device, error) {
	if name == "" {
		return backend.InitDefault()
	}
	d := backend.Get(name)
	if d == nil {
		return nil, fmt.Errorf("%w: %q (available: %v)", backend.ErrBackendNotAvailable, name, backend.Available())
	}
	return d, nil
}

func render(cfg *config.Config, logger *slog.Logger) error {
	dev, err := openDevice(cfg.Render.Backend)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	hm, err := heatmap.New(dev, opts...)
	if err != nil {
		return err
	}
	defer hm.Close()

	sc, err := synth.New(cfg.Scenario.Name, cfg.Grid.Width, cfg.Grid.Height, cfg.Scenario.Seed)
	if err != nil {
		return err
	}
	gradient, err := cfg.GradientStops()
	if err != nil {
		return err
	}
	if gradient == nil {
		gradient = sc.Gradient()
	}
	if err := hm.SetGradient(gradient); err != nil {
		return err
	}
	if err := hm.SetTransposed(cfg.Render.Transposed); err != nil {
		return err
	}

	fw, err := cfg.FrameWriter()
	if err != nil {
		return err
	}

	logger.Info("rendering",
		"scenario", sc.Name(),
		"backend", dev.Name(),
		"grid", fmt.Sprintf("%dx%d", cfg.Grid.Width, cfg.Grid.Height),
		"frames", cfg.Scenario.Frames)

	var (
		written   int
		totalSize int64
		start     = time.Now()
	)
	for i := range cfg.Scenario.Frames {
		if err := sc.Step(hm); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if i == 0 && cfg.FitPresetToData() {
			if lo, hi, ok := hm.Range(); ok && hi > lo {
				if err := hm.SetGradient(gradient.Rescale(lo, hi)); err != nil {
					return err
				}
			}
		}
		if err := hm.Render(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		last := i == cfg.Scenario.Frames-1
		if !last && (cfg.Output.Every == 0 || i%cfg.Output.Every != 0) {
			continue
		}
		n, err := writeFrame(hm, fw, i)
		if errors.Is(err, heatmap.ErrNoFrameReader) {
			logger.Warn("backend cannot read frames back, nothing written", "backend", dev.Name())
			break
		}
		if err != nil {
			return err
		}
		written++
		totalSize += n
	}

	elapsed := time.Since(start)
	fps := 0.0
	if elapsed > 0 {
		fps = float64(cfg.Scenario.Frames) / elapsed.Seconds()
	}
	logger.Info("done",
		"frames", humanize.Comma(int64(cfg.Scenario.Frames)),
		"samples", humanize.Comma(int64(cfg.Grid.Width*cfg.Grid.Height*cfg.Scenario.Frames)),
		"elapsed", elapsed.Round(time.Millisecond),
		"fps", fmt.Sprintf("%.1f", fps),
		"written", written,
		"size", humanize.IBytes(uint64(totalSize))) //nolint:gosec // sizes are non-negative
	return nil
}

func writeFrame(hm *heatmap.Heatmap, fw *export.FrameWriter, i int) (int64, error) {
	img, err := hm.Snapshot()
	if err != nil {
		return 0, err
	}
	path, n, err := fw.WriteFrame(i, img)
	if err != nil {
		return 0, err
	}
	heatmap.Logger().Debug("frame written", "path", path, "size", humanize.IBytes(uint64(n))) //nolint:gosec // n >= 0
	return n, nil
}
