// Command heatview shows a live heatmap in a desktop window.
//
// The software backend renders each frame; the window only presents the
// pixels. With the brush scenario, drag with the left mouse button to
// paint. Keys: T toggles the transposed layout, Space pauses, C clears
// the brush canvas, minus and equals step the opacity down and up.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/backend/software"
	"github.com/gogpu/heatmap/internal/synth"
)

func main() {
	var (
		scenario = flag.String("scenario", "brush", "data scenario: "+strings.Join(synth.Names(), ", "))
		cols     = flag.Int("cols", 128, "grid columns")
		rows     = flag.Int("rows", 128, "grid rows")
		width    = flag.Int("width", 640, "initial window width")
		height   = flag.Int("height", 640, "initial window height")
		seed     = flag.Int64("seed", 1, "random seed")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	heatmap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	g, err := newViewer(*scenario, *cols, *rows, *width, *height, *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "heatview:", err)
		os.Exit(1)
	}
	defer g.hm.Close()

	ebiten.SetWindowTitle("heatview: " + *scenario)
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintln(os.Stderr, "heatview:", err)
		os.Exit(1)
	}
}

// viewer implements ebiten.Game on top of a software-rendered Heatmap.
type viewer struct {
	hm       *heatmap.Heatmap
	dev      *software.Device
	scenario synth.Scenario
	brush    *synth.BrushScenario
	paused   bool

	width, height int
	frame         *ebiten.Image
}

func newViewer(name string, cols, rows, width, height int, seed int64) (*viewer, error) {
	sc, err := synth.New(name, cols, rows, seed)
	if err != nil {
		return nil, err
	}
	dev := software.New()
	hm, err := heatmap.New(dev, heatmap.WithViewport(width, height))
	if err != nil {
		return nil, err
	}
	if err := hm.SetGradient(sc.Gradient()); err != nil {
		hm.Close()
		return nil, err
	}

	v := &viewer{hm: hm, dev: dev, scenario: sc, width: width, height: height}
	if bs, ok := sc.(*synth.BrushScenario); ok {
		v.brush = bs
		if err := bs.Sync(hm); err != nil {
			hm.Close()
			return nil, err
		}
		if err := hm.Render(); err != nil {
			hm.Close()
			return nil, err
		}
	}
	return v, nil
}

const opacityStep = 0.1

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		if err := v.hm.SetTransposed(!v.hm.Transposed()); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	for key, step := range map[ebiten.Key]float32{ebiten.KeyMinus: -opacityStep, ebiten.KeyEqual: opacityStep} {
		if inpututil.IsKeyJustPressed(key) {
			if err := v.hm.SetOpacity(v.hm.Opacity() + step); err != nil {
				return err
			}
		}
	}

	if v.brush != nil {
		return v.updateBrush()
	}
	if v.paused {
		return nil
	}
	if err := v.scenario.Step(v.hm); err != nil {
		return err
	}
	return v.hm.Render()
}

func (v *viewer) updateBrush() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		name := v.scenario.Name()
		sc, err := synth.New(name, v.hm.Width(), v.hm.Height(), 0)
		if err != nil {
			return err
		}
		v.scenario = sc
		v.brush = sc.(*synth.BrushScenario)
		if err := v.brush.Sync(v.hm); err != nil {
			return err
		}
		return v.hm.Render()
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return nil
	}
	x, y := ebiten.CursorPosition()
	p := v.hm.Pick(float64(x), float64(y))
	if !p.OK {
		return nil
	}
	if err := v.brush.PaintAt(v.hm, p.X, p.Y); err != nil {
		return err
	}
	return v.hm.Render()
}

func (v *viewer) Draw(screen *ebiten.Image) {
	img, err := v.dev.ReadFrame()
	if err != nil {
		heatmap.Logger().Warn("heatview: read frame", "err", err)
		return
	}
	b := img.Bounds()
	if b.Empty() {
		return
	}
	if v.frame == nil || v.frame.Bounds() != image.Rect(0, 0, b.Dx(), b.Dy()) {
		if v.frame != nil {
			v.frame.Deallocate()
		}
		v.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	// Both sides use premultiplied alpha.
	v.frame.WritePixels(img.Pix)
	screen.DrawImage(v.frame, nil)
}

// Layout tracks the window size one to one, resizing the heatmap viewport.
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.width || outsideHeight != v.height {
		if err := v.hm.Resize(outsideWidth, outsideHeight); err != nil {
			heatmap.Logger().Warn("heatview: resize", "err", err)
			return v.width, v.height
		}
		v.width, v.height = outsideWidth, outsideHeight
	}
	return v.width, v.height
}
