package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/gogpu/heatmap"
)

// ErrUnknownScenario is returned by New for an unregistered name.
var ErrUnknownScenario = errors.New("synth: unknown scenario")

// Scenario drives a Heatmap with synthetic data, one frame per Step.
type Scenario interface {
	// Name returns the scenario identifier.
	Name() string

	// Gradient returns the gradient the scenario's values are authored
	// against.
	Gradient() heatmap.Gradient

	// Step pushes the next frame of data into hm.
	Step(hm *heatmap.Heatmap) error
}

type factory func(width, height int, rng *rand.Rand) Scenario

var scenarios = map[string]factory{
	"random":  newRandom,
	"pulse":   newPulse,
	"serpent": newSerpent,
	"stream":  newStream,
	"brush":   newBrushScenario,
}

// Names lists the available scenarios in sorted order.
func Names() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the named scenario for a width x height grid. The same seed
// always yields the same frames.
func New(name string, width, height int, seed int64) (Scenario, error) {
	f, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScenario, name, Names())
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", heatmap.ErrGridSize, width, height)
	}
	return f(width, height, rand.New(rand.NewSource(seed))), nil //nolint:gosec // demo data
}

// random replaces the whole grid with uniform noise every frame.
type random struct {
	width, height int
	rng           *rand.Rand
	data          []float64
}

const randomPeak = 10000

func newRandom(width, height int, rng *rand.Rand) Scenario {
	return &random{width: width, height: height, rng: rng, data: make([]float64, width*height)}
}

func (s *random) Name() string { return "random" }

func (s *random) Gradient() heatmap.Gradient {
	g, _ := heatmap.Preset("grayscale")
	return g.Rescale(0, randomPeak)
}

func (s *random) Step(hm *heatmap.Heatmap) error {
	for i := range s.data {
		s.data[i] = s.rng.Float64() * randomPeak
	}
	return hm.SetData(s.data, s.width, s.height)
}

// pulse is a Gaussian blob wandering over the grid with a breathing
// radius.
type pulse struct {
	width, height int
	frame         int
	data          []float64
}

const pulsePeak = 300

func newPulse(width, height int, _ *rand.Rand) Scenario {
	return &pulse{width: width, height: height, data: make([]float64, width*height)}
}

func (s *pulse) Name() string { return "pulse" }

func (s *pulse) Gradient() heatmap.Gradient {
	return heatmap.Gradient{
		{Offset: 0, Color: heatmap.RGB8(84, 33, 119, 1)},
		{Offset: 100, Color: heatmap.RGB8(253, 29, 29, 1)},
		{Offset: 200, Color: heatmap.RGB8(255, 166, 0, 1)},
		{Offset: 300, Color: heatmap.RGB8(224, 249, 18, 1)},
	}
}

func (s *pulse) Step(hm *heatmap.Heatmap) error {
	f := float64(s.frame)
	cx := SmoothNoise(f, 0.2, 0.8)
	cy := SmoothNoise(f+392759237, 0.2, 0.8)
	size := SmoothNoise(f+2473214, 0.01, 0.2)
	s.frame++

	for y := range s.height {
		fy := NormalCurve(float64(y)/float64(s.height), 1, cy, size)
		row := s.data[y*s.width : (y+1)*s.width]
		for x := range row {
			row[x] = NormalCurve(float64(x)/float64(s.width), 1, cx, size) * fy * pulsePeak
		}
	}
	return hm.SetData(s.data, s.width, s.height)
}

// serpent streams noisy Gaussian rows whose center meanders, so the
// history scrolls like a snake.
type serpent struct {
	width, height int
	frame         int
	rng           *rand.Rand
}

const serpentPeak = 400

func newSerpent(width, height int, rng *rand.Rand) Scenario {
	return &serpent{width: width, height: height, rng: rng}
}

func (s *serpent) Name() string { return "serpent" }

func (s *serpent) Gradient() heatmap.Gradient {
	return heatmap.Gradient{
		{Offset: 0, Color: heatmap.RGB8(0, 0, 0, 1)},
		{Offset: 100, Color: heatmap.RGB8(0, 0, 255, 1)},
		{Offset: 200, Color: heatmap.RGB8(0, 255, 0, 1)},
		{Offset: 300, Color: heatmap.RGB8(255, 255, 0, 1)},
		{Offset: 400, Color: heatmap.RGB8(255, 0, 0, 1)},
	}
}

// Row returns the next row without touching a heatmap.
func (s *serpent) Row() []float64 {
	f := float64(s.frame)
	w := float64(s.width)
	mean := SmoothNoise(f*0.5, w/4, w*3/4)
	stdDev := math.Max(SmoothNoise(f*2+9832569, w/40, w/20), 1)
	s.frame++

	row := make([]float64, s.width)
	for x := range row {
		row[x] = NormalCurve(float64(x), serpentPeak, mean, stdDev) * s.rng.Float64()
	}
	return row
}

func (s *serpent) Step(hm *heatmap.Heatmap) error {
	return hm.AddRow(s.Row(), s.height, heatmap.DirectionStart)
}

// stream pushes rows of uniform noise, spectrogram style.
type stream struct {
	width, height int
	rng           *rand.Rand
}

func newStream(width, height int, rng *rand.Rand) Scenario {
	return &stream{width: width, height: height, rng: rng}
}

func (s *stream) Name() string { return "stream" }

func (s *stream) Gradient() heatmap.Gradient {
	g, _ := heatmap.Preset("spectral")
	return g.Rescale(0, randomPeak)
}

func (s *stream) Step(hm *heatmap.Heatmap) error {
	row := make([]float64, s.width)
	for x := range row {
		row[x] = s.rng.Float64() * randomPeak
	}
	return hm.AddRow(row, s.height, heatmap.DirectionStart)
}

// BrushScenario paints into a grid of values in [0, 1]. Step moves the
// brush along a Lissajous path; hosts with a pointer call PaintAt instead.
type BrushScenario struct {
	width, height int
	frame         int
	brush         Brush
	data          []float64
}

func newBrushScenario(width, height int, _ *rand.Rand) Scenario {
	return &BrushScenario{
		width:  width,
		height: height,
		brush:  NewBrush(),
		data:   make([]float64, width*height),
	}
}

func (s *BrushScenario) Name() string { return "brush" }

func (s *BrushScenario) Gradient() heatmap.Gradient {
	g, _ := heatmap.Preset("heat")
	return g
}

// PaintAt dabs the brush on cell (col, row) and uploads the grid.
func (s *BrushScenario) PaintAt(hm *heatmap.Heatmap, col, row float64) error {
	s.brush.Paint(s.data, s.width, s.height, col, row)
	return s.Sync(hm)
}

// Sync uploads the current canvas without painting, so an untouched grid
// can already be picked.
func (s *BrushScenario) Sync(hm *heatmap.Heatmap) error {
	return hm.SetData(s.data, s.width, s.height)
}

func (s *BrushScenario) Step(hm *heatmap.Heatmap) error {
	t := float64(s.frame) * 0.05
	s.frame++
	col := (0.5 + 0.4*math.Sin(3*t)) * float64(s.width-1)
	row := (0.5 + 0.4*math.Sin(2*t)) * float64(s.height-1)
	return s.PaintAt(hm, col, row)
}
