package heatmap

import (
	"image/color"
	"slices"
	"strings"

	"golang.org/x/image/colornames"
)

// Presets are authored in [0, 1]; fit them to a dataset with Rescale.
var presets = map[string]Gradient{
	"grayscale": {
		{Offset: 0, Color: Black},
		{Offset: 1, Color: White},
	},
	// Spectrogram palette: black floor, blue/green mid band, yellow/red peaks.
	"spectral": {
		{Offset: 0, Color: RGB8(0, 0, 0, 1)},
		{Offset: 0.20, Color: RGB8(0, 0, 255, 1)},
		{Offset: 0.24, Color: RGB8(0, 255, 0, 1)},
		{Offset: 0.65, Color: RGB8(255, 255, 0, 1)},
		{Offset: 1, Color: RGB8(255, 0, 0, 1)},
	},
	// Transparent-to-hot overlay for painting on top of other content.
	"heat": {
		{Offset: 0, Color: RGB8(255, 255, 255, 0)},
		{Offset: 0.33, Color: RGB8(224, 249, 18, 0.33)},
		{Offset: 0.66, Color: RGB8(255, 166, 0, 0.66)},
		{Offset: 1, Color: RGB8(253, 107, 29, 1)},
	},
	"waterfall": evenly(
		colornames.Darkblue, colornames.Blue, colornames.Green,
		colornames.Yellow, colornames.Red, colornames.White,
	),
	"viridis": evenly(
		color.RGBA{68, 1, 84, 255},
		color.RGBA{72, 35, 116, 255},
		color.RGBA{64, 67, 135, 255},
		color.RGBA{52, 94, 141, 255},
		color.RGBA{41, 120, 142, 255},
		color.RGBA{32, 144, 140, 255},
		color.RGBA{34, 167, 132, 255},
		color.RGBA{68, 190, 112, 255},
		color.RGBA{121, 209, 81, 255},
		color.RGBA{189, 222, 38, 255},
		color.RGBA{253, 231, 37, 255},
	),
	"inferno": evenly(
		color.RGBA{0, 0, 4, 255},
		color.RGBA{40, 11, 84, 255},
		color.RGBA{101, 21, 110, 255},
		color.RGBA{159, 42, 99, 255},
		color.RGBA{212, 72, 66, 255},
		color.RGBA{245, 125, 21, 255},
		color.RGBA{250, 193, 39, 255},
		color.RGBA{252, 255, 164, 255},
	),
}

// evenly spaces colors across [0, 1].
func evenly(colors ...color.Color) Gradient {
	g := make(Gradient, len(colors))
	for i, c := range colors {
		off := 0.0
		if len(colors) > 1 {
			off = float64(i) / float64(len(colors)-1)
		}
		g[i] = Stop{Offset: off, Color: FromColor(c)}
	}
	return g
}

// Preset returns a copy of the named built-in gradient in [0, 1] units.
// Lookup is case-insensitive.
func Preset(name string) (Gradient, bool) {
	g, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// PresetNames lists the built-in gradients in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
