// Package heatmap renders 2D scalar fields as false-color heatmaps with a
// single textured-quad draw per frame.
//
// # Overview
//
// A heatmap is a row-major grid of float64 samples plus a gradient of color
// stops authored in the samples' own units. Rendering runs a short pipeline:
//
//	StreamBuffer -> Normalize -> Bake -> RenderPipeline -> Device.Draw
//
// Normalize quantizes the grid to one byte per sample against the observed
// min/max. Bake rescales the gradient's stop offsets into the same 0..1
// domain, so the same authored gradient yields different lookup tables for
// datasets with different ranges. The encoded grid becomes a single-channel
// texture and the baked gradient becomes uniform state; the fragment stage
// resolves every texel to a color.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/heatmap"
//	    "github.com/gogpu/heatmap/backend/software"
//	)
//
//	hm, err := heatmap.New(software.New(), heatmap.WithViewport(512, 512))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer hm.Close()
//
//	_ = hm.SetGradient(heatmap.Gradient{
//	    {Offset: 0, Color: heatmap.RGB(0, 0, 0)},
//	    {Offset: 100, Color: heatmap.RGB(1, 1, 1)},
//	})
//	_ = hm.SetData(samples, 128, 128)
//	_ = hm.Render()
//
// # Streaming
//
// AddRow appends or prepends one row at a time and can cap the number of
// rows kept, evicting from the opposite edge. This is the waterfall /
// spectrogram use case.
//
// # Lazy rebakes
//
// Setters only mark state dirty. Render resolves the dirty stages before
// drawing, so several property changes in one frame cost one rebake.
// WithEagerRebake restores recomputation inside each setter.
//
// # Coordinate System
//
//   - Origin (0,0) at the top-left of the viewport
//   - Grid row 0 is drawn at the top
//   - Transposed mode swaps which screen axis maps to which grid axis
package heatmap
