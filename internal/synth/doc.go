// Package synth generates synthetic sample grids for demos and benchmarks.
//
// Each Scenario owns its grid geometry, a gradient authored in the data's
// native units and a deterministic random source, and advances a Heatmap
// by one frame per Step.
package synth
