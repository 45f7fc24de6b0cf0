//go:build !nogpu

package wgpu

import _ "embed"

// heatmapShaderWGSL renders the data texture through the gradient table.
//
//go:embed shaders/heatmap.wgsl
var heatmapShaderWGSL string
