package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/heatmap"
)

// Uniform block layout, matching struct Uniforms in heatmap.wgsl:
//
//	offset   0: resolution vec2<f32>
//	offset   8: stop_count u32
//	offset  12: opacity    f32
//	offset  16: colors     array<vec4<f32>, 16>
//	offset 272: offsets    array<vec4<f32>, 16> (only .x used)
const (
	uniformColorsOffset  = 16
	uniformOffsetsOffset = uniformColorsOffset + heatmap.MaxStops*16
	uniformSize          = uniformOffsetsOffset + heatmap.MaxStops*16
)

// vertexStride is two vec2<f32>: position then tex_coord.
const vertexStride = 16

// packUniforms serializes u into the std140-style layout above.
func packUniforms(u *heatmap.Uniforms) []byte {
	buf := make([]byte, uniformSize)
	putF32(buf[0:], u.Resolution[0])
	putF32(buf[4:], u.Resolution[1])
	binary.LittleEndian.PutUint32(buf[8:], min(u.StopCount, heatmap.MaxStops))
	putF32(buf[12:], u.Opacity)

	for i := range heatmap.MaxStops {
		o := uniformColorsOffset + i*16
		for c := range 4 {
			putF32(buf[o+c*4:], u.Colors[i][c])
		}
		putF32(buf[uniformOffsetsOffset+i*16:], u.Offsets[i])
	}
	return buf
}

// packVertices serializes the quad as interleaved float32 pairs.
func packVertices(vertices []heatmap.Vertex) []byte {
	buf := make([]byte, len(vertices)*vertexStride)
	for i, v := range vertices {
		o := i * vertexStride
		putF32(buf[o:], float32(v.Position.X))
		putF32(buf[o+4:], float32(v.Position.Y))
		putF32(buf[o+8:], float32(v.TexCoord.X))
		putF32(buf[o+12:], float32(v.TexCoord.Y))
	}
	return buf
}

func putF32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}
