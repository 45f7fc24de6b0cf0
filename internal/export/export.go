// Package export encodes rendered heatmap frames to image files.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format is an output image encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatWebP
	FormatTGA
)

var formatNames = [...]string{
	FormatPNG:  "png",
	FormatWebP: "webp",
	FormatTGA:  "tga",
}

// String returns the lower-case format name, which is also the file
// extension.
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + f.String() }

// ParseFormat parses "png", "webp" or "tga", case-insensitively.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatTGA:
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("%s encode: %w", f, err)
	}
	return nil
}

// Scale resizes img by factor. Nearest-neighbor keeps grid cells crisp
// when enlarging; smooth selects CatmullRom instead. A factor of 1 (or a
// result smaller than one pixel) returns img unchanged.
func Scale(img *image.RGBA, factor float64, smooth bool) *image.RGBA {
	b := img.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if factor == 1 || w < 1 || h < 1 {
		return img
	}
	var scaler draw.Scaler = draw.NearestNeighbor
	if smooth {
		scaler = draw.CatmullRom
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// FrameWriter writes numbered frames into a directory.
type FrameWriter struct {
	Dir    string
	Prefix string
	Format Format
	Scale  float64
	Smooth bool
}

// Path returns the file path of frame n.
func (fw *FrameWriter) Path(n int) string {
	return filepath.Join(fw.Dir, fmt.Sprintf("%s%05d%s", fw.Prefix, n, fw.Format.Ext()))
}

// WriteFrame encodes img as frame n and returns the path and the number of
// bytes written.
func (fw *FrameWriter) WriteFrame(n int, img *image.RGBA) (string, int64, error) {
	if fw.Scale > 0 {
		img = Scale(img, fw.Scale, fw.Smooth)
	}
	if err := os.MkdirAll(fw.Dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}

	path := fw.Path(n)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create frame: %w", err)
	}
	defer f.Close()

	cw := &countingWriter{w: f}
	bw := bufio.NewWriter(cw)
	if err := Encode(bw, img, fw.Format); err != nil {
		return "", 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return "", 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("%s: %w", path, err)
	}
	return path, cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
