package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
)

func testFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 200), B: 40, A: 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"WebP", FormatWebP, false},
		{"tga", FormatTGA, false},
		{"jpeg", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("got %v, want ErrUnknownFormat", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	if FormatWebP.Ext() != ".webp" {
		t.Errorf("Ext() = %q", FormatWebP.Ext())
	}
	if Format(9).String() != "Format(9)" {
		t.Errorf("String() = %q", Format(9).String())
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testFrame(), FormatPNG); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("decoded size = %v", b)
	}
	r, g, _, _ := img.At(3, 1).RGBA()
	if r>>8 != 180 || g>>8 != 200 {
		t.Errorf("pixel (3,1) = %d,%d; want 180,200", r>>8, g>>8)
	}
}

func TestEncodeWebP(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testFrame(), FormatWebP); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		t.Errorf("missing RIFF/WEBP header: % x", b[:min(len(b), 12)])
	}
}

func TestEncodeTGA(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testFrame(), FormatTGA); err != nil {
		t.Fatal(err)
	}
	img, err := tga.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("decoded size = %v", b)
	}
}

func TestEncodeUnknown(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, testFrame(), Format(7)); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
}

func TestScale(t *testing.T) {
	src := testFrame()
	dst := Scale(src, 2, false)
	if b := dst.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Fatalf("scaled size = %v", b)
	}
	// Nearest neighbor replicates each source pixel into a 2x2 block.
	if dst.RGBAAt(7, 3) != src.RGBAAt(3, 1) || dst.RGBAAt(6, 2) != src.RGBAAt(3, 1) {
		t.Errorf("corner block = %v, want %v", dst.RGBAAt(7, 3), src.RGBAAt(3, 1))
	}
	if Scale(src, 1, false) != src {
		t.Error("factor 1 should return the source")
	}
	if Scale(src, 0.01, true) != src {
		t.Error("sub-pixel result should return the source")
	}
	if b := Scale(src, 0.5, true).Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("half size = %v", b)
	}
}

func TestFrameWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	fw := &FrameWriter{Dir: dir, Prefix: "pulse-", Format: FormatPNG, Scale: 2}

	path, n, err := fw.WriteFrame(3, testFrame())
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "pulse-00003.png"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() != n || n == 0 {
		t.Errorf("reported %d bytes, file has %d", n, st.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 8 || cfg.Height != 4 {
		t.Errorf("frame size = %dx%d, want 8x4", cfg.Width, cfg.Height)
	}
}
