package heatmap

import (
	"errors"
	"slices"
	"testing"
)

// fakeTexture records what was uploaded.
type fakeTexture struct {
	w, h      int
	pixels    []byte
	destroyed bool
}

func (t *fakeTexture) Width() int  { return t.w }
func (t *fakeTexture) Height() int { return t.h }

// fakeDevice is a test Device that records every call.
type fakeDevice struct {
	initErr   error
	createErr error

	textures      []*fakeTexture
	uniforms      Uniforms
	uniformWrites int
	draws         int
	lastVertices  []Vertex
	lastTexture   Texture
	width, height int
	closed        int
}

func (d *fakeDevice) Name() string { return "fake" }
func (d *fakeDevice) Init() error  { return d.initErr }

func (d *fakeDevice) Resize(w, h int) error {
	d.width, d.height = w, h
	return nil
}

func (d *fakeDevice) CreateTexture(desc *TextureDescriptor, pixels []byte) (Texture, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	tex := &fakeTexture{w: desc.Width, h: desc.Height, pixels: slices.Clone(pixels)}
	d.textures = append(d.textures, tex)
	return tex, nil
}

func (d *fakeDevice) DestroyTexture(tex Texture) {
	tex.(*fakeTexture).destroyed = true
}

func (d *fakeDevice) WriteUniforms(u *Uniforms) error {
	d.uniforms = *u
	d.uniformWrites++
	return nil
}

func (d *fakeDevice) Draw(tex Texture, vertices []Vertex) error {
	d.draws++
	d.lastTexture = tex
	d.lastVertices = slices.Clone(vertices)
	return nil
}

func (d *fakeDevice) Close() { d.closed++ }

func (d *fakeDevice) liveTextures() int {
	n := 0
	for _, t := range d.textures {
		if !t.destroyed {
			n++
		}
	}
	return n
}

func twoStop(lo, hi float64) Gradient {
	return Gradient{
		{Offset: lo, Color: RGB(0, 0, 1)},
		{Offset: hi, Color: RGB(1, 0, 0)},
	}
}

func newTestHeatmap(t *testing.T, opts ...Option) *Heatmap {
	t.Helper()
	hm, _ := newTestHeatmapDevice(t, opts...)
	return hm
}

func newTestHeatmapDevice(t *testing.T, opts ...Option) (*Heatmap, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	opts = append([]Option{WithViewport(100, 50)}, opts...)
	hm, err := New(dev, opts...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(hm.Close)
	return hm, dev
}

func TestNewInitFailure(t *testing.T) {
	cause := errors.New("no adapter")
	hm, err := New(&fakeDevice{initErr: cause})
	if hm != nil {
		t.Error("New() returned a Heatmap alongside an error")
	}
	if !errors.Is(err, ErrInit) {
		t.Errorf("New() error = %v, want ErrInit", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("New() error = %v, want wrapped cause", err)
	}
}

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrInit) {
		t.Errorf("New(nil) error = %v, want ErrInit", err)
	}
}

func TestNewAppliesViewport(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if w, h := hm.Viewport(); w != 100 || h != 50 {
		t.Errorf("Viewport() = %dx%d, want 100x50", w, h)
	}
	if dev.width != 100 || dev.height != 50 {
		t.Errorf("device resized to %dx%d, want 100x50", dev.width, dev.height)
	}
	if dev.uniforms.Resolution != [2]float32{100, 50} {
		t.Errorf("Resolution uniform = %v", dev.uniforms.Resolution)
	}
	if dev.uniforms.Opacity != 1 {
		t.Errorf("default Opacity = %v, want 1", dev.uniforms.Opacity)
	}
}

func TestDataRoundTrip(t *testing.T) {
	hm := newTestHeatmap(t)
	in := []float64{1.5, -2, 3.25, 1e9, 0, 7}
	if err := hm.SetData(in, 3, 2); err != nil {
		t.Fatal(err)
	}
	in[0] = 99 // caller's slice is copied

	got := hm.Data()
	want := []float64{1.5, -2, 3.25, 1e9, 0, 7}
	if !slices.Equal(got, want) {
		t.Errorf("Data() = %v, want %v", got, want)
	}
	if hm.Width() != 3 || hm.Height() != 2 {
		t.Errorf("size = %dx%d, want 3x2", hm.Width(), hm.Height())
	}
}

func TestSetDataRejectsMismatch(t *testing.T) {
	hm := newTestHeatmap(t)
	if err := hm.SetData([]float64{1, 2, 3}, 2, 2); !errors.Is(err, ErrGridSize) {
		t.Errorf("SetData() error = %v, want ErrGridSize", err)
	}
}

func TestSetGradientValidates(t *testing.T) {
	hm := newTestHeatmap(t)
	tests := []struct {
		name string
		g    Gradient
		want error
	}{
		{"empty", nil, ErrEmptyGradient},
		{"too many", make(Gradient, MaxStops+1), ErrTooManyStops},
		{"unordered", Gradient{{Offset: 1}, {Offset: 0}}, ErrUnorderedStops},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := hm.SetGradient(tt.g); !errors.Is(err, tt.want) {
				t.Errorf("SetGradient() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLazyRebake(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if err := hm.SetData([]float64{0, 10}, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetGradient(twoStop(0, 10)); err != nil {
		t.Fatal(err)
	}

	if len(dev.textures) != 0 {
		t.Errorf("textures created before Render: %d", len(dev.textures))
	}
	if hm.Baked() != nil {
		t.Error("gradient baked before Render")
	}
	if !hm.dataDirty || !hm.gradientDirty {
		t.Error("expected both dirty flags set")
	}

	if err := hm.Render(); err != nil {
		t.Fatal(err)
	}
	if hm.dataDirty || hm.gradientDirty {
		t.Error("Render did not clear dirty flags")
	}
	if len(dev.textures) != 1 {
		t.Errorf("textures created = %d, want 1", len(dev.textures))
	}
	if dev.draws != 1 {
		t.Errorf("draws = %d, want 1", dev.draws)
	}
	if got := dev.textures[0].pixels; !slices.Equal(got, []byte{0, 255}) {
		t.Errorf("uploaded pixels = %v, want [0 255]", got)
	}

	// A second Render with nothing dirty only draws.
	if err := hm.Render(); err != nil {
		t.Fatal(err)
	}
	if len(dev.textures) != 1 || dev.draws != 2 {
		t.Errorf("after clean Render: textures=%d draws=%d, want 1 and 2", len(dev.textures), dev.draws)
	}
}

func TestEagerRebake(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t, WithEagerRebake())
	if err := hm.SetGradient(twoStop(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetData([]float64{0, 1}, 2, 1); err != nil {
		t.Fatal(err)
	}
	if len(dev.textures) != 1 {
		t.Errorf("textures created = %d, want 1", len(dev.textures))
	}
	if hm.Baked() == nil {
		t.Error("gradient not baked eagerly")
	}
	if dev.draws != 0 {
		t.Errorf("setters drew %d times, want 0", dev.draws)
	}
}

func TestFailedUploadStaysDirty(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if err := hm.SetGradient(twoStop(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetData([]float64{0, 1}, 2, 1); err != nil {
		t.Fatal(err)
	}

	dev.createErr = errors.New("out of memory")
	if err := hm.Render(); err == nil {
		t.Fatal("Render() succeeded despite upload failure")
	}
	if !hm.dataDirty {
		t.Error("data flag cleared after failed upload")
	}

	dev.createErr = nil
	if err := hm.Render(); err != nil {
		t.Fatalf("Render() retry = %v", err)
	}
	if hm.dataDirty || dev.draws != 1 {
		t.Errorf("retry: dirty=%v draws=%d", hm.dataDirty, dev.draws)
	}
}

func TestDrawSkippedWithoutGradient(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if err := hm.SetData([]float64{1, 2}, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := hm.Render(); err != nil {
		t.Fatalf("Render() = %v, want nil no-op", err)
	}
	if dev.draws != 0 {
		t.Errorf("draws = %d, want 0", dev.draws)
	}
	if !hm.gradientDirty {
		t.Error("gradient flag should stay set until a gradient exists")
	}
}

func TestTextureRecreatedPerUpload(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if err := hm.SetGradient(twoStop(0, 1)); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if err := hm.AddRow([]float64{float64(i), 1}, Unbounded, DirectionEnd); err != nil {
			t.Fatal(err)
		}
		if err := hm.Render(); err != nil {
			t.Fatal(err)
		}
	}
	if len(dev.textures) != 3 {
		t.Errorf("textures created = %d, want 3", len(dev.textures))
	}
	if dev.liveTextures() != 1 {
		t.Errorf("live textures = %d, want 1", dev.liveTextures())
	}
	if last := dev.textures[2]; last.w != 2 || last.h != 3 {
		t.Errorf("last texture = %dx%d, want 2x3", last.w, last.h)
	}
}

func TestBakeUsesDataRange(t *testing.T) {
	hm := newTestHeatmap(t)
	if err := hm.SetData([]float64{10, 20, 15, 12}, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetGradient(Gradient{
		{Offset: 10, Color: RGB(0, 0, 0)},
		{Offset: 15, Color: RGB(0.5, 0.5, 0.5)},
		{Offset: 20, Color: RGB(1, 1, 1)},
	}); err != nil {
		t.Fatal(err)
	}
	if err := hm.Render(); err != nil {
		t.Fatal(err)
	}
	want := []float32{0, 0.5, 1}
	if got := hm.Baked().Offsets; !slices.Equal(got, want) {
		t.Errorf("baked offsets = %v, want %v", got, want)
	}

	lo, hi, ok := hm.Range()
	if !ok || lo != 10 || hi != 20 {
		t.Errorf("Range() = %v, %v, %v; want 10, 20, true", lo, hi, ok)
	}
}

func TestSetTransposedRedrawsWithoutRebake(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if err := hm.SetGradient(twoStop(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetData([]float64{0, 1}, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := hm.Render(); err != nil {
		t.Fatal(err)
	}
	writes := dev.uniformWrites

	if err := hm.SetTransposed(true); err != nil {
		t.Fatal(err)
	}
	if !hm.Transposed() {
		t.Error("Transposed() = false")
	}
	if len(dev.textures) != 1 || dev.uniformWrites != writes {
		t.Errorf("transpose rebuilt state: textures=%d uniform writes %d -> %d",
			len(dev.textures), writes, dev.uniformWrites)
	}
	if dev.draws != 2 {
		t.Errorf("draws = %d, want 2", dev.draws)
	}
	want := QuadVertices(100, 50, true)
	if !slices.Equal(dev.lastVertices, want[:]) {
		t.Errorf("vertices = %v, want transposed quad", dev.lastVertices)
	}
}

func TestSetOpacityWritesUniformsAndRedraws(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if err := hm.SetGradient(twoStop(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetData([]float64{0, 1}, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := hm.Render(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in, want float32
	}{
		{0.25, 0.25},
		{1.5, 1},
		{-0.5, 0},
	}
	for _, tt := range tests {
		draws := dev.draws
		if err := hm.SetOpacity(tt.in); err != nil {
			t.Fatalf("SetOpacity(%v) = %v", tt.in, err)
		}
		if dev.uniforms.Opacity != tt.want || hm.Opacity() != tt.want {
			t.Errorf("SetOpacity(%v): uniform %v, Opacity() %v, want %v",
				tt.in, dev.uniforms.Opacity, hm.Opacity(), tt.want)
		}
		if dev.draws != draws+1 {
			t.Errorf("SetOpacity(%v) draws = %d, want %d", tt.in, dev.draws, draws+1)
		}
	}
	if len(dev.textures) != 1 {
		t.Errorf("SetOpacity re-uploaded data: %d textures", len(dev.textures))
	}

	hm.Close()
	if err := hm.SetOpacity(0.5); !errors.Is(err, ErrClosed) {
		t.Errorf("SetOpacity after Close = %v, want ErrClosed", err)
	}
}

func TestResizeRedraws(t *testing.T) {
	hm, dev := newTestHeatmapDevice(t)
	if err := hm.SetGradient(twoStop(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetData([]float64{0, 1}, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := hm.Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	if dev.draws != 1 {
		t.Errorf("draws = %d, want 1", dev.draws)
	}
	if dev.uniforms.Resolution != [2]float32{640, 480} {
		t.Errorf("Resolution = %v, want [640 480]", dev.uniforms.Resolution)
	}
	if err := hm.Resize(-1, 10); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("Resize(-1, 10) error = %v, want ErrInvalidViewport", err)
	}
}

func TestHeatmapPick(t *testing.T) {
	hm := newTestHeatmap(t) // viewport 100x50
	if err := hm.SetData([]float64{1, 2, 3, 4}, 2, 2); err != nil {
		t.Fatal(err)
	}

	r := hm.Pick(75, 10)
	if !r.OK || r.Col != 1 || r.Row != 0 || r.Value != 2 {
		t.Errorf("Pick(75, 10) = %+v, want col 1 row 0 value 2", r)
	}

	if err := hm.SetTransposed(true); err != nil {
		t.Fatal(err)
	}
	r = hm.Pick(75, 10)
	if !r.OK || r.Col != 0 || r.Row != 1 || r.Value != 3 {
		t.Errorf("transposed Pick(75, 10) = %+v, want col 0 row 1 value 3", r)
	}
}

func TestSnapshotWithoutReader(t *testing.T) {
	hm := newTestHeatmap(t)
	if _, err := hm.Snapshot(); !errors.Is(err, ErrNoFrameReader) {
		t.Errorf("Snapshot() error = %v, want ErrNoFrameReader", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	hm, err := New(dev)
	if err != nil {
		t.Fatal(err)
	}
	if err := hm.SetGradient(twoStop(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := hm.SetData([]float64{0, 1}, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := hm.Render(); err != nil {
		t.Fatal(err)
	}

	hm.Close()
	hm.Close()
	if dev.closed != 1 {
		t.Errorf("device closed %d times, want 1", dev.closed)
	}
	if dev.liveTextures() != 0 {
		t.Errorf("live textures after Close = %d", dev.liveTextures())
	}
	if err := hm.Render(); !errors.Is(err, ErrClosed) {
		t.Errorf("Render() after Close = %v, want ErrClosed", err)
	}
	if err := hm.SetData(nil, 0, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("SetData() after Close = %v, want ErrClosed", err)
	}
}

func TestRangeEmpty(t *testing.T) {
	hm := newTestHeatmap(t)
	if _, _, ok := hm.Range(); ok {
		t.Error("Range() ok = true on empty heatmap")
	}
}
