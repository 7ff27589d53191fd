package annotate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/fogleman/gg"
)

var white = color.RGBA{255, 255, 255, 255}

// solidImage creates a w x h image filled with c
func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// patternImage creates an opaque image with a distinct color per pixel
func patternImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 5), uint8(x + y), 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func loadedEditor(t *testing.T, w, h int, opts ...Option) *Editor {
	t.Helper()
	e := New(opts...)
	e.LoadImage(solidImage(w, h, white))
	if !e.Loaded() {
		t.Fatal("editor did not load the image")
	}
	return e
}

func TestNew_Defaults(t *testing.T) {
	e := New()

	if e.Tool() != Arrow {
		t.Errorf("Tool: got %s, want arrow", e.Tool())
	}
	if e.Color() != Red {
		t.Errorf("Color: got %s, want red", e.Color())
	}
	if e.Loaded() {
		t.Error("new editor should not be loaded")
	}
	if !e.Bounds().Empty() {
		t.Errorf("Bounds: got %v, want empty", e.Bounds())
	}
	if e.State() != Idle {
		t.Errorf("State: got %s, want idle", e.State())
	}
}

func TestLoad_SizesCanvasToImage(t *testing.T) {
	src := patternImage(64, 48)
	e := New()

	if err := e.Load(bytes.NewReader(encodePNG(t, src))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if e.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Errorf("Bounds: got %v, want (0,0)-(64,48)", e.Bounds())
	}
	if !bytes.Equal(e.Canvas().Pix, src.Pix) {
		t.Error("canvas pixels differ from the source image")
	}
}

func TestLoadImage_OffsetBounds(t *testing.T) {
	src := patternImage(30, 30).SubImage(image.Rect(10, 10, 30, 20))
	e := New()
	e.LoadImage(src)

	if e.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("Bounds: got %v, want (0,0)-(20,10)", e.Bounds())
	}
	if e.Canvas().RGBAAt(0, 0) != src.At(10, 10) {
		t.Error("image was not drawn at the origin")
	}
}

func TestLoadImage_DoesNotModifySource(t *testing.T) {
	src := solidImage(50, 50, white)
	before := append([]byte(nil), src.Pix...)

	e := New(WithTool(Rectangle))
	e.LoadImage(src)
	e.PointerDown(Point{5, 5})
	e.PointerMove(Point{40, 40})
	e.PointerUp()

	if !bytes.Equal(src.Pix, before) {
		t.Error("drawing modified the caller's image")
	}
}

func TestLoad_DecodeFailure(t *testing.T) {
	saved := false
	cancelled := false
	e := New(
		WithOnSave(func(Artifact) { saved = true }),
		WithOnCancel(func() { cancelled = true }),
	)
	e.LoadImage(solidImage(20, 20, white))

	err := e.Load(strings.NewReader("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Load error: got %v, want ErrDecode", err)
	}
	if e.Loaded() || !e.Bounds().Empty() {
		t.Errorf("canvas should be empty after a failed load, got %v", e.Bounds())
	}

	// Gestures on an empty canvas are ignored.
	e.PointerDown(Point{1, 1})
	e.PointerMove(Point{5, 5})
	if e.State() != Idle {
		t.Errorf("State: got %s, want idle", e.State())
	}
	e.PointerUp()

	if _, err := e.Save(); !errors.Is(err, ErrEncode) {
		t.Errorf("Save error: got %v, want ErrEncode", err)
	}
	if saved {
		t.Error("OnSave must not run when nothing was produced")
	}

	e.Cancel()
	if !cancelled {
		t.Error("Cancel should still notify after a failed load")
	}
}

func TestStateMachine(t *testing.T) {
	e := loadedEditor(t, 100, 100)

	e.PointerMove(Point{10, 10})
	if e.State() != Idle {
		t.Fatalf("move while idle: got %s, want idle", e.State())
	}

	e.PointerDown(Point{10, 10})
	if e.State() != Dragging || !e.Dragging() {
		t.Fatalf("after down: got %s, want dragging", e.State())
	}
	if e.session == nil || e.session.snapshot == nil {
		t.Fatal("drag should hold a stroke session with a snapshot")
	}

	e.PointerMove(Point{50, 50})
	e.PointerLeave()
	if e.State() != Idle || e.Dragging() || e.session != nil {
		t.Fatalf("after leave: got %s, want idle with no session", e.State())
	}

	e.PointerDown(Point{20, 20})
	e.PointerUp()
	if e.State() != Idle || e.session != nil {
		t.Fatalf("after up: got %s, want idle with no session", e.State())
	}
}

func TestPointerLeave_MatchesPointerUp(t *testing.T) {
	up := loadedEditor(t, 120, 120, WithTool(Circle))
	up.PointerDown(Point{60, 60})
	up.PointerMove(Point{90, 60})
	up.PointerUp()

	leave := loadedEditor(t, 120, 120, WithTool(Circle))
	leave.PointerDown(Point{60, 60})
	leave.PointerMove(Point{90, 60})
	leave.PointerLeave()

	if !bytes.Equal(up.Canvas().Pix, leave.Canvas().Pix) {
		t.Error("pointer-leave should commit the stroke exactly like pointer-up")
	}
}

func TestShapePreview_LeavesNoResidue(t *testing.T) {
	start, end := Point{50, 50}, Point{120, 130}
	path := []Point{{150, 20}, {10, 180}, {190, 190}, {70, 60}, end}

	for _, tool := range []Tool{Arrow, Rectangle, Circle} {
		t.Run(tool.String(), func(t *testing.T) {
			e := loadedEditor(t, 200, 200, WithTool(tool), WithColor(Blue))

			e.PointerDown(start)
			for _, p := range path {
				e.PointerMove(p)
			}
			e.PointerUp()

			want := solidImage(200, 200, white)
			shapes[tool](gg.NewContextForRGBA(want), &strokeSession{
				tool:  tool,
				color: Blue.Value(),
				start: start,
			}, end)

			if !bytes.Equal(e.Canvas().Pix, want.Pix) {
				t.Error("canvas differs from the snapshot with one shape at the final coordinates")
			}
			if bytes.Equal(e.Canvas().Pix, solidImage(200, 200, white).Pix) {
				t.Error("no shape was drawn")
			}
		})
	}
}

func TestPen_DrawsOneSegmentPerMove(t *testing.T) {
	pts := []Point{{10, 10}, {30, 15}, {60, 40}, {90, 45}, {120, 100}}
	e := loadedEditor(t, 150, 150, WithTool(Pen), WithColor(Green))

	e.PointerDown(pts[0])
	for _, p := range pts[1:] {
		e.PointerMove(p)
	}

	if got := len(e.session.path); got != len(pts) {
		t.Errorf("path length: got %d, want %d", got, len(pts))
	}
	if got := e.session.segments; got != len(pts)-1 {
		t.Errorf("segments: got %d, want %d", got, len(pts)-1)
	}
	e.PointerUp()

	want := solidImage(150, 150, white)
	dc := gg.NewContextForRGBA(want)
	for i := 1; i < len(pts); i++ {
		drawSegment(dc, Green.Value(), pts[i-1], pts[i])
	}

	if !bytes.Equal(e.Canvas().Pix, want.Pix) {
		t.Error("pen canvas differs from consecutive segments drawn in order")
	}
}

func TestPen_SinglePointDrawsNothing(t *testing.T) {
	e := loadedEditor(t, 40, 40, WithTool(Pen))
	e.PointerDown(Point{20, 20})
	e.PointerUp()

	if !bytes.Equal(e.Canvas().Pix, solidImage(40, 40, white).Pix) {
		t.Error("a click with the pen should not draw")
	}
}

func TestArrowHead(t *testing.T) {
	tip := Point{100, 0}
	a, b := arrowHead(Point{0, 0}, tip)

	wantX := 100 - 20*math.Cos(math.Pi/6)
	ys := []float64{a.Y, b.Y}
	for i, v := range []Point{a, b} {
		if math.Abs(v.X-wantX) > 1e-9 {
			t.Errorf("vertex %d X: got %f, want %f", i, v.X, wantX)
		}
		if d := math.Hypot(v.X-tip.X, v.Y-tip.Y); math.Abs(d-20) > 1e-9 {
			t.Errorf("vertex %d distance: got %f, want 20", i, d)
		}
		// Angle from the reverse direction (pointing back along -X).
		angle := math.Atan2(v.Y-tip.Y, -(v.X - tip.X))
		if math.Abs(math.Abs(angle)-math.Pi/6) > 1e-9 {
			t.Errorf("vertex %d angle: got %f, want ±%f", i, angle, math.Pi/6)
		}
	}
	if math.Abs(ys[0]+ys[1]) > 1e-9 || math.Abs(math.Abs(ys[0])-10) > 1e-9 {
		t.Errorf("vertices should sit at y=±10, got %f and %f", ys[0], ys[1])
	}
}

func TestArrowHead_ZeroLength(t *testing.T) {
	a, b := arrowHead(Point{5, 5}, Point{5, 5})
	for _, v := range []Point{a, b} {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) {
			t.Fatalf("zero-length arrow produced NaN vertex %v", v)
		}
		if v.X >= 5 {
			t.Errorf("zero-length arrow should point right, vertex at %v", v)
		}
	}
}

func TestRectangle_BackwardsDragMatchesForward(t *testing.T) {
	forward := loadedEditor(t, 80, 80, WithTool(Rectangle))
	forward.PointerDown(Point{10, 10})
	forward.PointerMove(Point{50, 50})
	forward.PointerUp()

	backward := loadedEditor(t, 80, 80, WithTool(Rectangle))
	backward.PointerDown(Point{50, 50})
	backward.PointerMove(Point{10, 10})
	backward.PointerUp()

	if !bytes.Equal(forward.Canvas().Pix, backward.Canvas().Pix) {
		t.Error("backwards rectangle differs from the forward one")
	}
}

func TestNormalizeRect(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Point
		x, y, w, h float64
	}{
		{"down-right", Point{10, 10}, Point{50, 40}, 10, 10, 40, 30},
		{"up-left", Point{50, 40}, Point{10, 10}, 10, 10, 40, 30},
		{"up-right", Point{10, 40}, Point{50, 10}, 10, 10, 40, 30},
		{"down-left", Point{50, 10}, Point{10, 40}, 10, 10, 40, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := normalizeRect(tt.a, tt.b)
			if x != tt.x || y != tt.y || w != tt.w || h != tt.h {
				t.Errorf("got (%v,%v,%v,%v), want (%v,%v,%v,%v)", x, y, w, h, tt.x, tt.y, tt.w, tt.h)
			}
		})
	}
}

func TestCircleRadius(t *testing.T) {
	if r := circleRadius(Point{0, 0}, Point{30, 40}); r != 50 {
		t.Errorf("radius: got %f, want 50", r)
	}
	if r := circleRadius(Point{10, 10}, Point{10, 10}); r != 0 {
		t.Errorf("radius: got %f, want 0", r)
	}
}

func TestToCanvas(t *testing.T) {
	e := loadedEditor(t, 200, 100)

	if got := e.ToCanvas(Point{60, 45}); got != (Point{60, 45}) {
		t.Errorf("without viewport: got %v, want identity", got)
	}

	e.SetViewport(Viewport{Left: 10, Top: 20, Width: 100, Height: 50})
	if got := e.ToCanvas(Point{60, 45}); got != (Point{100, 50}) {
		t.Errorf("half-size display: got %v, want (100,50)", got)
	}

	e.SetViewport(Viewport{Width: 400, Height: 200})
	if got := e.ToCanvas(Point{100, 100}); got != (Point{50, 50}) {
		t.Errorf("double-size display: got %v, want (50,50)", got)
	}

	e.SetViewport(Viewport{Width: 0, Height: 50})
	if got := e.ToCanvas(Point{7, 9}); got != (Point{7, 9}) {
		t.Errorf("degenerate viewport: got %v, want identity", got)
	}
}

func TestPointer_UsesViewportScaling(t *testing.T) {
	scaled := loadedEditor(t, 200, 100, WithTool(Rectangle))
	scaled.SetViewport(Viewport{Left: 10, Top: 20, Width: 100, Height: 50})
	scaled.PointerDown(Point{20, 25})
	scaled.PointerMove(Point{60, 45})
	scaled.PointerUp()

	direct := loadedEditor(t, 200, 100, WithTool(Rectangle))
	direct.PointerDown(Point{20, 10})
	direct.PointerMove(Point{100, 50})
	direct.PointerUp()

	if !bytes.Equal(scaled.Canvas().Pix, direct.Canvas().Pix) {
		t.Error("viewport-mapped gesture differs from the same gesture in canvas coordinates")
	}
}

func TestToolChangeMidDrag_AppliesToNextStroke(t *testing.T) {
	e := loadedEditor(t, 100, 100, WithTool(Rectangle), WithColor(Red))
	e.PointerDown(Point{20, 20})
	e.SetTool(Pen)
	e.SetColor(Black)
	e.PointerMove(Point{80, 80})
	e.PointerUp()

	want := loadedEditor(t, 100, 100, WithTool(Rectangle), WithColor(Red))
	want.PointerDown(Point{20, 20})
	want.PointerMove(Point{80, 80})
	want.PointerUp()

	if !bytes.Equal(e.Canvas().Pix, want.Canvas().Pix) {
		t.Error("in-progress stroke should keep the tool and color captured at pointer-down")
	}

	e.PointerDown(Point{10, 90})
	if e.session.tool != Pen || e.session.color != Black.Value() {
		t.Errorf("next stroke: got %s/%v, want pen/black", e.session.tool, e.session.color)
	}
	e.PointerUp()
}

func TestPointerDown_WhileDraggingCommitsPrevious(t *testing.T) {
	e := loadedEditor(t, 100, 100, WithTool(Rectangle))
	e.PointerDown(Point{10, 10})
	e.PointerMove(Point{40, 40})
	e.PointerDown(Point{60, 60})
	e.PointerMove(Point{90, 90})
	e.PointerUp()

	want := loadedEditor(t, 100, 100, WithTool(Rectangle))
	for _, r := range [][2]Point{{{10, 10}, {40, 40}}, {{60, 60}, {90, 90}}} {
		want.PointerDown(r[0])
		want.PointerMove(r[1])
		want.PointerUp()
	}

	if !bytes.Equal(e.Canvas().Pix, want.Canvas().Pix) {
		t.Error("a second pointer-down should commit the first stroke")
	}
}

func TestTextTool(t *testing.T) {
	blank := solidImage(160, 80, white).Pix

	e := loadedEditor(t, 160, 80, WithTool(Text))
	e.PointerDown(Point{10, 40})
	e.PointerUp()
	if !bytes.Equal(e.Canvas().Pix, blank) {
		t.Error("text tool with an empty label should not draw")
	}

	e.SetText("Bug")
	e.PointerDown(Point{10, 40})
	if bytes.Equal(e.Canvas().Pix, blank) {
		t.Fatal("pointer-down with the text tool should stamp the label")
	}
	e.PointerMove(Point{90, 40})
	e.PointerUp()

	want := loadedEditor(t, 160, 80, WithTool(Text))
	want.SetText("Bug")
	want.PointerDown(Point{90, 40})
	want.PointerUp()

	if !bytes.Equal(e.Canvas().Pix, want.Canvas().Pix) {
		t.Error("dragged label should only appear at its final position")
	}
}

func TestSave_ZeroStrokesMatchesSource(t *testing.T) {
	src := patternImage(32, 24)
	var got Artifact
	calls := 0
	e := New(WithOnSave(func(a Artifact) { got = a; calls++ }))
	if err := e.Load(bytes.NewReader(encodePNG(t, src))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	art, err := e.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if calls != 1 || !bytes.Equal(got.PNG, art.PNG) {
		t.Errorf("OnSave: got %d calls, want 1 with the returned artifact", calls)
	}
	if art.Width != 32 || art.Height != 24 {
		t.Errorf("artifact size: got %dx%d, want 32x24", art.Width, art.Height)
	}

	decoded, err := png.Decode(bytes.NewReader(art.PNG))
	if err != nil {
		t.Fatalf("artifact is not a PNG: %v", err)
	}
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			r1, g1, b1, a1 := src.At(x, y).RGBA()
			r2, g2, b2, a2 := decoded.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) differs from the source", x, y)
			}
		}
	}
}

func TestSave_EndsDragInProgress(t *testing.T) {
	e := loadedEditor(t, 60, 60, WithTool(Circle))
	e.PointerDown(Point{30, 30})
	e.PointerMove(Point{40, 30})

	if _, err := e.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if e.State() != Idle {
		t.Errorf("State after Save: got %s, want idle", e.State())
	}
}

func TestCancel_DiscardsEdits(t *testing.T) {
	src := patternImage(50, 50)
	data := encodePNG(t, src)
	cancelled := 0
	saved := 0

	e := New(
		WithOnCancel(func() { cancelled++ }),
		WithOnSave(func(Artifact) { saved++ }),
	)
	if err := e.Load(bytes.NewReader(data)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, tool := range Tools() {
		e.SetTool(tool)
		e.SetText("x")
		e.PointerDown(Point{5, 5})
		e.PointerMove(Point{25, 30})
		e.PointerMove(Point{45, 40})
		e.PointerUp()
	}
	e.PointerDown(Point{1, 1})

	e.Cancel()
	if cancelled != 1 || saved != 0 {
		t.Errorf("callbacks: got cancel=%d save=%d, want 1/0", cancelled, saved)
	}
	if e.Loaded() || e.State() != Idle {
		t.Error("editor should hold no canvas and no stroke after Cancel")
	}
	if _, err := e.Save(); !errors.Is(err, ErrEncode) {
		t.Errorf("Save after Cancel: got %v, want ErrEncode", err)
	}

	if err := e.Load(bytes.NewReader(data)); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !bytes.Equal(e.Canvas().Pix, src.Pix) {
		t.Error("a fresh load after Cancel should reproduce the original pixels")
	}
}

func TestReset(t *testing.T) {
	e := loadedEditor(t, 70, 70, WithTool(Pen))
	e.PointerDown(Point{5, 5})
	e.PointerMove(Point{60, 60})
	e.PointerUp()

	e.Reset()
	if !bytes.Equal(e.Canvas().Pix, solidImage(70, 70, white).Pix) {
		t.Error("Reset should restore the loaded pixels")
	}

	New().Reset() // no canvas, must not panic
}

func TestImage_ReturnsCopy(t *testing.T) {
	e := loadedEditor(t, 10, 10)
	img := e.Image()
	img.Pix[0] = 0

	if e.Canvas().Pix[0] != 255 {
		t.Error("Image should not share the canvas buffer")
	}
}
