package ui

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
)

func whitePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xFFFF && g == 0xFFFF && b == 0xFFFF
}

func press(pos fyne.Position) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: pos},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(pos fyne.Position) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: pos}}
}

func TestContainFit(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		box  fyne.Size
		want annotate.Viewport
	}{
		{"exact", 200, 100, fyne.NewSize(200, 100), annotate.Viewport{Width: 200, Height: 100}},
		{"letterbox", 200, 100, fyne.NewSize(400, 400), annotate.Viewport{Top: 100, Width: 400, Height: 200}},
		{"pillarbox", 100, 200, fyne.NewSize(400, 200), annotate.Viewport{Left: 150, Width: 100, Height: 200}},
		{"downscale", 1000, 500, fyne.NewSize(500, 500), annotate.Viewport{Top: 125, Width: 500, Height: 250}},
		{"empty image", 0, 0, fyne.NewSize(100, 100), annotate.Viewport{}},
		{"empty box", 10, 10, fyne.NewSize(0, 0), annotate.Viewport{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := containFit(tt.w, tt.h, tt.box)
			if got != tt.want {
				t.Errorf("containFit: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newTestWidget(t *testing.T, w, h int) *EditorWidget {
	t.Helper()
	test.NewTempApp(t)

	ed := annotate.New(annotate.WithTool(annotate.Pen))
	if err := ed.Load(bytes.NewReader(whitePNG(t, w, h))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return NewEditorWidget(ed)
}

func TestEditorWidget_MapsPointerThroughFit(t *testing.T) {
	w := newTestWidget(t, 200, 100)
	w.Resize(fyne.NewSize(400, 400))

	// Canvas is shown at (0,100) scaled by 2.
	w.MouseDown(press(fyne.NewPos(100, 200)))
	w.Dragged(drag(fyne.NewPos(300, 200)))
	w.MouseUp(press(fyne.NewPos(300, 200)))

	ed := w.Editor()
	if ed.State() != annotate.Idle {
		t.Error("stroke should end on mouse up")
	}
	if isWhite(ed.Canvas().At(100, 50)) {
		t.Error("stroke should cover canvas (100,50)")
	}
	if !isWhite(ed.Canvas().At(100, 90)) {
		t.Error("pixels away from the stroke should stay white")
	}
}

func TestEditorWidget_IgnoresSecondaryButton(t *testing.T) {
	w := newTestWidget(t, 50, 50)
	w.Resize(fyne.NewSize(50, 50))

	ev := press(fyne.NewPos(10, 10))
	ev.Button = desktop.MouseButtonSecondary
	w.MouseDown(ev)

	if w.Editor().State() != annotate.Idle {
		t.Error("secondary button should not start a stroke")
	}
}

func TestEditorWidget_MouseOutEndsStroke(t *testing.T) {
	w := newTestWidget(t, 50, 50)
	w.Resize(fyne.NewSize(50, 50))

	w.MouseDown(press(fyne.NewPos(10, 10)))
	w.MouseMoved(press(fyne.NewPos(40, 10)))
	if w.Editor().State() != annotate.Dragging {
		t.Fatal("stroke should be in progress")
	}
	w.MouseOut()
	if w.Editor().State() != annotate.Idle {
		t.Error("leaving the widget should end the stroke")
	}
	// A later move without a press draws nothing.
	w.Dragged(drag(fyne.NewPos(10, 40)))
	if !isWhite(w.Editor().Canvas().At(10, 25)) {
		t.Error("move after leave should not draw")
	}
}

func TestToolbar_SelectsToolAndColor(t *testing.T) {
	w := newTestWidget(t, 20, 20)
	tb := NewToolbar(w)

	if tb.tools.Selected != "pen" {
		t.Errorf("initial tool: got %q, want pen", tb.tools.Selected)
	}
	tb.tools.SetSelected("circle")
	if w.Editor().Tool() != annotate.Circle {
		t.Errorf("tool: got %v, want circle", w.Editor().Tool())
	}

	tb.selectColor(annotate.Blue)
	if w.Editor().Color() != annotate.Blue {
		t.Errorf("color: got %v, want blue", w.Editor().Color())
	}
	for _, s := range tb.swatches {
		if s.selected != (s.color == annotate.Blue) {
			t.Errorf("swatch %v selected=%v", s.color, s.selected)
		}
	}
}

func TestFeedbackWindow_BuildFeedback(t *testing.T) {
	app := test.NewTempApp(t)
	meta := capture.Metadata{URL: "https://app.example.com"}

	fw, err := NewFeedbackWindow(app, whitePNG(t, 40, 30), nil, WithMetadata(meta))
	if err != nil {
		t.Fatalf("NewFeedbackWindow failed: %v", err)
	}
	if !fw.submitBtn.Disabled() {
		t.Error("submit should be disabled without a tracker")
	}

	if _, err := fw.buildFeedback(); !errors.Is(err, feedback.ErrTitleRequired) {
		t.Errorf("empty title: got %v, want ErrTitleRequired", err)
	}

	fw.title.SetText("Header overlaps menu")
	fw.description.SetText("On narrow windows")
	fb, err := fw.buildFeedback()
	if err != nil {
		t.Fatalf("buildFeedback failed: %v", err)
	}
	if fb.Title != "Header overlaps menu" || fb.Metadata.URL != meta.URL {
		t.Errorf("feedback: got %+v", fb)
	}
	if len(fb.Labels) != 1 || fb.Labels[0] != "feedback" {
		t.Errorf("labels: got %v", fb.Labels)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(fb.Screenshot)); err != nil {
		t.Errorf("screenshot should be a PNG: %v", err)
	}
}

func TestFeedbackWindow_BadScreenshot(t *testing.T) {
	app := test.NewTempApp(t)

	_, err := NewFeedbackWindow(app, []byte("not an image"), nil)
	if !errors.Is(err, annotate.ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

func TestFeedbackWindow_Cancel(t *testing.T) {
	app := test.NewTempApp(t)

	fw, err := NewFeedbackWindow(app, whitePNG(t, 10, 10), nil)
	if err != nil {
		t.Fatalf("NewFeedbackWindow failed: %v", err)
	}
	fw.cancel()
	if fw.editor.Editor().Loaded() {
		t.Error("cancel should discard the canvas")
	}
}
