package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
)

// EditorWidget displays an annotation editor's canvas and feeds it pointer events.
// The canvas is drawn contain-fit; the editor viewport tracks the fitted rectangle so
// pointer positions land on the pixel under the cursor.
//
// All methods must be called on the fyne UI goroutine.
type EditorWidget struct {
	widget.BaseWidget

	editor *annotate.Editor
	image  *canvas.Image
}

var _ fyne.Widget = (*EditorWidget)(nil)
var _ fyne.Draggable = (*EditorWidget)(nil)
var _ desktop.Mouseable = (*EditorWidget)(nil)
var _ desktop.Hoverable = (*EditorWidget)(nil)

// NewEditorWidget wraps an editor that already holds a loaded canvas.
func NewEditorWidget(editor *annotate.Editor) *EditorWidget {
	w := &EditorWidget{editor: editor}
	w.image = canvas.NewImageFromImage(editor.Canvas())
	w.image.FillMode = canvas.ImageFillContain
	w.image.ScaleMode = canvas.ImageScaleFastest
	w.ExtendBaseWidget(w)
	return w
}

// Editor returns the wrapped editor.
func (w *EditorWidget) Editor() *annotate.Editor { return w.editor }

// SetTool changes the active tool.
func (w *EditorWidget) SetTool(t annotate.Tool) { w.editor.SetTool(t) }

// SetColor changes the active color.
func (w *EditorWidget) SetColor(c annotate.Color) { w.editor.SetColor(c) }

// SetText sets the text tool label.
func (w *EditorWidget) SetText(s string) { w.editor.SetText(s) }

// Reset drops every annotation.
func (w *EditorWidget) Reset() {
	w.editor.Reset()
	w.redraw()
}

func (w *EditorWidget) redraw() {
	// Cancel replaces the canvas buffer.
	w.image.Image = w.editor.Canvas()
	w.image.Refresh()
}

func (w *EditorWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.editor.PointerDown(pointOf(e.Position))
	w.redraw()
}

func (w *EditorWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.editor.PointerUp()
	w.redraw()
}

func (w *EditorWidget) Dragged(e *fyne.DragEvent) {
	w.editor.PointerMove(pointOf(e.Position))
	w.redraw()
}

func (w *EditorWidget) DragEnd() {
	w.editor.PointerUp()
	w.redraw()
}

func (w *EditorWidget) MouseIn(*desktop.MouseEvent) {}

func (w *EditorWidget) MouseMoved(e *desktop.MouseEvent) {
	if w.editor.State() == annotate.Dragging {
		w.editor.PointerMove(pointOf(e.Position))
		w.redraw()
	}
}

func (w *EditorWidget) MouseOut() {
	w.editor.PointerLeave()
	w.redraw()
}

func (w *EditorWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF})
	return &editorRenderer{w: w, background: bg}
}

type editorRenderer struct {
	w          *EditorWidget
	background *canvas.Rectangle
}

func (r *editorRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.w.image.Resize(size)
	b := r.w.editor.Bounds()
	r.w.editor.SetViewport(containFit(b.Dx(), b.Dy(), size))
}

func (r *editorRenderer) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (r *editorRenderer) Refresh() {
	r.w.image.Refresh()
	canvas.Refresh(r.w)
}

func (r *editorRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.w.image}
}

func (r *editorRenderer) Destroy() {}
