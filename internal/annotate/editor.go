package annotate

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/anthonynsimon/bild/clone"
	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/ironsheep/feedback-tools-mcp/internal/imaging"
)

var (
	// ErrDecode is returned when the source image cannot be decoded.
	ErrDecode = errors.New("annotate: image decode failed")

	// ErrEncode is returned when the canvas cannot be exported.
	ErrEncode = errors.New("annotate: image encode failed")
)

// State is the gesture state of an Editor.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Artifact is the flattened, PNG-encoded canvas produced by Save.
type Artifact struct {
	PNG    []byte
	Width  int
	Height int
}

// strokeSession is the transient record of one pointer-down-to-pointer-up gesture.
type strokeSession struct {
	tool     Tool
	color    color.RGBA
	label    string
	face     font.Face
	start    Point
	snapshot *image.RGBA
	path     []Point
	segments int
}

// Editor is a canvas overlay that turns a static image into an annotated one.
type Editor struct {
	canvas *image.RGBA
	source *image.RGBA
	dc     *gg.Context
	face   font.Face

	tool     Tool
	color    Color
	text     string
	fontSize float64
	viewport Viewport

	session *strokeSession

	onSave   func(Artifact)
	onCancel func()
	logger   *zap.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithTool sets the initially active tool.
func WithTool(t Tool) Option { return func(e *Editor) { e.tool = t } }

// WithColor sets the initially active color.
func WithColor(c Color) Option { return func(e *Editor) { e.color = c } }

// WithFontSize sets the text tool label size in points.
func WithFontSize(size float64) Option { return func(e *Editor) { e.fontSize = size } }

// WithOnSave registers the callback invoked with every successfully saved artifact.
func WithOnSave(fn func(Artifact)) Option { return func(e *Editor) { e.onSave = fn } }

// WithOnCancel registers the callback invoked by Cancel.
func WithOnCancel(fn func()) Option { return func(e *Editor) { e.onCancel = fn } }

// WithLogger sets the logger used for gesture diagnostics.
func WithLogger(l *zap.Logger) Option { return func(e *Editor) { e.logger = l } }

// New creates an editor with an empty canvas. The defaults are the arrow tool in red.
func New(opts ...Option) *Editor {
	e := &Editor{
		tool:     Arrow,
		color:    Red,
		fontSize: DefaultFontSize,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.clear()
	return e
}

// Load decodes a source image and sizes the canvas to its native dimensions.
//
// On decode failure the canvas is left empty, the error wraps ErrDecode, and the editor
// remains usable: gestures are ignored and Cancel still works.
func (e *Editor) Load(r io.Reader) error {
	img, err := imaging.Decode(r)
	if err != nil {
		e.clear()
		e.logger.Warn("source image decode failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	e.LoadImage(img)
	return nil
}

// LoadImage copies img into a fresh canvas drawn at the origin. The caller's image is
// never modified.
func (e *Editor) LoadImage(img image.Image) {
	e.session = nil
	b := img.Bounds()
	if b.Empty() {
		e.clear()
		return
	}

	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)

	e.canvas = canvas
	e.source = clone.AsRGBA(canvas)
	e.dc = gg.NewContextForRGBA(canvas)
	e.logger.Debug("canvas loaded", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
}

// clear drops the canvas and any stroke, leaving a 0x0 buffer.
func (e *Editor) clear() {
	e.session = nil
	e.canvas = image.NewRGBA(image.Rectangle{})
	e.source = nil
	e.dc = nil
}

// Loaded reports whether the editor holds a non-empty canvas.
func (e *Editor) Loaded() bool { return e.dc != nil }

// Bounds returns the canvas rectangle. It is empty before a successful load.
func (e *Editor) Bounds() image.Rectangle { return e.canvas.Bounds() }

// Image returns a copy of the current canvas.
func (e *Editor) Image() *image.RGBA { return clone.AsRGBA(e.canvas) }

// Canvas returns the live canvas. The buffer is owned by the editor: callers may read
// it between events but must not modify or retain it across Load or Cancel.
func (e *Editor) Canvas() *image.RGBA { return e.canvas }

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// Color returns the active color.
func (e *Editor) Color() Color { return e.color }

// SetTool changes the active tool. A stroke in progress keeps its own tool.
func (e *Editor) SetTool(t Tool) { e.tool = t }

// SetColor changes the active color. A stroke in progress keeps its own color.
func (e *Editor) SetColor(c Color) { e.color = c }

// SetText sets the label stamped by the text tool.
func (e *Editor) SetText(s string) { e.text = s }

// SetViewport records where the canvas is displayed in client coordinates.
func (e *Editor) SetViewport(vp Viewport) { e.viewport = vp }

// ToCanvas maps a client point into canvas coordinates using the current viewport.
func (e *Editor) ToCanvas(client Point) Point {
	b := e.canvas.Bounds()
	return toCanvas(client, e.viewport, b.Dx(), b.Dy())
}

// State reports whether a gesture is in progress.
func (e *Editor) State() State {
	if e.session != nil {
		return Dragging
	}
	return Idle
}

// Dragging reports whether a stroke is in progress.
func (e *Editor) Dragging() bool { return e.session != nil }

// PointerDown begins a stroke at a client position.
func (e *Editor) PointerDown(client Point) { e.down(e.ToCanvas(client)) }

// PointerMove extends the stroke in progress. It is ignored while idle.
func (e *Editor) PointerMove(client Point) { e.move(e.ToCanvas(client)) }

// PointerUp ends the stroke in progress; the canvas contents become permanent.
func (e *Editor) PointerUp() { e.up() }

// PointerLeave is treated exactly like PointerUp.
func (e *Editor) PointerLeave() { e.up() }

func (e *Editor) down(p Point) {
	if e.dc == nil {
		return
	}
	if e.session != nil {
		e.up()
	}

	s := &strokeSession{
		tool:     e.tool,
		color:    e.color.Value(),
		label:    e.text,
		start:    p,
		snapshot: clone.AsRGBA(e.canvas),
	}
	if s.tool == Text {
		if err := e.ensureFace(); err != nil {
			e.logger.Warn("text tool unavailable", zap.Error(err))
		}
		s.face = e.face
		shapes[Text](e.dc, s, p)
	}
	if s.tool == Pen {
		s.path = []Point{p}
	}
	e.session = s
}

func (e *Editor) move(p Point) {
	s := e.session
	if s == nil {
		return
	}
	if s.tool == Pen {
		prev := s.path[len(s.path)-1]
		s.path = append(s.path, p)
		drawSegment(e.dc, s.color, prev, p)
		s.segments++
		return
	}
	render, ok := shapes[s.tool]
	if !ok {
		return
	}
	e.restore(s.snapshot)
	render(e.dc, s, p)
}

func (e *Editor) up() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil
	e.logger.Debug("stroke finished",
		zap.Stringer("tool", s.tool),
		zap.Int("points", len(s.path)),
		zap.Int("segments", s.segments))
}

func (e *Editor) restore(snap *image.RGBA) {
	copy(e.canvas.Pix, snap.Pix)
}

func (e *Editor) ensureFace() error {
	if e.face != nil {
		return nil
	}
	face, err := newFace(e.fontSize)
	if err != nil {
		return err
	}
	e.face = face
	return nil
}

// Reset discards every stroke and restores the pixels as loaded.
func (e *Editor) Reset() {
	e.session = nil
	if e.source == nil {
		return
	}
	e.restore(e.source)
}

// Save flattens the canvas to PNG and hands it to the OnSave callback.
//
// A stroke in progress is ended first. When the canvas is empty or cannot be encoded
// the returned error wraps ErrEncode and OnSave is not invoked.
func (e *Editor) Save() (Artifact, error) {
	e.up()
	b := e.canvas.Bounds()
	if b.Empty() {
		return Artifact{}, fmt.Errorf("%w: canvas is empty", ErrEncode)
	}
	data, err := imaging.EncodePNG(e.canvas)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	art := Artifact{PNG: data, Width: b.Dx(), Height: b.Dy()}
	if e.onSave != nil {
		e.onSave(art)
	}
	return art, nil
}

// Cancel discards all edits and the canvas, then notifies the OnCancel callback.
func (e *Editor) Cancel() {
	e.clear()
	if e.onCancel != nil {
		e.onCancel()
	}
}
