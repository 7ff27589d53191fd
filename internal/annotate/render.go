package annotate

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is the text tool label size in points.
const DefaultFontSize = 20.0

// shapeFunc renders the shape of a stroke ending at end.
type shapeFunc func(dc *gg.Context, s *strokeSession, end Point)

// shapes is the dispatch table for every tool that previews by restore-then-redraw.
// The pen is absent: it appends segments instead.
var shapes = map[Tool]shapeFunc{
	Arrow: func(dc *gg.Context, s *strokeSession, end Point) {
		drawArrow(dc, s.color, s.start, end)
	},
	Rectangle: func(dc *gg.Context, s *strokeSession, end Point) {
		drawRect(dc, s.color, s.start, end)
	},
	Circle: func(dc *gg.Context, s *strokeSession, end Point) {
		drawCircle(dc, s.color, s.start, end)
	},
	Text: func(dc *gg.Context, s *strokeSession, end Point) {
		drawLabel(dc, s.color, s.face, s.label, end)
	},
}

func setStroke(dc *gg.Context, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(strokeWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
}

// drawSegment strokes one pen segment.
func drawSegment(dc *gg.Context, c color.Color, from, to Point) {
	setStroke(dc, c)
	dc.DrawLine(from.X, from.Y, to.X, to.Y)
	dc.Stroke()
}

func drawArrow(dc *gg.Context, c color.Color, start, end Point) {
	setStroke(dc, c)
	dc.DrawLine(start.X, start.Y, end.X, end.Y)
	dc.Stroke()

	left, right := arrowHead(start, end)
	dc.MoveTo(end.X, end.Y)
	dc.LineTo(left.X, left.Y)
	dc.LineTo(right.X, right.Y)
	dc.ClosePath()
	dc.Fill()
}

func drawRect(dc *gg.Context, c color.Color, a, b Point) {
	setStroke(dc, c)
	x, y, w, h := normalizeRect(a, b)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
}

func drawCircle(dc *gg.Context, c color.Color, center, edge Point) {
	setStroke(dc, c)
	dc.DrawCircle(center.X, center.Y, circleRadius(center, edge))
	dc.Stroke()
}

// drawLabel renders text with its left edge at p, vertically centered.
func drawLabel(dc *gg.Context, c color.Color, face font.Face, text string, p Point) {
	if text == "" || face == nil {
		return
	}
	dc.SetColor(c)
	dc.SetFontFace(face)
	dc.DrawStringAnchored(text, p.X, p.Y, 0, 0.5)
}

var (
	goRegular     *truetype.Font
	goRegularOnce sync.Once
	goRegularErr  error
)

// newFace builds a Go Regular face of the given size.
func newFace(size float64) (font.Face, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = truetype.Parse(goregular.TTF)
	})
	if goRegularErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", goRegularErr)
	}
	return truetype.NewFace(goRegular, &truetype.Options{Size: size}), nil
}
