package annotate

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// strokeWidth is the line width of every tool, in canvas pixels.
	strokeWidth = 3.0

	// arrowHeadLength is the distance from the arrow tip to each back vertex.
	arrowHeadLength = 20.0

	// arrowHeadSpread is the angle between the shaft and each side of the head.
	arrowHeadSpread = math.Pi / 6
)

// Point is a position in client or canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func pointOf(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Viewport is the rectangle, in client coordinates, where the canvas is displayed.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// toCanvas maps a client point into a canvas of w x h pixels displayed at vp.
// A degenerate viewport leaves the point untouched.
func toCanvas(client Point, vp Viewport, w, h int) Point {
	if vp.Width <= 0 || vp.Height <= 0 || w <= 0 || h <= 0 {
		return client
	}
	return Point{
		X: (client.X - vp.Left) * (float64(w) / vp.Width),
		Y: (client.Y - vp.Top) * (float64(h) / vp.Height),
	}
}

// arrowHead returns the two back vertices of an arrow head whose tip is at end.
// The vertices lie arrowHeadLength from the tip, arrowHeadSpread either side of the
// direction pointing back toward start. A zero-length arrow points right.
func arrowHead(start, end Point) (Point, Point) {
	tip := end.vec()
	back := r2.Sub(start.vec(), tip)
	if r2.Norm(back) == 0 {
		back = r2.Vec{X: -1}
	}
	base := r2.Add(tip, r2.Scale(arrowHeadLength, r2.Unit(back)))
	return pointOf(r2.Rotate(base, arrowHeadSpread, tip)), pointOf(r2.Rotate(base, -arrowHeadSpread, tip))
}

// circleRadius is the Euclidean distance from the center to the drag point.
func circleRadius(center, edge Point) float64 {
	return r2.Norm(r2.Sub(edge.vec(), center.vec()))
}

// normalizeRect returns the top-left corner and the non-negative size of the
// rectangle spanned by two opposite corners.
func normalizeRect(a, b Point) (x, y, w, h float64) {
	x, y = math.Min(a.X, b.X), math.Min(a.Y, b.Y)
	return x, y, math.Abs(b.X - a.X), math.Abs(b.Y - a.Y)
}
