package annotate

import (
	"fmt"
	"strconv"
	"strings"
)

// StrokeSpec describes one complete gesture in canvas coordinates, for replaying
// annotations without a pointer device.
type StrokeSpec struct {
	Tool   Tool
	Color  Color
	Points []Point
	Label  string
}

// ParseStroke parses the textual form "tool:color:x,y x,y ...[:label]".
//
// Shapes need two points (start and end); the pen needs at least two; the text tool
// takes one point and a label:
//
//	arrow:red:10,10 120,80
//	pen:blue:5,5 6,9 8,14 12,20
//	text:black:40,30:Button does nothing
func ParseStroke(s string) (StrokeSpec, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return StrokeSpec{}, fmt.Errorf("invalid stroke %q: want tool:color:points", s)
	}

	tool, err := ParseTool(parts[0])
	if err != nil {
		return StrokeSpec{}, err
	}
	col, err := ParseColor(parts[1])
	if err != nil {
		return StrokeSpec{}, err
	}

	spec := StrokeSpec{Tool: tool, Color: col}
	for _, field := range strings.Fields(parts[2]) {
		xs, ys, ok := strings.Cut(field, ",")
		if !ok {
			return StrokeSpec{}, fmt.Errorf("invalid point %q in stroke %q", field, s)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return StrokeSpec{}, fmt.Errorf("invalid x in point %q: %w", field, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return StrokeSpec{}, fmt.Errorf("invalid y in point %q: %w", field, err)
		}
		spec.Points = append(spec.Points, Point{X: x, Y: y})
	}
	if len(parts) == 4 {
		spec.Label = parts[3]
	}

	return spec, spec.validate()
}

func (s StrokeSpec) validate() error {
	switch s.Tool {
	case Text:
		if len(s.Points) < 1 {
			return fmt.Errorf("text stroke needs a point")
		}
		if s.Label == "" {
			return fmt.Errorf("text stroke needs a label")
		}
	case Arrow, Rectangle, Circle:
		if len(s.Points) != 2 {
			return fmt.Errorf("%s stroke needs exactly 2 points, got %d", s.Tool, len(s.Points))
		}
	case Pen:
		if len(s.Points) < 2 {
			return fmt.Errorf("pen stroke needs at least 2 points, got %d", len(s.Points))
		}
	default:
		return fmt.Errorf("unsupported tool %s", s.Tool)
	}
	return nil
}

// Apply replays a stroke as down, move... and up in canvas coordinates. The editor's
// active tool, color and text are restored afterwards.
func (e *Editor) Apply(spec StrokeSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}

	tool, col, text := e.tool, e.color, e.text
	defer func() { e.tool, e.color, e.text = tool, col, text }()

	e.tool, e.color, e.text = spec.Tool, spec.Color, spec.Label
	e.down(spec.Points[0])
	for _, p := range spec.Points[1:] {
		e.move(p)
	}
	e.up()
	return nil
}
