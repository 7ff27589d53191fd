package annotate

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Tool identifies the drawing routine applied by a gesture.
type Tool int

const (
	Arrow Tool = iota
	Rectangle
	Circle
	Pen
	Text
)

var toolNames = [...]string{
	Arrow:     "arrow",
	Rectangle: "rectangle",
	Circle:    "circle",
	Pen:       "pen",
	Text:      "text",
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return toolNames[t]
}

// Tools returns every tool in toolbar order.
func Tools() []Tool {
	return []Tool{Arrow, Rectangle, Circle, Pen, Text}
}

// ParseTool resolves a tool name ("arrow", "rectangle", ...). Matching is case-insensitive
// and accepts "rect" as a short form.
func ParseTool(name string) (Tool, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "rect" {
		return Rectangle, nil
	}
	for i, s := range toolNames {
		if s == n {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool: %q", name)
}

// Color is one of the fixed annotation colors.
type Color int

const (
	Red Color = iota
	Blue
	Green
	Yellow
	Black
)

var colorNames = [...]string{
	Red:    "red",
	Blue:   "blue",
	Green:  "green",
	Yellow: "yellow",
	Black:  "black",
}

var colorHex = [...]string{
	Red:    "#EF4444",
	Blue:   "#3B82F6",
	Green:  "#22C55E",
	Yellow: "#EAB308",
	Black:  "#000000",
}

// palette holds the decoded colorHex table.
var palette = func() []color.RGBA {
	out := make([]color.RGBA, len(colorHex))
	for i, hex := range colorHex {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic(fmt.Sprintf("annotate: bad palette entry %s: %v", hex, err))
		}
		r, g, b := c.RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}()

func (c Color) String() string {
	if !c.valid() {
		return fmt.Sprintf("color(%d)", int(c))
	}
	return colorNames[c]
}

// Hex returns the fixed "#RRGGBB" value of the color.
func (c Color) Hex() string {
	if !c.valid() {
		return colorHex[Black]
	}
	return colorHex[c]
}

// Value returns the color as an opaque color.RGBA. Unknown colors map to black.
func (c Color) Value() color.RGBA {
	if !c.valid() {
		return palette[Black]
	}
	return palette[c]
}

func (c Color) valid() bool {
	return c >= 0 && int(c) < len(colorNames)
}

// Colors returns every palette color in toolbar order.
func Colors() []Color {
	return []Color{Red, Blue, Green, Yellow, Black}
}

// ParseColor resolves a color by name ("red") or by its exact palette hex value.
func ParseColor(s string) (Color, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range colorNames {
		if name == n || strings.EqualFold(colorHex[i], n) {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color: %q", s)
}
