package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
)

// colorSwatch is a tappable square of one palette color.
type colorSwatch struct {
	widget.BaseWidget
	color    annotate.Color
	selected bool
	OnTapped func(annotate.Color)
}

func newColorSwatch(c annotate.Color, tapped func(annotate.Color)) *colorSwatch {
	s := &colorSwatch{color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) setSelected(on bool) {
	if s.selected == on {
		return
	}
	s.selected = on
	s.Refresh()
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	fill := canvas.NewRectangle(s.color.Value())
	fill.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return &swatchRenderer{
		WidgetRenderer: widget.NewSimpleRenderer(container.NewStack(fill, border)),
		s:              s,
		border:         border,
	}
}

func (s *colorSwatch) Tapped(*fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.color)
	}
}

type swatchRenderer struct {
	fyne.WidgetRenderer
	s      *colorSwatch
	border *canvas.Rectangle
}

func (r *swatchRenderer) Refresh() {
	if r.s.selected {
		r.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		r.border.StrokeWidth = 3
	} else {
		r.border.StrokeColor = color.Gray{Y: 150}
		r.border.StrokeWidth = 1
	}
	r.border.Refresh()
}

// Toolbar holds the tool, color and label controls bound to one editor widget.
type Toolbar struct {
	editor   *EditorWidget
	tools    *widget.RadioGroup
	swatches []*colorSwatch
	label    *widget.Entry
}

// NewToolbar builds the controls and selects the editor's current tool and color.
func NewToolbar(editor *EditorWidget) *Toolbar {
	tb := &Toolbar{editor: editor}

	names := make([]string, 0, len(annotate.Tools()))
	for _, t := range annotate.Tools() {
		names = append(names, t.String())
	}
	tb.tools = widget.NewRadioGroup(names, func(selected string) {
		if t, err := annotate.ParseTool(selected); err == nil {
			editor.SetTool(t)
		}
	})
	tb.tools.Horizontal = true
	tb.tools.Required = true
	tb.tools.SetSelected(editor.Editor().Tool().String())

	for _, c := range annotate.Colors() {
		tb.swatches = append(tb.swatches, newColorSwatch(c, tb.selectColor))
	}
	tb.markColor(editor.Editor().Color())

	tb.label = widget.NewEntry()
	tb.label.SetPlaceHolder("Label for the text tool")
	tb.label.OnChanged = editor.SetText

	return tb
}

func (tb *Toolbar) selectColor(c annotate.Color) {
	tb.editor.SetColor(c)
	tb.markColor(c)
}

func (tb *Toolbar) markColor(c annotate.Color) {
	for _, s := range tb.swatches {
		s.setSelected(s.color == c)
	}
}

// Object lays the controls out in a single row.
func (tb *Toolbar) Object() fyne.CanvasObject {
	colors := container.NewHBox()
	for _, s := range tb.swatches {
		colors.Add(s)
	}
	reset := widget.NewButtonWithIcon("Clear", theme.ContentUndoIcon(), tb.editor.Reset)
	label := container.New(layout.NewGridWrapLayout(fyne.NewSize(220, 36)), tb.label)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb.tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colors,
		widget.NewSeparator(),
		label,
		layout.NewSpacer(),
		reset,
	)
}
