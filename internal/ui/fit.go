package ui

import (
	"math"

	"fyne.io/fyne/v2"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
)

// containFit returns where an imgW x imgH image lands when scaled to fit inside size
// with its aspect ratio kept and the slack split evenly on both sides. This matches
// canvas.ImageFillContain.
func containFit(imgW, imgH int, size fyne.Size) annotate.Viewport {
	if imgW <= 0 || imgH <= 0 || size.Width <= 0 || size.Height <= 0 {
		return annotate.Viewport{}
	}
	boxW, boxH := float64(size.Width), float64(size.Height)
	scale := math.Min(boxW/float64(imgW), boxH/float64(imgH))
	w, h := float64(imgW)*scale, float64(imgH)*scale
	return annotate.Viewport{
		Left:   (boxW - w) / 2,
		Top:    (boxH - h) / 2,
		Width:  w,
		Height: h,
	}
}

func pointOf(p fyne.Position) annotate.Point {
	return annotate.Point{X: float64(p.X), Y: float64(p.Y)}
}
