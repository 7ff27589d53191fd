// Package annotate implements the screenshot annotation editor.
//
// An Editor owns a single pixel buffer sized to the loaded image and mutates it in
// place in response to pointer gestures. It has no knowledge of where the image came
// from or where the result goes; callers feed it a raster image and receive a PNG
// artifact (or a cancellation) back.
//
// # Gestures
//
// A gesture is a pointer-down followed by any number of pointer-moves and a final
// pointer-up or pointer-leave. Between down and up the editor holds a stroke session:
// the start point, a snapshot of the buffer taken at pointer-down and, for the pen,
// the accumulated path.
//
//   - Pen: every move strokes one segment from the previous point directly onto the
//     buffer (3px, round cap and join). Segments are never redrawn.
//   - Arrow, Rectangle, Circle, Text: every move restores the snapshot and renders the
//     shape from the start point to the current point, so only the final frame of the
//     drag persists.
//
// # Coordinate System
//
// Pointer coordinates are client coordinates. When a Viewport is set they are mapped
// into canvas space by the ratio of the buffer size to the displayed size; without a
// viewport they are used as canvas coordinates directly. (0,0) is the top-left pixel.
//
// # Tool and Color Changes During a Drag
//
// SetTool and SetColor always succeed. The stroke in progress keeps the tool and color
// captured at pointer-down; the new values apply from the next pointer-down.
//
// # Thread Safety
//
// An Editor is not safe for concurrent use. Callers driving one editor from several
// goroutines must serialize access.
package annotate
