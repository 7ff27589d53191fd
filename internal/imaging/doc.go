// Package imaging provides the raster plumbing shared by the editor, the server and
// the tracker upload path.
//
// It wraps disintegration/imaging for decoding (with EXIF auto-orientation), PNG
// encoding, cropping and size-limited downscaling, and provides the base64 result type
// returned to MCP clients.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner:
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// Store is safe for concurrent use. The image functions are stateless and may be
// called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside image bounds or with x1 >= x2 / y1 >= y2
//   - Undecodable image data
//   - Encoding failures
package imaging
