// Package server implements the MCP (Model Context Protocol) server for the feedback
// tools.
//
// This package provides a JSON-RPC 2.0 server that lets an MCP client capture a page,
// annotate the screenshot and file it as an issue. Each captured or opened image
// becomes an editor session addressed by id.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Acquisition:
//   - feedback_capture: Screenshot a URL in a headless browser and open a session
//   - editor_open: Open a session on an image file or base64 data
//
// Editor settings:
//   - editor_set_tool, editor_set_color, editor_set_text
//   - editor_viewport: Declare the displayed canvas rectangle for pointer scaling
//
// Drawing:
//   - editor_pointer: Replay down/move/up/leave events
//   - editor_stroke: Draw whole strokes in canvas coordinates
//   - editor_preview: Current canvas as base64 PNG, optionally cropped or downscaled
//   - editor_reset: Remove every annotation
//
// Completion:
//   - editor_save: Flatten to a PNG artifact
//   - editor_cancel: Discard the session
//   - feedback_submit: File the artifact and metadata with the configured tracker
//   - feedback_report: Write the feedback as a PDF instead
//
// # Sessions
//
// Sessions live in memory for the lifetime of the server process; editor_cancel
// removes one. Requests for the same session are serialized.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for invalid arguments, -32000 for tool execution failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
