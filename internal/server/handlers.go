package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
	"github.com/ironsheep/feedback-tools-mcp/internal/imaging"
	"github.com/ironsheep/feedback-tools-mcp/internal/report"
	"github.com/ironsheep/feedback-tools-mcp/internal/tracker"
)

// errInvalidArgs marks tool argument errors; they are reported as -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_open", "editor_pointer").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return code -32602; other tool failures return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Acquisition
	case "feedback_capture":
		return s.handleFeedbackCapture(ctx, args)
	case "editor_open":
		return s.handleEditorOpen(args)

	// Editor settings
	case "editor_set_tool":
		return s.handleEditorSetTool(args)
	case "editor_set_color":
		return s.handleEditorSetColor(args)
	case "editor_set_text":
		return s.handleEditorSetText(args)
	case "editor_viewport":
		return s.handleEditorViewport(args)

	// Drawing
	case "editor_pointer":
		return s.handleEditorPointer(args)
	case "editor_stroke":
		return s.handleEditorStroke(args)
	case "editor_preview":
		return s.handleEditorPreview(args)
	case "editor_reset":
		return s.handleEditorReset(args)

	// Completion
	case "editor_save":
		return s.handleEditorSave(args)
	case "editor_cancel":
		return s.handleEditorCancel(args)
	case "feedback_submit":
		return s.handleFeedbackSubmit(ctx, args)
	case "feedback_report":
		return s.handleFeedbackReport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, marking failures as argument errors.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

type sessionArgs struct {
	Session string `json:"session"`
}

// withSession decodes args, resolves the session and runs fn with the session locked.
func (s *Server) withSession(args json.RawMessage, v interface{}, fn func(*session) (interface{}, error)) (interface{}, error) {
	if err := decodeArgs(args, v); err != nil {
		return nil, err
	}
	var sa sessionArgs
	if err := decodeArgs(args, &sa); err != nil {
		return nil, err
	}
	sess, err := s.session(sa.Session)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// === Acquisition Handlers ===

type captureArgs struct {
	URL            string `json:"url"`
	FullPage       *bool  `json:"full_page"`
	ViewportWidth  int    `json:"viewport_width"`
	ViewportHeight int    `json:"viewport_height"`
}

type openResult struct {
	sessionStatus
	Metadata *capture.Metadata `json:"metadata,omitempty"`
}

func (s *Server) captureOptions(a captureArgs) capture.Options {
	c := s.cfg.Capture
	opts := capture.Options{
		URL:            a.URL,
		FullPage:       c.FullPage,
		ViewportWidth:  c.ViewportWidth,
		ViewportHeight: c.ViewportHeight,
		DeviceScale:    c.DeviceScale,
		Timeout:        s.cfg.GetCaptureTimeout(),
		Headless:       c.Headless,
		BrowserBin:     c.BrowserBin,
		ControlURL:     c.ControlURL,
	}
	if a.FullPage != nil {
		opts.FullPage = *a.FullPage
	}
	if a.ViewportWidth > 0 {
		opts.ViewportWidth = a.ViewportWidth
	}
	if a.ViewportHeight > 0 {
		opts.ViewportHeight = a.ViewportHeight
	}
	return opts
}

func (s *Server) handleFeedbackCapture(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a captureArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.URL == "" {
		return nil, fmt.Errorf("%w: url is required", errInvalidArgs)
	}

	res, err := s.capturer.Capture(ctx, s.captureOptions(a))
	if err != nil {
		return nil, err
	}

	sess, err := s.openSession(bytes.NewReader(res.PNG), res.Metadata)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return openResult{sessionStatus: sess.status(), Metadata: &sess.metadata}, nil
}

type openArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleEditorOpen(args json.RawMessage) (interface{}, error) {
	var a openArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var r io.Reader
	switch {
	case a.Path != "" && a.ImageBase64 != "":
		return nil, fmt.Errorf("%w: pass either path or image_base64, not both", errInvalidArgs)
	case a.Path != "":
		f, err := os.Open(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()
		r = f
	case a.ImageBase64 != "":
		data, err := imaging.DecodeBase64(a.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		r = bytes.NewReader(data)
	default:
		return nil, fmt.Errorf("%w: path or image_base64 is required", errInvalidArgs)
	}

	sess, err := s.openSession(r, capture.Metadata{})
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return openResult{sessionStatus: sess.status()}, nil
}

// === Editor Setting Handlers ===

type setToolArgs struct {
	Tool string `json:"tool"`
}

func (s *Server) handleEditorSetTool(args json.RawMessage) (interface{}, error) {
	var a setToolArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		tool, err := annotate.ParseTool(a.Tool)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		sess.editor.SetTool(tool)
		return sess.status(), nil
	})
}

type setColorArgs struct {
	Color string `json:"color"`
}

func (s *Server) handleEditorSetColor(args json.RawMessage) (interface{}, error) {
	var a setColorArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		col, err := annotate.ParseColor(a.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		sess.editor.SetColor(col)
		return sess.status(), nil
	})
}

type setTextArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleEditorSetText(args json.RawMessage) (interface{}, error) {
	var a setTextArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		sess.editor.SetText(a.Text)
		return sess.status(), nil
	})
}

func (s *Server) handleEditorViewport(args json.RawMessage) (interface{}, error) {
	var a annotate.Viewport
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		if a.Width < 0 || a.Height < 0 {
			return nil, fmt.Errorf("%w: viewport size must not be negative", errInvalidArgs)
		}
		sess.editor.SetViewport(a)
		return map[string]interface{}{
			"session":  sess.id,
			"viewport": a,
		}, nil
	})
}

// === Drawing Handlers ===

type pointerEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type pointerArgs struct {
	Events []pointerEvent `json:"events"`
}

func (s *Server) handleEditorPointer(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		for i, ev := range a.Events {
			switch ev.Type {
			case "down", "move", "up", "leave":
			default:
				return nil, fmt.Errorf("%w: event %d has unknown type %q", errInvalidArgs, i, ev.Type)
			}
		}

		e := sess.editor
		for _, ev := range a.Events {
			p := annotate.Point{X: ev.X, Y: ev.Y}
			switch ev.Type {
			case "down":
				e.PointerDown(p)
			case "move":
				e.PointerMove(p)
			case "up":
				e.PointerUp()
			case "leave":
				e.PointerLeave()
			}
		}
		sess.artifact = nil
		return sess.status(), nil
	})
}

type strokeArgs struct {
	Strokes []string `json:"strokes"`
}

func (s *Server) handleEditorStroke(args json.RawMessage) (interface{}, error) {
	var a strokeArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		specs := make([]annotate.StrokeSpec, 0, len(a.Strokes))
		for _, raw := range a.Strokes {
			spec, err := annotate.ParseStroke(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
			}
			specs = append(specs, spec)
		}
		for _, spec := range specs {
			if err := sess.editor.Apply(spec); err != nil {
				return nil, err
			}
		}
		sess.artifact = nil
		return sess.status(), nil
	})
}

type previewArgs struct {
	X1        int `json:"x1"`
	Y1        int `json:"y1"`
	X2        int `json:"x2"`
	Y2        int `json:"y2"`
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`
}

func (s *Server) handleEditorPreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		if !sess.editor.Loaded() {
			return nil, fmt.Errorf("session has no image")
		}
		var img image.Image = sess.editor.Image()
		if a.X2 != 0 || a.Y2 != 0 {
			cropped, err := imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
			}
			img = cropped
		}
		return imaging.Encode(imaging.FitWithin(img, a.MaxWidth, a.MaxHeight))
	})
}

func (s *Server) handleEditorReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		sess.editor.Reset()
		sess.artifact = nil
		return sess.status(), nil
	})
}

// === Completion Handlers ===

type saveArgs struct {
	Path string `json:"path"`
}

type saveResult struct {
	imaging.EncodedImage
	Session string `json:"session"`
	Path    string `json:"path,omitempty"`
}

func (s *Server) handleEditorSave(args json.RawMessage) (interface{}, error) {
	var a saveArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		art, err := sess.editor.Save()
		if err != nil {
			return nil, err
		}
		if a.Path != "" {
			if err := os.WriteFile(a.Path, art.PNG, 0644); err != nil {
				return nil, fmt.Errorf("failed to write artifact: %w", err)
			}
		}
		return saveResult{
			EncodedImage: imaging.EncodedImage{
				Width:       art.Width,
				Height:      art.Height,
				ImageBase64: base64.StdEncoding.EncodeToString(art.PNG),
				MimeType:    imaging.MimePNG,
			},
			Session: sess.id,
			Path:    a.Path,
		}, nil
	})
}

func (s *Server) handleEditorCancel(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		sess.editor.Cancel()
		return map[string]interface{}{
			"session":   sess.id,
			"cancelled": true,
		}, nil
	})
}

type feedbackArgs struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Path        string   `json:"path"`
}

// buildFeedback assembles the report for sess, saving the canvas when no artifact has
// been kept yet. It must be called with sess.mu held.
func (s *Server) buildFeedback(sess *session, a feedbackArgs) (*feedback.Feedback, error) {
	fb := feedback.New(a.Title, a.Description)
	if err := fb.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	fb.Metadata = sess.metadata
	fb.Labels = a.Labels
	if len(fb.Labels) == 0 {
		fb.Labels = s.cfg.Tracker.Labels
	}

	if sess.artifact == nil && sess.editor.Loaded() {
		if _, err := sess.editor.Save(); err != nil {
			return nil, err
		}
	}
	if sess.artifact != nil {
		fb.Screenshot = sess.artifact.PNG
	}
	return fb, nil
}

func (s *Server) handleFeedbackSubmit(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.adapter == nil {
		return nil, fmt.Errorf("no tracker configured; set tracker.type or use feedback_report")
	}

	var a feedbackArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		fb, err := s.buildFeedback(sess, a)
		if err != nil {
			return nil, err
		}
		return tracker.Submit(ctx, s.adapter, fb,
			tracker.WithLogger(s.logger),
			tracker.WithMaxSize(s.cfg.Upload.MaxWidth, s.cfg.Upload.MaxHeight))
	})
}

func (s *Server) handleFeedbackReport(args json.RawMessage) (interface{}, error) {
	var a feedbackArgs
	return s.withSession(args, &a, func(sess *session) (interface{}, error) {
		if strings.TrimSpace(a.Path) == "" {
			return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
		}
		fb, err := s.buildFeedback(sess, a)
		if err != nil {
			return nil, err
		}
		if err := report.WriteFile(a.Path, fb); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"session":     sess.id,
			"feedback_id": fb.ID,
			"path":        a.Path,
		}, nil
	})
}
