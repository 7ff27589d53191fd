package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var sessionProperty = map[string]interface{}{
	"type":        "string",
	"description": "Session id returned by feedback_capture or editor_open",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Acquisition
		{
			Name:        "feedback_capture",
			Description: "Load a web page in a headless browser, take a screenshot and record the browser environment. Opens an annotation session on the screenshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "Page URL to capture",
					},
					"full_page": map[string]interface{}{
						"type":        "boolean",
						"description": "Capture the whole scrollable page instead of the viewport",
					},
					"viewport_width": map[string]interface{}{
						"type":        "integer",
						"description": "Browser viewport width in CSS pixels",
					},
					"viewport_height": map[string]interface{}{
						"type":        "integer",
						"description": "Browser viewport height in CSS pixels",
					},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "editor_open",
			Description: "Open an annotation session on an existing image, given a file path or base64 data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64 image data, optionally as a data: URL",
					},
				},
			},
		},

		// Editor settings
		{
			Name:        "editor_set_tool",
			Description: "Select the drawing tool. A stroke in progress keeps its tool; the change applies to the next stroke.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"tool": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"arrow", "rectangle", "circle", "pen", "text"},
						"description": "Drawing tool",
					},
				},
				"required": []string{"session", "tool"},
			},
		},
		{
			Name:        "editor_set_color",
			Description: "Select the stroke color by name or palette hex value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"color": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"red", "blue", "green", "yellow", "black"},
						"description": "Stroke color",
					},
				},
				"required": []string{"session", "color"},
			},
		},
		{
			Name:        "editor_set_text",
			Description: "Set the label stamped by the text tool.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Label text",
					},
				},
				"required": []string{"session", "text"},
			},
		},
		{
			Name:        "editor_viewport",
			Description: "Declare where the canvas is displayed in client coordinates so pointer events are scaled to canvas pixels. Width or height of 0 means pointer events are already in canvas pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"left":    map[string]interface{}{"type": "number", "description": "Left edge of the displayed canvas"},
					"top":     map[string]interface{}{"type": "number", "description": "Top edge of the displayed canvas"},
					"width":   map[string]interface{}{"type": "number", "description": "Displayed width"},
					"height":  map[string]interface{}{"type": "number", "description": "Displayed height"},
				},
				"required": []string{"session", "width", "height"},
			},
		},

		// Drawing
		{
			Name:        "editor_pointer",
			Description: "Send pointer events (down, move, up, leave) in client coordinates. Shapes preview during the drag and commit on up or leave.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"events": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"type": map[string]interface{}{
									"type": "string",
									"enum": []string{"down", "move", "up", "leave"},
								},
								"x": map[string]interface{}{"type": "number"},
								"y": map[string]interface{}{"type": "number"},
							},
							"required": []string{"type"},
						},
						"description": "Events applied in order",
					},
				},
				"required": []string{"session", "events"},
			},
		},
		{
			Name:        "editor_stroke",
			Description: "Draw complete strokes in canvas coordinates, written as tool:color:x,y x,y[:label] (e.g. \"arrow:red:10,10 120,80\" or \"text:black:40,30:Broken\").",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"strokes": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Strokes applied in order",
					},
				},
				"required": []string{"session", "strokes"},
			},
		},
		{
			Name:        "editor_preview",
			Description: "Return the current canvas as base64-encoded PNG, optionally cropped to a region and downscaled to fit limits.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"x1":      map[string]interface{}{"type": "integer", "description": "Crop left edge (0-based)"},
					"y1":      map[string]interface{}{"type": "integer", "description": "Crop top edge (0-based)"},
					"x2":      map[string]interface{}{"type": "integer", "description": "Crop right edge (exclusive)"},
					"y2":      map[string]interface{}{"type": "integer", "description": "Crop bottom edge (exclusive)"},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale to at most this width",
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale to at most this height",
					},
				},
				"required": []string{"session"},
			},
		},
		{
			Name:        "editor_reset",
			Description: "Remove every annotation and restore the image as loaded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
				},
				"required": []string{"session"},
			},
		},

		// Completion
		{
			Name:        "editor_save",
			Description: "Flatten the annotations into a PNG artifact, keep it for submission and return it base64-encoded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file path to also write the PNG to",
					},
				},
				"required": []string{"session"},
			},
		},
		{
			Name:        "editor_cancel",
			Description: "Discard all annotations and close the session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
				},
				"required": []string{"session"},
			},
		},
		{
			Name:        "feedback_submit",
			Description: "File the annotated screenshot, title, description and environment as an issue in the configured tracker. Saves the canvas first if editor_save was not called.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Issue title",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "What went wrong",
					},
					"labels": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Issue labels. Defaults to the configured labels",
					},
				},
				"required": []string{"session", "title"},
			},
		},
		{
			Name:        "feedback_report",
			Description: "Write the feedback as a PDF report instead of filing it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session": sessionProperty,
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Report title",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "What went wrong",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the PDF to write",
					},
				},
				"required": []string{"session", "title", "path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
