package server

import "github.com/ironsheep/image-marker-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func positionKeywords() []string {
	out := make([]string, len(imaging.Anchors))
	for i, a := range imaging.Anchors {
		out[i] = string(a)
	}
	return out
}

// sourceSchema describes an image reference with an optional scale.
func sourceSchema(what string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": what,
		"properties": map[string]interface{}{
			"uri": map[string]interface{}{
				"type":        "string",
				"description": "http(s) URL, file:// URI, data:image/...;base64 URI, or the name of an image in the resource directories",
			},
			"scale": map[string]interface{}{
				"type":        "number",
				"description": "Scale factor applied before compositing. Must be positive. Default 1.0",
				"default":     1.0,
			},
		},
		"required": []string{"uri"},
	}
}

// withOutput adds the output properties shared by every marking tool.
func withOutput(props map[string]interface{}) map[string]interface{} {
	props["quality"] = map[string]interface{}{
		"type":        "integer",
		"description": "JPEG quality 0-100. Ignored for PNG output. Default 100",
		"default":     100,
	}
	props["filename"] = map[string]interface{}{
		"type":        "string",
		"description": "Output file name inside the output directory. Names without .jpg/.jpeg/.png get the tool's default extension; omit for a generated name",
	}
	props["format"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"png", "jpg", "jpeg"},
		"description": "Output format. Default: from the file extension",
	}
	return props
}

func textProperties() map[string]interface{} {
	return map[string]interface{}{
		"src": sourceSchema("Background image"),
		"text": map[string]interface{}{
			"type":        "string",
			"description": "Text to draw. Wrapped to the background width; newlines force breaks",
		},
		"color": map[string]interface{}{
			"type":        "string",
			"description": "Text color: #RGB, #RRGGBB, #AARRGGBB or a name such as red. Default black",
		},
		"font_name": map[string]interface{}{
			"type":        "string",
			"description": "Font name (Go, Go-Bold, Go-Mono, ... or a file in the font directories). Unknown names use the default font",
		},
		"font_size": map[string]interface{}{
			"type":        "number",
			"description": "Font size in pixels. Default 14",
			"default":     14,
		},
		"shadow_style": map[string]interface{}{
			"type":        "object",
			"description": "Optional text shadow",
			"properties": map[string]interface{}{
				"radius": map[string]interface{}{"type": "number", "description": "Blur radius in pixels"},
				"dx":     map[string]interface{}{"type": "number", "description": "Horizontal offset"},
				"dy":     map[string]interface{}{"type": "number", "description": "Vertical offset"},
				"color":  map[string]interface{}{"type": "string", "description": "Shadow color"},
			},
			"required": []string{"color"},
		},
	}
}

func xyProperties(props map[string]interface{}, def int) map[string]interface{} {
	props["x"] = map[string]interface{}{
		"type":        "integer",
		"description": "Left edge of the marker in pixels",
		"default":     def,
	}
	props["y"] = map[string]interface{}{
		"type":        "integer",
		"description": "Top edge of the marker in pixels",
		"default":     def,
	}
	return props
}

func positionProperty(props map[string]interface{}, desc string) map[string]interface{} {
	props["position"] = map[string]interface{}{
		"type":        "string",
		"enum":        positionKeywords(),
		"description": desc,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Text markers
		{
			Name:        "image_add_text",
			Description: "Draw text onto a background image with its top-left at x,y and write the result to a new file (JPEG by default). Returns the output path.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withOutput(xyProperties(textProperties(), 20)),
				"required":   []string{"src", "text"},
			},
		},
		{
			Name:        "image_add_text_by_position",
			Description: "Draw text onto a background image at a named position and write the result to a new file (JPEG by default). The text block is aligned flush to the chosen edges. Returns the output path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(positionProperty(textProperties(),
					"Where to put the text block. Unknown values behave like topLeft")),
				"required": []string{"src", "text", "position"},
			},
		},

		// Image markers
		{
			Name:        "image_mark_image",
			Description: "Overlay a marker image onto a background image with its top-left at x,y and write the result to a new file (PNG by default). Returns the output path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(xyProperties(map[string]interface{}{
					"src":    sourceSchema("Background image"),
					"marker": sourceSchema("Marker image"),
				}, 0)),
				"required": []string{"src", "marker"},
			},
		},
		{
			Name:        "image_mark_image_by_position",
			Description: "Overlay a marker image onto a background image at a named position (20px side margin, 40px top margin) and write the result to a new file (PNG by default). Returns the output path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(positionProperty(map[string]interface{}{
					"src":    sourceSchema("Background image"),
					"marker": sourceSchema("Marker image"),
				}, "Where to put the marker. Unknown values behave like topLeft")),
				"required": []string{"src", "marker", "position"},
			},
		},

		// Object lists
		{
			Name:        "image_mark_objects",
			Description: "Paint a list of image and text elements onto a background at absolute positions, in order, and write the result to a new file (PNG by default). All images are fetched before anything is written; if any element fails, no file is written.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(map[string]interface{}{
					"src": sourceSchema("Background image"),
					"markers": map[string]interface{}{
						"type":        "array",
						"description": "Elements painted in order; later elements cover earlier ones",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"kind":      map[string]interface{}{"type": "string", "enum": []string{"image", "text"}, "description": "Element kind"},
								"type":      map[string]interface{}{"type": "integer", "description": "Legacy kind when kind is omitted: 1 is an image, anything else text"},
								"url":       map[string]interface{}{"type": "string", "description": "Image URI (image elements)"},
								"scale":     map[string]interface{}{"type": "number", "description": "Image scale (image elements). Default 1.0"},
								"text":      map[string]interface{}{"type": "string", "description": "Text (text elements), set in bold"},
								"color":     map[string]interface{}{"type": "string", "description": "Text color (text elements)"},
								"font_name": map[string]interface{}{"type": "string", "description": "Font name (text elements)"},
								"font_size": map[string]interface{}{"type": "number", "description": "Font size (text elements). Default 14"},
								"x":         map[string]interface{}{"type": "integer", "description": "Left edge in pixels"},
								"y":         map[string]interface{}{"type": "integer", "description": "Top edge in pixels"},
							},
							"required": []string{"x", "y"},
						},
					},
				}),
				"required": []string{"src", "markers"},
			},
		},

		// Image information
		{
			Name:        "image_load",
			Description: "Read an image file and return its dimensions, format, color depth and size. Use it to plan placements or to check a result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
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
