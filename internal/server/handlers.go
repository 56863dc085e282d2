package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
	"github.com/ironsheep/image-marker-mcp/internal/imaging"
	"github.com/ironsheep/image-marker-mcp/internal/marker"
	"github.com/ironsheep/image-marker-mcp/internal/wire"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_add_text", "image_mark_image").
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
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data is {"kind": ..., "message": ...}.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Info("tool call failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", wire.ErrorOf(err))
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
//
// Each marking handler:
//  1. Unmarshals arguments from JSON
//  2. Checks the arguments its tool requires
//  3. Converts them to a marker request (defaults applied in package wire)
//  4. Runs the request and returns the destination path
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Text markers
	case "image_add_text":
		return s.handleAddText(ctx, args, false)
	case "image_add_text_by_position":
		return s.handleAddText(ctx, args, true)

	// Image markers
	case "image_mark_image":
		return s.handleMarkImage(ctx, args, false)
	case "image_mark_image_by_position":
		return s.handleMarkImage(ctx, args, true)

	// Object lists
	case "image_mark_objects":
		return s.handleMarkObjects(ctx, args)

	// Image information
	case "image_load":
		return s.handleImageLoad(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) run(ctx context.Context, req marker.Request, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	select {
	case out := <-s.marker.Submit(ctx, req):
		if out.Err != nil {
			return nil, out.Err
		}
		return wire.Result{Path: out.Path}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// === Marking Handlers ===

func (s *Server) handleAddText(ctx context.Context, args json.RawMessage, byPosition bool) (interface{}, error) {
	var a wire.TextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if byPosition && strings.TrimSpace(a.Position) == "" {
		return nil, fmt.Errorf("position is required")
	}
	if !byPosition {
		a.Position = ""
	}
	req, err := a.Request(s.outputDir)
	return s.run(ctx, req, err)
}

func (s *Server) handleMarkImage(ctx context.Context, args json.RawMessage, byPosition bool) (interface{}, error) {
	var a wire.ImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if byPosition && strings.TrimSpace(a.Position) == "" {
		return nil, fmt.Errorf("position is required")
	}
	if !byPosition {
		a.Position = ""
	}
	req, err := a.Request(s.outputDir)
	return s.run(ctx, req, err)
}

func (s *Server) handleMarkObjects(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a wire.ObjectsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Markers) == 0 {
		return nil, apperrors.New(apperrors.KindLayoutError, "server.objects", "markers is empty")
	}
	req, err := a.Request(s.outputDir)
	return s.run(ctx, req, err)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(a.Path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindSourceUnavailable, "server.load", err, a.Path)
	}
	return info, nil
}
