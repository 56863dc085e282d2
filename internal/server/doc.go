// Package server implements the MCP (Model Context Protocol) server for image marking tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the marker service
// through the MCP protocol, so that Claude and other MCP-compatible clients can
// stamp text and images onto pictures and get back the path of the result.
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
// Text markers:
//   - image_add_text: Draw text with its top-left at x,y
//   - image_add_text_by_position: Draw text at a named position
//
// Image markers:
//   - image_mark_image: Overlay an image with its top-left at x,y
//   - image_mark_image_by_position: Overlay an image at a named position
//
// Object lists:
//   - image_mark_objects: Paint several image and text elements in order
//
// Image information:
//   - image_load: Load image and get metadata
//
// Image sources may be http(s) URLs, file:// URIs, base64 data URIs or names
// of images in the configured resource directories. Results are written under
// the output directory given to New.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: {"kind": ..., "message": ...} where kind is one of
//     SourceUnavailable, FetchFailed, InvalidScale, InvalidColor,
//     LayoutError, IOError, or Error for malformed arguments
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(service, cfg.Marker.OutputDir, log)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
