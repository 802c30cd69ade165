// Package server implements the MCP (Model Context Protocol) server for the
// matrix tools.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line on stdin
// and one response per line on stdout. Logs go to stderr.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - matrix_from_image: image to intensity matrix literal
//   - matrix_from_video: sampled video frames to matrix literals
//   - matrix_plot: matrix literal to heatmap PNG
//   - matrix_parse: validate a literal and report its shape and values
//   - matrix_color_scales: list the heatmap color scales
//
// Media is passed either as a file path or as base64 data. Uploads larger
// than the configured limit are rejected.
//
// # Error Handling
//
// Tool failures are JSON-RPC error responses:
//   - -32602: invalid arguments (error data code INVALID_INPUT)
//   - -32000: anything else, with data {"code": "DECODE_ERROR", "message": ...}
//     where code is DECODE_ERROR, PARSE_ERROR, RANGE_ERROR or RENDER_ERROR
//   - -32601: unknown method
//   - -32700: a line that is not JSON
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("server stopped", "err", err)
//	}
package server
