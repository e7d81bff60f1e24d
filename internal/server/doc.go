// Package server implements the MCP (Model Context Protocol) server for Set card detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the card detector
// through the MCP protocol, so an MCP client can photograph a layout, ask
// which cards are on the table and which of them form Sets.
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
// Layout:
//   - setcards_load: Load a photograph, report its metadata and card grid
//
// Detection:
//   - setcards_detect: Classify every card, with palette and stage counts
//   - setcards_find_sets: List every valid Set among the detected cards
//   - setcards_check_set: Validate three cards given by their attributes
//
// Visual checks:
//   - setcards_annotate: Outline and number every detected card
//   - setcards_crop_card: Upright crop of one detected card
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// Detection itself is recomputed on every call; it holds no state between
// captures.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, diag.FromLevel(cfg.Server.LogLevel))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
