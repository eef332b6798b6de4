// Package server implements the MCP (Model Context Protocol) server for a
// labelled object-detection dataset.
//
// It exposes the dataset pipeline and its visual checks as tools, so an MCP
// client can rebuild the database, inspect class balance, and look at
// individual bounding boxes without leaving the conversation.
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
// Pipeline:
//   - dataset_ingest: Load label files into raw_annotations
//   - dataset_clean: Rebuild cleaned_annotations from raw_annotations
//   - dataset_process: Ingest then clean
//
// Inspection:
//   - dataset_stats: Row, image, split, and class counts
//   - class_distribution: Per-class counts with a bar chart
//   - annotation_showcase: A random annotation drawn on its image
//   - annotation_crop: The pixels inside one annotation's box
//   - image_dimensions: Width, height, and format of an image file
//
// Pipeline tools run one at a time. A successful ingest clears the image
// cache, since images are keyed by path and may have been replaced along
// with their labels.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The error string, including its context fields
//
// # Usage
//
//	srv := server.New(settings, afero.NewOsFs(), log)
//	if err := srv.Run(ctx); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
package server
