package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Pipeline
		{
			Name:        "dataset_ingest",
			Description: "Scan {dataset_root}/{train,test,valid}/labels/*.txt and replace the raw_annotations table with every well-formed label line. The database is recreated only when at least one record was found.",
			InputSchema: noArgs(),
		},
		{
			Name:        "dataset_clean",
			Description: "Clean raw_annotations into cleaned_annotations: drop missing or unparseable fields, out-of-range coordinates, and exact duplicates. Returns the per-step counts.",
			InputSchema: noArgs(),
		},
		{
			Name:        "dataset_process",
			Description: "Run dataset_ingest followed by dataset_clean.",
			InputSchema: noArgs(),
		},

		// Inspection
		{
			Name:        "dataset_stats",
			Description: "Summarize the database: rows and distinct images per table, rows per split, and cleaned rows per class.",
			InputSchema: noArgs(),
		},
		{
			Name:        "class_distribution",
			Description: "Count cleaned annotations per class and render the distribution as a bar chart (base64-encoded PNG).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the rendered chart. Default true",
						"default":     true,
					},
				},
			},
		},
		{
			Name:        "annotation_showcase",
			Description: "Pick one cleaned annotation at random, draw its bounding box and class id on the source image, and return the result as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Optional seed for a repeatable pick",
						"minimum":     0,
					},
				},
			},
		},
		{
			Name:        "annotation_crop",
			Description: "Crop the bounding box of one cleaned annotation out of its source image. Use this to zoom into a labelled object.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Zero-based row of cleaned_annotations in insertion order",
						"minimum":     0,
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context added around the box. Default 0",
						"default":     0,
						"minimum":     0,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width, height, and format of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the image file",
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
