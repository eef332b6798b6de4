package server

import (
	"testing"
)

func toolMap() map[string]Tool {
	m := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		m[tool.Name] = tool
	}
	return m
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"dataset_ingest",
		"dataset_clean",
		"dataset_process",
		"dataset_stats",
		"class_distribution",
		"annotation_showcase",
		"annotation_crop",
		"image_dimensions",
	}

	m := toolMap()
	for _, name := range expectedTools {
		if _, ok := m[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(m) != len(tools) {
		t.Errorf("duplicate tool names: %d unique of %d", len(m), len(tools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{"annotation_crop", []string{"index"}},
		{"image_dimensions", []string{"path"}},
	}

	m := toolMap()
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool, ok := m[tt.tool]
			if !ok {
				t.Fatalf("tool %s not found", tt.tool)
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			have := make(map[string]bool)
			for _, r := range required {
				have[r] = true
			}
			for _, r := range tt.required {
				if !have[r] {
					t.Errorf("%s should require '%s'", tt.tool, r)
				}
			}
		})
	}
}

func TestToolDefinitions_NoArgTools(t *testing.T) {
	m := toolMap()
	for _, name := range []string{"dataset_ingest", "dataset_clean", "dataset_process", "dataset_stats"} {
		tool := m[name]
		if _, ok := tool.InputSchema["required"]; ok {
			t.Errorf("%s should not require arguments", name)
		}
		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok || len(props) != 0 {
			t.Errorf("%s: properties got %v, want empty", name, tool.InputSchema["properties"])
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"annotation_crop":    {"scale": 1.0, "padding": 0},
		"class_distribution": {"include_image": true},
	}

	m := toolMap()
	for toolName, expectedDefaults := range toolDefaults {
		tool, ok := m[toolName]
		if !ok {
			t.Errorf("Tool %s not found", toolName)
			continue
		}

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}
			if actualDefault != expectedDefault {
				t.Errorf("%s.%s: default got %v (%T), want %v (%T)",
					toolName, paramName, actualDefault, actualDefault, expectedDefault, expectedDefault)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t, nil)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
