package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"setcards_load",
		"setcards_detect",
		"setcards_find_sets",
		"setcards_check_set",
		"setcards_annotate",
		"setcards_crop_card",
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) == 0 {
				t.Fatal("InputSchema should list required parameters")
			}
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %s has no property", name)
				}
			}
		})
	}
}

func TestToolDefinitions_Defaults(t *testing.T) {
	defaults := map[string]map[string]interface{}{
		"setcards_annotate":  {"color": "#FF00FF"},
		"setcards_crop_card": {"scale": 1.0},
	}

	for _, tool := range GetToolDefinitions() {
		want, ok := defaults[tool.Name]
		if !ok {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for param, expected := range want {
			prop, ok := props[param].(map[string]interface{})
			if !ok {
				t.Errorf("%s: missing parameter %s", tool.Name, param)
				continue
			}
			if prop["default"] != expected {
				t.Errorf("%s.%s: default got %v, want %v", tool.Name, param, prop["default"], expected)
			}
		}
	}
}

func TestCheckSetSchema(t *testing.T) {
	var checkSet Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "setcards_check_set" {
			checkSet = tool
		}
	}
	props := checkSet.InputSchema["properties"].(map[string]interface{})
	cardsProp := props["cards"].(map[string]interface{})
	if cardsProp["minItems"] != 3 || cardsProp["maxItems"] != 3 {
		t.Errorf("cards should hold exactly 3 items: %v", cardsProp)
	}
	items := cardsProp["items"].(map[string]interface{})
	attrs := items["properties"].(map[string]interface{})
	for _, name := range []string{"number", "shape", "color", "shading"} {
		attr, ok := attrs[name].(map[string]interface{})
		if !ok {
			t.Errorf("missing attribute %s", name)
			continue
		}
		if values, _ := attr["enum"].([]string); len(values) != 3 {
			t.Errorf("%s enum: got %v, want 3 values", name, attr["enum"])
		}
	}
}
