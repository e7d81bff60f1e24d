package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a photograph of the card layout",
	}
}

func attributesSchema() map[string]interface{} {
	enum := func(description string, values ...string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "string",
			"enum":        values,
			"description": description,
		}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"number":  enum("Symbol count", "ONE", "TWO", "THREE"),
			"shape":   enum("Symbol shape", "DIAMOND", "OVAL", "SQUIGGLE"),
			"color":   enum("Ink color", "RED", "GREEN", "PURPLE"),
			"shading": enum("Fill style", "SOLID", "STRIPED", "OPEN"),
		},
		"required": []string{"number", "shape", "color", "shading"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Layout
		{
			Name:        "setcards_load",
			Description: "Load a photograph of a Set layout and return its size, format, orientation and the estimated card grid (3 rows; 5 columns for landscape, 4 for portrait).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "setcards_detect",
			Description: "Detect and classify every card in the photograph. Returns the cards in grid order with number, shape, color, shading, position and rotation, plus the symbol color palette and per-stage counts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "setcards_find_sets",
			Description: "Detect the cards and list every valid Set among them, with a per-attribute explanation of each.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "setcards_check_set",
			Description: "Check whether three cards form a valid Set: every attribute must be all the same or all different.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cards": map[string]interface{}{
						"type":        "array",
						"items":       attributesSchema(),
						"minItems":    3,
						"maxItems":    3,
						"description": "Exactly three cards",
					},
				},
				"required": []string{"cards"},
			},
		},

		// Visual checks
		{
			Name:        "setcards_annotate",
			Description: "Return the photograph as base64-encoded PNG with each detected card outlined at its rotation and labeled with its index.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as #RRGGBB or #RRGGBBAA. Default #FF00FF",
						"default":     "#FF00FF",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "setcards_crop_card",
			Description: "Return the upright crop of one detected card as base64-encoded PNG. Use this to inspect a card whose classification looks wrong.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Card index as returned by setcards_detect (0-based)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "index"},
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
