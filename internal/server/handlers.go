package server

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/detection"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
	"github.com/ironsheep/setcards-mcp/internal/sets"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "setcards_detect").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Printf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "setcards_load":
		return s.handleLoad(args)
	case "setcards_detect":
		return s.handleDetect(args)
	case "setcards_find_sets":
		return s.handleFindSets(args)
	case "setcards_check_set":
		return s.handleCheckSet(args)
	case "setcards_annotate":
		return s.handleAnnotate(args)
	case "setcards_crop_card":
		return s.handleCropCard(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

type pathArgs struct {
	Path string `json:"path"`
}

func parsePathArgs(args json.RawMessage) (pathArgs, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, fmt.Errorf("path is required")
	}
	return a, nil
}

// analyze loads path through the cache and runs the detector on it.
func (s *Server) analyze(path string) (*detection.Analysis, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.detector.Analyze(img)
}

// === Layout ===

type loadResult struct {
	*imaging.ImageInfo
	Grid detection.GridSpacing `json:"grid"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	a, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	grid := detection.EstimateGrid(info.Width, info.Height)
	return &loadResult{ImageInfo: info, Grid: grid}, nil
}

// === Detection ===

// PaletteColor is one symbol color of a capture.
type PaletteColor struct {
	Hex   string      `json:"hex"`
	Color cards.Color `json:"color"`
}

// DetectResult is returned by setcards_detect.
type DetectResult struct {
	Count   int                   `json:"count"`
	Cards   []cards.Card          `json:"cards"`
	Grid    detection.GridSpacing `json:"grid"`
	Palette []PaletteColor        `json:"palette"`
	Stats   detection.Stats       `json:"stats"`
}

func newDetectResult(a *detection.Analysis) *DetectResult {
	palette := make([]PaletteColor, len(a.Palette.Clusters))
	for i, c := range a.Palette.Clusters {
		palette[i] = PaletteColor{Hex: c.Hex(), Color: c.Color()}
	}
	return &DetectResult{
		Count:   len(a.Cards),
		Cards:   a.Cards,
		Grid:    a.Grid,
		Palette: palette,
		Stats:   a.Stats,
	}
}

func (s *Server) handleDetect(args json.RawMessage) (interface{}, error) {
	a, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}
	return newDetectResult(analysis), nil
}

// FoundSet is one valid Set with the reason it is valid.
type FoundSet struct {
	Indices     [3]int `json:"indices"`
	Explanation string `json:"explanation"`
}

// FindSetsResult is returned by setcards_find_sets.
type FindSetsResult struct {
	Cards []cards.Card `json:"cards"`
	Sets  []FoundSet   `json:"sets"`
	Count int          `json:"count"`
}

func (s *Server) handleFindSets(args json.RawMessage) (interface{}, error) {
	a, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}

	found := sets.FindAllSets(analysis.Cards)
	result := &FindSetsResult{
		Cards: analysis.Cards,
		Sets:  make([]FoundSet, len(found)),
		Count: len(found),
	}
	for i, set := range found {
		why := sets.Explain(set.Cards[0], set.Cards[1], set.Cards[2])
		s.log.Printf("set %v: %s", set.Indices, why)
		result.Sets[i] = FoundSet{Indices: set.Indices, Explanation: why}
	}
	return result, nil
}

type checkSetArgs struct {
	Cards []json.RawMessage `json:"cards"`
}

// CheckSetResult is returned by setcards_check_set.
type CheckSetResult struct {
	Valid       bool   `json:"valid"`
	Explanation string `json:"explanation"`
}

func (s *Server) handleCheckSet(args json.RawMessage) (interface{}, error) {
	var a checkSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Cards) != 3 {
		return nil, fmt.Errorf("exactly 3 cards required, got %d", len(a.Cards))
	}

	var triple [3]cards.Card
	for i, raw := range a.Cards {
		attrs, err := parseAttributes(raw)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		triple[i] = cards.Card{Attributes: attrs}
	}

	why := sets.Explain(triple[0], triple[1], triple[2])
	s.log.Printf("check %v, %v, %v: %s", triple[0].Attributes, triple[1].Attributes, triple[2].Attributes, why)
	return &CheckSetResult{
		Valid:       sets.IsValidSet(triple[0], triple[1], triple[2]),
		Explanation: why,
	}, nil
}

// parseAttributes decodes one card and rejects missing attributes, which
// would otherwise silently take their zero value.
func parseAttributes(raw json.RawMessage) (cards.Attributes, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return cards.Attributes{}, err
	}
	for _, key := range []string{"number", "shape", "color", "shading"} {
		if _, ok := fields[key]; !ok {
			return cards.Attributes{}, fmt.Errorf("missing %s", key)
		}
	}
	var attrs cards.Attributes
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return cards.Attributes{}, err
	}
	return attrs, nil
}

// === Visual checks ===

type annotateArgs struct {
	Path  string `json:"path"`
	Color string `json:"color"`
}

// AnnotateResult is returned by setcards_annotate.
type AnnotateResult struct {
	*imaging.CropResult
	Count int `json:"count"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Color == "" {
		a.Color = "#FF00FF"
	}
	outline, err := imaging.ParseHexColor(a.Color)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", a.Color, err)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	analysis, err := s.detector.Analyze(img)
	if err != nil {
		return nil, err
	}

	annotated := imaging.Annotate(img, boxes(analysis, outline), 2)
	encoded, err := imaging.EncodePNG(annotated, 1.0)
	if err != nil {
		return nil, err
	}
	return &AnnotateResult{CropResult: encoded, Count: len(analysis.Cards)}, nil
}

// boxes outlines every classified card, labeled with its index.
func boxes(a *detection.Analysis, c color.RGBA) []imaging.Box {
	out := make([]imaging.Box, len(a.Regions))
	for i, r := range a.Regions {
		out[i] = imaging.Box{Rect: r.RotatedBounds(), Label: strconv.Itoa(i), Color: c}
	}
	return out
}

type cropCardArgs struct {
	Path  string  `json:"path"`
	Index *int    `json:"index"`
	Scale float64 `json:"scale"`
}

// CropCardResult is returned by setcards_crop_card.
type CropCardResult struct {
	*imaging.CropResult
	Card cards.Card `json:"card"`
}

func (s *Server) handleCropCard(args json.RawMessage) (interface{}, error) {
	var a cropCardArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.Index == nil {
		return nil, fmt.Errorf("path and index are required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	analysis, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}
	i := *a.Index
	if i < 0 || i >= len(analysis.Cards) {
		return nil, fmt.Errorf("card index %d out of range [0,%d)", i, len(analysis.Cards))
	}

	encoded, err := imaging.EncodePNG(analysis.Regions[i].Image, a.Scale)
	if err != nil {
		return nil, err
	}
	return &CropCardResult{CropResult: encoded, Card: analysis.Cards[i]}, nil
}
