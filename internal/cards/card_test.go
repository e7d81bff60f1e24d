package cards

import (
	"encoding/json"
	"image"
	"math"
	"testing"
)

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{45, 45},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{540, 180},
		{-90, -90},
		{725, 5},
	}

	for _, tt := range tests {
		got := NormalizeRotation(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeRotation(%v): got %v, want %v", tt.in, got, tt.want)
		}
		if got <= -180 || got > 180 {
			t.Errorf("NormalizeRotation(%v) = %v outside (-180,180]", tt.in, got)
		}
	}
}

func TestNumberFromCount(t *testing.T) {
	tests := []struct {
		n    int
		want Number
	}{
		{-1, One},
		{0, One},
		{1, One},
		{2, Two},
		{3, Three},
		{7, Three},
	}
	for _, tt := range tests {
		got := NumberFromCount(tt.n)
		if got != tt.want {
			t.Errorf("NumberFromCount(%d): got %s, want %s", tt.n, got, tt.want)
		}
		if got.Count() < 1 || got.Count() > 3 {
			t.Errorf("Count() out of range: %d", got.Count())
		}
	}
}

func TestNew(t *testing.T) {
	attrs := Attributes{Number: Two, Shape: Oval, Color: Green, Shading: Striped}
	c := New(attrs, image.Rect(10, 20, 110, 90), 190)

	if c.X != 10 || c.Y != 20 || c.Width != 100 || c.Height != 70 {
		t.Errorf("geometry: got (%d,%d %dx%d)", c.X, c.Y, c.Width, c.Height)
	}
	if c.Rotation != -170 {
		t.Errorf("Rotation: got %v, want -170", c.Rotation)
	}
	if c.Bounds() != image.Rect(10, 20, 110, 90) {
		t.Errorf("Bounds: got %v", c.Bounds())
	}
}

func TestCardJSON(t *testing.T) {
	c := New(Attributes{Number: Three, Shape: Squiggle, Color: Purple, Shading: Open}, image.Rect(0, 0, 5, 5), 0)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	wantFields := map[string]string{
		"number":  "THREE",
		"shape":   "SQUIGGLE",
		"color":   "PURPLE",
		"shading": "OPEN",
	}
	for k, want := range wantFields {
		if raw[k] != want {
			t.Errorf("%s: got %v, want %s", k, raw[k], want)
		}
	}

	var back Card
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal into Card failed: %v", err)
	}
	if back != c {
		t.Errorf("round trip: got %+v, want %+v", back, c)
	}
}

func TestUnmarshalText_Lenient(t *testing.T) {
	var a Attributes
	err := json.Unmarshal([]byte(`{"number":"2","shape":"diamond","color":" Red ","shading":"striped"}`), &a)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := Attributes{Number: Two, Shape: Diamond, Color: Red, Shading: Striped}
	if a != want {
		t.Errorf("got %+v, want %+v", a, want)
	}
}

func TestUnmarshalText_Unknown(t *testing.T) {
	var a Attributes
	if err := json.Unmarshal([]byte(`{"shape":"circle"}`), &a); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestInvalidEnumString(t *testing.T) {
	if got := Number(9).String(); got != "Number(9)" {
		t.Errorf("got %s", got)
	}
	if _, err := Shape(7).MarshalText(); err == nil {
		t.Error("expected error marshaling invalid shape")
	}
}
