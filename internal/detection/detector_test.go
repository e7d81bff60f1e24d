package detection

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/config"
)

func TestDetectCards_Grid(t *testing.T) {
	var logs bytes.Buffer
	d := New(config.DefaultDetection(), log.New(&logs, "", 0))

	a, err := d.Analyze(gridScene())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if a.Grid.NumRows != 3 || a.Grid.NumCols != 4 {
		t.Errorf("grid = %dx%d, want 3x4", a.Grid.NumRows, a.Grid.NumCols)
	}
	if a.Stats.Cells != 12 || a.Stats.Fallbacks != 0 || a.Stats.Rejected != 0 || a.Stats.Dropped != 0 {
		t.Errorf("stats = %+v", a.Stats)
	}
	if len(a.Palette.Clusters) != 3 {
		t.Errorf("palette has %d colors, want 3", len(a.Palette.Clusters))
	}
	if len(a.Cards) != len(sceneCards) {
		t.Fatalf("found %d cards, want %d", len(a.Cards), len(sceneCards))
	}
	if len(a.Regions) != len(a.Cards) {
		t.Errorf("%d regions for %d cards", len(a.Regions), len(a.Cards))
	}

	for i, c := range a.Cards {
		if c.Attributes != sceneCards[i] {
			t.Errorf("card %d = %v, want %v", i, c.Attributes, sceneCards[i])
		}
		if math.Abs(c.Rotation) > 1 {
			t.Errorf("card %d rotation = %.2f, want about 0", i, c.Rotation)
		}
		cell := a.Grid.Cell(i/4, i%4)
		center := image.Pt(c.X+c.Width/2, c.Y+c.Height/2)
		if !center.In(cell) {
			t.Errorf("card %d centered at %v, outside its cell %v", i, center, cell)
		}
		for j := 0; j < i; j++ {
			if c.Bounds().Overlaps(a.Cards[j].Bounds()) {
				t.Errorf("cards %d and %d overlap: %v %v", j, i, a.Cards[j].Bounds(), c.Bounds())
			}
		}
	}

	if !strings.Contains(logs.String(), "12 cards") {
		t.Errorf("summary not logged:\n%s", logs.String())
	}
}

func TestDetectCards_TiltedGrid(t *testing.T) {
	d := New(config.DefaultDetection(), nil)
	for _, angle := range []float64{-10, -5, 5, 10} {
		t.Run(fmt.Sprintf("%+g degrees", angle), func(t *testing.T) {
			a, err := d.Analyze(tiltedScene(angle))
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if a.Stats.Fallbacks != 0 || a.Stats.Rejected != 0 || a.Stats.Dropped != 0 {
				t.Errorf("stats = %+v", a.Stats)
			}
			if len(a.Cards) != len(sceneCards) {
				t.Fatalf("found %d cards, want %d", len(a.Cards), len(sceneCards))
			}
			for i, c := range a.Cards {
				if c.Attributes != sceneCards[i] {
					t.Errorf("card %d = %v, want %v", i, c.Attributes, sceneCards[i])
				}
				if math.Abs(c.Rotation-angle) > 1 {
					t.Errorf("card %d rotation = %.2f, want about %v", i, c.Rotation, angle)
				}
			}
		})
	}
}

func TestDetectCards_EmptyTable(t *testing.T) {
	d := New(config.DefaultDetection(), nil)
	a, err := d.Analyze(newTable(800, 600))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if a.Grid.NumCols != 5 {
		t.Errorf("landscape grid has %d columns, want 5", a.Grid.NumCols)
	}
	if a.Stats.Fallbacks != 15 {
		t.Errorf("fallbacks = %d, want 15", a.Stats.Fallbacks)
	}
	for i, c := range a.Cards {
		if c.Rotation != 0 {
			t.Errorf("fallback card %d rotation = %v, want 0", i, c.Rotation)
		}
	}
}

func TestDetectCards_NoImage(t *testing.T) {
	var logs bytes.Buffer
	d := New(config.DefaultDetection(), log.New(&logs, "", 0))

	got := d.DetectCards(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("DetectCards(nil) = %v, want an empty list", got)
	}
	if !strings.Contains(logs.String(), "detection failed") {
		t.Errorf("failure not logged:\n%s", logs.String())
	}
}

func TestDetectCards_EmptyImage(t *testing.T) {
	d := New(config.DefaultDetection(), nil)
	got := d.DetectCards(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	if got == nil || len(got) != 0 {
		t.Errorf("DetectCards(empty) = %v, want an empty list", got)
	}
}

// panicImage reports a size but fails on every pixel read.
type panicImage struct{ image.Rectangle }

func (panicImage) ColorModel() color.Model    { return color.NRGBAModel }
func (p panicImage) Bounds() image.Rectangle { return p.Rectangle }
func (panicImage) At(x, y int) color.Color   { panic("unreadable pixel") }

func TestDetectCards_RecoversPanic(t *testing.T) {
	var logs bytes.Buffer
	d := New(config.DefaultDetection(), log.New(&logs, "", 0))

	got := d.DetectCards(panicImage{image.Rect(0, 0, 40, 30)})
	if got == nil || len(got) != 0 {
		t.Errorf("DetectCards = %v, want an empty list", got)
	}
	if !strings.Contains(logs.String(), "detection panic") {
		t.Errorf("panic not logged:\n%s", logs.String())
	}
}

func TestDetectCards_PaletteIsPerCapture(t *testing.T) {
	d := New(config.DefaultDetection(), nil)

	red := cards.Attributes{Number: cards.One, Shape: cards.Oval, Color: cards.Red, Shading: cards.Solid}
	green := red
	green.Color = cards.Green

	first := sceneOf(repeat(red, 12))
	second := sceneOf(repeat(green, 12))

	for _, tt := range []struct {
		img  *image.NRGBA
		want cards.Color
	}{{first, cards.Red}, {second, cards.Green}, {first, cards.Red}} {
		a, err := d.Analyze(tt.img)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		for _, c := range a.Palette.Clusters {
			if c.Color() != tt.want {
				t.Errorf("palette = %v, want only %v clusters", a.Palette.Clusters, tt.want)
				break
			}
		}
		for i, c := range a.Cards {
			if c.Color != tt.want {
				t.Errorf("card %d color = %v, want %v", i, c.Color, tt.want)
			}
		}
	}
}

func repeat(attrs cards.Attributes, n int) []cards.Attributes {
	out := make([]cards.Attributes, n)
	for i := range out {
		out[i] = attrs
	}
	return out
}
