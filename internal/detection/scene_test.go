package detection

import (
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
)

var (
	tableColor  = color.NRGBA{40, 40, 40, 255}
	paperColor  = color.NRGBA{255, 255, 255, 255}
	redInk      = color.NRGBA{170, 30, 40, 255}
	greenInk    = color.NRGBA{30, 140, 60, 255}
	purpleInk   = color.NRGBA{105, 40, 135, 255}
	inkForColor = map[cards.Color]color.NRGBA{
		cards.Red:    redInk,
		cards.Green:  greenInk,
		cards.Purple: purpleInk,
	}
)

// Synthetic card geometry: landscape cards with tall symbols.
const (
	cardW        = 340.0
	cardH        = 220.0
	symbolHalfW  = 40.0
	symbolHalfH  = 90.0
	symbolGap    = 20.0
	outlineWidth = 1.0
	stripePeriod = 5
	sceneCellW   = 400
	sceneCellH   = 620
	sceneImageW  = 4 * sceneCellW
	sceneImageH  = 3 * sceneCellH
)

// newTable returns a w×h image filled with the dark table color.
func newTable(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = tableColor.R, tableColor.G, tableColor.B, 255
	}
	return img
}

// symbolDepth returns how far local point (du, dv) lies inside a symbol of
// half-width a and half-height b, negative outside. Squiggles are drawn as
// triangles, which have no parallel edges either.
func symbolDepth(shape cards.Shape, du, dv, a, b float64) float64 {
	switch shape {
	case cards.Diamond:
		return (1 - math.Abs(du)/a - math.Abs(dv)/b) * a * b / math.Hypot(a, b)
	case cards.Oval:
		ey := math.Max(math.Abs(dv)-(b-a), 0)
		return a - math.Hypot(du, ey)
	default:
		base := b - dv
		side := (a*(b+dv) - 2*b*math.Abs(du)) / math.Hypot(2*b, a)
		return math.Min(base, side)
	}
}

// inkAt reports whether card-local point (u, v) is printed for attrs.
func inkAt(attrs cards.Attributes, u, v float64) bool {
	n := attrs.Number.Count()
	pitch := 2*symbolHalfW + symbolGap
	for i := 0; i < n; i++ {
		du := u - (float64(i)-float64(n-1)/2)*pitch
		d := symbolDepth(attrs.Shape, du, v, symbolHalfW, symbolHalfH)
		if d < 0 {
			continue
		}
		edge := d < outlineWidth
		switch attrs.Shading {
		case cards.Solid:
			return true
		case cards.Striped:
			return edge || int(math.Floor(v+1000))%stripePeriod == 0
		default:
			return edge
		}
	}
	return false
}

// drawCard paints a card centered at (cx, cy), turned angle degrees
// clockwise. A zero Number draws a blank card.
func drawCard(img *image.NRGBA, cx, cy, w, h, angle float64, attrs cards.Attributes) {
	outline := imaging.RotatedRect{Center: imaging.PointF{X: cx, Y: cy}, Width: w, Height: h, Angle: angle}
	minX, minY, maxX, maxY := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, p := range outline.Corners() {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}

	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	ink := inkForColor[attrs.Color]
	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		for x := int(math.Floor(minX)); x <= int(math.Ceil(maxX)); x++ {
			if !(image.Point{X: x, Y: y}).In(img.Rect) {
				continue
			}
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			if math.Abs(u) > w/2 || math.Abs(v) > h/2 {
				continue
			}
			c := paperColor
			if attrs.Number.Valid() && inkAt(attrs, u, v) {
				c = ink
			}
			img.SetNRGBA(x, y, c)
		}
	}
}

// cardImage returns a single upright card on a thin table margin, the way
// NormalizeRegion crops it.
func cardImage(attrs cards.Attributes) *image.NRGBA {
	img := newTable(int(cardW)+10, int(cardH)+10)
	drawCard(img, float64(img.Rect.Dx())/2, float64(img.Rect.Dy())/2, cardW, cardH, 0, attrs)
	return img
}

// sceneCards is the layout of the 12-card scene in row-major order.
var sceneCards = []cards.Attributes{
	{Number: cards.One, Shape: cards.Diamond, Color: cards.Red, Shading: cards.Solid},
	{Number: cards.Two, Shape: cards.Oval, Color: cards.Green, Shading: cards.Striped},
	{Number: cards.Three, Shape: cards.Squiggle, Color: cards.Purple, Shading: cards.Open},
	{Number: cards.Two, Shape: cards.Diamond, Color: cards.Red, Shading: cards.Open},
	{Number: cards.Three, Shape: cards.Oval, Color: cards.Purple, Shading: cards.Solid},
	{Number: cards.One, Shape: cards.Squiggle, Color: cards.Green, Shading: cards.Striped},
	{Number: cards.Three, Shape: cards.Diamond, Color: cards.Green, Shading: cards.Solid},
	{Number: cards.One, Shape: cards.Oval, Color: cards.Red, Shading: cards.Open},
	{Number: cards.Two, Shape: cards.Squiggle, Color: cards.Purple, Shading: cards.Striped},
	{Number: cards.One, Shape: cards.Oval, Color: cards.Purple, Shading: cards.Open},
	{Number: cards.Two, Shape: cards.Squiggle, Color: cards.Red, Shading: cards.Solid},
	{Number: cards.Three, Shape: cards.Diamond, Color: cards.Green, Shading: cards.Striped},
}

// gridScene draws sceneCards upright, centered in a 3×4 grid.
func gridScene() *image.NRGBA { return sceneOf(sceneCards) }

// tiltedScene draws sceneCards with every card turned angle degrees clockwise.
func tiltedScene(angle float64) *image.NRGBA { return drawScene(sceneCards, angle) }

// sceneOf draws up to 12 upright cards in row-major order of a 3×4 grid.
func sceneOf(layout []cards.Attributes) *image.NRGBA { return drawScene(layout, 0) }

func drawScene(layout []cards.Attributes, angle float64) *image.NRGBA {
	img := newTable(sceneImageW, sceneImageH)
	for i, attrs := range layout {
		row, col := i/4, i%4
		cx := float64(col*sceneCellW) + sceneCellW/2
		cy := float64(row*sceneCellH) + sceneCellH/2
		drawCard(img, cx, cy, cardW, cardH, angle, attrs)
	}
	return img
}
