// Package cards defines the attribute model of a detected Set card.
//
// Each of the four attributes is a closed enumeration with exactly three
// values. Attributes marshal to and from their upper-case names ("ONE",
// "DIAMOND", "RED", "SOLID", ...) so cards can travel through JSON unchanged.
package cards

import (
	"fmt"
	"image"
	"math"
)

// Number is the count of symbols printed on a card.
type Number int

// Shape is the symbol outline.
type Shape int

// Color is the ink color of the symbols.
type Color int

// Shading is the fill style of the symbols.
type Shading int

const (
	One Number = iota + 1
	Two
	Three
)

const (
	Diamond Shape = iota
	Oval
	Squiggle
)

const (
	Red Color = iota
	Green
	Purple
)

const (
	Solid Shading = iota
	Striped
	Open
)

var (
	numberNames  = [...]string{"ONE", "TWO", "THREE"}
	shapeNames   = [...]string{"DIAMOND", "OVAL", "SQUIGGLE"}
	colorNames   = [...]string{"RED", "GREEN", "PURPLE"}
	shadingNames = [...]string{"SOLID", "STRIPED", "OPEN"}
)

// NumberFromCount maps a symbol count to a Number, clamping to [1,3].
func NumberFromCount(n int) Number {
	switch {
	case n <= 1:
		return One
	case n == 2:
		return Two
	default:
		return Three
	}
}

// Count returns the integer symbol count (1-3).
func (n Number) Count() int { return int(n) }

// Valid reports whether n is one of the three defined values.
func (n Number) Valid() bool { return n >= One && n <= Three }

func (n Number) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Number(%d)", int(n))
	}
	return numberNames[n-One]
}

func (s Shape) Valid() bool { return s >= Diamond && s <= Squiggle }

func (s Shape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

func (c Color) Valid() bool { return c >= Red && c <= Purple }

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

func (s Shading) Valid() bool { return s >= Solid && s <= Open }

func (s Shading) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shading(%d)", int(s))
	}
	return shadingNames[s]
}

// Attributes is the classification half of a card.
type Attributes struct {
	Number  Number  `json:"number"`
	Shape   Shape   `json:"shape"`
	Color   Color   `json:"color"`
	Shading Shading `json:"shading"`
}

func (a Attributes) String() string {
	return fmt.Sprintf("%s %s %s %s", a.Number, a.Color, a.Shading, a.Shape)
}

// Card is one detected card: its attributes plus where it sits in the
// source image. X, Y, Width and Height describe the upright card rectangle
// centered on the card; Rotation is the angle the renderer should rotate
// that rectangle by about its center, in degrees within (-180, 180].
//
// Cards are values; nothing in this module mutates one after New returns it.
type Card struct {
	Attributes
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Rotation float64 `json:"rotation"`
}

// New builds a Card, normalizing rotation into (-180, 180].
func New(attrs Attributes, bounds image.Rectangle, rotation float64) Card {
	return Card{
		Attributes: attrs,
		X:          bounds.Min.X,
		Y:          bounds.Min.Y,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Rotation:   NormalizeRotation(rotation),
	}
}

// Bounds returns the card rectangle in source coordinates.
func (c Card) Bounds() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// NormalizeRotation folds an angle in degrees into (-180, 180].
func NormalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
