package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex formats the color as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c RGBColor) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// Below reports whether every channel is strictly below level.
func (c RGBColor) Below(level uint8) bool {
	return c.R < level && c.G < level && c.B < level
}

// DistanceSq is the squared Euclidean distance in RGB space.
func (c RGBColor) DistanceSq(o RGBColor) float64 {
	dr := float64(c.R) - float64(o.R)
	dg := float64(c.G) - float64(o.G)
	db := float64(c.B) - float64(o.B)
	return dr*dr + dg*dg + db*db
}

// Lab returns CIE L*a*b* coordinates (D65) with L in [0, 1].
func (c RGBColor) Lab() (l, a, b float64) {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return cf.Lab()
}

// FromLab converts L*a*b* back to the nearest in-gamut 8-bit color.
func FromLab(l, a, b float64) RGBColor {
	r, g, bl := colorful.Lab(l, a, b).Clamped().RGB255()
	return RGBColor{R: r, G: g, B: bl}
}

// RGBAt reads the pixel at (x, y) of a zero-origin NRGBA image. Alpha is ignored.
func RGBAt(img *image.NRGBA, x, y int) RGBColor {
	i := img.PixOffset(x, y)
	return RGBColor{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}

// SampleColor returns the color at (x, y), or an error outside the image.
func SampleColor(img image.Image, x, y int) (RGBColor, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return RGBColor{}, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return RGBColor{R: c.R, G: c.G, B: c.B}, nil
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA"; the leading '#' is optional.
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
