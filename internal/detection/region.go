package detection

import (
	"image"
	"math"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Region is one located card: an upright crop, its rectangle in source
// coordinates and the angle the card was turned by in the photograph.
type Region struct {
	Image    *image.NRGBA
	Bounds   image.Rectangle
	Rotation float64

	// Fallback is set when no card outline was found and Bounds is the
	// inset grid cell.
	Fallback bool
}

// NormalizeRegion turns the card described by rr upright and crops it.
//
// rr is expressed in the coordinates of a search window whose top-left
// corner sits at offset in src. The rectangle is first canonicalized so
// that Width is the longer side (adding 90° when the sides are swapped) and
// the angle is folded into (-180, 180]. The whole source is then resampled
// bilinearly, turned about the card center, so the crop never samples
// outside the photograph, and an axis-aligned Width×Height rectangle around
// the center is cut out.
//
// It returns false when the clipped crop is empty.
func NormalizeRegion(src *image.NRGBA, rr imaging.RotatedRect, offset image.Point) (Region, bool) {
	w, h, angle := rr.Width, rr.Height, rr.Angle
	if w < h {
		w, h = h, w
		angle += 90
	}
	angle = cards.NormalizeRotation(angle)

	cx := rr.Center.X + float64(offset.X)
	cy := rr.Center.Y + float64(offset.Y)

	upright := src
	if angle != 0 {
		// rr.Center indexes pixels; the pixel's center is half a unit further.
		upright = turnUpright(src, angle, imaging.PointF{X: cx + 0.5, Y: cy + 0.5})
	}

	x0 := int(math.Round(cx - w/2))
	y0 := int(math.Round(cy - h/2))
	rect := image.Rect(x0, y0, x0+int(math.Round(w)), y0+int(math.Round(h)))

	crop, clipped, ok := imaging.CropClamped(upright, rect)
	if !ok {
		return Region{}, false
	}
	return Region{Image: crop, Bounds: clipped, Rotation: angle}, true
}

// turnUpright rotates src counter-clockwise by angle degrees about pivot,
// undoing a card turned clockwise by angle. Each output pixel blends the
// four source pixels around its preimage; pixels mapping outside src stay
// transparent.
func turnUpright(src *image.NRGBA, angle float64, pivot imaging.PointF) *image.NRGBA {
	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	s2d := f64.Aff3{
		cos, sin, pivot.X - cos*pivot.X - sin*pivot.Y,
		-sin, cos, pivot.Y + sin*pivot.X - cos*pivot.Y,
	}
	dst := image.NewRGBA(src.Bounds())
	draw.BiLinear.Transform(dst, s2d, src, src.Bounds(), draw.Src, nil)
	return imaging.ToNRGBA(dst)
}

// RotatedBounds returns the region outline as it sits in the source photograph.
func (r Region) RotatedBounds() imaging.RotatedRect {
	return imaging.RotatedRect{
		Center: imaging.PointF{
			X: float64(r.Bounds.Min.X) + float64(r.Bounds.Dx())/2,
			Y: float64(r.Bounds.Min.Y) + float64(r.Bounds.Dy())/2,
		},
		Width:  float64(r.Bounds.Dx()),
		Height: float64(r.Bounds.Dy()),
		Angle:  r.Rotation,
	}
}
