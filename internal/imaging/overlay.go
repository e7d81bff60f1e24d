package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box is one outline drawn by Annotate.
type Box struct {
	Rect  RotatedRect
	Label string
	Color color.RGBA
}

// Annotate returns a copy of img with every box outlined and its label
// drawn inside its first corner.
func Annotate(img image.Image, boxes []Box, thickness int) *image.NRGBA {
	out := imaging.Clone(img)
	if thickness < 1 {
		thickness = 1
	}
	labelFG := color.RGBA{255, 255, 255, 255}
	labelBG := color.RGBA{0, 0, 0, 180}

	for _, b := range boxes {
		corners := b.Rect.Corners()
		for i := range corners {
			drawLine(out, corners[i], corners[(i+1)%4], thickness, b.Color)
		}
		if b.Label != "" {
			x, y := int(math.Round(corners[0].X))+2, int(math.Round(corners[0].Y))+2
			drawLabel(out, x, y, b.Label, labelFG, labelBG)
		}
	}
	return out
}

// drawLine plots a thick segment by stamping squares along it.
func drawLine(img draw.Image, a, b PointF, thickness int, c color.Color) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		steps = 1
	}
	bounds := img.Bounds()
	half := thickness / 2
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		cx := int(math.Round(a.X + t*(b.X-a.X)))
		cy := int(math.Round(a.Y + t*(b.Y-a.Y)))
		for dy := -half; dy < thickness-half; dy++ {
			for dx := -half; dx < thickness-half; dx++ {
				if (image.Point{X: cx + dx, Y: cy + dy}).In(bounds) {
					img.Set(cx+dx, cy+dy, c)
				}
			}
		}
	}
}

// drawLabel draws text in basicfont.Face7x13 on a filled background whose
// top-left corner is (x, y).
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	bgRect := image.Rect(x-1, y-1, x+width+1, y+height+1).Intersect(img.Bounds())
	draw.Draw(img, bgRect, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
