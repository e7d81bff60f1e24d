package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Mask is a binary image. Pix is row-major with Width*Height entries;
// true marks foreground.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an all-background mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether (x, y) is foreground. Out-of-range coordinates are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of m.
func (m *Mask) Clone() *Mask {
	c := &Mask{Width: m.Width, Height: m.Height, Pix: make([]bool, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Dilate grows the foreground of m by radius pixels over a square
// (2·radius+1)² neighbourhood.
func Dilate(m *Mask, radius int) *Mask {
	if radius <= 0 || len(m.Pix) == 0 {
		return m.Clone()
	}
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			g.Pix[i] = 255
		}
	}
	grown := effect.Dilate(g, float64(radius))
	out := NewMask(m.Width, m.Height)
	for i := range out.Pix {
		out.Pix[i] = grown.Pix[4*i] != 0
	}
	return out
}

// ToNRGBA returns img as a zero-origin *image.NRGBA, copying only when needed.
// Every function in this package that reads pixels directly works on that form.
//
// The copy is made on the calling goroutine, so a panic raised by img.At
// reaches the caller's recover.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Grayscale converts img to zero-origin 8-bit luminance.
func Grayscale(img image.Image) *image.Gray {
	return redChannel(effect.Grayscale(ToNRGBA(img)))
}

// GaussianBlur smooths a grayscale image. A non-positive radius returns g unchanged.
func GaussianBlur(g *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return g
	}
	return redChannel(blur.Gaussian(g, radius))
}

// ThresholdBelow marks every pixel darker than level.
func ThresholdBelow(g *image.Gray, level uint8) *Mask {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	m := NewMask(w, h)
	if level == 0 {
		return m
	}
	origin := g.Bounds().Min
	for y := 0; y < h; y++ {
		row := g.Pix[g.PixOffset(origin.X, y+origin.Y):]
		for x := 0; x < w; x++ {
			if row[x] < level {
				m.Pix[y*w+x] = true
			}
		}
	}
	return m
}

// AdaptiveThreshold marks pixels at least c levels brighter than the mean
// of their (2*radius+1)-wide neighbourhood. Uniform areas, bright or dark,
// come out as background; only the bright side of an edge is foreground, so
// a light card on a dark table yields a band whose outer boundary is the
// card's own edge.
func AdaptiveThreshold(g *image.Gray, radius int, c float64) *Mask {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	m := NewMask(w, h)
	if w == 0 || h == 0 {
		return m
	}
	if radius < 1 {
		radius = 1
	}
	mean := blur.Box(g, float64(radius))
	gmin, mmin := g.Bounds().Min, mean.Bounds().Min
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(g.Pix[g.PixOffset(x+gmin.X, y+gmin.Y)])
			t := float64(mean.Pix[mean.PixOffset(x+mmin.X, y+mmin.Y)]) + c
			if v >= t {
				m.Pix[y*w+x] = true
			}
		}
	}
	return m
}

// OtsuLevel returns the gray level that maximizes between-class variance
// when the histogram is split into [0, level] and (level, 255].
// A single-valued image returns 0.
func OtsuLevel(g *image.Gray) uint8 {
	level, _ := otsu(g)
	return level
}

// OtsuMaskInv marks pixels at or below the Otsu level: the dark class.
// A single-valued image yields an empty mask.
func OtsuMaskInv(g *image.Gray) *Mask {
	level, ok := otsu(g)
	if !ok {
		return NewMask(g.Bounds().Dx(), g.Bounds().Dy())
	}
	return ThresholdBelow(g, level+1)
}

func otsu(g *image.Gray) (uint8, bool) {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0, false
	}

	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i * n)
	}

	var (
		best    uint8
		bestVar = -1.0
		w0      int
		sum0    float64
	)
	for t := 0; t < 255; t++ {
		w0 += hist[t]
		sum0 += float64(t * hist[t])
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		m0 := sum0 / float64(w0)
		m1 := (sumAll - sum0) / float64(w1)
		between := float64(w0) * float64(w1) * (m0 - m1) * (m0 - m1)
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best, bestVar >= 0
}

// redChannel copies the R channel of a bild result into a zero-origin gray image.
func redChannel(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[y*dst.Stride+x] = src.Pix[src.PixOffset(x+b.Min.X, y+b.Min.Y)]
		}
	}
	return dst
}
