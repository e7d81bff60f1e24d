package imaging

import (
	"image"
	"math"
)

const claheBins = 256

// EqualizeLightness applies contrast-limited adaptive histogram equalization
// to the L* channel of img, leaving a* and b* untouched.
//
// The image is divided into a tiles×tiles grid (fewer when the image is
// smaller than that). Each tile's L* histogram is clipped at
// clipLimit×(average bin count), the excess is spread evenly over all bins,
// and the cumulative histogram becomes that tile's lookup table. Pixels are
// mapped by bilinear interpolation between the four nearest tile centers.
func EqualizeLightness(img image.Image, tiles int, clipLimit float64) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if tiles < 1 {
		tiles = 1
	}

	tileW := (w + min(tiles, w) - 1) / min(tiles, w)
	tileH := (h + min(tiles, h) - 1) / min(tiles, h)
	tilesX := (w + tileW - 1) / tileW
	tilesY := (h + tileH - 1) / tileH

	// Per-pixel L* bin and chroma, computed once.
	bins := make([]uint8, w*h)
	chromaA := make([]float64, w*h)
	chromaB := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l, a, b := RGBAt(src, x, y).Lab()
			i := y*w + x
			bins[i] = uint8(math.Round(math.Max(0, math.Min(1, l)) * (claheBins - 1)))
			chromaA[i], chromaB[i] = a, b
		}
	}

	luts := make([][claheBins]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			rect := image.Rect(tx*tileW, ty*tileH, min((tx+1)*tileW, w), min((ty+1)*tileH, h))
			luts[ty*tilesX+tx] = tileLUT(bins, w, rect, clipLimit)
		}
	}

	for y := 0; y < h; y++ {
		ty0, ty1, fy := tileNeighbours(y, tileH, tilesY)
		for x := 0; x < w; x++ {
			tx0, tx1, fx := tileNeighbours(x, tileW, tilesX)
			i := y*w + x
			v := bins[i]

			top := (1-fx)*float64(luts[ty0*tilesX+tx0][v]) + fx*float64(luts[ty0*tilesX+tx1][v])
			bottom := (1-fx)*float64(luts[ty1*tilesX+tx0][v]) + fx*float64(luts[ty1*tilesX+tx1][v])
			l := ((1-fy)*top + fy*bottom) / (claheBins - 1)

			c := FromLab(l, chromaA[i], chromaB[i])
			o := out.PixOffset(x, y)
			out.Pix[o] = c.R
			out.Pix[o+1] = c.G
			out.Pix[o+2] = c.B
			out.Pix[o+3] = src.Pix[src.PixOffset(x, y)+3]
		}
	}
	return out
}

// tileLUT builds the clipped-histogram lookup table for one tile.
func tileLUT(bins []uint8, stride int, rect image.Rectangle, clipLimit float64) [claheBins]uint8 {
	var hist [claheBins]int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			hist[bins[y*stride+x]]++
		}
	}
	total := rect.Dx() * rect.Dy()

	limit := int(clipLimit * float64(total) / claheBins)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, n := range hist {
		if n > limit {
			excess += n - limit
			hist[i] = limit
		}
	}
	// Spread the excess evenly, including the remainder, so the table stays
	// close to identity when the limit is tiny.
	share, rest := excess/claheBins, excess%claheBins
	for i := range hist {
		hist[i] += share + (i+1)*rest/claheBins - i*rest/claheBins
	}

	var lut [claheBins]uint8
	cdf := 0
	for i, n := range hist {
		cdf += n
		lut[i] = uint8(math.Round(float64(cdf) * (claheBins - 1) / float64(total)))
	}
	return lut
}

// tileNeighbours returns the two tile indices whose centers bracket pos and
// the interpolation weight of the second.
func tileNeighbours(pos, size, count int) (int, int, float64) {
	f := (float64(pos)+0.5)/float64(size) - 0.5
	i0 := int(math.Floor(f))
	if i0 < 0 {
		return 0, 0, 0
	}
	if i0 >= count-1 {
		return count - 1, count - 1, 0
	}
	return i0, i0 + 1, f - float64(i0)
}
