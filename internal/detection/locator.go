package detection

import (
	"image"

	"github.com/ironsheep/setcards-mcp/internal/config"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
)

// Locator finds the card inside each grid cell.
type Locator struct {
	cfg config.Detection
}

// NewLocator returns a Locator using the region-location parameters of cfg.
func NewLocator(cfg config.Detection) *Locator {
	return &Locator{cfg: cfg}
}

// Locate returns the card region for the cell at (row, col).
//
// The cell is widened by SearchMargin on each side and searched for card
// outlines: grayscale, Gaussian blur, adaptive threshold keeping the bright
// side of edges, external contours. The band left along the inside of a
// card's edge traces the card itself, without any table around it. Contours whose area falls outside the configured fraction of
// the cell area are ignored; the rest are simplified to polygons and the
// largest quadrilateral wins. Its minimum-area rectangle is de-rotated by
// NormalizeRegion.
//
// When no quadrilateral is found, or it cannot be normalized, the
// unexpanded cell inset by FallbackMargin is used with rotation 0. Only a
// cell too small to inset yields false.
func (l *Locator) Locate(src *image.NRGBA, grid GridSpacing, row, col int) (Region, bool) {
	cell := grid.Cell(row, col).Intersect(src.Rect)
	if cell.Empty() {
		return Region{}, false
	}

	window := expandRect(cell, l.cfg.SearchMargin, src.Rect)
	cellArea := float64(cell.Dx() * cell.Dy())
	if rr, ok := l.findCard(src, window, cellArea); ok {
		if region, ok := NormalizeRegion(src, rr, window.Min); ok {
			return region, true
		}
	}
	return l.fallback(src, cell)
}

// findCard searches window for the largest card-sized quadrilateral and
// returns its minimum-area rectangle in window coordinates.
func (l *Locator) findCard(src *image.NRGBA, window image.Rectangle, cellArea float64) (imaging.RotatedRect, bool) {
	crop, err := imaging.Crop(src, window)
	if err != nil {
		return imaging.RotatedRect{}, false
	}

	gray := imaging.GaussianBlur(imaging.Grayscale(crop), l.cfg.BlurRadius)
	mask := imaging.AdaptiveThreshold(gray, l.cfg.AdaptiveRadius, l.cfg.AdaptiveC)

	minArea := l.cfg.MinCardAreaFraction * cellArea
	maxArea := l.cfg.MaxCardAreaFraction * cellArea

	var best imaging.Contour
	bestArea := 0.0
	for _, c := range imaging.FindExternalContours(mask) {
		area := c.Area()
		if area < minArea || area > maxArea {
			continue
		}
		poly := imaging.ApproxPolygon(c, l.cfg.ApproxEpsilon*c.Perimeter())
		if len(poly) != 4 {
			continue
		}
		if a := imaging.PolygonArea(poly); a > bestArea {
			best, bestArea = c, a
		}
	}
	if best == nil {
		return imaging.RotatedRect{}, false
	}
	// The contour runs through the centers of the card's edge pixels.
	rr := imaging.MinAreaRect(best)
	rr.Width++
	rr.Height++
	return rr, true
}

// fallback crops the inset grid cell.
func (l *Locator) fallback(src *image.NRGBA, cell image.Rectangle) (Region, bool) {
	rect := insetRect(cell, l.cfg.FallbackMargin)
	crop, clipped, ok := imaging.CropClamped(src, rect)
	if !ok {
		return Region{}, false
	}
	return Region{Image: crop, Bounds: clipped, Fallback: true}, true
}
