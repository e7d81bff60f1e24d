package detection

import (
	"image"
	"math"
)

// GridRows is the number of card rows in a layout.
const GridRows = 3

// GridSpacing describes a uniform layout of cards over the image.
type GridSpacing struct {
	CardWidth  float64 `json:"card_width"`
	CardHeight float64 `json:"card_height"`
	OriginX    int     `json:"origin_x"`
	OriginY    int     `json:"origin_y"`
	NumCols    int     `json:"num_cols"`
	NumRows    int     `json:"num_rows"`
}

// Columns returns 5 for landscape images (width/height > 1) and 4 otherwise.
func Columns(width, height int) int {
	if height > 0 && float64(width)/float64(height) > 1.0 {
		return 5
	}
	return 4
}

// EstimateGrid infers the 3-row layout of an image from its aspect ratio.
func EstimateGrid(width, height int) GridSpacing {
	return NewGrid(width, height, GridRows, Columns(width, height))
}

// NewGrid divides a width×height image into rows×cols equal cells.
func NewGrid(width, height, rows, cols int) GridSpacing {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return GridSpacing{
		CardWidth:  float64(max(width, 0)) / float64(cols),
		CardHeight: float64(max(height, 0)) / float64(rows),
		NumCols:    cols,
		NumRows:    rows,
	}
}

// Cells returns the number of grid cells.
func (g GridSpacing) Cells() int { return g.NumRows * g.NumCols }

// Cell returns the nominal rectangle of the cell at (row, col).
func (g GridSpacing) Cell(row, col int) image.Rectangle {
	x0 := g.OriginX + int(math.Round(float64(col)*g.CardWidth))
	y0 := g.OriginY + int(math.Round(float64(row)*g.CardHeight))
	x1 := g.OriginX + int(math.Round(float64(col+1)*g.CardWidth))
	y1 := g.OriginY + int(math.Round(float64(row+1)*g.CardHeight))
	return image.Rect(x0, y0, x1, y1)
}

// expandRect grows r by margin×size on every side and clips it to bounds.
func expandRect(r image.Rectangle, margin float64, bounds image.Rectangle) image.Rectangle {
	dx := int(math.Round(float64(r.Dx()) * margin))
	dy := int(math.Round(float64(r.Dy()) * margin))
	return image.Rect(r.Min.X-dx, r.Min.Y-dy, r.Max.X+dx, r.Max.Y+dy).Intersect(bounds)
}

// insetRect shrinks r by margin×size on every side.
func insetRect(r image.Rectangle, margin float64) image.Rectangle {
	dx := int(math.Round(float64(r.Dx()) * margin))
	dy := int(math.Round(float64(r.Dy()) * margin))
	out := image.Rect(r.Min.X+dx, r.Min.Y+dy, r.Max.X-dx, r.Max.Y-dy)
	if out.Empty() {
		return image.Rectangle{}
	}
	return out
}
