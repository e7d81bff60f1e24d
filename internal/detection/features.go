package detection

import (
	"errors"
	"image"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/config"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
)

// ErrEmptyCard is returned for a card crop without pixels.
var ErrEmptyCard = errors.New("empty card image")

// ExtractFeatures classifies an upright card crop using the capture's palette.
func ExtractFeatures(img image.Image, palette Palette, cfg config.Detection) (cards.Attributes, error) {
	if img.Bounds().Empty() {
		return cards.Attributes{}, ErrEmptyCard
	}
	return extractFeatures(img, SampleSymbols(img, cfg), palette, cfg)
}

// extractFeatures reuses a symbol sample already taken for the palette.
func extractFeatures(img image.Image, sample SymbolSample, palette Palette, cfg config.Detection) (cards.Attributes, error) {
	b := img.Bounds()
	if b.Empty() {
		return cards.Attributes{}, ErrEmptyCard
	}

	// Dark ink under a fixed level; whatever touches the crop edge is table.
	mask := imaging.ClearBorder(imaging.ThresholdBelow(imaging.Grayscale(img), cfg.SymbolThreshold))
	contours := imaging.FindExternalContours(mask)

	cardArea := float64(b.Dx() * b.Dy())
	return cards.Attributes{
		Number:  countSymbols(contours, cardArea, cfg),
		Shape:   classifyShape(largestContour(contours), cfg),
		Color:   classifyColor(sample, palette),
		Shading: classifyShading(sample, cfg),
	}, nil
}

// countSymbols counts contours larger than MinSymbolArea and smaller than
// MaxSymbolAreaFraction of the card, clamped to one..three.
func countSymbols(contours []imaging.Contour, cardArea float64, cfg config.Detection) cards.Number {
	maxArea := cfg.MaxSymbolAreaFraction * cardArea
	n := 0
	for _, c := range contours {
		if a := c.Area(); a > cfg.MinSymbolArea && a < maxArea {
			n++
		}
	}
	return cards.NumberFromCount(n)
}

func largestContour(contours []imaging.Contour) imaging.Contour {
	var best imaging.Contour
	bestArea := -1.0
	for _, c := range contours {
		if a := c.Area(); a > bestArea {
			best, bestArea = c, a
		}
	}
	return best
}

// classifyShape simplifies the symbol outline and counts its parallel edge
// pairs: two pairs on a quadrilateral is a diamond, none a squiggle,
// anything else an oval. An oval's rounded ends simplify to several short
// edges, and on a slightly turned card only some of them find a partner.
func classifyShape(c imaging.Contour, cfg config.Detection) cards.Shape {
	if len(c) == 0 {
		return cards.Squiggle
	}
	poly := imaging.ApproxPolygon(c, cfg.ApproxEpsilon*c.Perimeter())
	pairs := parallelPairs(poly, cfg.ParallelTolerance)
	switch {
	case pairs == 2 && len(poly) == 4:
		return cards.Diamond
	case pairs == 0:
		return cards.Squiggle
	default:
		return cards.Oval
	}
}

// parallelPairs greedily pairs polygon edges whose directions differ by at
// most tolerance degrees (mod 180). Each edge joins at most one pair.
func parallelPairs(poly []image.Point, tolerance float64) int {
	if len(poly) < 3 {
		return 0
	}
	angles := make([]float64, len(poly))
	for i, p := range poly {
		angles[i] = imaging.EdgeAngle(p, poly[(i+1)%len(poly)])
	}

	used := make([]bool, len(angles))
	pairs := 0
	for i := range angles {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(angles); j++ {
			if used[j] {
				continue
			}
			d := angles[i] - angles[j]
			if d < 0 {
				d = -d
			}
			if d <= tolerance || d >= 180-tolerance {
				used[i], used[j] = true, true
				pairs++
				break
			}
		}
	}
	return pairs
}

// classifyColor votes each colored pixel to its nearest centroid and maps
// the winner's dominant channel. Purple when there is nothing to vote on.
func classifyColor(sample SymbolSample, palette Palette) cards.Color {
	if len(sample.Colored) == 0 || len(palette.Clusters) == 0 {
		return cards.Purple
	}
	votes := make([]int, len(palette.Clusters))
	for _, c := range sample.Colored {
		votes[palette.Nearest(c)]++
	}
	winner := 0
	for i, v := range votes {
		if v > votes[winner] {
			winner = i
		}
	}
	return palette.Clusters[winner].Color()
}

// classifyShading compares colored pixels to all masked pixels.
func classifyShading(sample SymbolSample, cfg config.Detection) cards.Shading {
	if sample.Masked == 0 {
		return cards.Open
	}
	ratio := float64(len(sample.Colored)) / float64(sample.Masked)
	switch {
	case ratio > cfg.SolidRatio:
		return cards.Solid
	case ratio > cfg.StripedRatio:
		return cards.Striped
	default:
		return cards.Open
	}
}
