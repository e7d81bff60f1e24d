package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/config"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ColorCluster is a palette centroid in RGB (channel means, 0-255).
type ColorCluster struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Hex formats the centroid as "#rrggbb".
func (c ColorCluster) Hex() string {
	return colorful.Color{R: c.R / 255, G: c.G / 255, B: c.B / 255}.Clamped().Hex()
}

// Color maps the centroid's dominant channel to a card color: red when red
// is strictly the largest channel, green when green is, purple otherwise.
func (c ColorCluster) Color() cards.Color {
	switch {
	case c.R > c.G && c.R > c.B:
		return cards.Red
	case c.G > c.R && c.G > c.B:
		return cards.Green
	default:
		return cards.Purple
	}
}

func (c ColorCluster) distanceSq(p imaging.RGBColor) float64 {
	dr := c.R - float64(p.R)
	dg := c.G - float64(p.G)
	db := c.B - float64(p.B)
	return dr*dr + dg*dg + db*db
}

// neutralGray is the single centroid used when a capture has no colored pixels.
var neutralGray = ColorCluster{R: 128, G: 128, B: 128}

// Palette is the set of symbol colors of one capture. It is built once per
// DetectCards call and passed explicitly to feature extraction.
type Palette struct {
	Clusters    []ColorCluster `json:"clusters"`
	Compactness float64        `json:"compactness"`
	Samples     int            `json:"samples"`
}

// Nearest returns the index of the centroid closest to c, or -1 for an
// empty palette.
func (p Palette) Nearest(c imaging.RGBColor) int {
	best, bestDist := -1, math.Inf(1)
	for i, cl := range p.Clusters {
		if d := cl.distanceSq(c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// SymbolSample holds the stride-sampled pixels of one card's symbol mask.
type SymbolSample struct {
	// Colored are the sampled mask pixels with every channel below the
	// colored threshold.
	Colored []imaging.RGBColor
	// Masked is the number of sampled pixels inside the mask.
	Masked int
}

// SampleSymbols isolates the printed symbols of an upright card crop and
// samples them.
//
// Lightness is equalized first (CLAHE on L*) so the later color decisions
// see comparable contrast under any lighting. The symbol mask is the dark
// Otsu class of the equalized grayscale, without components touching the
// crop edge (table showing around the card). It is then grown by
// MaskDilation pixels, which closes outlines a resampled crop left broken,
// and its holes are filled so an outlined symbol covers its interior. Every
// SampleStride-th pixel on both axes inside the mask is counted, and kept as
// colored when all of its channels are below ColoredThreshold.
func SampleSymbols(img image.Image, cfg config.Detection) SymbolSample {
	enhanced := imaging.EqualizeLightness(img, cfg.CLAHETiles, cfg.CLAHEClipLimit)
	mask := imaging.ClearBorder(imaging.OtsuMaskInv(imaging.Grayscale(enhanced)))
	mask = imaging.FillHoles(imaging.Dilate(mask, cfg.MaskDilation))

	stride := max(cfg.SampleStride, 1)
	var s SymbolSample
	for y := 0; y < mask.Height; y += stride {
		for x := 0; x < mask.Width; x += stride {
			if !mask.At(x, y) {
				continue
			}
			s.Masked++
			if c := imaging.RGBAt(enhanced, x, y); c.Below(cfg.ColoredThreshold) {
				s.Colored = append(s.Colored, c)
			}
		}
	}
	return s
}

// BuildPalette clusters the symbol colors of all cards of one capture.
func BuildPalette(images []image.Image, cfg config.Detection) Palette {
	samples := make([]SymbolSample, len(images))
	for i, img := range images {
		samples[i] = SampleSymbols(img, cfg)
	}
	return paletteFromSamples(samples, cfg)
}

// paletteFromSamples pools the colored pixels of every card and runs
// k-means for k = 1..MaxClusters, keeping the lowest compactness. k = 1 is
// the baseline and a larger k must score strictly lower to replace it; k
// never exceeds the number of distinct colors. Without any colored pixel
// the palette is a single neutral gray.
func paletteFromSamples(samples []SymbolSample, cfg config.Detection) Palette {
	var points []imaging.RGBColor
	for _, s := range samples {
		points = append(points, s.Colored...)
	}
	if len(points) == 0 {
		return Palette{Clusters: []ColorCluster{neutralGray}}
	}

	km, err := kmeans.NewWithOptions(cfg.KMeansDelta, nil)
	if err != nil {
		km = kmeans.New()
	}
	obs := observations(points)

	var best Palette
	bestScore := math.Inf(1)
	for k := 1; k <= min(cfg.MaxClusters, distinctColors(points)); k++ {
		centers, score, ok := partition(km, obs, k, cfg.KMeansAttempts)
		if !ok {
			break
		}
		if score < bestScore {
			best = Palette{Clusters: centers, Compactness: score, Samples: len(points)}
			bestScore = score
		}
	}
	if len(best.Clusters) == 0 {
		return Palette{Clusters: []ColorCluster{neutralGray}}
	}
	return best
}

// observations scales colors into the unit cube the k-means library draws
// its random starting centers from.
func observations(points []imaging.RGBColor) clusters.Observations {
	obs := make(clusters.Observations, len(points))
	for i, p := range points {
		obs[i] = clusters.Coordinates{float64(p.R) / 255, float64(p.G) / 255, float64(p.B) / 255}
	}
	return obs
}

func distinctColors(points []imaging.RGBColor) int {
	seen := make(map[imaging.RGBColor]struct{}, 8)
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// partition runs attempts random-start k-means partitions and returns the
// centers of the most compact one.
func partition(km kmeans.Kmeans, obs clusters.Observations, k, attempts int) ([]ColorCluster, float64, bool) {
	var best []ColorCluster
	bestScore := math.Inf(1)
	for attempt := 0; attempt < max(attempts, 1); attempt++ {
		cc, err := km.Partition(obs, k)
		if err != nil {
			return nil, 0, false
		}
		centers, score := summarize(cc)
		if len(centers) == k && score < bestScore {
			best, bestScore = centers, score
		}
	}
	return best, bestScore, best != nil
}

// summarize converts partitioned clusters back to RGB centroids, ordered by
// channel, and scores them by compactness: the sum of squared RGB distances
// of every point to its centroid. Empty clusters are dropped.
func summarize(cc clusters.Clusters) ([]ColorCluster, float64) {
	centers := make([]ColorCluster, 0, len(cc))
	score := 0.0
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		center := ColorCluster{R: c.Center[0] * 255, G: c.Center[1] * 255, B: c.Center[2] * 255}
		for _, o := range c.Observations {
			p := o.Coordinates()
			dr, dg, db := center.R-p[0]*255, center.G-p[1]*255, center.B-p[2]*255
			score += dr*dr + dg*dg + db*db
		}
		centers = append(centers, center)
	}
	sort.Slice(centers, func(i, j int) bool {
		a, b := centers[i], centers[j]
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})
	return centers, score
}
