package detection

import (
	"fmt"
	"image"
	"runtime/debug"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/config"
	"github.com/ironsheep/setcards-mcp/internal/diag"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
)

// Detector runs the card pipeline over one photograph at a time.
//
// A Detector holds only configuration and a logger. Everything derived from
// a capture, the palette in particular, lives inside a single call, so one
// Detector may serve concurrent captures.
type Detector struct {
	cfg     config.Detection
	locator *Locator
	log     diag.Logger
}

// New returns a Detector. A nil logger discards diagnostics.
func New(cfg config.Detection, logger diag.Logger) *Detector {
	return &Detector{
		cfg:     cfg,
		locator: NewLocator(cfg),
		log:     diag.OrNop(logger),
	}
}

// Stats counts what happened at each stage of one capture.
type Stats struct {
	Cells     int `json:"cells"`
	Located   int `json:"located"`
	Fallbacks int `json:"fallbacks"`
	Rejected  int `json:"rejected"`
	Dropped   int `json:"dropped"`
	Cards     int `json:"cards"`
}

// Analysis is the full result of one capture. Regions[i] is the crop that
// Cards[i] was classified from.
type Analysis struct {
	Grid    GridSpacing  `json:"grid"`
	Palette Palette      `json:"palette"`
	Cards   []cards.Card `json:"cards"`
	Regions []Region     `json:"-"`
	Stats   Stats        `json:"stats"`
}

// DetectCards returns the cards found in img in grid row-major order. It
// never fails: any unexpected error yields an empty, non-nil list.
func (d *Detector) DetectCards(img image.Image) []cards.Card {
	a, err := d.Analyze(img)
	if err != nil {
		d.log.Printf("detection failed: %v", err)
		return []cards.Card{}
	}
	return a.Cards
}

// Analyze runs the pipeline and reports every intermediate result. A panic
// anywhere in the pipeline is recovered and returned as an error.
func (d *Detector) Analyze(img image.Image) (a *Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Printf("detection panic: %v\n%s", r, debug.Stack())
			a, err = nil, fmt.Errorf("detection panicked: %v", r)
		}
	}()
	if img == nil {
		return nil, fmt.Errorf("no image")
	}

	src := imaging.ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	a = &Analysis{
		Grid:    EstimateGrid(w, h),
		Cards:   []cards.Card{},
		Regions: []Region{},
	}
	if w == 0 || h == 0 {
		a.Palette = Palette{Clusters: []ColorCluster{neutralGray}}
		return a, nil
	}

	located := d.locate(src, a.Grid, &a.Stats)
	regions := ValidateDimensions(located, d.cfg.DimensionTolerance)
	a.Stats.Rejected = len(located) - len(regions)

	samples := make([]SymbolSample, len(regions))
	for i, r := range regions {
		samples[i] = SampleSymbols(r.Image, d.cfg)
	}
	a.Palette = paletteFromSamples(samples, d.cfg)

	for i, r := range regions {
		attrs, err := d.classify(r, samples[i], a.Palette)
		if err != nil {
			a.Stats.Dropped++
			d.log.Printf("card at %v dropped: %v", r.Bounds, err)
			continue
		}
		card := cards.New(attrs, r.Bounds, r.Rotation)
		d.log.Printf("card %d: %v at %v rotation %.1f", len(a.Cards), attrs, r.Bounds, card.Rotation)
		a.Cards = append(a.Cards, card)
		a.Regions = append(a.Regions, r)
	}
	a.Stats.Cards = len(a.Cards)

	d.log.Printf("capture %dx%d: grid %dx%d, located %d (%d fallback), rejected %d, dropped %d, %d cards, %d colors from %d samples",
		w, h, a.Grid.NumRows, a.Grid.NumCols, a.Stats.Located, a.Stats.Fallbacks,
		a.Stats.Rejected, a.Stats.Dropped, a.Stats.Cards, len(a.Palette.Clusters), a.Palette.Samples)
	return a, nil
}

// locate finds one region per grid cell in row-major order.
func (d *Detector) locate(src *image.NRGBA, grid GridSpacing, stats *Stats) []Region {
	regions := make([]Region, 0, grid.Cells())
	for row := 0; row < grid.NumRows; row++ {
		for col := 0; col < grid.NumCols; col++ {
			stats.Cells++
			r, ok := d.locator.Locate(src, grid, row, col)
			if !ok {
				d.log.Printf("cell (%d,%d): no region", row, col)
				continue
			}
			stats.Located++
			if r.Fallback {
				stats.Fallbacks++
				d.log.Printf("cell (%d,%d): no card outline, using grid crop", row, col)
			}
			regions = append(regions, r)
		}
	}
	return regions
}

// classify extracts one card's attributes, turning a panic into an error so
// a single bad crop cannot take down the capture.
func (d *Detector) classify(r Region, sample SymbolSample, palette Palette) (attrs cards.Attributes, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("feature extraction panicked: %v", rec)
		}
	}()
	return extractFeatures(r.Image, sample, palette, d.cfg)
}
