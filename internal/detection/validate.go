package detection

import "sort"

// ValidateDimensions drops regions whose width or height differs from the
// capture's median by more than tolerance (0.3 keeps ratios in [0.7, 1.3]).
// Order is preserved.
func ValidateDimensions(regions []Region, tolerance float64) []Region {
	kept := make([]Region, 0, len(regions))
	if len(regions) == 0 {
		return kept
	}

	widths := make([]float64, len(regions))
	heights := make([]float64, len(regions))
	for i, r := range regions {
		widths[i] = float64(r.Bounds.Dx())
		heights[i] = float64(r.Bounds.Dy())
	}
	medW, medH := median(widths), median(heights)
	if medW <= 0 || medH <= 0 {
		return kept
	}

	lo, hi := 1-tolerance, 1+tolerance
	for i, r := range regions {
		rw, rh := widths[i]/medW, heights[i]/medH
		if rw < lo || rw > hi || rh < lo || rh > hi {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// median returns the middle value, averaging the two middle values of an
// even-length input. values is not modified.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
