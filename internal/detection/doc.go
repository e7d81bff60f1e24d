// Package detection finds Set cards in a photographed grid and classifies them.
//
// # Pipeline
//
// Detector.Analyze runs the stages in order, each consuming the previous
// stage's output:
//
//  1. EstimateGrid: 3 rows of 5 columns for landscape photos, 4 otherwise.
//  2. Locator.Locate: per cell, search a widened window for the largest
//     card-sized quadrilateral outline, or fall back to the inset cell.
//  3. NormalizeRegion: turn the located card upright and crop it.
//  4. ValidateDimensions: drop crops far from the median card size.
//  5. BuildPalette: cluster the symbol colors of the whole capture.
//  6. ExtractFeatures: Number, Shape, Color and Shading of each crop.
//
// # Failure Handling
//
// Failures degrade the result instead of aborting it. A cell without an
// outline uses the grid crop; a crop that cannot be classified is dropped;
// a panic escaping the pipeline makes DetectCards return an empty list.
// All of it is reported on the diagnostic logger.
//
// # Heuristics
//
// Shape comes from counting parallel edge pairs of the simplified outline of
// the largest symbol, and color from the dominant RGB channel of the winning
// palette centroid. Both are coarse and sensitive to white balance and
// polygon tolerance; the tunables live in config.Detection.
package detection
