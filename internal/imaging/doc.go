// Package imaging provides the raster primitives the card detector is built on.
//
// It covers loading and caching photographs, grayscale conversion and
// smoothing, global (Otsu) and adaptive thresholding into binary masks, mask dilation,
// connected components and external contour tracing, polygon simplification,
// convex hulls and minimum-area rotated rectangles, L*a*b* contrast
// equalization (CLAHE), cropping, PNG encoding and debug overlays.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left:
//   - X increases rightward, Y increases downward
//   - Rectangles are half-open: Min is inclusive, Max is exclusive
//   - Positive rotation angles turn clockwise on screen
//
// Functions that read pixels directly first convert their input to a
// zero-origin *image.NRGBA (see ToNRGBA), so callers may pass any
// image.Image, including sub-images with a non-zero origin.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is stateless
// and returns fresh images, so it can be called concurrently on shared input.
//
// # Error Handling
//
// Only operations that touch the filesystem or take caller-supplied regions
// return errors: unreadable files, undecodable data, and regions that are
// empty or fall outside the image.
package imaging
