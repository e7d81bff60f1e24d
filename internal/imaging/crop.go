package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropResult contains an encoded image, ready to hand to an MCP client.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts rect from img as a zero-origin NRGBA. rect must be non-empty
// and lie inside the image.
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", rect)
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, bounds)
	}
	return imaging.Crop(img, rect), nil
}

// CropClamped intersects rect with the image first. It returns false when
// nothing is left.
func CropClamped(img image.Image, rect image.Rectangle) (*image.NRGBA, image.Rectangle, bool) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, image.Rectangle{}, false
	}
	return imaging.Crop(img, rect), rect, true
}

// EncodePNG scales img (when scale is positive and not 1) and encodes it as
// base64 PNG.
func EncodePNG(img image.Image, scale float64) (*CropResult, error) {
	out := img
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(img.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(img.Bounds().Dy())*scale))
		out = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &CropResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
