package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageCache provides thread-safe caching of decoded table photographs,
// keyed by the exact path string they were loaded from.
//
// Cached images remain in memory until Evict or Clear. A detection server
// usually looks at the same photograph several times (detect, find sets,
// annotate), so each photo is decoded once.
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	img    image.Image
	format string
	size   int64
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the decoded image at path, reading the file only on the
// first call. PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) load(path string) (cacheEntry, error) {
	c.mu.RLock()
	if e, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return cacheEntry{}, fmt.Errorf("failed to open image: %w", err)
	}
	img, format, err := Decode(bytes.NewReader(data))
	if err != nil {
		return cacheEntry{}, err
	}
	e := cacheEntry{img: img, format: format, size: int64(len(data))}

	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()

	return e, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict removes one path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Decode reads any registered image format and reports its name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// ImageInfo describes a loaded photograph.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the name reported by the decoder ("png", "jpeg", "webp", ...).
	Format string `json:"format"`

	// Orientation is "landscape" when Width > Height, otherwise "portrait".
	// It decides whether the cards are laid out in 5 or 4 columns.
	Orientation string `json:"orientation"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path into the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	bounds := e.img.Bounds()
	orientation := "portrait"
	if bounds.Dx() > bounds.Dy() {
		orientation = "landscape"
	}

	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        e.format,
		Orientation:   orientation,
		FileSizeBytes: e.size,
	}, nil
}
