package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

// ImageCache provides thread-safe caching of decoded dataset images.
//
// Images are keyed by the exact path string used to load them and read from
// the cache's filesystem, so a dataset can live on disk or in an in-memory
// afero.Fs. JPEG images are rotated according to their EXIF orientation tag,
// which keeps pixel coordinates consistent with how labelling tools display
// the image.
//
//	cache := imaging.NewImageCache(afero.NewOsFs())
//	img, err := cache.Load("datasets/roadsigns/train/images/road1.png")
type ImageCache struct {
	fs     afero.Fs
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache reading from fs.
func NewImageCache(fs afero.Fs) *ImageCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ImageCache{
		fs:     fs,
		images: make(map[string]image.Image),
	}
}

// Fs returns the filesystem the cache reads from.
func (c *ImageCache) Fs() afero.Fs {
	return c.fs
}

// Load retrieves an image from the cache or decodes it from the filesystem.
// Supported formats are PNG, JPEG, and GIF.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := c.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear drops every cached image. Called after a dataset is re-ingested so
// replaced files are read again.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels after orientation is applied.
	Width int `json:"width"`

	// Height is the image height in pixels after orientation is applied.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", or "unknown", detected from the
	// extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := cache.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        formatFromExt(path),
		FileSizeBytes: stat.Size(),
	}, nil
}

// formatFromExt maps the last extension to a format name. Dataset exports
// often carry extra dots ("road1_png.rf.abc.jpg"); only the final one counts.
func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	}
	return "unknown"
}
