package imaging

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/spf13/afero"
)

// SavePNG encodes img as PNG at path on fs, creating parent directories.
func SavePNG(fs afero.Fs, path string, img image.Image) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if err := imgio.PNGEncoder()(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
