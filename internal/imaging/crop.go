package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/labeldb/internal/annotation"
)

// CropResult contains a cropped region encoded as PNG.
type CropResult struct {
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Region      image.Rectangle `json:"region"`
	ImageBase64 string          `json:"image_base64"`
	MimeType    string          `json:"mime_type"`
}

// CropBox extracts the pixels of box, grown by padding on every side and
// clipped to the image, optionally rescaled.
func CropBox(img image.Image, box annotation.Box, padding int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	r := PixelRect(box, bounds)
	if r.Empty() {
		return nil, fmt.Errorf("box (%.1f,%.1f)-(%.1f,%.1f) lies outside image bounds %v",
			box.XMin, box.YMin, box.XMax, box.YMax, bounds)
	}
	if padding > 0 {
		r = r.Inset(-padding).Intersect(bounds)
	}

	var cropped image.Image = imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := EncodePNG(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		Region:      r,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNG returns img as a base64 PNG string.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
