package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/labeldb/internal/annotation"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#1f77b4", color.RGBA{31, 119, 180, 255}, false},
		{"#0f0", color.RGBA{0, 255, 0, 255}, false},
		{"red", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPixelRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)

	r := PixelRect(annotation.Box{XMin: 10.4, YMin: 9.6, XMax: 50.5, YMax: 40}, bounds)
	if r != image.Rect(10, 10, 51, 40) {
		t.Errorf("PixelRect: got %v", r)
	}

	clipped := PixelRect(annotation.Box{XMin: -20, YMin: -5, XMax: 120, YMax: 30}, bounds)
	if clipped != image.Rect(0, 0, 100, 30) {
		t.Errorf("PixelRect clipped: got %v", clipped)
	}

	if !PixelRect(annotation.Box{XMin: 200, YMin: 200, XMax: 300, YMax: 300}, bounds).Empty() {
		t.Error("PixelRect outside bounds should be empty")
	}
}

func TestDrawBox(t *testing.T) {
	src := createInMemoryImage(100, 100, black)
	box := annotation.Box{XMin: 20, YMin: 20, XMax: 80, YMax: 60}

	out := DrawBox(src, box, red, 3)

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"top edge", 50, 20, red},
		{"top edge inner row", 50, 22, red},
		{"below stroke", 50, 23, black},
		{"left edge", 20, 40, red},
		{"right edge", 79, 40, red},
		{"bottom edge", 50, 59, red},
		{"outside right", 80, 40, black},
		{"interior", 50, 40, black},
		{"outside", 5, 5, black},
	}

	for _, tt := range tests {
		if got := rgbaAt(out, tt.x, tt.y); got != tt.want {
			t.Errorf("%s (%d,%d): got %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	// source image is untouched
	if got := src.RGBAAt(50, 20); got != black {
		t.Errorf("DrawBox modified its input: %v", got)
	}
}

func TestDrawBox_ThinBoxAndZeroThickness(t *testing.T) {
	src := createInMemoryImage(20, 20, black)

	out := DrawBox(src, annotation.Box{XMin: 5, YMin: 5, XMax: 7, YMax: 7}, red, 10)
	for y := 5; y < 7; y++ {
		for x := 5; x < 7; x++ {
			if got := rgbaAt(out, x, y); got != red {
				t.Errorf("(%d,%d): got %v, want red", x, y, got)
			}
		}
	}

	out = DrawBox(src, annotation.Box{XMin: 2, YMin: 2, XMax: 10, YMax: 10}, red, 0)
	if got := rgbaAt(out, 2, 5); got != red {
		t.Errorf("zero thickness should draw 1px: got %v", got)
	}
	if got := rgbaAt(out, 3, 5); got != black {
		t.Errorf("zero thickness drew more than 1px: got %v", got)
	}
}

func TestDrawBox_OutsideImage(t *testing.T) {
	src := createInMemoryImage(20, 20, black)
	out := DrawBox(src, annotation.Box{XMin: 30, YMin: 30, XMax: 40, YMax: 40}, red, 3)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if got := rgbaAt(out, x, y); got != black {
				t.Fatalf("(%d,%d) changed to %v", x, y, got)
			}
		}
	}
}

func TestDrawBox_PartiallyOutside(t *testing.T) {
	src := createInMemoryImage(100, 100, black)

	tests := []struct {
		name string
		box  annotation.Box
		x, y int
		want color.RGBA
	}{
		{"left edge off image", annotation.Box{XMin: -20, YMin: 30, XMax: 20, YMax: 70}, 0, 50, black},
		{"left edge off image, inner column", annotation.Box{XMin: -20, YMin: 30, XMax: 20, YMax: 70}, 2, 50, black},
		{"right edge inside", annotation.Box{XMin: -20, YMin: 30, XMax: 20, YMax: 70}, 18, 50, red},
		{"top edge clipped to image", annotation.Box{XMin: -20, YMin: 30, XMax: 20, YMax: 70}, 0, 30, red},
		{"right and bottom off image", annotation.Box{XMin: 80, YMin: 80, XMax: 130, YMax: 130}, 99, 90, black},
		{"bottom off image", annotation.Box{XMin: 80, YMin: 80, XMax: 130, YMax: 130}, 90, 99, black},
		{"top edge of corner box", annotation.Box{XMin: 80, YMin: 80, XMax: 130, YMax: 130}, 90, 80, red},
		{"left edge of corner box", annotation.Box{XMin: 80, YMin: 80, XMax: 130, YMax: 130}, 80, 90, red},
		{"wider than image", annotation.Box{XMin: -10, YMin: 10, XMax: 110, YMax: 50}, 0, 30, black},
	}

	for _, tt := range tests {
		out := DrawBox(src, tt.box, red, 3)
		if got := rgbaAt(out, tt.x, tt.y); got != tt.want {
			t.Errorf("%s (%d,%d): got %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestStampClass(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	box := annotation.Box{XMin: 10, YMin: 20, XMax: 40, YMax: 50}

	StampClass(img, box, 7, red)

	// label background sits above the box
	if got := img.RGBAAt(10, 12); got != red {
		t.Errorf("label background: got %v, want red", got)
	}
	// first row of glyph '7' is lit
	if got := img.RGBAAt(11, 12); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("glyph pixel: got %v, want white", got)
	}
}

func TestStampClass_NoRoomAbove(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	box := annotation.Box{XMin: 10, YMin: 2, XMax: 40, YMax: 50}

	StampClass(img, box, 1, red)

	// drawn inside the box instead of clipped off the top
	if got := img.RGBAAt(11, 3); got != red {
		t.Errorf("label background inside box: got %v, want red", got)
	}
}
