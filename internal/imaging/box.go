package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/labeldb/internal/annotation"
)

// ParseColor parses "#RRGGBB" (or "#RGB") into an opaque colour.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// PixelRect rounds a float box to whole pixels and clips it to bounds.
// The result may be empty when the box lies outside the image.
func PixelRect(box annotation.Box, bounds image.Rectangle) image.Rectangle {
	return roundRect(box, bounds).Intersect(bounds)
}

// roundRect rounds box to whole pixels in the coordinate space of bounds
// without clipping.
func roundRect(box annotation.Box, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(
		int(math.Round(box.XMin)),
		int(math.Round(box.YMin)),
		int(math.Round(box.XMax)),
		int(math.Round(box.YMax)),
	)
	return r.Add(bounds.Min)
}

// DrawBox returns a copy of img with the outline of box stroked in c.
// The stroke is thickness pixels wide and grows inward from the box edge.
// Edges that fall outside the image are not drawn.
func DrawBox(img image.Image, box annotation.Box, c color.Color, thickness int) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	if thickness < 1 {
		thickness = 1
	}

	r := roundRect(box, bounds)
	if r.Empty() || !r.Overlaps(bounds) {
		return result
	}

	src := image.NewUniform(c)
	t := min(thickness, (r.Dx()+1)/2, (r.Dy()+1)/2)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // top
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // left
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(result, e.Intersect(bounds), src, image.Point{}, draw.Src)
	}

	return result
}

// StampClass writes the class id just above the box's top-left corner, or
// inside the box when there is no room above it.
func StampClass(img *image.RGBA, box annotation.Box, classID int, bg color.RGBA) {
	r := PixelRect(box, img.Bounds())
	if r.Empty() {
		return
	}
	y := r.Min.Y - labelHeight - 1
	if y < img.Bounds().Min.Y {
		y = r.Min.Y + 1
	}
	drawLabel(img, r.Min.X+1, y, strconv.Itoa(classID), color.RGBA{255, 255, 255, 255}, bg)
}

const (
	charWidth   = 4
	labelHeight = 7
)

// Simple 3x5 pixel font for digits and a minus sign.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel draws text on a filled background with its top-left at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	labelWidth := len(text) * charWidth

	set := func(px, py int, c color.RGBA) {
		if image.Pt(px, py).In(bounds) {
			img.SetRGBA(px, py, c)
		}
	}

	for dy := -1; dy < labelHeight-1; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
