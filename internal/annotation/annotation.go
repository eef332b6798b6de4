// Package annotation defines YOLO bounding-box records.
//
// A YOLO label file holds one object per line:
//
//	class_id x_center y_center width height
//
// with the four coordinates normalized to the image size, so (0.5, 0.5) is the
// image centre and a width of 1 spans the whole image.
package annotation

import (
	"fmt"
	"strconv"
	"strings"
)

// Split is a dataset partition.
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
	SplitValid Split = "valid"
)

// Splits lists the partitions in scan order.
var Splits = []Split{SplitTrain, SplitTest, SplitValid}

// ParseSplit accepts only the known partition names.
func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case SplitTrain, SplitTest, SplitValid:
		return Split(s), nil
	}
	return "", fmt.Errorf("unknown dataset split %q", s)
}

// FieldCount is the number of tokens on a valid label line.
const FieldCount = 5

// Raw is one label line as it was read, before any type coercion. An empty
// field means the value is missing.
type Raw struct {
	ImageFilename string
	Split         string
	ClassID       string
	XCenter       string
	YCenter       string
	Width         string
	Height        string
}

// HasMissing reports whether any field is empty.
func (r Raw) HasMissing() bool {
	for _, f := range []string{r.ImageFilename, r.Split, r.ClassID, r.XCenter, r.YCenter, r.Width, r.Height} {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

// ParseLine splits a label line into its five tokens. ok is false unless the
// line has exactly five whitespace-separated tokens.
func ParseLine(line string) (tokens [FieldCount]string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != FieldCount {
		return tokens, false
	}
	copy(tokens[:], fields)
	return tokens, true
}

// NewRaw builds a Raw from a parsed line.
func NewRaw(imageFilename string, split Split, tokens [FieldCount]string) Raw {
	return Raw{
		ImageFilename: imageFilename,
		Split:         string(split),
		ClassID:       tokens[0],
		XCenter:       tokens[1],
		YCenter:       tokens[2],
		Width:         tokens[3],
		Height:        tokens[4],
	}
}

// Annotation is a typed bounding box.
type Annotation struct {
	ImageFilename string  `json:"image_filename"`
	Split         Split   `json:"dataset_split"`
	ClassID       int     `json:"class_id"`
	XCenter       float64 `json:"x_center"`
	YCenter       float64 `json:"y_center"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
}

// InRange reports whether the box satisfies the normalized-coordinate
// invariants. NaN fails every comparison.
func (a Annotation) InRange() bool {
	return a.XCenter >= 0 && a.XCenter <= 1 &&
		a.YCenter >= 0 && a.YCenter <= 1 &&
		a.Width > 0 && a.Width <= 1 &&
		a.Height > 0 && a.Height <= 1
}

// Raw formats the annotation back into text fields. Floats use the shortest
// representation that parses back to the same value.
func (a Annotation) Raw() Raw {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return Raw{
		ImageFilename: a.ImageFilename,
		Split:         string(a.Split),
		ClassID:       strconv.Itoa(a.ClassID),
		XCenter:       f(a.XCenter),
		YCenter:       f(a.YCenter),
		Width:         f(a.Width),
		Height:        f(a.Height),
	}
}

// Box is a rectangle in pixel space with float corners.
type Box struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// PixelBox converts the normalized box to pixel corners for an image of the
// given size.
func (a Annotation) PixelBox(imgWidth, imgHeight int) Box {
	xc := a.XCenter * float64(imgWidth)
	yc := a.YCenter * float64(imgHeight)
	bw := a.Width * float64(imgWidth)
	bh := a.Height * float64(imgHeight)

	return Box{
		XMin: xc - bw/2,
		YMin: yc - bh/2,
		XMax: xc + bw/2,
		YMax: yc + bh/2,
	}
}
