// Package clean turns raw label records into validated, deduplicated boxes.
package clean

import (
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/labeldb/internal/annotation"
)

// Report counts what each cleaning step removed. Counts follow step order:
// a record dropped for a missing field is never counted again later.
type Report struct {
	Input       int `json:"input" yaml:"input"`
	Missing     int `json:"missing" yaml:"missing"`
	Unparseable int `json:"unparseable" yaml:"unparseable"`
	OutOfRange  int `json:"out_of_range" yaml:"out_of_range"`
	Duplicates  int `json:"duplicates" yaml:"duplicates"`
	Output      int `json:"output" yaml:"output"`
}

// Clean runs the cleaning steps in order:
//
//  1. drop records with any missing field
//  2. coerce class_id to a non-negative int and coordinates to float64,
//     dropping failures
//  3. drop records outside the normalized-coordinate ranges
//  4. drop exact duplicates, keeping the first occurrence
//
// Input order is preserved.
func Clean(raw []annotation.Raw) ([]annotation.Annotation, Report) {
	report := Report{Input: len(raw)}

	complete := make([]annotation.Raw, 0, len(raw))
	for _, r := range raw {
		if r.HasMissing() {
			report.Missing++
			continue
		}
		complete = append(complete, r)
	}

	typed := make([]annotation.Annotation, 0, len(complete))
	for _, r := range complete {
		a, ok := Coerce(r)
		if !ok {
			report.Unparseable++
			continue
		}
		typed = append(typed, a)
	}

	valid := typed[:0]
	for _, a := range typed {
		if !a.InRange() {
			report.OutOfRange++
			continue
		}
		valid = append(valid, a)
	}

	out := Dedupe(valid)
	report.Duplicates = len(valid) - len(out)
	report.Output = len(out)
	return out, report
}

// Coerce converts a raw record to typed values. A class id written as an
// integral float ("3.0") is accepted; a negative class id is not.
func Coerce(r annotation.Raw) (annotation.Annotation, bool) {
	split, err := annotation.ParseSplit(strings.TrimSpace(r.Split))
	if err != nil {
		return annotation.Annotation{}, false
	}

	classID, ok := parseClassID(r.ClassID)
	if !ok {
		return annotation.Annotation{}, false
	}

	var coords [4]float64
	for i, s := range []string{r.XCenter, r.YCenter, r.Width, r.Height} {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return annotation.Annotation{}, false
		}
		coords[i] = v
	}

	return annotation.Annotation{
		ImageFilename: r.ImageFilename,
		Split:         split,
		ClassID:       classID,
		XCenter:       coords[0],
		YCenter:       coords[1],
		Width:         coords[2],
		Height:        coords[3],
	}, true
}

func parseClassID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < 0 {
		return 0, false
	}
	return int(f), true
}

// Dedupe removes exact duplicates, keeping first occurrences in order.
func Dedupe(in []annotation.Annotation) []annotation.Annotation {
	seen := make(map[annotation.Annotation]struct{}, len(in))
	out := make([]annotation.Annotation, 0, len(in))
	for _, a := range in {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
