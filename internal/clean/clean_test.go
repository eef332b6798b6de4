package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/labeldb/internal/annotation"
)

func raw(name, split, cls, x, y, w, h string) annotation.Raw {
	return annotation.Raw{
		ImageFilename: name,
		Split:         split,
		ClassID:       cls,
		XCenter:       x,
		YCenter:       y,
		Width:         w,
		Height:        h,
	}
}

func TestClean_ExampleRows(t *testing.T) {
	in := []annotation.Raw{
		raw("img", "train", "1", "0.5", "0.5", "0.2", "0.2"),
		raw("img", "train", "1", "1.5", "0.5", "0.2", "0.2"),
		raw("img", "train", "1", "0.5", "0.5", "0.2", "0.2"),
	}

	out, report := Clean(in)

	require.Len(t, out, 1)
	assert.Equal(t, annotation.Annotation{
		ImageFilename: "img",
		Split:         annotation.SplitTrain,
		ClassID:       1,
		XCenter:       0.5,
		YCenter:       0.5,
		Width:         0.2,
		Height:        0.2,
	}, out[0])
	assert.Equal(t, Report{Input: 3, OutOfRange: 1, Duplicates: 1, Output: 1}, report)
}

func TestClean_StepOrder(t *testing.T) {
	in := []annotation.Raw{
		raw("a", "train", "", "0.5", "0.5", "0.2", "0.2"),     // missing
		raw("a", "train", "x", "0.5", "0.5", "0.2", "0.2"),    // unparseable
		raw("a", "holdout", "1", "0.5", "0.5", "0.2", "0.2"),  // unparseable split
		raw("a", "train", "1", "0.5", "0.5", "0", "0.2"),      // zero width
		raw("a", "train", "-2", "0.5", "0.5", "0.2", "0.2"),   // negative class
		raw("a", "train", "2.0", "0.5", "0.5", "0.2", "0.2"),  // kept
		raw("a", "train", "2", "0.50", "0.5", "0.2", "0.2"),   // duplicate after coercion
		raw("a", "valid", "2", "0.5", "0.5", "0.2", "0.2"),    // other split, kept
		raw("a", "train", "1.5", "0.5", "0.5", "0.2", "0.2"),  // non-integral class
		raw("a", "train", "3", "NaN", "0.5", "0.2", "0.2"),    // NaN
	}

	out, report := Clean(in)

	assert.Equal(t, Report{
		Input:       10,
		Missing:     1,
		Unparseable: 4,
		OutOfRange:  2,
		Duplicates:  1,
		Output:      2,
	}, report)
	require.Len(t, out, 2)
	assert.Equal(t, annotation.SplitTrain, out[0].Split)
	assert.Equal(t, 2, out[0].ClassID)
	assert.Equal(t, annotation.SplitValid, out[1].Split)
}

func TestClean_Idempotent(t *testing.T) {
	in := []annotation.Raw{
		raw("a", "train", "0", "0.1", "0.2", "0.3", "0.4"),
		raw("b", "test", "5", "0.123456789", "0.9", "1", "0.0001"),
		raw("b", "test", "5", "0.123456789", "0.9", "1", "0.0001"),
		raw("c", "valid", "7", "2", "0.9", "1", "0.1"),
	}

	first, _ := Clean(in)

	again := make([]annotation.Raw, len(first))
	for i, a := range first {
		again[i] = a.Raw()
	}
	second, report := Clean(again)

	assert.Equal(t, first, second)
	assert.Equal(t, Report{Input: 2, Output: 2}, report)
}

func TestClean_AllRowsSatisfyInvariants(t *testing.T) {
	var in []annotation.Raw
	values := []string{"-0.1", "0", "0.5", "1", "1.1"}
	for _, x := range values {
		for _, w := range values {
			in = append(in, raw("img", "train", "1", x, "0.5", w, "0.5"))
			in = append(in, raw("img", "train", "1", x, "0.5", w, "0.5"))
		}
	}

	out, _ := Clean(in)
	seen := make(map[annotation.Annotation]bool)
	for _, a := range out {
		assert.True(t, a.InRange(), "%+v", a)
		assert.False(t, seen[a], "duplicate %+v", a)
		seen[a] = true
	}
	// x in {0, 0.5, 1} times w in {0.5, 1}
	assert.Len(t, out, 6)
}

func TestClean_Empty(t *testing.T) {
	out, report := Clean(nil)
	assert.Empty(t, out)
	assert.Equal(t, Report{}, report)
}

func TestCoerce_ClassID(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{" 3 ", 3, true},
		{"3.0", 3, true},
		{"-1", 0, false},
		{"-2.0", 0, false},
		{"1.5", 0, false},
		{"1e12", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		a, ok := Coerce(raw("a", "train", tt.in, "0.5", "0.5", "0.2", "0.2"))
		assert.Equal(t, tt.ok, ok, "class id %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, a.ClassID, "class id %q", tt.in)
		}
	}
}

func TestClean_NegativeClassIsUnparseable(t *testing.T) {
	out, report := Clean([]annotation.Raw{
		raw("a", "train", "-1", "0.5", "0.5", "0.2", "0.2"),
		raw("a", "train", "1", "0.5", "0.5", "0.2", "0.2"),
	})

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ClassID)
	assert.Equal(t, Report{Input: 2, Unparseable: 1, Output: 1}, report)
}
