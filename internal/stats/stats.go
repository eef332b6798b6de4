// Package stats summarizes the contents of an annotation database.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/labeldb/internal/annotation"
	"github.com/ironsheep/labeldb/internal/errors"
	"github.com/ironsheep/labeldb/internal/store"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SplitCount is the row count of one dataset split.
type SplitCount struct {
	Split string `json:"split" yaml:"split"`
	Count int64  `json:"count" yaml:"count"`
}

// TableSummary describes one table.
type TableSummary struct {
	Rows     int64        `json:"rows" yaml:"rows"`
	Images   int64        `json:"images" yaml:"images"`
	PerSplit []SplitCount `json:"per_split" yaml:"per_split"`
}

// Summary describes a whole database.
type Summary struct {
	Database string             `json:"database" yaml:"database"`
	Raw      *TableSummary      `json:"raw,omitempty" yaml:"raw,omitempty"`
	Cleaned  *TableSummary      `json:"cleaned,omitempty" yaml:"cleaned,omitempty"`
	Removed  int64              `json:"removed" yaml:"removed"`
	Classes  []store.ClassCount `json:"classes" yaml:"classes"`
}

// Summarize gathers counts from st. Tables that do not exist yet are left
// nil rather than treated as errors; a database with neither table is not
// found.
func Summarize(ctx context.Context, st *store.Store) (*Summary, error) {
	sum := &Summary{Database: st.Path(), Classes: []store.ClassCount{}}

	if st.HasTable(store.RawTable) {
		t, err := summarizeTable(ctx, st, store.RawTable)
		if err != nil {
			return nil, err
		}
		sum.Raw = t
	}

	if st.HasTable(store.CleanedTable) {
		t, err := summarizeTable(ctx, st, store.CleanedTable)
		if err != nil {
			return nil, err
		}
		sum.Cleaned = t

		classes, err := st.ClassCounts(ctx)
		if err != nil {
			return nil, err
		}
		if classes != nil {
			sum.Classes = classes
		}
	}

	if sum.Raw == nil && sum.Cleaned == nil {
		return nil, errors.Newf("database has no annotation tables").
			Category(errors.CategoryNotFound).
			Context("path", st.Path()).
			Build()
	}

	if sum.Raw != nil && sum.Cleaned != nil {
		sum.Removed = sum.Raw.Rows - sum.Cleaned.Rows
	}
	return sum, nil
}

func summarizeTable(ctx context.Context, st *store.Store, table string) (*TableSummary, error) {
	rows, err := st.Count(ctx, table)
	if err != nil {
		return nil, err
	}
	images, err := st.DistinctImages(ctx, table)
	if err != nil {
		return nil, err
	}
	splits, err := st.SplitCounts(ctx, table)
	if err != nil {
		return nil, err
	}
	return &TableSummary{Rows: rows, Images: images, PerSplit: orderSplits(splits)}, nil
}

// orderSplits lists known splits in train, test, valid order, followed by
// any other values sorted by name. Raw rows keep the split text verbatim,
// so unknown names are possible only if the table was written elsewhere.
func orderSplits(m map[string]int64) []SplitCount {
	out := make([]SplitCount, 0, len(m))
	for _, s := range annotation.Splits {
		if n, ok := m[string(s)]; ok {
			out = append(out, SplitCount{Split: string(s), Count: n})
			delete(m, string(s))
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, SplitCount{Split: k, Count: m[k]})
	}
	return out
}

// Write renders sum to w in the given format.
func Write(w io.Writer, sum *Summary, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return writeText(w, sum)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sum); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Newf("unknown output format: %s", format).
			Category(errors.CategoryValidation).
			Context("format", format).
			Build()
	}
}

func writeText(w io.Writer, sum *Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s\n", sum.Database)
	writeTable(&b, store.RawTable, sum.Raw)
	writeTable(&b, store.CleanedTable, sum.Cleaned)
	if sum.Raw != nil && sum.Cleaned != nil {
		fmt.Fprintf(&b, "Removed by cleaning: %d\n", sum.Removed)
	}
	if len(sum.Classes) > 0 {
		b.WriteString("Annotations per class:\n")
		for _, c := range sum.Classes {
			fmt.Fprintf(&b, "  %4d  %d\n", c.ClassID, c.Count)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, name string, t *TableSummary) {
	if t == nil {
		fmt.Fprintf(b, "%s: not present\n", name)
		return
	}
	fmt.Fprintf(b, "%s: %d rows, %d images\n", name, t.Rows, t.Images)
	for _, s := range t.PerSplit {
		fmt.Fprintf(b, "  %-6s %d\n", s.Split, s.Count)
	}
}
