package store

import (
	"github.com/ironsheep/labeldb/internal/annotation"
)

// Table names.
const (
	RawTable     = "raw_annotations"
	CleanedTable = "cleaned_annotations"
)

// RawAnnotation is a row of raw_annotations. Values are stored exactly as they
// were read; the numeric columns are nullable text.
type RawAnnotation struct {
	ImageFilename string  `gorm:"column:image_filename;type:TEXT"`
	DatasetSplit  string  `gorm:"column:dataset_split;type:TEXT"`
	ClassID       *string `gorm:"column:class_id;type:TEXT"`
	XCenter       *string `gorm:"column:x_center;type:TEXT"`
	YCenter       *string `gorm:"column:y_center;type:TEXT"`
	Width         *string `gorm:"column:width;type:TEXT"`
	Height        *string `gorm:"column:height;type:TEXT"`
}

func (RawAnnotation) TableName() string { return RawTable }

// CleanedAnnotation is a row of cleaned_annotations.
type CleanedAnnotation struct {
	ImageFilename string  `gorm:"column:image_filename;type:TEXT;not null"`
	DatasetSplit  string  `gorm:"column:dataset_split;type:TEXT;not null"`
	ClassID       int     `gorm:"column:class_id;type:INTEGER;not null"`
	XCenter       float64 `gorm:"column:x_center;type:REAL;not null"`
	YCenter       float64 `gorm:"column:y_center;type:REAL;not null"`
	Width         float64 `gorm:"column:width;type:REAL;not null"`
	Height        float64 `gorm:"column:height;type:REAL;not null"`
}

func (CleanedAnnotation) TableName() string { return CleanedTable }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fromRaw(r annotation.Raw) RawAnnotation {
	return RawAnnotation{
		ImageFilename: r.ImageFilename,
		DatasetSplit:  r.Split,
		ClassID:       nullable(r.ClassID),
		XCenter:       nullable(r.XCenter),
		YCenter:       nullable(r.YCenter),
		Width:         nullable(r.Width),
		Height:        nullable(r.Height),
	}
}

func (m RawAnnotation) toRaw() annotation.Raw {
	return annotation.Raw{
		ImageFilename: m.ImageFilename,
		Split:         m.DatasetSplit,
		ClassID:       deref(m.ClassID),
		XCenter:       deref(m.XCenter),
		YCenter:       deref(m.YCenter),
		Width:         deref(m.Width),
		Height:        deref(m.Height),
	}
}

func fromAnnotation(a annotation.Annotation) CleanedAnnotation {
	return CleanedAnnotation{
		ImageFilename: a.ImageFilename,
		DatasetSplit:  string(a.Split),
		ClassID:       a.ClassID,
		XCenter:       a.XCenter,
		YCenter:       a.YCenter,
		Width:         a.Width,
		Height:        a.Height,
	}
}

func (m CleanedAnnotation) toAnnotation() annotation.Annotation {
	return annotation.Annotation{
		ImageFilename: m.ImageFilename,
		Split:         annotation.Split(m.DatasetSplit),
		ClassID:       m.ClassID,
		XCenter:       m.XCenter,
		YCenter:       m.YCenter,
		Width:         m.Width,
		Height:        m.Height,
	}
}
