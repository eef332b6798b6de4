// Package store persists annotations in a single-file SQLite database with
// two tables, raw_annotations and cleaned_annotations. Each table is replaced
// wholesale on write; there are no incremental updates.
package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ironsheep/labeldb/internal/annotation"
	"github.com/ironsheep/labeldb/internal/errors"
	"github.com/ironsheep/labeldb/internal/logger"
)

const (
	batchSize     = 500
	slowThreshold = 200 * time.Millisecond
)

// Store is a handle on one database file.
type Store struct {
	db   *gorm.DB
	path string
	log  *slog.Logger
}

// ClassCount is the number of cleaned rows for one class.
type ClassCount struct {
	ClassID int   `gorm:"column:class_id" json:"class_id" yaml:"class_id"`
	Count   int64 `gorm:"column:count" json:"count" yaml:"count"`
}

// Reset deletes any database at path, along with its journal files, and
// opens a fresh one, creating parent directories as needed.
func Reset(path string, log *slog.Logger) (*Store, error) {
	log = logger.Module(log, "store")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Newf("failed to create database directory: %w", err).
				Category(errors.CategoryFileIO).
				Context("path", dir).
				Build()
		}
	}

	removed, err := removeDatabaseFiles(path)
	if err != nil {
		return nil, errors.Newf("failed to remove old database: %w", err).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	if removed {
		log.Info("removed old database", "path", path)
	}

	return open(path, log)
}

// sidecarSuffixes name the journal files SQLite keeps next to a database.
var sidecarSuffixes = []string{"-wal", "-shm", "-journal"}

// removeDatabaseFiles deletes the database at path and any journal left
// beside it. It reports whether the database itself existed.
func removeDatabaseFiles(path string) (bool, error) {
	removed := true
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			return false, err
		}
		removed = false
	}
	for _, suffix := range sidecarSuffixes {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
	}
	return removed, nil
}

// Open opens an existing database. A missing file is a not-found error.
func Open(path string, log *slog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Newf("database not found: %w", err).
			Category(errors.CategoryNotFound).
			Context("path", path).
			Build()
	}
	return open(path, logger.Module(log, "store"))
}

func open(path string, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, slowThreshold),
	})
	if err != nil {
		return nil, errors.Newf("failed to open SQLite database: %w", err).
			Category(errors.CategoryDatabase).
			Context("path", path).
			Build()
	}
	return &Store{db: db, path: path, log: log}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HasTable reports whether the named table exists.
func (s *Store) HasTable(name string) bool {
	return s.db.Migrator().HasTable(name)
}

// replace drops and recreates model's table, then inserts rows in batches,
// all inside one transaction.
func replace[T any](ctx context.Context, s *Store, model *T, rows []T) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(model); err != nil {
			return err
		}
		if err := tx.Migrator().CreateTable(model); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, batchSize).Error
	})
	if err != nil {
		return errors.Newf("failed to replace table: %w", err).
			Category(errors.CategoryDatabase).
			Context("path", s.path).
			Build()
	}
	return nil
}

// ReplaceRaw replaces raw_annotations with records.
func (s *Store) ReplaceRaw(ctx context.Context, records []annotation.Raw) error {
	rows := make([]RawAnnotation, len(records))
	for i, r := range records {
		rows[i] = fromRaw(r)
	}
	return replace(ctx, s, &RawAnnotation{}, rows)
}

// ReplaceCleaned replaces cleaned_annotations with records.
func (s *Store) ReplaceCleaned(ctx context.Context, records []annotation.Annotation) error {
	rows := make([]CleanedAnnotation, len(records))
	for i, a := range records {
		rows[i] = fromAnnotation(a)
	}
	return replace(ctx, s, &CleanedAnnotation{}, rows)
}

func (s *Store) requireTable(name string) error {
	if s.HasTable(name) {
		return nil
	}
	return errors.Newf("table %s does not exist", name).
		Category(errors.CategoryNotFound).
		Context("path", s.path).
		Build()
}

func (s *Store) queryError(err error, table string) error {
	return errors.Newf("query on %s failed: %w", table, err).
		Category(errors.CategoryDatabase).
		Context("path", s.path).
		Build()
}

// LoadRaw returns raw_annotations in insertion order.
func (s *Store) LoadRaw(ctx context.Context) ([]annotation.Raw, error) {
	if err := s.requireTable(RawTable); err != nil {
		return nil, err
	}
	var rows []RawAnnotation
	if err := s.db.WithContext(ctx).Order("rowid").Find(&rows).Error; err != nil {
		return nil, s.queryError(err, RawTable)
	}
	out := make([]annotation.Raw, len(rows))
	for i, r := range rows {
		out[i] = r.toRaw()
	}
	return out, nil
}

// LoadCleaned returns cleaned_annotations in insertion order.
func (s *Store) LoadCleaned(ctx context.Context) ([]annotation.Annotation, error) {
	if err := s.requireTable(CleanedTable); err != nil {
		return nil, err
	}
	var rows []CleanedAnnotation
	if err := s.db.WithContext(ctx).Order("rowid").Find(&rows).Error; err != nil {
		return nil, s.queryError(err, CleanedTable)
	}
	out := make([]annotation.Annotation, len(rows))
	for i, r := range rows {
		out[i] = r.toAnnotation()
	}
	return out, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if err := s.requireTable(table); err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		return 0, s.queryError(err, table)
	}
	return n, nil
}

// CleanedAt returns the cleaned row at a zero-based offset in insertion order.
func (s *Store) CleanedAt(ctx context.Context, offset int) (annotation.Annotation, error) {
	if err := s.requireTable(CleanedTable); err != nil {
		return annotation.Annotation{}, err
	}
	var rows []CleanedAnnotation
	err := s.db.WithContext(ctx).Order("rowid").Offset(offset).Limit(1).Find(&rows).Error
	if err != nil {
		return annotation.Annotation{}, s.queryError(err, CleanedTable)
	}
	if len(rows) == 0 {
		return annotation.Annotation{}, errors.Newf("no cleaned annotation at offset %d", offset).
			Category(errors.CategoryNotFound).
			Context("path", s.path).
			Build()
	}
	return rows[0].toAnnotation(), nil
}

// ClassCounts aggregates cleaned rows per class in ascending class order.
func (s *Store) ClassCounts(ctx context.Context) ([]ClassCount, error) {
	if err := s.requireTable(CleanedTable); err != nil {
		return nil, err
	}
	var counts []ClassCount
	err := s.db.WithContext(ctx).
		Model(&CleanedAnnotation{}).
		Select("class_id, COUNT(*) AS count").
		Group("class_id").
		Order("class_id ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, s.queryError(err, CleanedTable)
	}
	return counts, nil
}

// SplitCounts returns the row count per dataset split of table.
func (s *Store) SplitCounts(ctx context.Context, table string) (map[string]int64, error) {
	if err := s.requireTable(table); err != nil {
		return nil, err
	}
	var rows []struct {
		DatasetSplit string `gorm:"column:dataset_split"`
		Count        int64  `gorm:"column:count"`
	}
	err := s.db.WithContext(ctx).
		Table(table).
		Select("dataset_split, COUNT(*) AS count").
		Group("dataset_split").
		Scan(&rows).Error
	if err != nil {
		return nil, s.queryError(err, table)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.DatasetSplit] = r.Count
	}
	return out, nil
}

// DistinctImages counts distinct image_filename values in table.
func (s *Store) DistinctImages(ctx context.Context, table string) (int64, error) {
	if err := s.requireTable(table); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.WithContext(ctx).
		Table(table).
		Distinct("image_filename").
		Count(&n).Error
	if err != nil {
		return 0, s.queryError(err, table)
	}
	return n, nil
}
