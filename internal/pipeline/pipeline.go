// Package pipeline runs the dataset preparation steps: ingest label files
// into raw_annotations, then clean them into cleaned_annotations.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ironsheep/labeldb/internal/annotation"
	"github.com/ironsheep/labeldb/internal/clean"
	"github.com/ironsheep/labeldb/internal/ingest"
	"github.com/ironsheep/labeldb/internal/logger"
	"github.com/ironsheep/labeldb/internal/store"
)

// IngestResult summarizes an ingest run.
type IngestResult struct {
	RunID         string             `json:"run_id"`
	Database      string             `json:"database"`
	Records       int                `json:"records"`
	Images        int                `json:"images"`
	Files         int                `json:"files"`
	SkippedLines  int                `json:"skipped_lines"`
	FileErrors    int                `json:"file_errors"`
	MissingSplits []annotation.Split `json:"missing_splits,omitempty"`
}

// CleanResult summarizes a clean run.
type CleanResult struct {
	RunID    string       `json:"run_id"`
	Database string       `json:"database"`
	Report   clean.Report `json:"report"`
}

// ProcessResult is the outcome of ingest followed by clean.
type ProcessResult struct {
	Ingest *IngestResult `json:"ingest"`
	Clean  *CleanResult  `json:"clean"`
}

// Pipeline binds the dataset and database locations.
type Pipeline struct {
	fs           afero.Fs
	datasetRoot  string
	databasePath string
	log          *slog.Logger
}

// New returns a pipeline reading label files from fs. The database at
// databasePath is always opened on the OS filesystem.
func New(fs afero.Fs, datasetRoot, databasePath string, log *slog.Logger) *Pipeline {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Pipeline{
		fs:           fs,
		datasetRoot:  datasetRoot,
		databasePath: databasePath,
		log:          logger.Module(log, "pipeline"),
	}
}

// Ingest scans the dataset and writes every well-formed label line to a fresh
// raw_annotations table. The existing database is removed only after the scan
// found at least one record.
func (p *Pipeline) Ingest(ctx context.Context) (*IngestResult, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID, "step", "ingest")
	start := time.Now()

	log.Info("scanning dataset", "dataset_root", p.datasetRoot)
	scan, err := ingest.NewScanner(p.fs, log).Scan(p.datasetRoot)
	if err != nil {
		log.Error("ingest failed", "error", err)
		return nil, err
	}

	st, err := store.Reset(p.databasePath, log)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := st.ReplaceRaw(ctx, scan.Records); err != nil {
		log.Error("failed to write raw annotations", "error", err)
		return nil, err
	}

	res := &IngestResult{
		RunID:         runID,
		Database:      p.databasePath,
		Records:       len(scan.Records),
		Images:        scan.Images(),
		Files:         scan.Files,
		SkippedLines:  scan.SkippedLines,
		FileErrors:    len(scan.FileErrors),
		MissingSplits: scan.MissingSplits,
	}
	log.Info("raw annotations loaded",
		"records", res.Records,
		"images", res.Images,
		"files", res.Files,
		"skipped_lines", res.SkippedLines,
		"duration", time.Since(start))
	return res, nil
}

// Clean reads raw_annotations, cleans them, and replaces
// cleaned_annotations.
func (p *Pipeline) Clean(ctx context.Context) (*CleanResult, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID, "step", "clean")

	st, err := store.Open(p.databasePath, log)
	if err != nil {
		log.Error("clean failed", "error", err)
		return nil, err
	}
	defer st.Close()

	raw, err := st.LoadRaw(ctx)
	if err != nil {
		log.Error("clean failed", "error", err)
		return nil, err
	}

	cleaned, report := clean.Clean(raw)
	if err := st.ReplaceCleaned(ctx, cleaned); err != nil {
		log.Error("failed to write cleaned annotations", "error", err)
		return nil, err
	}

	log.Info("cleaning complete",
		"input", report.Input,
		"missing", report.Missing,
		"unparseable", report.Unparseable,
		"out_of_range", report.OutOfRange,
		"duplicates", report.Duplicates,
		"output", report.Output)
	return &CleanResult{RunID: runID, Database: p.databasePath, Report: report}, nil
}

// Process runs Ingest then Clean. A failed ingest stops the run.
func (p *Pipeline) Process(ctx context.Context) (*ProcessResult, error) {
	in, err := p.Ingest(ctx)
	if err != nil {
		return nil, err
	}
	cl, err := p.Clean(ctx)
	if err != nil {
		return &ProcessResult{Ingest: in}, err
	}
	return &ProcessResult{Ingest: in, Clean: cl}, nil
}
