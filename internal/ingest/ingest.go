// Package ingest collects YOLO label files from a dataset tree.
//
// The layout is fixed:
//
//	{root}/{split}/labels/*.txt    split in train, test, valid
//
// Scanning is best effort. Missing split directories and unreadable files are
// logged and skipped; malformed lines are skipped silently. A file that fails
// partway keeps the lines read before the failure. Lines have no length
// limit. Only a scan that yields no records at all is an error.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/ironsheep/labeldb/internal/annotation"
	"github.com/ironsheep/labeldb/internal/errors"
	"github.com/ironsheep/labeldb/internal/logger"
)

const labelExt = ".txt"

// FileError records a label file that could not be read.
type FileError struct {
	Path string
	Err  error
}

// Result is the outcome of a scan.
type Result struct {
	Records       []annotation.Raw
	Files         int
	SkippedLines  int
	MissingSplits []annotation.Split
	FileErrors    []FileError
}

// Images returns the number of distinct image file names.
func (r *Result) Images() int {
	seen := make(map[string]struct{}, len(r.Records))
	for _, rec := range r.Records {
		seen[rec.ImageFilename] = struct{}{}
	}
	return len(seen)
}

// Scanner walks a dataset tree on an afero filesystem.
type Scanner struct {
	fs  afero.Fs
	log *slog.Logger
}

// NewScanner returns a scanner reading from fs.
func NewScanner(fs afero.Fs, log *slog.Logger) *Scanner {
	return &Scanner{fs: fs, log: logger.Module(log, "ingest")}
}

// Scan collects every label line under root. It returns an error wrapping
// errors.ErrNoAnnotations when nothing was collected.
func (s *Scanner) Scan(root string) (*Result, error) {
	res := &Result{}

	for _, split := range annotation.Splits {
		splitDir := filepath.Join(root, string(split))
		if ok, _ := afero.DirExists(s.fs, splitDir); !ok {
			s.log.Warn("split directory not found, skipping", "split", split, "path", splitDir)
			res.MissingSplits = append(res.MissingSplits, split)
			continue
		}

		files, err := afero.Glob(s.fs, filepath.Join(splitDir, "labels", "*"+labelExt))
		if err != nil {
			s.log.Warn("failed to list label files", "split", split, "error", err)
			continue
		}
		sort.Strings(files)

		for _, path := range files {
			s.scanFile(res, split, path)
		}
		s.log.Debug("split scanned", "split", split, "files", len(files))
	}

	if len(res.Records) == 0 {
		return res, errors.New(fmt.Errorf("%w under %s", errors.ErrNoAnnotations, root)).
			Category(errors.CategoryEmptyResult).
			Context("dataset_root", root).
			Build()
	}
	return res, nil
}

func (s *Scanner) scanFile(res *Result, split annotation.Split, path string) {
	f, err := s.fs.Open(path)
	if err != nil {
		s.fileError(res, path, err)
		return
	}
	defer f.Close()

	imageName := strings.TrimSuffix(filepath.Base(path), labelExt)
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			// Lines read so far stay in the result.
			s.fileError(res, path, err)
			return
		}
		if line != "" {
			if tokens, ok := annotation.ParseLine(line); ok {
				res.Records = append(res.Records, annotation.NewRaw(imageName, split, tokens))
			} else {
				res.SkippedLines++
			}
		}
		if err == io.EOF {
			break
		}
	}

	res.Files++
}

func (s *Scanner) fileError(res *Result, path string, err error) {
	s.log.Error("failed to read label file", "path", path, "error", err)
	res.FileErrors = append(res.FileErrors, FileError{Path: path, Err: err})
}
