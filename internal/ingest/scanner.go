// Package ingest finds report files in a directory, decodes them and hands
// them to the parser.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/observability/metrics"
	"github.com/welling-fm/fireinspect/internal/parser"
	"github.com/welling-fm/fireinspect/internal/report"
)

// DefaultExtensions are the report file types read when none are configured
var DefaultExtensions = []string{".txt", ".html", ".htm"}

// Skipped is a file that produced no report
type Skipped struct {
	File   string
	Reason string
}

// Result is the outcome of one directory scan
type Result struct {
	Files   int // files read
	Reports []report.Report
	Skipped []Skipped
}

// Scanner reads report files from one directory
type Scanner struct {
	fs         afero.Fs
	parser     *parser.Parser
	extensions map[string]bool
	log        logger.Logger
	metrics    *metrics.ParserMetrics
}

// NewScanner creates a scanner. Nil metrics disable recording.
func NewScanner(fs afero.Fs, p *parser.Parser, extensions []string, log logger.Logger, m *metrics.ParserMetrics) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	if log == nil {
		log = logger.Global().Module("ingest")
	}
	return &Scanner{fs: fs, parser: p, extensions: exts, log: log, metrics: m}
}

// Scan parses every matching file in dir, in name order. Subdirectories are
// not visited. Unmatched buildings are reported in Result.Skipped; a read
// error aborts the scan.
func (s *Scanner) Scan(ctx context.Context, dir string) (*Result, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, errors.New(fmt.Errorf("read report directory: %w", err)).
			Component("ingest").
			Category(errors.CategoryFileIO).
			Context("dir", dir).
			Build()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	s.log.Info("scanning reports", logger.String("dir", dir), logger.Int("entries", len(infos)))

	res := &Result{Reports: []report.Report{}}
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !s.extensions[ext] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err).
				Component("ingest").
				Category(errors.CategoryCancellation).
				Build()
		}

		path := filepath.Join(dir, name)
		raw, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return nil, errors.New(fmt.Errorf("read report: %w", err)).
				Component("ingest").
				Category(errors.CategoryFileIO).
				FileContext(path, info.Size()).
				Build()
		}
		res.Files++

		r, err := s.parser.Parse(name, Decode(raw, ext))
		if err != nil {
			if errors.Is(err, parser.ErrUnmatchedBuilding) {
				s.log.Warn("could not match building name", logger.String("file", name))
				s.metrics.RecordSkip(metrics.SkipUnmatchedBuilding)
				res.Skipped = append(res.Skipped, Skipped{File: name, Reason: metrics.SkipUnmatchedBuilding})
				continue
			}
			return nil, err
		}

		sum := r.Summary()
		s.metrics.RecordReport(r.BuildingName, sum.Devices, sum.Lights, sum.Notes)
		s.log.Info("parsed report",
			logger.String("file", name),
			logger.String("building", r.BuildingName),
			logger.Int("devices", sum.Devices),
			logger.Int("lights", sum.Lights),
			logger.Int("notes", sum.Notes))
		res.Reports = append(res.Reports, *r)
	}
	return res, nil
}
