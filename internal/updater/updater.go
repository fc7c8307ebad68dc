// Package updater folds parsed reports into the matching building records of
// a store, one record at a time.
package updater

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/welling-fm/fireinspect/internal/building"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/observability/metrics"
	"github.com/welling-fm/fireinspect/internal/report"
)

// DefaultYear is the inspection year matched when none is configured
const DefaultYear = "2025"

// Store is the building collection an update reads and writes.
type Store interface {
	ListRecords(ctx context.Context) ([]building.Record, error)
	WriteRecord(ctx context.Context, rec building.Record) error
}

// SnapshotFunc saves a record as it was before a write.
type SnapshotFunc func(ctx context.Context, rec building.Record) error

// Outcome is what happened to one report
type Outcome string

const (
	OutcomeUpdated  Outcome = metrics.OutcomeUpdated
	OutcomeNotFound Outcome = metrics.OutcomeNotFound
	OutcomeFailed   Outcome = metrics.OutcomeFailed
	OutcomeDryRun   Outcome = metrics.OutcomeDryRun
)

// Item is the result for one report.
type Item struct {
	Building   string
	FileName   string
	Outcome    Outcome
	DocumentID string
	Changes    building.Changes
	Err        error
}

// Summary counts the outcomes of a run.
type Summary struct {
	Updated  int
	NotFound int
	Failed   int
	DryRun   int
	Items    []Item
}

func (s *Summary) add(item Item) {
	switch item.Outcome {
	case OutcomeUpdated:
		s.Updated++
	case OutcomeNotFound:
		s.NotFound++
	case OutcomeFailed:
		s.Failed++
	case OutcomeDryRun:
		s.DryRun++
	}
	s.Items = append(s.Items, item)
}

// String renders the one-line summary printed at the end of a run
func (s Summary) String() string {
	out := fmt.Sprintf("%d updated, %d not found, %d failed", s.Updated, s.NotFound, s.Failed)
	if s.DryRun > 0 {
		out += fmt.Sprintf(", %d dry run", s.DryRun)
	}
	return out
}

// Options configures an Updater. Zero values select defaults.
type Options struct {
	Year            string
	WritesPerSecond float64 // zero or negative disables pacing
	DryRun          bool
	Snapshot        SnapshotFunc
	Merger          building.Merger
	Logger          logger.Logger
	Metrics         *metrics.RemoteMetrics
}

// Updater applies reports to a Store.
type Updater struct {
	store   Store
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	metrics *metrics.RemoteMetrics
}

// New creates an Updater over store.
func New(store Store, opts Options) *Updater {
	if opts.Year == "" {
		opts.Year = DefaultYear
	}
	limit := rate.Inf
	if opts.WritesPerSecond > 0 {
		limit = rate.Limit(opts.WritesPerSecond)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Global().Module("updater")
	}
	return &Updater{
		store:   store,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
		metrics: opts.Metrics,
	}
}

// Run lists the store once and merges every report into the first record
// whose name and year match. A write failure is recorded and the run goes on;
// a listing failure or cancellation stops it.
func (u *Updater) Run(ctx context.Context, reports []report.Report) (Summary, error) {
	var summary Summary
	start := time.Now()

	records, err := u.store.ListRecords(ctx)
	if err != nil {
		return summary, errors.New(fmt.Errorf("list buildings: %w", err)).
			Component("updater").
			Build()
	}
	u.log.Info("loaded building records",
		logger.Int("records", len(records)),
		logger.String("year", u.opts.Year),
		logger.Bool("dry_run", u.opts.DryRun))

	index := u.index(records)

	for _, r := range report.Dedupe(reports) {
		if err := ctx.Err(); err != nil {
			return summary, errors.New(err).
				Component("updater").
				Category(errors.CategoryCancellation).
				Build()
		}

		item := u.apply(ctx, index, r)
		u.metrics.RecordUpdate(string(item.Outcome))
		summary.add(item)

		if errors.IsCategory(item.Err, errors.CategoryCancellation) {
			return summary, item.Err
		}
	}

	u.log.Info("update finished",
		logger.Int("updated", summary.Updated),
		logger.Int("not_found", summary.NotFound),
		logger.Int("failed", summary.Failed),
		logger.Int("dry_run", summary.DryRun),
		logger.Duration("elapsed", time.Since(start)))
	return summary, nil
}

// index keeps the first record per building name for the configured year.
func (u *Updater) index(records []building.Record) map[string]building.Record {
	index := make(map[string]building.Record, len(records))
	for _, rec := range records {
		if rec.Year() != u.opts.Year {
			continue
		}
		name := rec.Name()
		if first, ok := index[name]; ok {
			u.log.Warn("duplicate building record ignored",
				logger.String("building", name),
				logger.String("kept", first.ID),
				logger.String("ignored", rec.ID))
			continue
		}
		index[name] = rec
	}
	return index
}

func (u *Updater) apply(ctx context.Context, index map[string]building.Record, r report.Report) Item {
	item := Item{Building: r.BuildingName, FileName: r.FileName}

	found, ok := index[r.BuildingName]
	if !ok {
		item.Outcome = OutcomeNotFound
		u.log.Warn("building not found",
			logger.String("building", r.BuildingName),
			logger.String("year", u.opts.Year))
		return item
	}
	item.DocumentID = found.ID

	rec := found.Clone()
	item.Changes = u.opts.Merger.Apply(&rec, r)

	if u.opts.DryRun {
		item.Outcome = OutcomeDryRun
		u.log.Info("dry run, not writing",
			logger.String("building", r.BuildingName),
			logger.String("document", found.ID),
			logger.Int("devices", item.Changes.Devices),
			logger.Int("lights", item.Changes.Lights),
			logger.Int("notes", item.Changes.Notes))
		return item
	}

	if err := u.limiter.Wait(ctx); err != nil {
		item.Outcome = OutcomeFailed
		item.Err = errors.New(err).
			Component("updater").
			Category(errors.CategoryCancellation).
			Build()
		return item
	}

	if u.opts.Snapshot != nil {
		if err := u.opts.Snapshot(ctx, found); err != nil {
			u.log.Warn("snapshot failed",
				logger.String("building", r.BuildingName),
				logger.Error(err))
		}
	}

	if err := u.store.WriteRecord(ctx, rec); err != nil {
		item.Outcome = OutcomeFailed
		item.Err = err
		u.log.Error("update failed",
			logger.String("building", r.BuildingName),
			logger.String("document", found.ID),
			logger.Error(err))
		return item
	}

	index[r.BuildingName] = rec
	item.Outcome = OutcomeUpdated
	u.log.Info("building updated",
		logger.String("building", r.BuildingName),
		logger.String("document", found.ID),
		logger.Int("devices", item.Changes.Devices),
		logger.Int("lights", item.Changes.Lights),
		logger.Int("notes", item.Changes.Notes),
		logger.Int("details_updated", item.Changes.DetailsUpdated),
		logger.Int("details_added", item.Changes.DetailsAdded))
	return item
}
