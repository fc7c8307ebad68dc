package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/welling-fm/fireinspect/internal/building"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/updater"
)

// DefaultHistoryLimit is the number of runs ListRuns returns when limit is not positive
const DefaultHistoryLimit = 20

// StartRun records the start of a run.
func (s *Store) StartRun(ctx context.Context, kind, target string, dryRun bool) (*Run, error) {
	run := &Run{
		Kind:      kind,
		Target:    target,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(run).Error; err != nil {
		return nil, dbError(err, "start_run", "kind", kind)
	}
	return run, nil
}

// FinishUpdate stores the outcome of an update run and its items. runErr is
// the error that ended the run early, if any.
func (s *Store) FinishUpdate(ctx context.Context, run *Run, summary updater.Summary, runErr error) error {
	items := make([]RunItem, 0, len(summary.Items))
	for _, it := range summary.Items {
		item := RunItem{
			RunID:      run.ID,
			Building:   it.Building,
			FileName:   it.FileName,
			Outcome:    string(it.Outcome),
			DocumentID: it.DocumentID,
			Devices:    it.Changes.Devices,
			Lights:     it.Changes.Lights,
			Notes:      it.Changes.Notes,
		}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		items = append(items, item)
	}

	run.Total = len(summary.Items)
	run.Updated = summary.Updated
	run.NotFound = summary.NotFound
	run.Failed = summary.Failed
	return s.finish(ctx, run, items, runErr)
}

// FinishPull stores the outcome of a pull run.
func (s *Store) FinishPull(ctx context.Context, run *Run, imported int, runErr error) error {
	run.Total = imported
	run.Updated = imported
	return s.finish(ctx, run, nil, runErr)
}

func (s *Store) finish(ctx context.Context, run *Run, items []RunItem, runErr error) error {
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	if runErr != nil {
		run.Error = runErr.Error()
	}

	db := s.DB.WithContext(ctx)
	if err := db.Save(run).Error; err != nil {
		return dbError(err, "finish_run", "run_id", run.ID)
	}
	if len(items) > 0 {
		if err := db.CreateInBatches(&items, 100).Error; err != nil {
			return dbError(err, "finish_run", "run_id", run.ID)
		}
		run.Items = items
	}

	s.log.Debug("run recorded",
		logger.Int64("run_id", int64(run.ID)),
		logger.String("kind", run.Kind),
		logger.Int("items", len(items)))
	return nil
}

// Snapshotter returns a snapshot hook that saves records under run.
func (s *Store) Snapshotter(run *Run) updater.SnapshotFunc {
	return func(ctx context.Context, rec building.Record) error {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return dbError(fmt.Errorf("encode snapshot: %w", err), "snapshot", "path", rec.Path)
		}
		snap := Snapshot{
			RunID:    run.ID,
			Path:     rec.Path,
			Building: rec.Name(),
			Fields:   string(fields),
			TakenAt:  time.Now().UTC(),
		}
		if err := s.DB.WithContext(ctx).Create(&snap).Error; err != nil {
			return dbError(err, "snapshot", "path", rec.Path)
		}
		return nil
	}
}

// Snapshots returns the snapshots taken during a run
func (s *Store) Snapshots(ctx context.Context, runID uint) ([]Snapshot, error) {
	var snaps []Snapshot
	if err := s.DB.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&snaps).Error; err != nil {
		return nil, dbError(err, "list_snapshots", "run_id", runID)
	}
	return snaps, nil
}

// ListRuns returns the most recent runs first, with their items.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var runs []Run
	err := s.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, dbError(err, "list_runs")
	}
	return runs, nil
}
