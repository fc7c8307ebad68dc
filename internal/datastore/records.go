package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/welling-fm/fireinspect/internal/building"
	"github.com/welling-fm/fireinspect/internal/logger"
)

// LocalStore keeps building records in the local_records table so an update
// can be rehearsed without touching the remote store. Numbers in stored
// fields read back as float64.
type LocalStore struct {
	store *Store
}

// NewLocalStore returns the record store of s
func NewLocalStore(s *Store) *LocalStore {
	return &LocalStore{store: s}
}

// ListRecords returns every record in insertion order.
func (l *LocalStore) ListRecords(ctx context.Context) ([]building.Record, error) {
	var rows []LocalRecord
	if err := l.store.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, dbError(err, "list_records")
	}

	records := make([]building.Record, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecord inserts or replaces the record stored under rec.Path.
func (l *LocalStore) WriteRecord(ctx context.Context, rec building.Record) error {
	row, err := newLocalRecord(rec)
	if err != nil {
		return err
	}
	err = l.store.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc_id", "name", "year", "fields", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return dbError(err, "write_record", "path", rec.Path)
	}
	return nil
}

// Import replaces the whole table with records and returns how many were
// stored.
func (l *LocalStore) Import(ctx context.Context, records []building.Record) (int, error) {
	rows := make([]LocalRecord, 0, len(records))
	for _, rec := range records {
		row, err := newLocalRecord(rec)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	err := l.store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&LocalRecord{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
	if err != nil {
		return 0, dbError(err, "import_records", "records", len(rows))
	}

	l.store.log.Info("local records imported", logger.Int("records", len(rows)))
	return len(rows), nil
}

func newLocalRecord(rec building.Record) (LocalRecord, error) {
	if rec.Path == "" {
		return LocalRecord{}, dbError(fmt.Errorf("record %q has no path", rec.ID), "encode_record")
	}
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return LocalRecord{}, dbError(fmt.Errorf("encode fields: %w", err), "encode_record", "path", rec.Path)
	}
	return LocalRecord{
		Path:      rec.Path,
		DocID:     rec.ID,
		Name:      rec.Name(),
		Year:      rec.Year(),
		Fields:    string(fields),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (r *LocalRecord) record() (building.Record, error) {
	fields := map[string]any{}
	if r.Fields != "" {
		if err := json.Unmarshal([]byte(r.Fields), &fields); err != nil {
			return building.Record{}, dbError(fmt.Errorf("decode fields: %w", err), "decode_record", "path", r.Path)
		}
	}
	return building.NewRecord(r.Path, fields), nil
}
