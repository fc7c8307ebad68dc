// Package datastore keeps a local copy of building documents and a ledger of
// update runs in SQLite.
package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
)

// InMemory opens a private in-memory database
const InMemory = ":memory:"

const slowQueryThreshold = 200 * time.Millisecond

// Store is the SQLite database.
type Store struct {
	DB  *gorm.DB
	log logger.Logger
}

// Open opens or creates the database at path and migrates its tables.
func Open(path string, log logger.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.Newf("datastore path is required").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if log == nil {
		log = logger.Global().Module("datastore")
	}

	if path != InMemory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.FileError(fmt.Errorf("create database directory: %w", err), dir, 0)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, slowQueryThreshold),
	})
	if err != nil {
		return nil, dbError(fmt.Errorf("failed to open SQLite database: %w", err), "open", "path", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "open", "path", path)
	}
	// One connection keeps an in-memory database shared and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	s := &Store{DB: db, log: log}
	if err := s.migrate(path); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(path string) error {
	start := time.Now()
	if err := s.DB.AutoMigrate(&LocalRecord{}, &Run{}, &RunItem{}, &Snapshot{}); err != nil {
		return dbError(fmt.Errorf("failed to auto-migrate SQLite database: %w", err), "migrate", "path", path)
	}
	s.log.Debug("database ready",
		logger.String("path", path),
		logger.Duration("migration", time.Since(start)))
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	return nil
}
