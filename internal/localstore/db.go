// Package localstore is the clerk device's durable state: saved ground check
// tasks, the reference data used to snapshot codes, and the login session.
// Each container guards its own writes; all share one sqlite file.
package localstore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB owns the sqlite connection behind the containers.
type DB struct {
	gorm      *gorm.DB
	log       *zap.Logger
	tasks     *TaskStore
	reference *ReferenceStore
	session   *SessionStore
}

// Open opens (creating if needed) the sqlite file at path and migrates it.
// Use ":memory:" for a throwaway store.
func Open(path string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	// Single connection keeps ":memory:" databases shared across containers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRecord{}, &divisionRecord{}, &foremanRecord{}, &sessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	log.Debug("local store opened", zap.String("path", path))
	return &DB{
		gorm:      db,
		log:       log,
		tasks:     &TaskStore{db: db},
		reference: &ReferenceStore{db: db},
		session:   &SessionStore{db: db},
	}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Tasks() *TaskStore { return d.tasks }

func (d *DB) Reference() *ReferenceStore { return d.reference }

func (d *DB) Session() *SessionStore { return d.session }
