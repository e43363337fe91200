package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const (
	busyRetries = 3
	busyBackoff = 50 * time.Millisecond
)

// SQLiteStore implements ports.KeyValueStore using GORM and SQLite.
type SQLiteStore struct {
	db *gorm.DB
}

// EntryModel is the GORM model for one key-value entry.
type EntryModel struct {
	EntryKey  string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// TableName pins the table name.
func (EntryModel) TableName() string {
	return "kv_entries"
}

// NewSQLiteStore opens (creating if needed) the database at path and migrates schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install tracing plugin: %w", err)
	}

	// a single connection keeps :memory: coherent and serializes writers
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var model EntryModel
	err := s.db.WithContext(ctx).First(&model, "entry_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return model.Value, true, nil
}

// Set upserts key. Busy or locked databases are retried a few times.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	model := EntryModel{EntryKey: key, Value: value, UpdatedAt: time.Now().UTC()}

	var err error
	for attempt := 0; attempt <= busyRetries; attempt++ {
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&model).Error
		if err == nil || !IsBusy(err) {
			break
		}
		slog.Debug("Database busy, retrying write", "key", key, "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return fmt.Errorf("set %s: %w", key, ctx.Err())
		case <-time.After(busyBackoff * time.Duration(attempt+1)):
		}
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsBusy reports whether err is a transient SQLITE_BUSY or SQLITE_LOCKED.
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// Ensure interface compliance
var _ ports.KeyValueStore = (*SQLiteStore)(nil)
