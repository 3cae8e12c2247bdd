package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/civicbook/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// RecordList is one stored list row.
type RecordList struct {
	Key       string `gorm:"column:list_key;primaryKey;size:255"`
	Payload   []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (RecordList) TableName() string { return "record_lists" }

// SQLiteStore persists record lists in a local SQLite file through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the database at dsn, e.g. "civicbook.db"
// or ":memory:".
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewSQLiteStore(db)
}

func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&RecordList{}); err != nil {
		return nil, fmt.Errorf("migrate record_lists: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]domain.Record, error) {
	var row RecordList
	err := s.db.WithContext(ctx).Where("list_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeRecords(row.Payload)
}

func (s *SQLiteStore) Save(ctx context.Context, key string, records []domain.Record) error {
	payload, err := encodeRecords(records)
	if err != nil {
		return err
	}
	row := RecordList{Key: key, Payload: payload, UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "list_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ RecordStore = (*SQLiteStore)(nil)
