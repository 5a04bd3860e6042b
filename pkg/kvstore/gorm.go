package kvstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/vpetrenko/tg-flashdecks/pkg/config"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is a single key-value row. The whole store is one table.
type Record struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (Record) TableName() string {
	return "kv_records"
}

// GormStore implements Store on top of a relational database.
type GormStore struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the kv table.
func Open(cfg config.StorageConfig) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dsn := "host=" + cfg.Host +
			" user=" + cfg.User +
			" password=" + cfg.Password +
			" dbname=" + cfg.DBName +
			" port=" + strconv.Itoa(cfg.Port) +
			" sslmode=" + cfg.SSLMode
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect to storage database", "driver", cfg.Driver, "error", err)
		return nil, err
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing gorm handle and migrates the kv table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		logger.Error("failed to migrate kv table", "error", err)
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&Record{Key: key, Value: value}).Error
}
