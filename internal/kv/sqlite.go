package kv

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a single key-value pair.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens the SQLite database at dsn and migrates the schema.
func OpenSQLite(dsn string, opts ...Option) (*SQLite, error) {
	o := newOptions(opts)

	config := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{Logger: o.log},
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to local store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(Entry{})
	if err != nil {
		return nil, fmt.Errorf("error during local store migration: %w", err)
	}

	err = db.Callback().Query().After("*").Register("tracker:after_query", generalCallback(o.log))
	if err != nil {
		return nil, err
	}

	err = db.Callback().Create().After("*").Register("tracker:after_create", generalCallback(o.log))
	if err != nil {
		return nil, err
	}

	err = db.Callback().Delete().After("*").Register("tracker:after_delete", generalCallback(o.log))
	if err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where(&Entry{Key: key}).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return e.Value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Entry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where(&Entry{Key: key}).Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}

	return nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the caller with a helpful message.
// Instead, the error is logged to l and a general error is returned.
func generalCallback(l zerolog.Logger) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error == nil || errors.Is(db.Error, gorm.ErrRecordNotFound) {
			return
		}

		// "sql: database is closed" is hard-coded in the sql module, see
		// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
		if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
			l.Error().Msgf("%T: %v", db.Error, db.Error.Error())
			db.Error = ErrGeneral
		}
	}
}

var _ Store = (*SQLite)(nil)
