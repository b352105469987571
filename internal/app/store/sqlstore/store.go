// internal/app/store/sqlstore/store.go

// Package sqlstore implements store.Store on a relational database through
// gorm. PostgreSQL is the production target; SQLite serves local runs and
// tests.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Store is a store.Store backed by a gorm connection.
type Store struct {
	db   *gorm.DB
	log  *zap.Logger
	inTx bool
}

var _ store.Store = (*Store)(nil)

// Models lists every table the store migrates.
func Models() []any {
	return []any{
		&models.User{},
		&models.Collection{},
		&models.Impact{},
		&models.Activity{},
		&models.Badge{},
		&models.EcoTip{},
		&models.MaterialInterest{},
		&models.ChatMessage{},
		&models.Feedback{},
		&models.RecyclingCenter{},
	}
}

// Open connects to backend ("postgres" or "sqlite") using dsn.
func Open(backend, dsn string, logger *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch backend {
	case BackendPostgres:
		dialector = postgres.Open(dsn)
	case BackendSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported backend %q", backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", backend, err)
	}

	if backend == BackendSQLite {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY between concurrent writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db, logger), nil
}

// New wraps an open gorm handle.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, log: logger}
}

// Migrate creates or updates every table and index.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

func (s *Store) q(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

// RunInTx runs fn inside a database transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log, inTx: true})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mapErr converts gorm and driver errors to store sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return store.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation catches drivers that do not implement error translation.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
