// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file bootstraps the SQLite database: open, apply
// pragmas, tune the pool, and migrate the schema.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// sqlitePragmas are applied right after open. WAL keeps readers unblocked
// while a sync job writes; the busy timeout rides out short write contention
// between the HTTP layer and the worker pool.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
	"PRAGMA busy_timeout=5000;",
}

// Pool sizing: ten connections cover the HTTP handlers plus the sync workers
// without fanning out further than a single SQLite file can serve.
const (
	dbMaxConns     = 10
	dbConnIdleTime = 5 * time.Minute
	dbConnLifetime = 30 * time.Minute
)

// checkParentDir returns a readable error when the directory that should
// hold the database file does not exist. The driver itself reports that case
// as a cryptic "out of memory (14)".
func checkParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	_, err := os.Stat(dir)
	return err
}

// OpenSQLite opens (or creates) the database file and tunes the connection
// pool for mixed request/worker traffic.
func OpenSQLite(path string) (*gorm.DB, error) {
	if err := checkParentDir(path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	for _, pragma := range sqlitePragmas {
		db.Exec(pragma)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(dbMaxConns)
		sqlDB.SetMaxIdleConns(dbMaxConns)
		sqlDB.SetConnMaxIdleTime(dbConnIdleTime)
		sqlDB.SetConnMaxLifetime(dbConnLifetime)
	}

	return db, nil
}

// EnableTracing registers the OpenTelemetry GORM plugin so every query is
// recorded as a span on the active trace. Call it once after OpenSQLite when
// tracing is enabled; metrics are left to the Prometheus middleware.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates the schema for every domain model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.ReviewSource{},
		&domain.Review{},
		&domain.SentimentChange{},
		&domain.SyncJob{},
		&domain.DashboardAggregate{},
		&domain.AISummary{},
		&domain.Idempotency{},
	)
}
