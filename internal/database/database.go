package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"

	"newsletter-go/internal/config"
	"newsletter-go/internal/logging"
)

// Open returns the shared pooled handle for the configured provider. The
// handle is pinged once so an unreachable store fails here, before the HTTP
// listener is bound.
func Open(ctx context.Context, settings config.DatabaseSettings, logger *logging.ContextLogger) (*bun.DB, error) {
	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)

	switch settings.Provider {
	case config.ProviderPostgres:
		sqlDB, err = sql.Open("postgres", settings.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())

	case config.ProviderSQLite:
		dsn, err := sqliteDSN(settings.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqlDB, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())

	default:
		return nil, fmt.Errorf("unsupported database provider: %s", settings.Provider)
	}

	configurePool(sqlDB, settings)
	enableDebugging(db, logger)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"provider":       settings.Provider,
			"max_open_conns": settings.MaxOpenConns,
		}).Info("Database connected successfully")
	}
	return db, nil
}

// CreateDatabase creates the configured Postgres database on the server. For
// SQLite the file is created on first open, so there is nothing to do.
func CreateDatabase(ctx context.Context, settings config.DatabaseSettings) error {
	switch settings.Provider {
	case config.ProviderSQLite:
		return nil
	case config.ProviderPostgres:
	default:
		return fmt.Errorf("cannot create a database for provider: %s", settings.Provider)
	}

	sqlDB, err := sql.Open("postgres", settings.ConnectionStringWithoutDatabase())
	if err != nil {
		return fmt.Errorf("failed to open database server connection: %w", err)
	}
	defer sqlDB.Close()

	if _, err := sqlDB.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(settings.DatabaseName)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", settings.DatabaseName, err)
	}
	return nil
}

func sqliteDSN(path string) (string, error) {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve sqlite path: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL and a busy timeout let concurrent inserts wait for the write lock
	// instead of failing with SQLITE_BUSY.
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil
}

func configurePool(sqlDB *sql.DB, settings config.DatabaseSettings) {
	if settings.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(settings.MaxOpenConns)
	}
	if settings.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(settings.MaxIdleConns)
	}
	if settings.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(settings.ConnMaxLifetime)
	}
}

func enableDebugging(db *bun.DB, logger *logging.ContextLogger) {
	if logger == nil || !logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.WithWriter(logger.WriterLevel(logrus.DebugLevel)),
	))
}
