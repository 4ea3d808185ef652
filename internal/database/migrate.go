package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"newsletter-go/internal/config"
	"newsletter-go/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *bun.DB, provider string, logger *logging.ContextLogger) error {
	dialect, err := getDialect(provider)
	if err != nil {
		return err
	}

	subFs, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create sub filesystem: %w", err)
	}

	migrator, err := goose.NewProvider(dialect, db.DB, subFs)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	results, err := migrator.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if logger != nil {
		for _, result := range results {
			logger.WithFields(logrus.Fields{
				"migration": result.Source.Path,
				"duration":  result.Duration.String(),
			}).Info("Migrated")
		}
	}
	return nil
}

func getDialect(provider string) (goosedb.Dialect, error) {
	switch provider {
	case config.ProviderPostgres:
		return goose.DialectPostgres, nil
	case config.ProviderSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported database provider: %s", provider)
	}
}
