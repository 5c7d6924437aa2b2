// Package migration applies the collection index setup on startup. The
// migration files are embedded JSON command batches, so a fresh deployment
// needs no external tooling.
package migration

import (
	"context"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/pkg/logger"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

const migrationsCollection = "schema_migrations"

func RunMongoMigration(cfg config.MongoDBConfig) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	url := fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?x-migrations-collection=%s",
		cfg.User, cfg.Password.Value(), cfg.Host, cfg.Port, cfg.Database, migrationsCollection)

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, url)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return err
	}
	logger.Logger(context.Background()).Info().Uint("version", version).Msg("mongo migrations applied")
	return nil
}
