package store

import (
	"fmt"
	"strings"

	"github.com/marcelsud/webhook-inspector/config"
	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/marcelsud/webhook-inspector/webhook/postgres"
	"github.com/marcelsud/webhook-inspector/webhook/sqlite"
)

// Store is a webhook repository that owns its schema.
type Store interface {
	webhook.Repository
	MigrateUp() error
	MigrateDown() error
}

// Driver names the backend selected by a database URL.
type Driver string

const (
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
)

// Resolve picks the driver and the driver-specific DSN for a database URL.
// postgres:// and postgresql:// go to PostgreSQL; sqlite://path and file:
// URLs go to SQLite.
func Resolve(databaseURL string) (Driver, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return Postgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url without a path: %q", databaseURL)
		}
		return SQLite, path, nil
	case strings.HasPrefix(databaseURL, "file:"), databaseURL == ":memory:":
		return SQLite, databaseURL, nil
	}
	return "", "", fmt.Errorf("unsupported database url %q", databaseURL)
}

// Open connects to the configured database. Migrations are not applied.
func Open(cfg *config.Config) (Store, error) {
	driver, dsn, err := Resolve(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	switch driver {
	case Postgres:
		repo, err := postgres.NewRepositoryWithPoolConfig(dsn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifeMinutes)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return repo, nil
	default:
		repo, err := sqlite.NewRepository(dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return repo, nil
	}
}
