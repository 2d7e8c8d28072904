// internal/db/migrate.go
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func embeddedSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not create source: %w", err)
	}
	return src, nil
}

// NewMigrator returns a migrate instance for the SQLite file at dbPath.
// An empty migrationsDir uses the migrations compiled into the binary.
func NewMigrator(dbPath, migrationsDir string) (*migrate.Migrate, error) {
	absDB, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}
	databaseURL := "sqlite3://" + sqliteDSN(absDB)

	if migrationsDir == "" {
		src, err := embeddedSource()
		if err != nil {
			return nil, err
		}
		return migrate.NewWithSourceInstance("iofs", src, databaseURL)
	}

	absMigrations, err := filepath.Abs(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("invalid migrations path: %w", err)
	}
	if _, err := os.Stat(absMigrations); err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}
	return migrate.New("file://"+absMigrations, databaseURL)
}
