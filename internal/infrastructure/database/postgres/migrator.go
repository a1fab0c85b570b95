package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/hbond-profiler/migrations"
)

// sourceName is the source driver name of the embedded migration set.
const sourceName = "iofs"

// newMigrator is a variable to allow tests to bypass the database.
var newMigrator = func(dbURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance(sourceName, src, dbURL)
}

// applyUp runs every pending migration on m.  An up-to-date schema is not an
// error.
func applyUp(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// withMigrator opens a migrator on dbURL, hands it to fn and closes it.
func withMigrator(dbURL string, fn func(m *migrate.Migrate) error) error {
	m, err := newMigrator(dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()
	return fn(m)
}

// MigrateUp applies every pending embedded migration.
func MigrateUp(dbURL string) error {
	return withMigrator(dbURL, func(m *migrate.Migrate) error {
		if err := applyUp(m); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls the schema back by steps migrations.
func MigrateDown(dbURL string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	return withMigrator(dbURL, func(m *migrate.Migrate) error {
		err := m.Steps(-steps)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, migrate.ErrNoChange):
			return fmt.Errorf("no migrations to roll back")
		default:
			return fmt.Errorf("rollback of %d step(s) failed: %w", steps, err)
		}
	})
}

// MigrationStatus returns the applied version and whether a previous
// migration left the schema dirty.  A fresh database reports version 0.
func MigrationStatus(dbURL string) (version uint, dirty bool, err error) {
	err = withMigrator(dbURL, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			version, dirty = 0, false
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to read schema version: %w", verr)
		}
		return nil
	})
	return version, dirty, err
}

//Personal.AI order the ending
