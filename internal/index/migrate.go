package index

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed all:migrations/sqlite
var sqliteMigrations embed.FS

// newMigrator builds a golang-migrate instance over the embedded sqlite
// migrations, adapted from rjsadow-sortie's internal/db migration setup
// (which also supported postgres; this index is sqlite-only, so that
// dimension of the teacher's migrator is dropped — see DESIGN.md).
func newMigrator(conn *sql.DB) (*migrate.Migrate, error) {
	migrationFS, err := fs.Sub(sqliteMigrations, "migrations/sqlite")
	if err != nil {
		return nil, fmt.Errorf("index: sub filesystem: %w", err)
	}
	source, err := iofs.New(migrationFS, ".")
	if err != nil {
		return nil, fmt.Errorf("index: migration source: %w", err)
	}
	var driver database.Driver
	driver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("index: sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("index: migrator: %w", err)
	}
	return m, nil
}

// runMigrations applies every pending migration to conn.
func runMigrations(conn *sql.DB) error {
	m, err := newMigrator(conn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("index: migration failed: %w", err)
	}
	return nil
}
