// Package sqlite stores the catalog and orders in a single local SQLite file.
//
// It uses the pure-Go modernc driver, so the binary builds without CGO.
// Foreign keys are switched on for every connection: order details must
// reference an existing product at write time.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Register the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/xenking/orderdesk/db"
	"github.com/xenking/orderdesk/internal/domain/product"
)

// Open opens (or creates) the database file at path.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", path, err)
	}
	// Single writer; also keeps pragmas applied to the one live connection.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging sqlite %q: %w", path, err)
	}
	return conn, nil
}

// RunMigrations applies the embedded migrations. Tables are only ever
// created when absent, so repeated runs keep existing data.
func RunMigrations(conn *sql.DB) error {
	src, err := iofs.New(db.SQLiteMigrations, db.SQLiteMigrationsDir)
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Bootstrap prepares the schema and seeds the catalog when it is empty.
func Bootstrap(ctx context.Context, conn *sql.DB, seed []product.Product) error {
	if err := RunMigrations(conn); err != nil {
		return err
	}
	if _, err := NewProductRepository(conn).SeedIfEmpty(ctx, seed); err != nil {
		return err
	}
	return nil
}
