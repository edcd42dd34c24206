// Package db provides embedded database schema and migration files.
package db

import "embed"

// PostgresSchema contains the idempotent DDL for the PostgreSQL backend.
//
//go:embed migrations/postgres/001_schema.sql
var PostgresSchema string

// SQLiteMigrations holds golang-migrate formatted migrations for the SQLite
// backend, rooted at migrations/sqlite.
//
//go:embed migrations/sqlite/*.sql
var SQLiteMigrations embed.FS

// SQLiteMigrationsDir is the directory inside SQLiteMigrations.
const SQLiteMigrationsDir = "migrations/sqlite"
