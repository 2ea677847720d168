package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"portfolio/logger"
)

// Dialect of the SQL spoken by a driver.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// DialectOf maps a DB_DRIVER value to its dialect.
func DialectOf(driver string) Dialect {
	if driver == "sqlite" {
		return SQLite
	}
	return Postgres
}

// Open opens a handle for driver (pgx, postgres or sqlite) and pings it.
// A failed ping is logged, not returned: the handle connects lazily and
// callers see storage errors per statement until the database comes back.
// Connections are opened per use; the handle does not keep idle ones around.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	d, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	d.SetMaxIdleConns(0)
	if DialectOf(driver) == SQLite {
		d.SetMaxOpenConns(1)
	}

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := d.PingContext(pctx); err != nil {
		logger.Errorf("db: ping %s: %v", driver, err)
		return d, nil
	}
	logger.Infof("db: connected (%s)", driver)
	return d, nil
}

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS projects (
    id          SERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT 'web'
)`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS projects (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT 'web'
)`

// EnsureSchema creates the projects table when it does not exist yet.
func EnsureSchema(ctx context.Context, d *sql.DB, dialect Dialect) error {
	q := schemaPostgres
	if dialect == SQLite {
		q = schemaSQLite
	}
	if _, err := d.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
