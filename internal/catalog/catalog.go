// Package catalog is a SQL-backed store of named RPN program text.
//
// Grounded on internal/database/db_manager.go's DBManager: same driver
// dispatch switch and sql.DB connection-pool tuning, narrowed from a
// registry of many named connections down to the one store a program
// catalog needs, and with a fixed schema instead of arbitrary
// caller-supplied queries.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // sqlserver
	_ "github.com/go-sql-driver/mysql"   // mysql
	_ "github.com/lib/pq"                // postgres
	_ "modernc.org/sqlite"               // sqlite, pure Go
)

// Catalog is a named-program text store backed by a SQL database.
type Catalog struct {
	db *sql.DB
}

// Open maps driver to the matching registered sql driver name and opens
// dsn, the same dispatch db_manager.go's Connect performs, pinned to a
// single connection pool rather than a registry of many.
func Open(driver, dsn string) (*Catalog, error) {
	var driverName string
	switch driver {
	case "sqlite", "sqlite3":
		driverName = "sqlite"
	case "postgres", "postgresql":
		driverName = "postgres"
	case "mysql":
		driverName = "mysql"
	case "sqlserver", "mssql":
		driverName = "sqlserver"
	default:
		return nil, fmt.Errorf("catalog: unsupported database type %q", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Catalog{db: db}, nil
}

// EnsureSchema creates the programs table if it does not already exist.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS programs (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("catalog: failed to ensure schema: %w", err)
	}
	return nil
}

// Save upserts the RPN source text for name. The upsert syntax and
// placeholder style below target sqlite/postgres; mysql/sqlserver
// deployments of this catalog would need their own dialect, the same
// single-dialect assumption db_manager.go's callers already make.
func (c *Catalog) Save(ctx context.Context, name, source string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO programs (name, source, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET source = excluded.source, updated_at = excluded.updated_at
	`, name, source, time.Now())
	if err != nil {
		return fmt.Errorf("catalog: failed to save %q: %w", name, err)
	}
	return nil
}

// Load returns the RPN source text saved under name.
func (c *Catalog) Load(ctx context.Context, name string) (string, error) {
	var source string
	err := c.db.QueryRowContext(ctx, `SELECT source FROM programs WHERE name = $1`, name).Scan(&source)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("catalog: no program named %q", name)
	}
	if err != nil {
		return "", fmt.Errorf("catalog: failed to load %q: %w", name, err)
	}
	return source, nil
}

// List returns every saved program name.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM programs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list programs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the underlying connection pool.
func (c *Catalog) Close() error {
	return c.db.Close()
}
