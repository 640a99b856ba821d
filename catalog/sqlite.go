package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCatalog is a SQLite-backed Catalog, suitable for a single process
// that wants its table registry to survive restarts without standing up a
// server. Uses the pure-Go modernc.org/sqlite driver, so no cgo toolchain
// is required.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens (creating if necessary) a SQLite database at path
// and ensures the catalog schema exists. path may be ":memory:" for a
// process-local database with no file.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: enabling WAL mode: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: pinging sqlite database: %w", err)
	}

	c := &SQLiteCatalog{db: db}
	if err := c.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCatalog) createTables(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS tables (
			name               TEXT PRIMARY KEY,
			root_path          TEXT NOT NULL,
			last_known_version INTEGER NOT NULL,
			updated_at         TIMESTAMP NOT NULL
		)
	`
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("catalog: creating tables schema: %w", err)
	}
	return nil
}

// Register implements Catalog.
func (c *SQLiteCatalog) Register(ctx context.Context, name, rootPath string, version int64) error {
	const stmt = `
		INSERT INTO tables (name, root_path, last_known_version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			root_path = excluded.root_path,
			last_known_version = excluded.last_known_version,
			updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, stmt, name, rootPath, version, time.Now()); err != nil {
		return fmt.Errorf("catalog: registering %q: %w", name, err)
	}
	return nil
}

// Lookup implements Catalog.
func (c *SQLiteCatalog) Lookup(ctx context.Context, name string) (Entry, error) {
	const query = `SELECT name, root_path, last_known_version, updated_at FROM tables WHERE name = ?`
	var e Entry
	err := c.db.QueryRowContext(ctx, query, name).Scan(&e.Name, &e.RootPath, &e.LastKnownVersion, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: looking up %q: %w", name, err)
	}
	return e, nil
}

// List implements Catalog.
func (c *SQLiteCatalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, root_path, last_known_version, updated_at FROM tables`)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing tables: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.RootPath, &e.LastKnownVersion, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scanning row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterating rows: %w", err)
	}
	return out, nil
}

// Forget implements Catalog.
func (c *SQLiteCatalog) Forget(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM tables WHERE name = ?`, name); err != nil {
		return fmt.Errorf("catalog: forgetting %q: %w", name, err)
	}
	return nil
}

// Close implements Catalog.
func (c *SQLiteCatalog) Close() error { return c.db.Close() }
