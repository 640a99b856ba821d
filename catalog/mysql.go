package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLCatalog is a MySQL/MariaDB-backed Catalog for a process that shares
// its table registry with other processes or wants it to survive restarts
// independent of any local disk.
//
// DSN format: [username[:password]@][protocol[(address)]]/dbname[?params].
type MySQLCatalog struct {
	db *sql.DB
}

// NewMySQLCatalog opens a connection pool against dsn and ensures the
// catalog schema exists.
func NewMySQLCatalog(dsn string) (*MySQLCatalog, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening mysql connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: pinging mysql: %w", err)
	}

	c := &MySQLCatalog{db: db}
	if err := c.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *MySQLCatalog) createTables(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS tables (
			name               VARCHAR(255) PRIMARY KEY,
			root_path          VARCHAR(1024) NOT NULL,
			last_known_version BIGINT NOT NULL,
			updated_at         TIMESTAMP NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("catalog: creating tables schema: %w", err)
	}
	return nil
}

// Register implements Catalog.
func (c *MySQLCatalog) Register(ctx context.Context, name, rootPath string, version int64) error {
	const stmt = `
		INSERT INTO tables (name, root_path, last_known_version, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			root_path = VALUES(root_path),
			last_known_version = VALUES(last_known_version),
			updated_at = VALUES(updated_at)
	`
	if _, err := c.db.ExecContext(ctx, stmt, name, rootPath, version, time.Now()); err != nil {
		return fmt.Errorf("catalog: registering %q: %w", name, err)
	}
	return nil
}

// Lookup implements Catalog.
func (c *MySQLCatalog) Lookup(ctx context.Context, name string) (Entry, error) {
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
func (c *MySQLCatalog) List(ctx context.Context) ([]Entry, error) {
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
func (c *MySQLCatalog) Forget(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM tables WHERE name = ?`, name); err != nil {
		return fmt.Errorf("catalog: forgetting %q: %w", name, err)
	}
	return nil
}

// Close implements Catalog.
func (c *MySQLCatalog) Close() error { return c.db.Close() }
