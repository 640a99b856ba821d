// Package catalog provides an optional, pluggable table registry mapping a
// logical table name to its root directory and last known version.
//
// The catalog is never authoritative over table state — the transaction
// log on disk always is. It is a discovery and acceleration index: a
// process managing many tables can look a name up here instead of probing
// the filesystem, and can rebuild the whole index by rescanning roots it
// knows about.
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested table name has no catalog entry.
var ErrNotFound = errors.New("catalog: table not found")

// Entry is one catalog row: a logical table name, its root directory, and
// the last version the catalog observed for it.
type Entry struct {
	Name             string
	RootPath         string
	LastKnownVersion int64
	UpdatedAt        time.Time
}

// Catalog registers and resolves table names. Implementations must be
// safe for concurrent use.
type Catalog interface {
	// Register upserts an entry for name, recording rootPath and version.
	Register(ctx context.Context, name, rootPath string, version int64) error

	// Lookup returns the entry for name, or ErrNotFound if none exists.
	Lookup(ctx context.Context, name string) (Entry, error)

	// List returns every registered entry, in no particular order.
	List(ctx context.Context) ([]Entry, error)

	// Forget removes name from the catalog. A no-op if absent.
	Forget(ctx context.Context, name string) error

	// Close releases any resources held by the catalog (connections,
	// file handles). A no-op for backends that hold none.
	Close() error
}
