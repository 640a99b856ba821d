// Package emit provides event emission and observability for the log,
// checkpoint, and transaction subsystems.
package emit

// Event represents an observability event emitted during log or
// transaction activity.
//
// Events provide detailed insight into table behavior:
//   - Commits written and failed reads
//   - Checkpoints written
//   - Conflicts detected and retries attempted
//
// Events are emitted to an Emitter which can log to stdout/stderr, send to
// OpenTelemetry, or buffer for later inspection.
type Event struct {
	// Table identifies the table root this event concerns.
	Table string

	// Version is the commit version this event concerns. Zero for events
	// not tied to one version, such as "commit_retry".
	Version int64

	// Msg is a short, stable machine-readable event name, e.g.
	// "commit_written", "checkpoint_written", "commit_conflict",
	// "commit_retry".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys: "error", "actions", "attempt", "isolation".
	Meta map[string]interface{}
}
