// Package deltalog implements a versioned, append-only transaction log with
// optimistic concurrency control and periodic checkpoints over a local
// hierarchical filesystem.
package deltalog

import "errors"

// ErrInvalidState is returned when an operation is attempted against a
// Transaction that has already left the staging state by committing.
var ErrInvalidState = errors.New("transaction already committed or aborted")

// ErrInterrupted is returned when a retry backoff sleep is cancelled via
// context before it completes.
var ErrInterrupted = errors.New("interrupted while waiting to retry")

// ErrTableDoesNotExist names the condition of a table root that was never
// committed to (latestVersion == -1). No operation in this package returns
// it: an empty table is reported as version -1 and an empty snapshot.
var ErrTableDoesNotExist = errors.New("table does not exist")

// IoError wraps a failure from the underlying filesystem, or an interrupted
// retry wait. It is always retryable at the caller's discretion.
type IoError struct {
	Message string
	Cause   error
}

func (e *IoError) Error() string {
	if e.Cause != nil {
		return "io error: " + e.Message + ": " + e.Cause.Error()
	}
	return "io error: " + e.Message
}

func (e *IoError) Unwrap() error { return e.Cause }

func newIoError(message string, cause error) *IoError {
	return &IoError{Message: message, Cause: cause}
}

// CorruptLogError indicates an unparseable action line, a malformed
// _last_checkpoint pointer, or an unknown action discriminant. Never
// retryable.
type CorruptLogError struct {
	Message string
	Cause   error
}

func (e *CorruptLogError) Error() string {
	if e.Cause != nil {
		return "corrupt log: " + e.Message + ": " + e.Cause.Error()
	}
	return "corrupt log: " + e.Message
}

func (e *CorruptLogError) Unwrap() error { return e.Cause }

func newCorruptLogError(message string, cause error) *CorruptLogError {
	return &CorruptLogError{Message: message, Cause: cause}
}

// InvalidArgumentError indicates a caller bug, such as checkpointing a
// snapshot with a negative version.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Message
}

func newInvalidArgumentError(message string) *InvalidArgumentError {
	return &InvalidArgumentError{Message: message}
}

// InvalidStateError indicates a caller bug against a Transaction's state
// machine: adding an action or committing a transaction that has already
// committed.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Message
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

func newInvalidStateError(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

// ConcurrentModificationError indicates that a concurrent commit invalidated
// an OptimisticTransaction's read set. Retryable via CommitWithRetry; after
// maxRetryCount attempts it is surfaced wrapped in an IoError.
type ConcurrentModificationError struct {
	Message string
	Cause   error
}

func (e *ConcurrentModificationError) Error() string {
	if e.Cause != nil {
		return "concurrent modification: " + e.Message + ": " + e.Cause.Error()
	}
	return "concurrent modification: " + e.Message
}

func (e *ConcurrentModificationError) Unwrap() error { return e.Cause }

func newConcurrentModificationError(message string, cause error) *ConcurrentModificationError {
	return &ConcurrentModificationError{Message: message, Cause: cause}
}
