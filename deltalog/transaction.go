package deltalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/deltalog/deltalog/emit"
)

// Transaction is a single-writer, append-only staging area for actions
// that will become one commit. It performs no conflict detection; use
// OptimisticTransaction when concurrent writers are possible.
type Transaction struct {
	log       *DeltaLog
	appID     string
	actions   []Action
	committed atomic.Bool
}

// NewTransaction begins a plain transaction against log, generating a
// random appId available through AppID. The appId is not written into the
// log.
func NewTransaction(log *DeltaLog) *Transaction {
	return &Transaction{log: log, appID: uuid.NewString()}
}

// AppID returns the transaction's generated application identifier.
func (t *Transaction) AppID() string { return t.appID }

// AddAction stages a to be written on Commit. Fails with
// InvalidStateError if the transaction already committed.
func (t *Transaction) AddAction(a Action) error {
	if t.committed.Load() {
		return newInvalidStateError("cannot add action to a committed transaction")
	}
	t.actions = append(t.actions, a)
	return nil
}

// Commit writes the staged actions as the table's next version and marks
// the transaction committed. The first commit of a new table lands at
// version 0. Fails with InvalidStateError if already committed.
func (t *Transaction) Commit(ctx context.Context) (Version, error) {
	if t.committed.Load() {
		return noVersion, newInvalidStateError("transaction already committed")
	}
	v, err := t.log.Write(ctx, t.actions)
	if err != nil {
		return noVersion, err
	}
	t.committed.Store(true)
	return v, nil
}

// OptimisticTransaction extends Transaction with read-set tracking and
// conflict detection against commits interleaved since its read version.
type OptimisticTransaction struct {
	Transaction

	isolationLevel IsolationLevel
	readVersion    Version
	readPredicates map[string]struct{}
	newMetadata    map[string]string
	maxRetryCount  int
}

// TxOption configures an OptimisticTransaction at construction time.
type TxOption func(*OptimisticTransaction)

// WithTxIsolationLevel overrides the log's default isolation level for
// this transaction only.
func WithTxIsolationLevel(l IsolationLevel) TxOption {
	return func(ot *OptimisticTransaction) { ot.isolationLevel = l }
}

// NewOptimisticTransaction begins an optimistic transaction against log,
// capturing the table's current latest version as its read version.
func NewOptimisticTransaction(ctx context.Context, log *DeltaLog, opts ...TxOption) (*OptimisticTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, newIoError("transaction start interrupted", ErrInterrupted)
	}
	latest, err := log.LatestVersion()
	if err != nil {
		return nil, err
	}
	ot := &OptimisticTransaction{
		Transaction:    *NewTransaction(log),
		isolationLevel: log.isolationLevel,
		readVersion:    latest,
		readPredicates: map[string]struct{}{},
		newMetadata:    map[string]string{},
		maxRetryCount:  log.maxRetryCount,
	}
	for _, opt := range opts {
		opt(ot)
	}
	return ot, nil
}

// ReadFile records that path was read, so a concurrent add or remove of it
// invalidates this transaction's read set.
func (ot *OptimisticTransaction) ReadFile(path string) {
	ot.readPredicates["file:"+path] = struct{}{}
}

// ReadMetadata records that metadata key was read, so a concurrent update
// to it invalidates this transaction's read set.
func (ot *OptimisticTransaction) ReadMetadata(key string) {
	ot.readPredicates["metadata:"+key] = struct{}{}
}

// UpdateMetadata stages a metadata key/value pair to be written as part of
// this transaction's commit.
func (ot *OptimisticTransaction) UpdateMetadata(key, value string) {
	ot.newMetadata[key] = value
}

// Commit runs the conflict check and the write under a single critical
// section on the log's lock, closing the TOCTOU gap between re-reading
// latestVersion and writing the new commit. On success it returns the
// committed version; on a detected conflict it returns
// ConcurrentModificationError without retrying — use CommitWithRetry for
// automatic retry.
func (ot *OptimisticTransaction) Commit(ctx context.Context, op string) (Version, error) {
	if ot.committed.Load() {
		return noVersion, newInvalidStateError("transaction already committed")
	}
	if err := ctx.Err(); err != nil {
		return noVersion, newIoError("commit interrupted", ErrInterrupted)
	}

	log := ot.log
	log.mu.Lock()
	defer log.mu.Unlock()

	current, err := log.LatestVersion()
	if err != nil {
		return noVersion, err
	}

	if ot.readVersion >= 0 && current != ot.readVersion {
		if cerr := ot.checkConflicts(current); cerr != nil {
			if log.metrics != nil {
				log.metrics.ObserveConflict(log.root, ot.isolationLevel)
			}
			if log.emitter != nil {
				log.emitter.Emit(emit.Event{
					Table: log.root, Version: current, Msg: "commit_conflict",
					Meta: map[string]any{"error": cerr.Error(), "isolation": ot.isolationLevel.String()},
				})
			}
			return noVersion, cerr
		}
	}

	v := current + 1
	ot.actions = append(ot.actions, CommitInfo{
		Operation:     op,
		Timestamp:     time.Now().UnixMilli(),
		CommitVersion: v,
		OperationParameters: map[string]string{
			"isolationLevel": ot.isolationLevel.String(),
			"startVersion":   fmt.Sprintf("%d", ot.readVersion),
		},
	})

	if err := log.write(ctx, v, ot.actions); err != nil {
		return noVersion, err
	}
	ot.committed.Store(true)
	return v, nil
}

// checkConflicts replays versions (readVersion, current] and classifies
// each action against this transaction's read set and pending metadata
// writes, per the isolation rules in spec §4.5.2.
func (ot *OptimisticTransaction) checkConflicts(current Version) error {
	for v := ot.readVersion + 1; v <= current; v++ {
		actions, err := ot.log.readVersion(v)
		if err != nil {
			return err
		}
		for _, a := range actions {
			switch act := a.(type) {
			case AddFile:
				if ot.isolationLevel != WriteSerializable {
					if _, ok := ot.readPredicates["file:"+act.Path]; ok {
						return newConcurrentModificationError(
							fmt.Sprintf("file %q was added by a concurrent commit at version %d", act.Path, v), nil)
					}
				}
			case RemoveFile:
				if _, ok := ot.readPredicates["file:"+act.Path]; ok {
					return newConcurrentModificationError(
						fmt.Sprintf("file %q was removed by a concurrent commit at version %d", act.Path, v), nil)
				}
			case Metadata:
				for k := range ot.newMetadata {
					if _, ok := ot.readPredicates["metadata:"+k]; ok {
						return newConcurrentModificationError(
							fmt.Sprintf("metadata key %q was changed by a concurrent commit at version %d", k, v), nil)
					}
				}
			}
		}
	}
	return nil
}

// CommitWithRetry builds a fresh OptimisticTransaction against log on
// every attempt, lets fn stage actions and reads against it, and commits
// under op. On ConcurrentModificationError it waits with exponential
// backoff (computeBackoff) and tries again, recapturing a new read
// version each time, up to log's configured maxRetryCount attempts
// total. After exhaustion the last conflict is surfaced wrapped in an
// IoError. A cancelled ctx surfaces IoError(interrupted) whether the
// cancellation lands during backoff or during an attempt.
func CommitWithRetry(ctx context.Context, log *DeltaLog, op string, fn func(tx *OptimisticTransaction) error) (Version, error) {
	var lastErr error
	for attempt := 0; attempt < log.maxRetryCount; attempt++ {
		if attempt > 0 {
			if log.metrics != nil {
				log.metrics.ObserveRetry(log.root)
			}
			if log.emitter != nil {
				log.emitter.Emit(emit.Event{Table: log.root, Msg: "commit_retry", Meta: map[string]any{"attempt": attempt}})
			}
			delay := computeBackoff(attempt, baseBackoff, maxBackoff, nil)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return noVersion, newIoError("retry backoff interrupted", ErrInterrupted)
			}
		}

		tx, err := NewOptimisticTransaction(ctx, log)
		if err != nil {
			return noVersion, err
		}
		if err := fn(tx); err != nil {
			return noVersion, err
		}
		v, err := tx.Commit(ctx, op)
		if err == nil {
			return v, nil
		}
		var cme *ConcurrentModificationError
		if !errors.As(err, &cme) {
			return noVersion, err
		}
		lastErr = err
	}
	return noVersion, newIoError(fmt.Sprintf("exhausted %d retry attempts", log.maxRetryCount), lastErr)
}
