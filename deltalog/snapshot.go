package deltalog

import "strings"

// Snapshot is the materialized state at a given version: the live file
// set plus the latest Protocol and Metadata actions observed in replay
// order up to and including that version.
type Snapshot struct {
	// log is a non-owning back-reference to the DeltaLog this snapshot was
	// built from, for convenience queries (e.g. re-reading a version). It
	// must never be used to form an ownership cycle; Snapshot does not
	// keep the log alive.
	log *DeltaLog

	version  Version
	protocol *Protocol
	metadata *Metadata
	actions  []Action
	live     map[string]AddFile
}

// Version returns the version this snapshot was built at.
func (s *Snapshot) Version() Version { return s.version }

// Protocol returns the last Protocol action seen in replay, or nil if none
// was ever committed.
func (s *Snapshot) Protocol() *Protocol { return s.protocol }

// Metadata returns the last Metadata action seen in replay, or nil if none
// was ever committed.
func (s *Snapshot) Metadata() *Metadata { return s.metadata }

// Actions returns the full action sequence this snapshot replayed, in
// replay order.
func (s *Snapshot) Actions() []Action { return s.actions }

// AllFiles returns the live AddFile values. Iteration order is not
// guaranteed.
func (s *Snapshot) AllFiles() []AddFile {
	out := make([]AddFile, 0, len(s.live))
	for _, f := range s.live {
		out = append(out, f)
	}
	return out
}

// Files returns the live files matching predicate. An empty predicate is
// equivalent to AllFiles. A non-empty predicate is a simple substring
// match against the file path — a deliberate placeholder for a richer
// query language, not to be promoted beyond that.
func (s *Snapshot) Files(predicate string) []AddFile {
	if predicate == "" {
		return s.AllFiles()
	}
	out := make([]AddFile, 0)
	for path, f := range s.live {
		if strings.Contains(path, predicate) {
			out = append(out, f)
		}
	}
	return out
}

// snapshotBuilder accumulates a snapshot, optionally seeded from a prior
// snapshot's state (the checkpoint-forward replay path).
type snapshotBuilder struct {
	protocol *Protocol
	metadata *Metadata
	live     map[string]AddFile
	actions  []Action
}

func newSnapshotBuilder(seed *Snapshot) *snapshotBuilder {
	b := &snapshotBuilder{live: map[string]AddFile{}}
	if seed != nil {
		b.protocol = seed.protocol
		b.metadata = seed.metadata
		for k, v := range seed.live {
			b.live[k] = v
		}
		b.actions = append(b.actions, seed.actions...)
	}
	return b
}

// apply folds one action into the builder's running state, in the order
// the action appears within its version's commit file. Versions must be
// applied in ascending numeric order by the caller.
func (b *snapshotBuilder) apply(a Action) {
	b.actions = append(b.actions, a)
	switch v := a.(type) {
	case AddFile:
		b.live[v.Path] = v
	case RemoveFile:
		delete(b.live, v.Path)
	case Metadata:
		m := v
		b.metadata = &m
	case Protocol:
		p := v
		b.protocol = &p
	case CommitInfo:
		// CommitInfo never affects live state.
	}
}

func (b *snapshotBuilder) build(log *DeltaLog, version Version) *Snapshot {
	live := make(map[string]AddFile, len(b.live))
	for k, v := range b.live {
		live[k] = v
	}
	return &Snapshot{
		log:      log,
		version:  version,
		protocol: b.protocol,
		metadata: b.metadata,
		actions:  b.actions,
		live:     live,
	}
}

// replay deterministically folds actions (already in ascending-version,
// within-version serialized order) into a Snapshot at version, optionally
// starting from seed (the state after replaying a checkpoint).
func replay(log *DeltaLog, seed *Snapshot, actions []Action, version Version) *Snapshot {
	b := newSnapshotBuilder(seed)
	for _, a := range actions {
		b.apply(a)
	}
	return b.build(log, version)
}
