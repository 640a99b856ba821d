package deltalog

import "context"

// Update refreshes and returns the log's cached snapshot: it resolves the
// latest checkpoint (if any), replays the checkpoint's actions, then
// replays every committed version strictly greater than the checkpoint's
// version up through the table's latest version. With no checkpoint it
// replays from version 0. An empty table (no commits) yields a Snapshot at
// version -1 with no live files.
func (d *DeltaLog) Update(ctx context.Context) (*Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updateLocked(ctx)
}

func (d *DeltaLog) updateLocked(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, newIoError("update interrupted", ErrInterrupted)
	}
	latest, err := d.LatestVersion()
	if err != nil {
		return nil, err
	}
	if latest < 0 {
		snap := newSnapshotBuilder(nil).build(d, noVersion)
		d.snapshot = snap
		return snap, nil
	}

	var seed *Snapshot
	from := Version(0)
	checkpointMeta, err := d.FindLatestCheckpoint()
	if err != nil {
		return nil, err
	}
	if checkpointMeta != nil {
		actions, err := d.ReadCheckpoint(ctx, checkpointMeta.Version)
		if err != nil {
			return nil, err
		}
		seed = replay(d, nil, actions, checkpointMeta.Version)
		from = checkpointMeta.Version + 1
	}

	var tail []Action
	for v := from; v <= latest; v++ {
		if err := ctx.Err(); err != nil {
			return nil, newIoError("update interrupted", ErrInterrupted)
		}
		actions, err := d.readVersion(v)
		if err != nil {
			return nil, err
		}
		tail = append(tail, actions...)
	}
	snap := replay(d, seed, tail, latest)
	d.snapshot = snap
	return snap, nil
}

// SnapshotAt returns the snapshot obtained by replaying every version from
// 0 through v (inclusive), ignoring any checkpoint beyond v. It is used to
// answer historical queries such as "what was live at version 1". For
// repeated historical lookups prefer Update()+forward replay, since this
// always replays from the beginning.
func (d *DeltaLog) SnapshotAt(ctx context.Context, v Version) (*Snapshot, error) {
	if v < 0 {
		return newSnapshotBuilder(nil).build(d, noVersion), nil
	}
	var actions []Action
	for version := Version(0); version <= v; version++ {
		if err := ctx.Err(); err != nil {
			return nil, newIoError("snapshot interrupted", ErrInterrupted)
		}
		a, err := d.readVersion(version)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a...)
	}
	return replay(d, nil, actions, v), nil
}

// CachedSnapshot returns the snapshot last produced by Update, or nil if
// Update has never been called on this handle.
func (d *DeltaLog) CachedSnapshot() *Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}
