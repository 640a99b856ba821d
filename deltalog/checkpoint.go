package deltalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/deltalog/deltalog/emit"
)

// CheckpointMetadata is the contents of the _last_checkpoint pointer file:
// the version it describes, the number of actions it contains, and an
// unused multi-part indicator kept for wire compatibility with the
// upstream format this log borrows its file layout from.
type CheckpointMetadata struct {
	Version Version `json:"version"`
	Size    int64   `json:"size"`
	Parts   *int32  `json:"parts"`
}

// actionRecord is the single-schema row wrapping one serialized action
// inside a checkpoint's Parquet container. Storing the canonical text
// alongside its discriminant means the checkpoint writer never needs to
// speak every action variant's own columnar layout.
type actionRecord struct {
	ActionType string `parquet:"action_type"`
	ActionJSON string `parquet:"action_json"`
}

// ShouldCheckpoint reports whether committing version v should trigger a
// checkpoint, given interval. Checkpoints land at version 0 and every
// multiple of interval thereafter.
func ShouldCheckpoint(v Version, interval int) bool {
	if v < 0 {
		return false
	}
	if v == 0 {
		return true
	}
	return interval > 0 && v%int64(interval) == 0
}

// WriteCheckpoint writes a binary checkpoint of snapshot's full action list
// and updates the _last_checkpoint pointer, under the log's lock. It
// returns the checkpointed version.
func (d *DeltaLog) WriteCheckpoint(ctx context.Context, snapshot *Snapshot) (Version, error) {
	if snapshot.Version() < 0 {
		return noVersion, newInvalidArgumentError("cannot checkpoint a snapshot with negative version")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeCheckpointLocked(ctx, snapshot)
}

func (d *DeltaLog) writeCheckpointLocked(ctx context.Context, snapshot *Snapshot) (Version, error) {
	if err := ctx.Err(); err != nil {
		return noVersion, newIoError("checkpoint interrupted", ErrInterrupted)
	}
	if err := os.MkdirAll(d.logDir(), 0o755); err != nil {
		return noVersion, newIoError("creating log directory", err)
	}

	records := make([]actionRecord, 0, len(snapshot.Actions()))
	for _, a := range snapshot.Actions() {
		line, err := serializeAction(a)
		if err != nil {
			return noVersion, newIoError("serializing action for checkpoint", err)
		}
		records = append(records, actionRecord{ActionType: a.Type(), ActionJSON: string(line)})
	}

	final := d.checkpointPath(snapshot.Version())
	tmp := final + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return noVersion, newIoError("creating temp checkpoint file", err)
	}
	writer := parquet.NewGenericWriter[actionRecord](f, parquet.Compression(&parquet.Snappy))
	if _, err := writer.Write(records); err != nil {
		writer.Close()
		f.Close()
		os.Remove(tmp)
		return noVersion, newIoError("writing checkpoint rows", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return noVersion, newIoError("closing checkpoint writer", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return noVersion, newIoError("closing temp checkpoint file", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return noVersion, newIoError("publishing checkpoint file", err)
	}

	meta := CheckpointMetadata{Version: snapshot.Version(), Size: int64(len(records))}
	if err := d.writeLastCheckpointLocked(meta); err != nil {
		return noVersion, err
	}

	if d.emitter != nil {
		d.emitter.Emit(emit.Event{Table: d.root, Version: snapshot.Version(), Msg: "checkpoint_written", Meta: map[string]any{"actions": len(records)}})
	}
	if d.metrics != nil {
		d.metrics.ObserveCheckpoint(d.root, snapshot.Version())
	}
	return snapshot.Version(), nil
}

func (d *DeltaLog) writeLastCheckpointLocked(meta CheckpointMetadata) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return newIoError("marshaling _last_checkpoint", err)
	}
	final := d.lastCheckpointPath()
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return newIoError("writing temp _last_checkpoint", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return newIoError("publishing _last_checkpoint", err)
	}
	return nil
}

// FindLatestCheckpoint reads the _last_checkpoint pointer. A missing
// pointer file yields (nil, nil); a malformed one yields CorruptLogError.
func (d *DeltaLog) FindLatestCheckpoint() (*CheckpointMetadata, error) {
	body, err := os.ReadFile(d.lastCheckpointPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, newIoError("reading _last_checkpoint", err)
	}
	var meta CheckpointMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, newCorruptLogError("parsing _last_checkpoint", err)
	}
	return &meta, nil
}

// ReadCheckpoint reads every action out of the checkpoint file for
// version v, in the order they were written.
func (d *DeltaLog) ReadCheckpoint(ctx context.Context, v Version) ([]Action, error) {
	f, err := os.Open(d.checkpointPath(v))
	if err != nil {
		return nil, newIoError(fmt.Sprintf("opening checkpoint %d", v), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, newIoError(fmt.Sprintf("stat checkpoint %d", v), err)
	}
	reader := parquet.NewGenericReader[actionRecord](f, info.Size())
	defer reader.Close()

	actions := make([]Action, 0, reader.NumRows())
	buf := make([]actionRecord, 1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, newIoError("checkpoint read interrupted", ErrInterrupted)
		}
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			a, perr := parseAction([]byte(buf[i].ActionJSON))
			if perr != nil {
				return nil, perr
			}
			actions = append(actions, a)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newIoError(fmt.Sprintf("reading checkpoint %d", v), err)
		}
	}
	return actions, nil
}
