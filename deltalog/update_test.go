package deltalog

import (
	"context"
	"testing"
)

func TestSnapshotAt_HistoricalReplay(t *testing.T) {
	ctx := context.Background()
	d := Open(t.TempDir())

	if _, err := d.Write(ctx, []Action{AddFile{Path: "a.parquet", DataChange: true}}); err != nil {
		t.Fatalf("Write v0 failed: %v", err)
	}
	if _, err := d.Write(ctx, []Action{AddFile{Path: "b.parquet", DataChange: true}}); err != nil {
		t.Fatalf("Write v1 failed: %v", err)
	}

	snapAt0, err := d.SnapshotAt(ctx, 0)
	if err != nil {
		t.Fatalf("SnapshotAt(0) failed: %v", err)
	}
	if len(snapAt0.AllFiles()) != 1 {
		t.Errorf("expected 1 live file at version 0, got %d", len(snapAt0.AllFiles()))
	}

	snapAt1, err := d.SnapshotAt(ctx, 1)
	if err != nil {
		t.Fatalf("SnapshotAt(1) failed: %v", err)
	}
	if len(snapAt1.AllFiles()) != 2 {
		t.Errorf("expected 2 live files at version 1, got %d", len(snapAt1.AllFiles()))
	}
}

func TestSnapshotAt_NegativeVersionIsEmptyTable(t *testing.T) {
	d := Open(t.TempDir())
	snap, err := d.SnapshotAt(context.Background(), -1)
	if err != nil {
		t.Fatalf("SnapshotAt(-1) failed: %v", err)
	}
	if snap.Version() != noVersion {
		t.Errorf("expected version %d, got %d", noVersion, snap.Version())
	}
}

func TestCachedSnapshot_NilBeforeFirstUpdate(t *testing.T) {
	d := Open(t.TempDir())
	if d.CachedSnapshot() != nil {
		t.Error("expected CachedSnapshot to be nil before the first Update call")
	}
}

func TestCachedSnapshot_PopulatedAfterUpdate(t *testing.T) {
	ctx := context.Background()
	d := Open(t.TempDir())
	if _, err := d.Write(ctx, []Action{AddFile{Path: "a.parquet", DataChange: true}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := d.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if d.CachedSnapshot() == nil {
		t.Error("expected CachedSnapshot to be populated after Update")
	}
}
