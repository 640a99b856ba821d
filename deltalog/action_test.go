package deltalog

import (
	"reflect"
	"testing"
)

func TestSerializeAction_TypeFieldFirst(t *testing.T) {
	line, err := serializeAction(AddFile{Path: "part-0001.parquet", Size: 100, DataChange: true})
	if err != nil {
		t.Fatalf("serializeAction failed: %v", err)
	}
	want := `{"type":"add"`
	if len(line) < len(want) || string(line[:len(want)]) != want {
		t.Errorf("expected line to start with %q, got %q", want, line)
	}
}

func TestParseAction_RoundTrip(t *testing.T) {
	cases := []Action{
		// Minimal: only a couple of fields set, rest at their zero value.
		Protocol{MinReaderVersion: 1, MinWriterVersion: 2},
		Metadata{ID: "table-1", Name: "orders"},
		AddFile{Path: "a.parquet", Size: 10, DataChange: true},
		RemoveFile{Path: "a.parquet", DataChange: true},
		CommitInfo{Operation: "WRITE", CommitVersion: 3},
		// Fully populated, every field set including non-empty maps/slices.
		Protocol{
			MinReaderVersion: 3,
			MinWriterVersion: 7,
			ReaderFeatures:   []string{"columnMapping", "deletionVectors"},
			WriterFeatures:   []string{"appendOnly"},
		},
		Metadata{
			ID:               "table-2",
			Name:             "events",
			Description:      "raw event stream",
			Format:           "parquet",
			Configuration:    map[string]string{"delta.appendOnly": "true"},
			PartitionColumns: map[string]string{"date": "string"},
			CreatedTime:      1700000000000,
		},
		AddFile{
			Path:             "part-0002.parquet",
			PartitionValues:  map[string]string{"date": "2024-01-01"},
			Size:             2048,
			ModificationTime: 1700000000001,
			DataChange:       false,
			Stats:            map[string]string{"numRecords": "100"},
			Tags:             "source=ingest",
		},
		RemoveFile{
			Path:              "part-0001.parquet",
			DeletionTimestamp: 1700000000002,
			DataChange:        false,
			PartitionValues:   map[string]string{"date": "2023-12-31"},
			Size:              1024,
		},
		CommitInfo{
			Version:             "3",
			Timestamp:           1700000000003,
			Operation:           "MERGE",
			OperationParameters: map[string]string{"predicate": "id = 1"},
			CommitVersion:       3,
		},
		// Empty-but-non-nil maps, as the deserializer's defaults produce.
		Protocol{ReaderFeatures: []string{}, WriterFeatures: []string{}},
		Metadata{Configuration: map[string]string{}, PartitionColumns: map[string]string{}},
		AddFile{PartitionValues: map[string]string{}, Stats: map[string]string{}, DataChange: true},
		RemoveFile{PartitionValues: map[string]string{}, DataChange: true},
		CommitInfo{OperationParameters: map[string]string{}},
	}
	for i, orig := range cases {
		line, err := serializeAction(orig)
		if err != nil {
			t.Fatalf("case %d: serializeAction(%T) failed: %v", i, orig, err)
		}
		parsed, err := parseAction(line)
		if err != nil {
			t.Fatalf("case %d: parseAction(%q) failed: %v", i, line, err)
		}
		if parsed.Type() != orig.Type() {
			t.Errorf("case %d: expected type %q, got %q", i, orig.Type(), parsed.Type())
		}
		if !reflect.DeepEqual(parsed, orig) {
			t.Errorf("case %d: round-trip mismatch for %T:\n  orig:   %+v\n  parsed: %+v", i, orig, orig, parsed)
		}
	}
}

func TestParseAction_DefaultsApplied(t *testing.T) {
	parsed, err := parseAction([]byte(`{"type":"add","path":"a.parquet"}`))
	if err != nil {
		t.Fatalf("parseAction failed: %v", err)
	}
	add, ok := parsed.(AddFile)
	if !ok {
		t.Fatalf("expected AddFile, got %T", parsed)
	}
	if !add.DataChange {
		t.Error("expected DataChange to default to true")
	}
	if add.PartitionValues == nil {
		t.Error("expected PartitionValues to default to empty map, got nil")
	}
}

func TestParseAction_MissingType(t *testing.T) {
	_, err := parseAction([]byte(`{"path":"a.parquet"}`))
	if err == nil {
		t.Fatal("expected error for missing type field")
	}
	if _, ok := err.(*CorruptLogError); !ok {
		t.Errorf("expected *CorruptLogError, got %T", err)
	}
}

func TestParseAction_UnknownType(t *testing.T) {
	_, err := parseAction([]byte(`{"type":"bogus"}`))
	if err == nil {
		t.Fatal("expected error for unknown type field")
	}
	if _, ok := err.(*CorruptLogError); !ok {
		t.Errorf("expected *CorruptLogError, got %T", err)
	}
}
