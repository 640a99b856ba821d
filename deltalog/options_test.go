package deltalog

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIsolationLevel_String(t *testing.T) {
	if got := Serializable.String(); got != "Serializable" {
		t.Errorf("expected 'Serializable', got %q", got)
	}
	if got := WriteSerializable.String(); got != "WriteSerializable" {
		t.Errorf("expected 'WriteSerializable', got %q", got)
	}
}

func TestOptions_Defaults(t *testing.T) {
	d := Open(t.TempDir())
	if d.checkpointInterval != defaultCheckpointInterval {
		t.Errorf("expected default checkpoint interval %d, got %d", defaultCheckpointInterval, d.checkpointInterval)
	}
	if d.maxRetryCount != defaultMaxRetryCount {
		t.Errorf("expected default max retry count %d, got %d", defaultMaxRetryCount, d.maxRetryCount)
	}
	if d.isolationLevel != Serializable {
		t.Errorf("expected default isolation level Serializable, got %v", d.isolationLevel)
	}
}

func TestOptions_Overrides(t *testing.T) {
	d := Open(t.TempDir(),
		WithCheckpointInterval(5),
		WithMaxRetryCount(10),
		WithIsolationLevel(WriteSerializable),
	)
	if d.checkpointInterval != 5 {
		t.Errorf("expected checkpoint interval 5, got %d", d.checkpointInterval)
	}
	if d.maxRetryCount != 10 {
		t.Errorf("expected max retry count 10, got %d", d.maxRetryCount)
	}
	if d.isolationLevel != WriteSerializable {
		t.Errorf("expected isolation level WriteSerializable, got %v", d.isolationLevel)
	}
}

func TestOptions_WithMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	d := Open(t.TempDir(), WithMetrics(m))
	if d.metrics != m {
		t.Error("expected WithMetrics to attach the given metrics recorder")
	}
}
