package deltalog

import "github.com/deltalog/deltalog/emit"

// IsolationLevel is the conflict policy an OptimisticTransaction commits
// under.
type IsolationLevel int

const (
	// Serializable conflicts a committing transaction against both
	// concurrent adds and concurrent removes of files it read.
	Serializable IsolationLevel = iota
	// WriteSerializable conflicts only against concurrent removes; a
	// concurrent add alone never invalidates a read.
	WriteSerializable
)

func (l IsolationLevel) String() string {
	if l == WriteSerializable {
		return "WriteSerializable"
	}
	return "Serializable"
}

const (
	defaultCheckpointInterval = 10
	defaultMaxRetryCount      = 3
)

// config collects the options a DeltaLog (and the transactions it opens)
// are constructed with.
type config struct {
	checkpointInterval int
	maxRetryCount      int
	isolationLevel     IsolationLevel
	emitter            emit.Emitter
	metrics            *Metrics
}

func defaultConfig() config {
	return config{
		checkpointInterval: defaultCheckpointInterval,
		maxRetryCount:      defaultMaxRetryCount,
		isolationLevel:     Serializable,
		emitter:            emit.Null(),
	}
}

// Option configures a DeltaLog at construction time, following the
// functional-options style used throughout this codebase.
type Option func(*config)

// WithCheckpointInterval overrides the default checkpoint interval (10).
func WithCheckpointInterval(n int) Option {
	return func(c *config) { c.checkpointInterval = n }
}

// WithMaxRetryCount overrides the default number of optimistic-commit
// retry attempts (3).
func WithMaxRetryCount(n int) Option {
	return func(c *config) { c.maxRetryCount = n }
}

// WithIsolationLevel overrides the default isolation level (Serializable)
// new OptimisticTransactions are opened with.
func WithIsolationLevel(l IsolationLevel) Option {
	return func(c *config) { c.isolationLevel = l }
}

// WithEmitter attaches an observability emitter. Defaults to a no-op
// emitter when unset.
func WithEmitter(e emit.Emitter) Option {
	return func(c *config) { c.emitter = e }
}

// WithMetrics attaches a Prometheus metrics recorder. Unset means metrics
// are not collected.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}
