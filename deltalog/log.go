package deltalog

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/deltalog/deltalog/emit"
)

const (
	logDirName           = "_delta_log"
	lastCheckpointName   = "_last_checkpoint"
	versionFileDigits    = 20
	commitFileSuffix     = ".json"
	checkpointFileSuffix = ".checkpoint.parquet"
)

var commitFilePattern = regexp.MustCompile(`^(\d{20})\.json$`)

// Version is a signed 64-bit commit sequence number. -1 denotes a table
// with no commits.
type Version = int64

// noVersion is the sentinel returned by LatestVersion for an empty table.
const noVersion Version = -1

// DeltaLog is a handle to a single table's transaction log on disk. All
// commit, checkpoint, and conflict-resolution operations for a table funnel
// through one DeltaLog, whose mutex is the sole in-process serialization
// point described in spec §5.
type DeltaLog struct {
	root string

	mu sync.Mutex

	checkpointInterval int
	maxRetryCount      int
	isolationLevel     IsolationLevel
	emitter            emit.Emitter
	metrics            *Metrics

	// snapshot caches the last replayed state, refreshed under mu by
	// Update. It is mutable cache, never authoritative.
	snapshot *Snapshot
}

// Open returns a handle to the table rooted at root. It does not touch the
// filesystem; the log directory is created lazily on first write.
func Open(root string, opts ...Option) *DeltaLog {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DeltaLog{
		root:               root,
		checkpointInterval: cfg.checkpointInterval,
		maxRetryCount:      cfg.maxRetryCount,
		isolationLevel:     cfg.isolationLevel,
		emitter:            cfg.emitter,
		metrics:            cfg.metrics,
	}
}

// Root returns the table's root directory.
func (d *DeltaLog) Root() string { return d.root }

func (d *DeltaLog) logDir() string {
	return filepath.Join(d.root, logDirName)
}

func (d *DeltaLog) commitPath(v Version) string {
	return filepath.Join(d.logDir(), fmt.Sprintf("%0*d%s", versionFileDigits, v, commitFileSuffix))
}

func (d *DeltaLog) checkpointPath(v Version) string {
	return filepath.Join(d.logDir(), fmt.Sprintf("%0*d%s", versionFileDigits, v, checkpointFileSuffix))
}

func (d *DeltaLog) lastCheckpointPath() string {
	return filepath.Join(d.logDir(), lastCheckpointName)
}

// TableExists reports whether the log directory exists and contains at
// least one commit file.
func (d *DeltaLog) TableExists() bool {
	versions, err := d.listVersions()
	return err == nil && len(versions) > 0
}

// listVersions scans the log directory for commit files and returns their
// version numbers in ascending order. A missing log directory yields an
// empty, non-error result.
func (d *DeltaLog) listVersions() ([]Version, error) {
	entries, err := os.ReadDir(d.logDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, newIoError("listing log directory", err)
	}
	versions := make([]Version, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := commitFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// LatestVersion returns the highest committed version, or -1 if the table
// has no commits.
func (d *DeltaLog) LatestVersion() (Version, error) {
	versions, err := d.listVersions()
	if err != nil {
		return noVersion, err
	}
	if len(versions) == 0 {
		return noVersion, nil
	}
	return versions[len(versions)-1], nil
}

// readVersion reads and parses the commit file for v. A missing file
// yields an empty, non-error action list, so tolerant scans over a
// contiguous range can skip gaps.
func (d *DeltaLog) readVersion(v Version) ([]Action, error) {
	data, err := os.ReadFile(d.commitPath(v))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		if d.emitter != nil {
			d.emitter.Emit(emit.Event{Table: d.root, Version: v, Msg: "read_version_failed", Meta: map[string]any{"error": err.Error()}})
		}
		return nil, newIoError(fmt.Sprintf("reading version %d", v), err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var actions []Action
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		a, err := parseAction(line)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, newIoError(fmt.Sprintf("scanning version %d", v), err)
	}
	return actions, nil
}

// ReadVersion is the exported, lockless form of readVersion: callers that
// only need to inspect one version's actions (without taking part in the
// commit protocol) may call it directly.
func (d *DeltaLog) ReadVersion(v Version) ([]Action, error) {
	return d.readVersion(v)
}

// write commits actions as version v by writing to a temporary file and
// renaming it into place, so partial writes are never observable. Callers
// MUST hold mu and MUST have resolved v = latestVersion()+1 under that same
// critical section to avoid racing another writer in this process.
func (d *DeltaLog) write(ctx context.Context, v Version, actions []Action) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return newIoError("commit interrupted", ErrInterrupted)
	}
	if err := os.MkdirAll(d.logDir(), 0o755); err != nil {
		return newIoError("creating log directory", err)
	}
	var buf bytes.Buffer
	for _, a := range actions {
		line, err := serializeAction(a)
		if err != nil {
			return newIoError("serializing action", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	final := d.commitPath(v)
	tmp := final + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return newIoError("creating temp commit file", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(tmp)
		return newIoError("writing temp commit file", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return newIoError("syncing temp commit file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return newIoError("closing temp commit file", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return newIoError(fmt.Sprintf("committing version %d", v), err)
	}
	if d.emitter != nil {
		d.emitter.Emit(emit.Event{Table: d.root, Version: v, Msg: "commit_written", Meta: map[string]any{"actions": len(actions)}})
	}
	if d.metrics != nil {
		d.metrics.ObserveCommit(d.root, v)
		d.metrics.ObserveCommitLatency(d.root, time.Since(start))
	}
	return nil
}

// Write commits actions at the log's next version under the log's lock
// and returns the version committed. It is the plain, single-writer append
// path used by Transaction.Commit.
func (d *DeltaLog) Write(ctx context.Context, actions []Action) (Version, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	latest, err := d.LatestVersion()
	if err != nil {
		return noVersion, err
	}
	v := latest + 1
	if err := d.write(ctx, v, actions); err != nil {
		return noVersion, err
	}
	return v, nil
}
