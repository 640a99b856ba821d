package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory, keyed by
// table root, for later inspection.
//
// Use cases: tests asserting on emitted events, development dashboards,
// post-commit analysis. Not intended for long-running production processes
// with unbounded table counts — events accumulate until Clear is called.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // table root -> events
}

// HistoryFilter narrows History results. All set fields are ANDed.
type HistoryFilter struct {
	Msg        string // empty = no filter
	MinVersion *int64 // nil = no lower bound
	MaxVersion *int64 // nil = no upper bound
}

// NewBufferedEmitter creates an empty BufferedEmitter. Safe for concurrent
// use.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

// Emit stores event under event.Table.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.Table] = append(b.events[event.Table], event)
}

// History returns a copy of every event recorded for table, in emission
// order.
func (b *BufferedEmitter) History(table string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	events := b.events[table]
	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// HistoryWithFilter returns a copy of the events recorded for table that
// match filter.
func (b *BufferedEmitter) HistoryWithFilter(table string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var result []Event
	for _, event := range b.events[table] {
		if !matchesFilter(event, filter) {
			continue
		}
		result = append(result, event)
	}
	if result == nil {
		return []Event{}
	}
	return result
}

func matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.Msg != "" && event.Msg != filter.Msg {
		return false
	}
	if filter.MinVersion != nil && event.Version < *filter.MinVersion {
		return false
	}
	if filter.MaxVersion != nil && event.Version > *filter.MaxVersion {
		return false
	}
	return true
}

// Clear removes stored events for table, or every table if table is empty.
func (b *BufferedEmitter) Clear(table string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if table == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, table)
}
