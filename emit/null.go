package emit

// nullEmitter implements Emitter by discarding all events.
type nullEmitter struct{}

// Null returns an Emitter that discards every event. Safe for concurrent
// use and has zero overhead; this is the default when no emitter is
// configured.
func Null() Emitter {
	return nullEmitter{}
}

// Emit discards event.
func (nullEmitter) Emit(event Event) {}
