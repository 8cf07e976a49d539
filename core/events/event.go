package events

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. logs, archives).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

type multiEmitter []Emitter

func (m multiEmitter) Emit(evt Event) {
	for _, emitter := range m {
		emitter.Emit(evt)
	}
}

// Multi fans every event out to each non-nil emitter in order.
func Multi(emitters ...Emitter) Emitter {
	out := make(multiEmitter, 0, len(emitters))
	for _, emitter := range emitters {
		if emitter != nil {
			out = append(out, emitter)
		}
	}
	if len(out) == 0 {
		return NoopEmitter{}
	}
	return out
}
