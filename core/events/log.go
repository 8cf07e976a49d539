package events

import (
	"sync"

	"stakeplatform/core/types"
)

type payload interface {
	Event() *types.Event
}

// Materialize renders an emitted event into its broadcastable form. Events
// without a structured payload keep only their type.
func Materialize(evt Event) *types.Event {
	if evt == nil {
		return nil
	}
	if p, ok := evt.(payload); ok {
		if rendered := p.Event(); rendered != nil {
			return rendered
		}
	}
	return &types.Event{Type: evt.EventType(), Attributes: map[string]string{}}
}

// Record is a single entry of the append-only log.
type Record struct {
	Seq   uint64
	Event *types.Event
}

// Log is an append-only, in-memory event recorder. Subscribers receive
// records over buffered channels; a subscriber whose buffer is full misses the
// live record and can catch up through Since.
type Log struct {
	mu      sync.RWMutex
	records []Record
	subs    map[int]chan Record
	nextSub int
}

// NewLog constructs an empty event log.
func NewLog() *Log {
	return &Log{subs: make(map[int]chan Record)}
}

// Emit implements the Emitter interface.
func (l *Log) Emit(evt Event) {
	rendered := Materialize(evt)
	if l == nil || rendered == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := Record{Seq: uint64(len(l.records)) + 1, Event: rendered}
	l.records = append(l.records, rec)
	for _, ch := range l.subs {
		select {
		case ch <- Record{Seq: rec.Seq, Event: rec.Event.Clone()}:
		default:
		}
	}
}

// Len reports the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Records returns a copy of every recorded event in emission order.
func (l *Log) Records() []Record {
	return l.Since(0)
}

// Since returns the records with a sequence number greater than seq.
func (l *Log) Since(seq uint64) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq >= uint64(len(l.records)) {
		return []Record{}
	}
	out := make([]Record, 0, uint64(len(l.records))-seq)
	for _, rec := range l.records[seq:] {
		out = append(out, Record{Seq: rec.Seq, Event: rec.Event.Clone()})
	}
	return out
}

// OfType filters the recorded events by type.
func (l *Log) OfType(eventType string) []*types.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*types.Event, 0)
	for _, rec := range l.records {
		if rec.Event.Type == eventType {
			out = append(out, rec.Event.Clone())
		}
	}
	return out
}

// Subscribe registers a live observer. The returned cancel function closes the
// channel and must be called once the subscriber is done.
func (l *Log) Subscribe(buffer int) (<-chan Record, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Record, buffer)
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
