package room

import (
	"errors"

	"github.com/haal01/whiteboard/internal/event"
)

// ErrSaturated is returned by append once a room's log has reached its
// configured cap (spec §4.D "Bounded memory").
var ErrSaturated = errors.New("room log is saturated")

// DefaultMaxEvents is the soft cap on stored events per room (§6.3).
const DefaultMaxEvents = 10000

// eventLog is the per-room append-only ordered container (spec §4.D).
// It is never accessed concurrently: the Coordinator's run loop is its
// only caller.
type eventLog struct {
	events   []event.Event
	maxEvents int
}

func newEventLog(maxEvents int) *eventLog {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &eventLog{maxEvents: maxEvents}
}

func (l *eventLog) append(e event.Event) error {
	if len(l.events) >= l.maxEvents {
		return ErrSaturated
	}
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) lastSequence() uint64 {
	if len(l.events) == 0 {
		return 0
	}
	return l.events[len(l.events)-1].Sequence
}

// snapshot returns the full ordered log. Callers get an independent copy
// since the log backing array may be reused/grown by later appends.
func (l *eventLog) snapshot() []event.Event {
	out := make([]event.Event, len(l.events))
	copy(out, l.events)
	return out
}

// since returns events strictly greater than seq, in order. seq == 0 is
// equivalent to snapshot() (§4.D).
func (l *eventLog) since(seq uint64) []event.Event {
	if seq == 0 {
		return l.snapshot()
	}
	// Sequence numbers are strictly increasing by 1 starting at 1, so
	// the cutoff index equals seq when seq is within range.
	if seq >= uint64(len(l.events)) {
		return []event.Event{}
	}
	rest := l.events[seq:]
	out := make([]event.Event, len(rest))
	copy(out, rest)
	return out
}

func (l *eventLog) clear() {
	l.events = nil
}
