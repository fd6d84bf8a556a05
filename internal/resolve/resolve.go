// Package resolve implements the Conflict Resolver (spec §4.C): a pure
// decision function over a candidate event and the prior log contents.
// It never reads the clock and never mutates its arguments.
package resolve

import (
	"time"

	"github.com/haal01/whiteboard/internal/event"
)

// DefaultClearCooldown is the minimum gap, in event timestamp terms,
// required between two accepted CLEAR_CANVAS events in the same room.
const DefaultClearCooldown = 1000 * time.Millisecond

// Resolver decides whether a candidate event may be appended given the
// events already accepted in the room.
type Resolver struct {
	clearCooldown time.Duration
}

// New builds a Resolver with the given clear cooldown. A zero duration
// falls back to DefaultClearCooldown.
func New(clearCooldown time.Duration) *Resolver {
	if clearCooldown <= 0 {
		clearCooldown = DefaultClearCooldown
	}
	return &Resolver{clearCooldown: clearCooldown}
}

// Resolve returns the candidate unchanged with ok=true if it may be
// appended, or ok=false if the resolver drops it (§8 invariant 6).
func (r *Resolver) Resolve(log []event.Event, candidate event.Event) (event.Event, bool) {
	switch candidate.Type {
	case event.TypeDrawLine, event.TypeDrawPath, event.TypeErase:
		return candidate, true
	case event.TypeClearCanvas:
		return r.resolveClear(log, candidate)
	default:
		// Control events never reach the Resolver; the Coordinator's
		// control path handles JOIN_ROOM/LEAVE_ROOM directly.
		return candidate, true
	}
}

func (r *Resolver) resolveClear(log []event.Event, candidate event.Event) (event.Event, bool) {
	last, ok := lastClear(log)
	if !ok {
		return candidate, true
	}
	gap := candidate.Timestamp - last.Timestamp
	if gap < 0 {
		gap = -gap
	}
	if time.Duration(gap)*time.Millisecond < r.clearCooldown {
		return event.Event{}, false
	}
	return candidate, true
}

func lastClear(log []event.Event) (event.Event, bool) {
	var (
		found bool
		best  event.Event
	)
	for _, e := range log {
		if e.Type != event.TypeClearCanvas {
			continue
		}
		if !found || e.Timestamp > best.Timestamp {
			best = e
			found = true
		}
	}
	return best, found
}
