// Package metrics implements the lightweight in-process counter set
// (spec §4.L): events accepted per type, events rejected per taxonomy
// reason, active session and room counts. Deliberately plain in-process
// counters (atomic gauges, mutex-guarded counter maps) rather than a Prometheus/OpenMetrics exporter — no such
// dependency appears anywhere in the retrieved corpus, so this matches
// the level of ambition actually grounded in the pack (see DESIGN.md).
package metrics

import (
	"sync/atomic"

	"github.com/haal01/whiteboard/internal/event"
)

// RejectReason names a taxonomy bucket from spec §7.
type RejectReason string

const (
	ReasonInvalidFrame RejectReason = "invalid_frame"
	ReasonInvalidEvent RejectReason = "invalid_event"
	ReasonNotInRoom    RejectReason = "not_in_room"
	ReasonConflict     RejectReason = "conflict"
	ReasonSaturated    RejectReason = "saturated"
	ReasonRateLimited  RejectReason = "rate_limited"
	ReasonTransport    RejectReason = "transport"
)

// Metrics is a process-wide set of counters, safe for concurrent
// use from every Session goroutine and the admin HTTP handler.
type Metrics struct {
	accepted atomicCounterSet[event.Type]
	rejected atomicCounterSet[RejectReason]

	activeSessions atomic.Int64
	activeRooms    atomic.Int64
}

// New builds an empty Metrics set.
func New() *Metrics {
	return &Metrics{
		accepted: newAtomicCounterSet[event.Type](),
		rejected: newAtomicCounterSet[RejectReason](),
	}
}

func (m *Metrics) IncAccepted(t event.Type)      { m.accepted.inc(t) }
func (m *Metrics) IncRejected(r RejectReason)     { m.rejected.inc(r) }
func (m *Metrics) IncSession()                    { m.activeSessions.Add(1) }
func (m *Metrics) DecSession()                    { m.activeSessions.Add(-1) }
func (m *Metrics) SetActiveRooms(n int)           { m.activeRooms.Store(int64(n)) }

// Snapshot is the JSON shape served at GET /metrics.
type Snapshot struct {
	AcceptedByType   map[string]uint64 `json:"acceptedByType"`
	RejectedByReason map[string]uint64 `json:"rejectedByReason"`
	ActiveSessions   int64             `json:"activeSessions"`
	ActiveRooms      int64             `json:"activeRooms"`
}

// Snapshot returns a point-in-time copy of every counter.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		AcceptedByType:   m.accepted.snapshot(stringifyType),
		RejectedByReason: m.rejected.snapshot(stringifyReason),
		ActiveSessions:   m.activeSessions.Load(),
		ActiveRooms:      m.activeRooms.Load(),
	}
}

func stringifyType(t event.Type) string     { return string(t) }
func stringifyReason(r RejectReason) string { return string(r) }
