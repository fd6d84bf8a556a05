package metrics

import (
	"testing"

	"github.com/haal01/whiteboard/internal/event"
)

func TestIncAcceptedCountsByType(t *testing.T) {
	m := New()
	m.IncAccepted(event.TypeDrawLine)
	m.IncAccepted(event.TypeDrawLine)
	m.IncAccepted(event.TypeErase)

	snap := m.Snapshot()
	if snap.AcceptedByType[string(event.TypeDrawLine)] != 2 {
		t.Fatalf("expected 2 DRAW_LINE, got %d", snap.AcceptedByType[string(event.TypeDrawLine)])
	}
	if snap.AcceptedByType[string(event.TypeErase)] != 1 {
		t.Fatalf("expected 1 ERASE, got %d", snap.AcceptedByType[string(event.TypeErase)])
	}
}

func TestIncRejectedCountsByReason(t *testing.T) {
	m := New()
	m.IncRejected(ReasonConflict)
	m.IncRejected(ReasonConflict)
	m.IncRejected(ReasonSaturated)

	snap := m.Snapshot()
	if snap.RejectedByReason[string(ReasonConflict)] != 2 {
		t.Fatalf("expected 2 conflicts, got %d", snap.RejectedByReason[string(ReasonConflict)])
	}
}

func TestSessionCounter(t *testing.T) {
	m := New()
	m.IncSession()
	m.IncSession()
	m.DecSession()

	if got := m.Snapshot().ActiveSessions; got != 1 {
		t.Fatalf("expected 1 active session, got %d", got)
	}
}

func TestActiveRoomsGauge(t *testing.T) {
	m := New()
	m.SetActiveRooms(4)
	if got := m.Snapshot().ActiveRooms; got != 4 {
		t.Fatalf("expected 4 active rooms, got %d", got)
	}
}
