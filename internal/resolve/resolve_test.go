package resolve

import (
	"testing"
	"time"

	"github.com/haal01/whiteboard/internal/event"
)

func TestResolveDrawingAlwaysAccepted(t *testing.T) {
	r := New(0)
	candidate := event.Event{Type: event.TypeDrawLine}
	if _, ok := r.Resolve(nil, candidate); !ok {
		t.Fatal("expected drawing event to always be accepted")
	}
}

func TestResolveClearAcceptedWhenLogEmpty(t *testing.T) {
	r := New(0)
	candidate := event.Event{Type: event.TypeClearCanvas, Timestamp: 1000}
	if _, ok := r.Resolve(nil, candidate); !ok {
		t.Fatal("expected first clear to be accepted")
	}
}

func TestResolveClearRejectedWithinCooldown(t *testing.T) {
	r := New(DefaultClearCooldown)
	log := []event.Event{{Type: event.TypeClearCanvas, Timestamp: 1000}}
	candidate := event.Event{Type: event.TypeClearCanvas, Timestamp: 1200}

	if _, ok := r.Resolve(log, candidate); ok {
		t.Fatal("expected second clear within cooldown to be rejected")
	}
}

func TestResolveClearAcceptedAtExactCooldownBoundary(t *testing.T) {
	r := New(DefaultClearCooldown)
	log := []event.Event{{Type: event.TypeClearCanvas, Timestamp: 1000}}
	candidate := event.Event{Type: event.TypeClearCanvas, Timestamp: 2000}

	// Strict < comparison: a gap of exactly 1000ms is accepted (§4.C).
	if _, ok := r.Resolve(log, candidate); !ok {
		t.Fatal("expected clear at exact cooldown boundary to be accepted")
	}
}

func TestResolveClearAcceptedOutsideCooldown(t *testing.T) {
	r := New(DefaultClearCooldown)
	log := []event.Event{{Type: event.TypeClearCanvas, Timestamp: 0}}
	candidate := event.Event{Type: event.TypeClearCanvas, Timestamp: 2000}

	if _, ok := r.Resolve(log, candidate); !ok {
		t.Fatal("expected clear outside cooldown to be accepted")
	}
}

func TestResolveClearUsesMostRecentClear(t *testing.T) {
	r := New(DefaultClearCooldown)
	log := []event.Event{
		{Type: event.TypeClearCanvas, Timestamp: 0},
		{Type: event.TypeDrawLine, Timestamp: 500},
		{Type: event.TypeClearCanvas, Timestamp: 5000},
	}
	candidate := event.Event{Type: event.TypeClearCanvas, Timestamp: 5200}

	if _, ok := r.Resolve(log, candidate); ok {
		t.Fatal("expected resolver to compare against the most recent clear, not the oldest")
	}
}

func TestDefaultCooldownIsOneSecond(t *testing.T) {
	if DefaultClearCooldown != time.Second {
		t.Fatalf("expected default cooldown of 1s, got %v", DefaultClearCooldown)
	}
}
