package validate

import (
	"testing"

	"github.com/haal01/whiteboard/internal/event"
)

func baseEvent(t event.Type) event.Event {
	return event.Event{
		Type:      t,
		UserID:    "u1",
		RoomID:    "r1",
		Timestamp: 1000,
	}
}

func TestValidateDrawLineAccepts(t *testing.T) {
	e := baseEvent(event.TypeDrawLine)
	e.Points = []event.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	e.Color = "#FF00AA"
	e.StrokeWidth = 4

	got, err := Validate(e, DefaultLimits())
	if err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
	if len(got.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got.Points))
	}
}

func TestValidateDrawLineRejectsBadColor(t *testing.T) {
	e := baseEvent(event.TypeDrawLine)
	e.Points = []event.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	e.Color = "red"
	e.StrokeWidth = 4

	if _, err := Validate(e, DefaultLimits()); err == nil {
		t.Fatal("expected rejection for invalid color")
	}
}

func TestValidateDrawLineRejectsSinglePoint(t *testing.T) {
	e := baseEvent(event.TypeDrawLine)
	e.Points = []event.Point{{X: 0, Y: 0}}
	e.Color = "#000000"
	e.StrokeWidth = 1

	if _, err := Validate(e, DefaultLimits()); err == nil {
		t.Fatal("expected rejection for fewer than 2 points")
	}
}

func TestValidateDrawLineRejectsOversizedStroke(t *testing.T) {
	e := baseEvent(event.TypeDrawLine)
	e.Points = []event.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	e.Color = "#000000"
	e.StrokeWidth = 101

	if _, err := Validate(e, DefaultLimits()); err == nil {
		t.Fatal("expected rejection for strokeWidth > 100")
	}
}

func TestValidateDrawLineRejectsTooManyPoints(t *testing.T) {
	e := baseEvent(event.TypeDrawLine)
	e.Color = "#000000"
	e.StrokeWidth = 1
	for i := 0; i < 5; i++ {
		e.Points = append(e.Points, event.Point{X: float64(i), Y: float64(i)})
	}

	if _, err := Validate(e, Limits{MaxPointsPerEvent: 2}); err == nil {
		t.Fatal("expected rejection when exceeding max points")
	}
}

func TestValidateEraseAccepts(t *testing.T) {
	e := baseEvent(event.TypeErase)
	e.RegionBox = &event.Region{X: 0, Y: 0, Width: 10, Height: 10}

	if _, err := Validate(e, DefaultLimits()); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
}

func TestValidateEraseRejectsZeroWidth(t *testing.T) {
	e := baseEvent(event.TypeErase)
	e.RegionBox = &event.Region{X: 0, Y: 0, Width: 0, Height: 10}

	if _, err := Validate(e, DefaultLimits()); err == nil {
		t.Fatal("expected rejection for zero width")
	}
}

func TestValidateClearCanvasHeaderOnly(t *testing.T) {
	e := baseEvent(event.TypeClearCanvas)
	got, err := Validate(e, DefaultLimits())
	if err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
	if got.Points != nil || got.RegionBox != nil {
		t.Fatal("expected header-only event to carry no payload")
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	e := baseEvent(event.Type("BOGUS"))
	if _, err := Validate(e, DefaultLimits()); err == nil {
		t.Fatal("expected rejection for unknown type")
	}
}

func TestValidateRejectsEmptyUserID(t *testing.T) {
	e := baseEvent(event.TypeClearCanvas)
	e.UserID = ""
	if _, err := Validate(e, DefaultLimits()); err == nil {
		t.Fatal("expected rejection for empty userId")
	}
}
