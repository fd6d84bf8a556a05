// Package validate implements the Event Validator (spec §4.B): a pure
// function from an untrusted decoded frame to an accepted, typed event or
// a rejection reason. Nothing here touches a room, a log or the clock.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/haal01/whiteboard/internal/event"
)

// ErrInvalidEvent is wrapped by every rejection this package returns, so
// callers can test with errors.Is regardless of the specific reason.
var ErrInvalidEvent = errors.New("invalid event")

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Limits bounds the shapes this validator accepts. Zero values fall back
// to the spec defaults via withDefaults.
type Limits struct {
	MaxPointsPerEvent int
}

// DefaultLimits mirrors the configuration constants table in §6.3.
func DefaultLimits() Limits {
	return Limits{MaxPointsPerEvent: 1000}
}

func (l Limits) withDefaults() Limits {
	if l.MaxPointsPerEvent <= 0 {
		l.MaxPointsPerEvent = DefaultLimits().MaxPointsPerEvent
	}
	return l
}

func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidEvent}, args...)...)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate applies the rules in §4.B to a frame whose roomId and
// timestamp have already been overwritten by the caller (Session is
// responsible for that server-policy step; this function trusts the
// fields it is given).
func Validate(e event.Event, limits Limits) (event.Event, error) {
	limits = limits.withDefaults()

	if e.UserID == "" {
		return event.Event{}, rejectf("userId is required")
	}
	if e.RoomID == "" {
		return event.Event{}, rejectf("roomId is required")
	}
	if !finite(float64(e.Timestamp)) {
		return event.Event{}, rejectf("timestamp must be finite")
	}

	switch e.Type {
	case event.TypeDrawLine, event.TypeDrawPath:
		return validateStroke(e, limits)
	case event.TypeErase:
		return validateErase(e)
	case event.TypeClearCanvas:
		return validateHeaderOnly(e)
	case event.TypeJoinRoom, event.TypeLeaveRoom:
		return validateHeaderOnly(e)
	default:
		return event.Event{}, rejectf("unknown event type %q", e.Type)
	}
}

func validateStroke(e event.Event, limits Limits) (event.Event, error) {
	if len(e.Points) < 2 {
		return event.Event{}, rejectf("points must contain at least 2 coordinate pairs")
	}
	if len(e.Points) > limits.MaxPointsPerEvent {
		return event.Event{}, rejectf("points exceeds max of %d", limits.MaxPointsPerEvent)
	}
	for i, p := range e.Points {
		if !finite(p.X) || !finite(p.Y) {
			return event.Event{}, rejectf("point %d has a non-finite coordinate", i)
		}
	}
	if !colorPattern.MatchString(e.Color) {
		return event.Event{}, rejectf("color must match #RRGGBB")
	}
	if !finite(e.StrokeWidth) || e.StrokeWidth <= 0 || e.StrokeWidth > 100 {
		return event.Event{}, rejectf("strokeWidth must be in (0, 100]")
	}
	return e.Clone(), nil
}

func validateErase(e event.Event) (event.Event, error) {
	if e.RegionBox == nil {
		return event.Event{}, rejectf("region is required")
	}
	r := e.RegionBox
	if !finite(r.X) || !finite(r.Y) || !finite(r.Width) || !finite(r.Height) {
		return event.Event{}, rejectf("region must contain finite values")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return event.Event{}, rejectf("region width and height must be > 0")
	}
	return e.Clone(), nil
}

func validateHeaderOnly(e event.Event) (event.Event, error) {
	clone := e
	clone.Points = nil
	clone.RegionBox = nil
	clone.Color = ""
	clone.StrokeWidth = 0
	return clone, nil
}
