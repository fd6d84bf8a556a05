package session

import (
	"errors"

	"github.com/haal01/whiteboard/internal/metrics"
	"github.com/haal01/whiteboard/internal/room"
)

// replySubmitError maps a Coordinator.Submit error to the wire ERROR
// message and metrics bucket spec §7 assigns it.
func (s *Session) replySubmitError(err error) {
	switch {
	case errors.Is(err, room.ErrConflict):
		s.cfg.Metrics.IncRejected(metrics.ReasonConflict)
		s.replyError("Event rejected due to conflict resolution")
	case errors.Is(err, room.ErrSaturated):
		s.cfg.Metrics.IncRejected(metrics.ReasonSaturated)
		s.replyError("Room has reached its event capacity")
	default:
		s.cfg.Metrics.IncRejected(metrics.ReasonTransport)
		s.replyError("Unable to process event")
	}
}
