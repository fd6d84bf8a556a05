// Package httpapi implements the thin gin administrative surface over
// the core (spec §4.J, §6.2). Every handler shares the same Registry the
// WebSocket hub uses, so state observed over HTTP and over the socket is
// always consistent — the fix for the source's latent per-router
// unshared-state bug flagged in SPEC_FULL.md §9.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/haal01/whiteboard/internal/event"
	"github.com/haal01/whiteboard/internal/fanout"
	"github.com/haal01/whiteboard/internal/membership"
	"github.com/haal01/whiteboard/internal/metrics"
	"github.com/haal01/whiteboard/internal/registry"
	"github.com/haal01/whiteboard/internal/room"
	"github.com/haal01/whiteboard/internal/validate"
)

// Handler bundles the collaborators every admin route needs.
type Handler struct {
	Registry   *registry.Registry
	Membership *membership.Table
	Publisher  *fanout.Publisher
	Metrics    *metrics.Metrics
	Validation validate.Limits
	Logger     zerolog.Logger
}

// Register mounts every route from spec §6.2 onto r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/rooms", h.listRooms)
	r.GET("/rooms/:roomId/state", h.roomState)
	r.DELETE("/rooms/:roomId", h.deleteRoom)
	r.GET("/events/:roomId", h.eventsSince)
	r.POST("/events", h.postEvent)
	r.GET("/metrics", h.metrics)
	r.GET("/healthz", h.healthz)
}

func (h *Handler) listRooms(c *gin.Context) {
	rooms := h.Registry.List()
	h.Metrics.SetActiveRooms(len(rooms))
	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "count": len(rooms)})
}

func (h *Handler) roomState(c *gin.Context) {
	roomID := c.Param("roomId")
	coordinator := h.Registry.Get(roomID)
	if coordinator == nil {
		c.JSON(http.StatusNotFound, gin.H{"roomId": roomID, "exists": false})
		return
	}
	events, err := coordinator.State()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"roomId": roomID, "exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roomId":     roomID,
		"events":     events,
		"eventCount": len(events),
		"exists":     true,
	})
}

func (h *Handler) deleteRoom(c *gin.Context) {
	roomID := c.Param("roomId")
	coordinator := h.Registry.Get(roomID)
	if coordinator == nil {
		c.Status(http.StatusNotFound)
		return
	}
	if err := coordinator.Reset(); err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) eventsSince(c *gin.Context) {
	roomID := c.Param("roomId")
	coordinator := h.Registry.Get(roomID)
	if coordinator == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	var (
		events []event.Event
		err    error
	)
	if after := c.Query("after"); after != "" {
		seq, parseErr := strconv.ParseUint(after, 10, 64)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "after must be a non-negative integer"})
			return
		}
		events, err = coordinator.StateSince(seq)
	} else {
		events, err = coordinator.State()
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "events": events, "eventCount": len(events)})
}

type postEventRequest struct {
	RoomID string      `json:"roomId"`
	Event  event.Event `json:"event"`
}

func (h *Handler) postEvent(c *gin.Context) {
	var req postEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.RoomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
		return
	}

	candidate := req.Event
	candidate.RoomID = req.RoomID
	candidate.Timestamp = nowMillis()

	validated, err := validate.Validate(candidate, h.Validation)
	if err != nil {
		h.Metrics.IncRejected(metrics.ReasonInvalidEvent)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}

	coordinator := h.Registry.GetOrCreate(req.RoomID)
	stored, err := coordinator.Submit(validated)
	if err != nil {
		status, reason := submitErrorStatus(err)
		h.Metrics.IncRejected(reason)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.Metrics.IncAccepted(stored.Type)
	h.Logger.Debug().Str("roomId", req.RoomID).Uint64("sequence", stored.Sequence).Msg("event accepted via admin surface")
	payload, _ := event.Marshal(event.ServerEvent, stored)
	h.Publisher.Publish(req.RoomID, payload)
	c.JSON(http.StatusOK, stored)
}

func submitErrorStatus(err error) (int, metrics.RejectReason) {
	switch {
	case errors.Is(err, room.ErrConflict):
		return http.StatusConflict, metrics.ReasonConflict
	case errors.Is(err, room.ErrSaturated):
		return http.StatusTooManyRequests, metrics.ReasonSaturated
	default:
		return http.StatusInternalServerError, metrics.ReasonTransport
	}
}

func (h *Handler) metrics(c *gin.Context) {
	h.Metrics.SetActiveRooms(len(h.Registry.List()))
	c.JSON(http.StatusOK, h.Metrics.Snapshot())
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func nowMillis() int64 { return time.Now().UnixMilli() }
