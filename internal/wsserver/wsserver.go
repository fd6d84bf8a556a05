// Package wsserver wires a gin route to the websocket upgrade and hands
// the resulting connection to a new Session. Grounded on the teacher's
// handleWebSocket, generalized to build a Session with the shared
// collaborators (Registry, Membership, Fan-out, Limiter, Metrics)
// instead of touching a package-level Hub directly.
package wsserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/haal01/whiteboard/internal/fanout"
	"github.com/haal01/whiteboard/internal/membership"
	"github.com/haal01/whiteboard/internal/metrics"
	"github.com/haal01/whiteboard/internal/ratelimit"
	"github.com/haal01/whiteboard/internal/registry"
	"github.com/haal01/whiteboard/internal/session"
	"github.com/haal01/whiteboard/internal/validate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the spec treats auth as out of scope; userId is client-asserted
	},
}

// Handler bundles the collaborators every upgraded Session is built
// with, plus the wire-level limits from process config.
type Handler struct {
	Registry   *registry.Registry
	Membership *membership.Table
	Publisher  *fanout.Publisher
	Limiter    *ratelimit.Limiter
	Metrics    *metrics.Metrics
	Validation validate.Limits
	Logger     zerolog.Logger

	MaxFrameBytes int64
	PingInterval  time.Duration
	PongTimeout   time.Duration
}

// ServeWS upgrades the request and runs a Session for its lifetime. It
// blocks until the socket closes, so callers run it in its own
// goroutine (gin already serves each request on its own goroutine).
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	sess := session.New(conn, session.Config{
		Registry:      h.Registry,
		Membership:    h.Membership,
		Publisher:     h.Publisher,
		Limiter:       h.Limiter,
		Metrics:       h.Metrics,
		Validation:    h.Validation,
		Logger:        h.Logger,
		MaxFrameBytes: h.MaxFrameBytes,
		PingInterval:  h.PingInterval,
		PongTimeout:   h.PongTimeout,
	})
	sess.Run()
}
