// Package session implements the Session component (spec §4.H): one
// socket's inbound decode/dispatch loop and outbound send loop, with a
// heartbeat and a bounded outbound queue. Grounded on the teacher's
// Client read/write pumps, generalized with the ping/pong deadlines and
// zerolog instrumentation used for the pack's other gorilla/websocket
// server (adwski-webrtc-playground/backend/server/websocket).
package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/haal01/whiteboard/internal/event"
	"github.com/haal01/whiteboard/internal/fanout"
	"github.com/haal01/whiteboard/internal/membership"
	"github.com/haal01/whiteboard/internal/metrics"
	"github.com/haal01/whiteboard/internal/ratelimit"
	"github.com/haal01/whiteboard/internal/registry"
	"github.com/haal01/whiteboard/internal/validate"
)

// Config bundles every limit and collaborator a Session needs, mirroring
// the Config-struct-injection convention used throughout this module.
type Config struct {
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

const (
	// DefaultMaxFrameBytes matches the §6.3 "Max event size" default.
	DefaultMaxFrameBytes = 100 * 1024
	DefaultPingInterval  = 30 * time.Second
	DefaultPongTimeout   = 10 * time.Second
	sendBufferSize       = 256
	writeWait            = 10 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxFrameBytes <= 0 {
		c.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = DefaultPongTimeout
	}
	return c
}

// Session wraps one websocket connection (spec §4.H). A session is in at
// most one room at a time; currentRoom is read/written only from the
// readPump goroutine so it needs no lock of its own.
type Session struct {
	id     string
	conn   *websocket.Conn
	cfg    Config
	logger zerolog.Logger

	send   chan []byte
	closed chan struct{}

	currentRoom string
}

// New creates a Session with a freshly generated id over conn. Call Run
// to start serving it.
func New(conn *websocket.Conn, cfg Config) *Session {
	cfg = cfg.withDefaults()
	id := uuid.NewString()
	return &Session{
		id:     id,
		conn:   conn,
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "session").Str("sessionId", id).Logger(),
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// ID implements membership.Socket.
func (s *Session) ID() string { return s.id }

// Send implements membership.Socket: a no-op if the session's outbound
// queue is closed or full (a full queue means the reader is too slow;
// Run disconnects it rather than let one slow session stall the
// Fan-out, spec §5 Backpressure).
func (s *Session) Send(payload []byte) {
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case s.send <- payload:
	default:
		s.logger.Warn().Msg("outbound queue full, disconnecting slow session")
		s.forceClose()
	}
}

func (s *Session) forceClose() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// Run drives the session to completion: sends CONNECTED, starts the
// write pump, then blocks in the read pump until the socket closes. It
// always leaves Membership cleaned up before returning (spec §4.H step 4).
func (s *Session) Run() {
	s.cfg.Metrics.IncSession()
	defer s.cfg.Metrics.DecSession()

	connected, _ := event.Marshal(event.ServerConnected, event.ConnectedPayload{
		SessionID: s.id,
		Message:   "connected",
	})
	s.Send(connected)

	go s.writePump()
	s.readPump()

	s.forceClose()
	s.cfg.Membership.Disconnect(s.id)
	s.cfg.Limiter.Forget(s.id)
	s.logger.Debug().Msg("session ended")
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case <-s.closed:
			return
		case payload, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) readPump() {
	defer func() { _ = s.conn.Close() }()

	s.conn.SetReadLimit(s.cfg.MaxFrameBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout + s.cfg.PingInterval))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout + s.cfg.PingInterval))
	})

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
		s.handleFrame(payload)
	}
}

func (s *Session) handleFrame(payload []byte) {
	var frame event.Event
	if err := json.Unmarshal(payload, &frame); err != nil {
		s.cfg.Metrics.IncRejected(metrics.ReasonInvalidFrame)
		s.replyError("Invalid message format")
		return
	}
	if frame.Type == "" {
		s.cfg.Metrics.IncRejected(metrics.ReasonInvalidFrame)
		s.replyError("Invalid message format")
		return
	}

	switch frame.Type {
	case event.TypeJoinRoom:
		s.handleJoin(frame)
	case event.TypeLeaveRoom:
		s.handleLeave(frame)
	case event.TypeDrawLine, event.TypeDrawPath, event.TypeErase, event.TypeClearCanvas:
		s.handleWhiteboardFrame(frame)
	default:
		s.replyError("Invalid message format")
	}
}

func (s *Session) handleJoin(frame event.Event) {
	if frame.RoomID == "" {
		s.replyError("Invalid message format")
		return
	}
	s.currentRoom = frame.RoomID
	s.cfg.Membership.Join(frame.RoomID, s)
	coordinator := s.cfg.Registry.GetOrCreate(frame.RoomID)

	state, err := coordinator.State()
	if err != nil {
		s.replyError("Invalid message format")
		return
	}
	payload, _ := event.Marshal(event.ServerRoomJoined, event.RoomJoinedPayload{
		RoomID:          frame.RoomID,
		UserCount:       s.cfg.Membership.CountOf(frame.RoomID),
		State:           state,
		StateEventCount: len(state),
	})
	s.Send(payload)
}

func (s *Session) handleLeave(frame event.Event) {
	roomID := frame.RoomID
	if roomID == "" {
		roomID = s.currentRoom
	}
	if roomID == "" {
		return
	}
	s.cfg.Membership.Leave(roomID, s.id)
	if s.currentRoom == roomID {
		s.currentRoom = ""
	}
}

func (s *Session) handleWhiteboardFrame(frame event.Event) {
	if !s.cfg.Limiter.Allow(s.id) {
		s.cfg.Metrics.IncRejected(metrics.ReasonRateLimited)
		s.replyError("Too many events, slow down")
		return
	}
	if s.currentRoom == "" {
		s.cfg.Metrics.IncRejected(metrics.ReasonNotInRoom)
		s.replyError("Not in a room")
		return
	}

	// Server policy: roomId and timestamp are never trusted from the
	// wire (spec §4.B rule 1).
	frame.RoomID = s.currentRoom
	frame.Timestamp = time.Now().UnixMilli()

	validated, err := validate.Validate(frame, s.cfg.Validation)
	if err != nil {
		s.cfg.Metrics.IncRejected(metrics.ReasonInvalidEvent)
		s.replyError("Invalid event")
		return
	}

	coordinator := s.cfg.Registry.GetOrCreate(s.currentRoom)
	stored, err := coordinator.Submit(validated)
	if err != nil {
		s.replySubmitError(err)
		return
	}

	s.cfg.Metrics.IncAccepted(stored.Type)
	payload, _ := event.Marshal(event.ServerEvent, stored)
	s.cfg.Publisher.Publish(s.currentRoom, payload)
}

func (s *Session) replyError(msg string) {
	payload, _ := event.Marshal(event.ServerError, event.ErrorPayload{Error: msg})
	s.Send(payload)
}
