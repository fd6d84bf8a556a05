package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/haal01/whiteboard/internal/event"
	"github.com/haal01/whiteboard/internal/fanout"
	"github.com/haal01/whiteboard/internal/membership"
	"github.com/haal01/whiteboard/internal/metrics"
	"github.com/haal01/whiteboard/internal/registry"
	"github.com/haal01/whiteboard/internal/validate"
)

func newTestHandler() (*Handler, *registry.Registry) {
	gin.SetMode(gin.TestMode)
	reg := registry.New(registry.Config{})
	table := membership.New()
	h := &Handler{
		Registry:   reg,
		Membership: table,
		Publisher:  fanout.New(table),
		Metrics:    metrics.New(),
		Validation: validate.DefaultLimits(),
		Logger:     zerolog.Nop(),
	}
	return h, reg
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	h.Register(r)
	return r
}

func TestListRoomsEmpty(t *testing.T) {
	h, _ := newTestHandler()
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Rooms []string `json:"rooms"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 0 {
		t.Fatalf("expected 0 rooms, got %d", body.Count)
	}
}

func TestRoomStateMissingReturns404(t *testing.T) {
	h, _ := newTestHandler()
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/rooms/nope/state", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPostEventAcceptsValidDraw(t *testing.T) {
	h, reg := newTestHandler()
	r := newRouter(h)

	body := map[string]any{
		"roomId": "r1",
		"event": event.Event{
			Type:        event.TypeDrawLine,
			UserID:      "u1",
			Points:      []event.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
			Color:       "#112233",
			StrokeWidth: 2,
		},
	}
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	coordinator := reg.Get("r1")
	if coordinator == nil {
		t.Fatal("expected room to have been created")
	}
	state, _ := coordinator.State()
	if len(state) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(state))
	}
}

func TestPostEventRejectsInvalidPayload(t *testing.T) {
	h, _ := newTestHandler()
	r := newRouter(h)

	body := map[string]any{
		"roomId": "r1",
		"event": event.Event{
			Type:        event.TypeDrawLine,
			UserID:      "u1",
			Points:      []event.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
			Color:       "not-a-color",
			StrokeWidth: 2,
		},
	}
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeleteRoomClearsLog(t *testing.T) {
	h, reg := newTestHandler()
	r := newRouter(h)
	coordinator := reg.GetOrCreate("r1")
	coordinator.Submit(event.Event{
		Type: event.TypeDrawLine, UserID: "u1",
		Points: []event.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, Color: "#000000", StrokeWidth: 1,
	})

	req := httptest.NewRequest(http.MethodDelete, "/rooms/r1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	state, _ := coordinator.State()
	if len(state) != 0 {
		t.Fatalf("expected empty log after delete, got %d", len(state))
	}
}

func TestEventsSinceWithAfterQuery(t *testing.T) {
	h, reg := newTestHandler()
	r := newRouter(h)
	coordinator := reg.GetOrCreate("r1")
	for i := 0; i < 3; i++ {
		coordinator.Submit(event.Event{
			Type: event.TypeDrawLine, UserID: "u1",
			Points: []event.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, Color: "#000000", StrokeWidth: 1,
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/events/r1?after=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		EventCount int `json:"eventCount"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.EventCount != 2 {
		t.Fatalf("expected 2 events after sequence 1, got %d", body.EventCount)
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler()
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
