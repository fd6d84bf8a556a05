// Package registry implements the Room Registry (spec §4.F): a
// concurrent mapping from room id to its Coordinator, lazily created and
// with an optional idle-TTL reaper (§9 open question 2).
package registry

import (
	"sync"
	"time"

	"github.com/haal01/whiteboard/internal/room"
)

// Config controls the limits every lazily created Coordinator inherits.
type Config struct {
	MaxEventsPerRoom int
	ClearCooldown    time.Duration
}

// Registry is the single, process-wide room→Coordinator map. Exactly one
// Registry is constructed at bootstrap and shared by the WebSocket hub
// and the HTTP admin surface (spec §4.F, fixing the source's latent
// per-router-instance bug flagged in §9).
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room.Coordinator
	cfg   Config
}

// New builds an empty Registry.
func New(cfg Config) *Registry {
	return &Registry{
		rooms: make(map[string]*room.Coordinator),
		cfg:   cfg,
	}
}

// GetOrCreate returns the existing Coordinator for roomID or atomically
// installs a fresh one.
func (reg *Registry) GetOrCreate(roomID string) *room.Coordinator {
	reg.mu.RLock()
	if c, ok := reg.rooms[roomID]; ok {
		reg.mu.RUnlock()
		return c
	}
	reg.mu.RUnlock()

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if c, ok := reg.rooms[roomID]; ok {
		return c
	}
	c := room.New(room.Config{
		RoomID:        roomID,
		MaxEvents:     reg.cfg.MaxEventsPerRoom,
		ClearCooldown: reg.cfg.ClearCooldown,
	})
	reg.rooms[roomID] = c
	return c
}

// Get returns the Coordinator for roomID, or nil if the room has never
// been created (or has since been dropped).
func (reg *Registry) Get(roomID string) *room.Coordinator {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[roomID]
}

// Drop removes roomID from the registry and stops its Coordinator,
// allowing it to be garbage collected. Safe to call on an absent room.
func (reg *Registry) Drop(roomID string) {
	reg.mu.Lock()
	c, ok := reg.rooms[roomID]
	if ok {
		delete(reg.rooms, roomID)
	}
	reg.mu.Unlock()
	if ok {
		c.Stop()
	}
}

// List returns a snapshot of currently active room ids. The active-rooms
// set is exactly the registry's key set; there is no separate liveness
// flag (spec §4.F).
func (reg *Registry) List() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		out = append(out, id)
	}
	return out
}
