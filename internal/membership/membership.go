// Package membership implements the Membership Table (spec §4.G): the
// coupled room<->session maps the Fan-out and Session components use to
// find who is in a room and where a session currently belongs.
package membership

import "sync"

// Socket is the subset of a Session the Membership Table and Fan-out
// need: a stable identity plus a way to deliver an outbound frame.
type Socket interface {
	ID() string
	Send(payload []byte)
}

// Table holds the two coupled maps described in §4.G, guarded by one
// mutex. Snapshots returned to callers are independent copies so the
// Fan-out can iterate without holding the table lock.
type Table struct {
	mu           sync.Mutex
	rooms        map[string]map[string]Socket // roomID -> sessionID -> socket
	sessionsRoom map[string]string            // sessionID -> roomID
}

// New builds an empty Membership Table.
func New() *Table {
	return &Table{
		rooms:        make(map[string]map[string]Socket),
		sessionsRoom: make(map[string]string),
	}
}

// Join adds session to roomID, first leaving any previous room it was
// in (§4.G: a session is at most in one room).
func (t *Table) Join(roomID string, s Socket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.sessionsRoom[s.ID()]; ok && prev != roomID {
		t.leaveLocked(prev, s.ID())
	}
	members, ok := t.rooms[roomID]
	if !ok {
		members = make(map[string]Socket)
		t.rooms[roomID] = members
	}
	members[s.ID()] = s
	t.sessionsRoom[s.ID()] = roomID
}

// Leave removes session from roomID. If the room's membership becomes
// empty the room key is dropped from the table (the Coordinator in the
// Registry is unaffected — it persists for late joiners, §3 Room).
func (t *Table) Leave(roomID, sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaveLocked(roomID, sessionID)
}

func (t *Table) leaveLocked(roomID, sessionID string) {
	members, ok := t.rooms[roomID]
	if ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(t.rooms, roomID)
		}
	}
	if t.sessionsRoom[sessionID] == roomID {
		delete(t.sessionsRoom, sessionID)
	}
}

// Disconnect leaves whichever room sessionID is currently in, if any.
func (t *Table) Disconnect(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	roomID, ok := t.sessionsRoom[sessionID]
	if !ok {
		return
	}
	t.leaveLocked(roomID, sessionID)
}

// MembersOf returns a snapshot of the sockets currently in roomID.
func (t *Table) MembersOf(roomID string) []Socket {
	t.mu.Lock()
	defer t.mu.Unlock()
	members := t.rooms[roomID]
	out := make([]Socket, 0, len(members))
	for _, s := range members {
		out = append(out, s)
	}
	return out
}

// RoomOf returns the current room for sessionID and whether it has one.
func (t *Table) RoomOf(sessionID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	roomID, ok := t.sessionsRoom[sessionID]
	return roomID, ok
}

// CountOf returns the number of sessions currently in roomID.
func (t *Table) CountOf(roomID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rooms[roomID])
}
