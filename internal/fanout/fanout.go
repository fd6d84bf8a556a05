// Package fanout implements the Broadcast Fan-out (spec §4.I): publishing
// an accepted event or server message to every current member of a room.
package fanout

import "github.com/haal01/whiteboard/internal/membership"

// Publisher broadcasts to the sockets currently registered in a room.
// The WebSocket path always includes the sender (so it learns its
// assigned sequence number, §4.I); the HTTP admin path has no
// originating socket and also uses Publish.
type Publisher struct {
	table *membership.Table
}

// New builds a Publisher bound to the given Membership Table.
func New(table *membership.Table) *Publisher {
	return &Publisher{table: table}
}

// Publish sends payload to every member of roomID, sender included.
func (p *Publisher) Publish(roomID string, payload []byte) {
	p.PublishExcept(roomID, "", payload)
}

// PublishExcept sends payload to every member of roomID except the
// session whose id is excludeSessionID (pass "" to exclude no one).
func (p *Publisher) PublishExcept(roomID, excludeSessionID string, payload []byte) {
	for _, socket := range p.table.MembersOf(roomID) {
		if excludeSessionID != "" && socket.ID() == excludeSessionID {
			continue
		}
		socket.Send(payload)
	}
}
