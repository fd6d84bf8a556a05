// Package room implements the Sequence Allocator, Event Log and Room
// Coordinator (spec §4.A, §4.D, §4.E): the single-writer pipeline owned
// by one room that assigns sequence numbers, resolves conflicts and
// retains the ordered log.
package room

import (
	"context"
	"errors"
	"time"

	"github.com/haal01/whiteboard/internal/event"
	"github.com/haal01/whiteboard/internal/resolve"
)

// ErrConflict is returned by Submit when the Resolver drops the event.
var ErrConflict = errors.New("event rejected due to conflict resolution")

// ErrClosed is returned by any call made after the Coordinator has
// stopped (e.g. a room dropped from the Registry mid-flight).
var ErrClosed = errors.New("room coordinator is closed")

// Config controls the limits and collaborators a Coordinator runs with.
type Config struct {
	RoomID        string
	MaxEvents     int
	ClearCooldown time.Duration
}

// Coordinator is the single-writer owner of one room's sequence
// allocator and event log (spec §4.E). All mutating operations are
// executed by a single goroutine reading from an internal command
// channel, the same channel-driven single-writer-actor shape as the
// teacher's room.run() loop, generalized from a broadcast-only job queue
// to a request/response one so Submit can return the stored event or an
// error synchronously.
type Coordinator struct {
	roomID   string
	resolver *resolve.Resolver

	jobs chan func()
	done chan struct{}

	log       *eventLog
	allocator sequenceAllocator
	lastEvent time.Time
}

// New starts a Coordinator's run loop and returns a handle to it. Callers
// must call Stop when the room is torn down to release the goroutine.
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		roomID:    cfg.RoomID,
		resolver:  resolve.New(cfg.ClearCooldown),
		jobs:      make(chan func(), 32),
		done:      make(chan struct{}),
		log:       newEventLog(cfg.MaxEvents),
		lastEvent: time.Now(),
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	for job := range c.jobs {
		job()
	}
	close(c.done)
}

// Stop closes the command channel, causing the run loop to drain and
// exit. After Stop, every method returns ErrClosed.
func (c *Coordinator) Stop() {
	defer func() { recover() }() // closing an already-closed channel is a caller bug, not fatal
	close(c.jobs)
	<-c.done
}

// exec runs fn on the Coordinator's single goroutine and waits for it to
// finish, recovering gracefully if the room has already stopped (sending
// on a closed jobs channel panics; Stop races are expected once a room
// has been dropped from the Registry).
func (c *Coordinator) exec(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrClosed
		}
	}()
	reply := make(chan struct{})
	c.jobs <- func() {
		fn()
		close(reply)
	}
	<-reply
	return nil
}

// RoomID returns the id this Coordinator was created for.
func (c *Coordinator) RoomID() string { return c.roomID }

// Submit runs the B->C->A->D pipeline for a single candidate event
// (validation has already happened by the time Submit is called; the
// candidate here is the validator's accepted, typed event). Submit
// serializes with every other Submit/State/StateSince/Reset call on this
// room.
func (c *Coordinator) Submit(candidate event.Event) (event.Event, error) {
	var (
		stored event.Event
		opErr  error
	)
	err := c.exec(func() {
		existing := c.log.snapshot()
		resolved, ok := c.resolver.Resolve(existing, candidate)
		if !ok {
			opErr = ErrConflict
			return
		}
		seq := c.allocator.next()
		built := resolved.Clone()
		built.Sequence = seq
		if appendErr := c.log.append(built); appendErr != nil {
			// Roll back the sequence number: it was never observed by
			// anyone since append failed before broadcast.
			c.allocator.counter--
			opErr = appendErr
			return
		}
		c.lastEvent = time.Now()
		stored = built
	})
	if err != nil {
		return event.Event{}, err
	}
	return stored, opErr
}

// State returns the full snapshot for a ROOM_JOINED reply (§4.E).
func (c *Coordinator) State() ([]event.Event, error) {
	var out []event.Event
	err := c.exec(func() { out = c.log.snapshot() })
	return out, err
}

// StateSince returns the incremental catch-up since seq (§4.E).
func (c *Coordinator) StateSince(seq uint64) ([]event.Event, error) {
	var out []event.Event
	err := c.exec(func() { out = c.log.since(seq) })
	return out, err
}

// Reset clears the log and sequence allocator (administrative delete,
// §4.D/§4.E). It is not invoked by CLEAR_CANVAS.
func (c *Coordinator) Reset() error {
	return c.exec(func() {
		c.log.clear()
		c.allocator.reset()
	})
}

// IdleSince reports how long it has been since the last accepted event,
// used by the optional TTL reaper (§9 open question 2).
func (c *Coordinator) IdleSince() (time.Duration, error) {
	var d time.Duration
	err := c.exec(func() { d = time.Since(c.lastEvent) })
	return d, err
}

// StopWithContext stops the coordinator or gives up once ctx is done.
func (c *Coordinator) StopWithContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
