package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reaper periodically evicts rooms whose Coordinator has seen no
// accepted event for at least TTL. Disabled when TTL is zero (the
// default; spec §9 open question 2 treats idle eviction as optional).
type Reaper struct {
	registry *Registry
	ttl      time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

// NewReaper builds a Reaper. interval defaults to ttl/4, floored at one
// second, when not given explicitly.
func NewReaper(reg *Registry, ttl, interval time.Duration, logger zerolog.Logger) *Reaper {
	if interval <= 0 {
		interval = ttl / 4
		if interval < time.Second {
			interval = time.Second
		}
	}
	return &Reaper{registry: reg, ttl: ttl, interval: interval, logger: logger.With().Str("component", "reaper").Logger()}
}

// Run blocks, sweeping on Reaper's interval until ctx is cancelled. It is
// a no-op loop if ttl <= 0, so callers can always start it unconditionally.
func (r *Reaper) Run(ctx context.Context) {
	if r.ttl <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reaper) sweep() {
	for _, roomID := range r.registry.List() {
		c := r.registry.Get(roomID)
		if c == nil {
			continue
		}
		idle, err := c.IdleSince()
		if err != nil {
			continue
		}
		if idle < r.ttl {
			continue
		}
		if err := c.Reset(); err != nil {
			continue
		}
		r.registry.Drop(roomID)
		r.logger.Info().Str("roomId", roomID).Dur("idle", idle).Msg("evicted idle room")
	}
}
