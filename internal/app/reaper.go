package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
	"github.com/hward/huddle/internal/metrics"
)

// Reaper periodically evicts sessions whose heartbeat went silent.
// Eviction runs the same cleanup path as a voluntary disconnect.
type Reaper struct {
	Coord     *Coordinator
	Threshold time.Duration
	Period    time.Duration
}

func NewReaper(c *Coordinator, threshold, period time.Duration) *Reaper {
	return &Reaper{Coord: c, Threshold: threshold, Period: period}
}

// Run sweeps on a fixed period until the context is done.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Period)
	defer ticker.Stop()
	log.Info().Str("module", "app.reaper").
		Dur("threshold", r.Threshold).
		Dur("period", r.Period).
		Msg("reaper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.reaper").Msg("reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep evicts every stale session found at this instant.
func (r *Reaper) Sweep(ctx context.Context) int {
	now := time.Now()
	c := r.Coord

	type victim struct {
		id     domain.ConnID
		idle   time.Duration
		cancel context.CancelFunc
	}

	c.mu.Lock()
	stale := lo.FilterMap(c.reg.All(), func(snap core.SessionSnap, _ int) (victim, bool) {
		s := snap.Session
		if s.State != domain.ConnActive || s.Idle(now) <= r.Threshold {
			return victim{}, false
		}
		s.State = domain.ConnTerminating
		return victim{id: s.ConnID, idle: s.Idle(now), cancel: c.reg.CancelFunc(s.ConnID)}, true
	})
	c.mu.Unlock()

	for _, v := range stale {
		log.Warn().Str("module", "app.reaper").
			Str("conn", string(v.id)).
			Dur("idle", v.idle).
			Msg("reaping stale connection")
		c.Disconnect(ctx, v.id)
		if v.cancel != nil {
			v.cancel()
		}
		metrics.Reaped.Inc()
	}
	return len(stale)
}
