package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
	"github.com/hward/huddle/internal/metrics"
	"github.com/hward/huddle/internal/protocol"
)

// RaiseEmergency captures a distress signal and escalates it to the
// in-room admins. The durable queue append is the guarantee: an empty
// admin audience still queues the alert and still acks the sender. Only
// a failed append is an error.
func (c *Coordinator) RaiseEmergency(ctx context.Context, connID domain.ConnID, loc *domain.Location, message string) (*domain.EmergencyAlert, error) {
	c.mu.Lock()
	snap, ok := c.reg.Snap(connID)
	if !ok {
		c.mu.Unlock()
		return nil, domain.ErrTargetNotFound
	}
	s := snap.Session
	if s.Room == "" {
		c.mu.Unlock()
		return nil, domain.ErrNotInRoom
	}
	alert := domain.NewEmergencyAlert(s, loc, message)
	admins := lo.Filter(c.audienceLocked(s.Room, ""), func(m core.SessionSnap, _ int) bool {
		return m.Session.IsAdmin()
	})
	c.mu.Unlock()

	if err := c.state.PushAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("queue emergency alert: %w", err)
	}
	metrics.Alerts.Inc()

	received := protocol.Encode(protocol.NewEmergencyReceived(alert))
	for _, admin := range admins {
		c.send(admin, received)
	}
	c.send(snap, protocol.Encode(protocol.NewEmergencySent()))

	log.Warn().Str("module", "app.emergency").
		Str("conn", string(connID)).
		Str("room", string(alert.Room)).
		Int("admins_notified", len(admins)).
		Msg("emergency alert raised")
	return alert, nil
}
