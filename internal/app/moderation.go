package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
	"github.com/hward/huddle/internal/protocol"
)

// Kick ejects a connection. Admin-only. The target is notified first,
// then forced out of its room (with participant:left fan-out), and only
// then is its transport torn down — termination must never outrun the
// notification.
func (c *Coordinator) Kick(ctx context.Context, actorID, targetID domain.ConnID, reason string) error {
	c.mu.Lock()
	actor := c.reg.Get(actorID)
	if actor == nil || !actor.IsAdmin() {
		c.mu.Unlock()
		return domain.ErrUnauthorized
	}
	snap, ok := c.reg.Snap(targetID)
	if !ok {
		c.mu.Unlock()
		return domain.ErrTargetNotFound
	}
	t := snap.Session
	if t.State != domain.ConnActive {
		// Another kick or a disconnect already owns this connection.
		c.mu.Unlock()
		return nil
	}
	t.State = domain.ConnTerminating
	cancel := c.reg.CancelFunc(targetID)
	kicked := protocol.NewKicked(actor.Name, reason)
	c.mu.Unlock()

	c.send(snap, protocol.Encode(kicked))
	c.Disconnect(ctx, targetID)
	if cancel != nil {
		cancel()
	}

	log.Info().Str("module", "app.moderation").
		Str("actor", string(actorID)).
		Str("target", string(targetID)).
		Str("reason", reason).
		Msg("kicked")
	return nil
}

// Mute forces a target's audio off. Admin-only. A stale target id is
// tolerated silently. The muted flag is set here, authoritatively, and
// the room is told via participant:audio-changed; the target additionally
// gets a forced-mute notice naming the actor.
func (c *Coordinator) Mute(actorID, targetID domain.ConnID) error {
	c.mu.Lock()
	actor := c.reg.Get(actorID)
	if actor == nil || !actor.IsAdmin() {
		c.mu.Unlock()
		return domain.ErrUnauthorized
	}
	snap, ok := c.reg.Snap(targetID)
	if !ok {
		c.mu.Unlock()
		return nil
	}
	t := snap.Session
	t.Muted = true
	var audience []core.SessionSnap
	var changed protocol.AudioChanged
	if t.Room != "" {
		audience = c.audienceLocked(t.Room, "")
		changed = protocol.NewAudioChanged(t)
	}
	forced := protocol.NewForcedMute(actor.Name)
	c.mu.Unlock()

	c.send(snap, protocol.Encode(forced))
	if len(audience) > 0 {
		c.fan(audience, protocol.Encode(changed))
	}

	log.Info().Str("module", "app.moderation").
		Str("actor", string(actorID)).
		Str("target", string(targetID)).
		Msg("forced mute")
	return nil
}
