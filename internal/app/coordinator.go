// Package app coordinates presence state across the session registry, room
// index and user index. Every mutation runs under one coordinator-wide
// critical section; only the shared-store writes and transport closes may
// block, and they happen outside of it.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
	"github.com/hward/huddle/internal/metrics"
	"github.com/hward/huddle/internal/protocol"
	"github.com/hward/huddle/internal/store"
)

type Coordinator struct {
	mu sync.Mutex

	reg   *core.Registry
	rooms *core.RoomIndex
	users *core.UserIndex
	state store.StateStore
}

func NewCoordinator(state store.StateStore) *Coordinator {
	return &Coordinator{
		reg:   core.NewRegistry(),
		rooms: core.NewRoomIndex(),
		users: core.NewUserIndex(),
		state: state,
	}
}

// Connect admits an authenticated connection. A duplicate connection id is
// an internal inconsistency: logged and refused, the caller must drop the
// transport.
func (c *Coordinator) Connect(ctx context.Context, s *domain.Session, sig core.SignalConnection, cancel context.CancelFunc) error {
	c.mu.Lock()
	if err := c.reg.Register(s, sig, cancel); err != nil {
		c.mu.Unlock()
		log.Error().Str("module", "app.coordinator").
			Str("conn", string(s.ConnID)).
			Msg("duplicate connection refused")
		return err
	}
	c.users.Add(s.UserID, s.ConnID)
	metrics.Connections.Set(float64(c.reg.Len()))
	c.mu.Unlock()

	if err := c.state.SetPresence(ctx, s); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Msg("presence mirror write failed")
	}
	return nil
}

// Join puts the connection into a room, first leaving any previous room.
// The joiner gets the roster; everyone already there gets participant:joined.
func (c *Coordinator) Join(ctx context.Context, connID domain.ConnID, room domain.RoomID, userName string) error {
	c.mu.Lock()
	snap, ok := c.reg.Snap(connID)
	if !ok {
		c.mu.Unlock()
		return domain.ErrTargetNotFound
	}
	s := snap.Session
	if s.State != domain.ConnActive {
		// A kick or the reaper already owns this connection; admitting
		// it to a room now would outlive the pending cleanup.
		c.mu.Unlock()
		return domain.ErrTargetNotFound
	}
	if userName != "" && userName != s.Name {
		s.Name = userName
	}

	var (
		prevRoom       domain.RoomID
		prevAudience   []core.SessionSnap
		leftEvt        protocol.ParticipantLeft
		prevMirrorDrop bool
	)
	if s.Room != "" && s.Room != room {
		prevRoom = s.Room
		c.rooms.Leave(prevRoom, connID)
		prevAudience = c.audienceLocked(prevRoom, connID)
		leftEvt = protocol.NewParticipantLeft(s)
		prevMirrorDrop = !c.userRemainsLocked(prevRoom, s.UserID)
	}

	alreadyIn := s.Room == room
	c.rooms.Join(room, connID)
	c.reg.SetRoom(connID, room)

	roster := c.rosterLocked(room)
	others := c.audienceLocked(room, connID)
	joinedEvt := protocol.NewRoomJoined(room, roster)
	participantEvt := protocol.NewParticipantJoined(s)
	metrics.Rooms.Set(float64(c.rooms.Len()))
	c.mu.Unlock()

	if prevRoom != "" {
		c.fan(prevAudience, protocol.Encode(leftEvt))
	}
	c.send(snap, protocol.Encode(joinedEvt))
	if !alreadyIn {
		c.fan(others, protocol.Encode(participantEvt))
	}

	if prevMirrorDrop {
		if err := c.state.RemoveRoomMember(ctx, prevRoom, s.UserID); err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Msg("room mirror remove failed")
		}
	}
	if err := c.state.AddRoomMember(ctx, room, s.UserID); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Msg("room mirror add failed")
	}
	if err := c.state.SetPresence(ctx, s); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Msg("presence mirror write failed")
	}

	log.Info().Str("module", "app.coordinator").
		Str("conn", string(connID)).
		Str("room", string(room)).
		Msg("joined room")
	return nil
}

// Leave removes the connection from its room. Not being in a room is a
// no-op, not an error, and produces no events.
func (c *Coordinator) Leave(ctx context.Context, connID domain.ConnID) error {
	c.mu.Lock()
	snap, ok := c.reg.Snap(connID)
	if !ok || snap.Session.Room == "" {
		c.mu.Unlock()
		return nil
	}
	s := snap.Session
	room := s.Room
	c.rooms.Leave(room, connID)
	c.reg.SetRoom(connID, "")
	audience := c.audienceLocked(room, connID)
	leftEvt := protocol.NewParticipantLeft(s)
	mirrorDrop := !c.userRemainsLocked(room, s.UserID)
	metrics.Rooms.Set(float64(c.rooms.Len()))
	c.mu.Unlock()

	c.fan(audience, protocol.Encode(leftEvt))

	if mirrorDrop {
		if err := c.state.RemoveRoomMember(ctx, room, s.UserID); err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Msg("room mirror remove failed")
		}
	}
	if err := c.state.SetPresence(ctx, s); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Msg("presence mirror write failed")
	}

	log.Info().Str("module", "app.coordinator").
		Str("conn", string(connID)).
		Str("room", string(room)).
		Msg("left room")
	return nil
}

// ToggleAudio flips the muted flag and tells the whole room, sender
// included, so every client renders the same state.
func (c *Coordinator) ToggleAudio(connID domain.ConnID, muted bool) error {
	c.mu.Lock()
	snap, ok := c.reg.Snap(connID)
	if !ok {
		c.mu.Unlock()
		return domain.ErrTargetNotFound
	}
	s := snap.Session
	if s.State != domain.ConnActive {
		c.mu.Unlock()
		return domain.ErrTargetNotFound
	}
	if s.Room == "" {
		c.mu.Unlock()
		return domain.ErrNotInRoom
	}
	s.Muted = muted
	audience := c.audienceLocked(s.Room, "")
	evt := protocol.NewAudioChanged(s)
	c.mu.Unlock()

	c.fan(audience, protocol.Encode(evt))
	return nil
}

// RoomState answers the requester with a point-in-time roster snapshot.
func (c *Coordinator) RoomState(connID domain.ConnID) error {
	c.mu.Lock()
	snap, ok := c.reg.Snap(connID)
	if !ok {
		c.mu.Unlock()
		return domain.ErrTargetNotFound
	}
	if snap.Session.Room == "" {
		c.mu.Unlock()
		return domain.ErrNotInRoom
	}
	evt := protocol.NewRoomState(snap.Session.Room, c.rosterLocked(snap.Session.Room))
	c.mu.Unlock()

	c.send(snap, protocol.Encode(evt))
	return nil
}

// Heartbeat refreshes liveness and acknowledges the sender.
func (c *Coordinator) Heartbeat(connID domain.ConnID) {
	c.mu.Lock()
	snap, ok := c.reg.Snap(connID)
	if ok {
		c.reg.TouchBeat(connID)
	}
	c.mu.Unlock()
	if ok {
		c.send(snap, protocol.Encode(protocol.NewPong()))
	}
}

// Disconnect runs the full cleanup path shared by voluntary disconnects,
// kicks and the reaper: leave the room with fan-out, drop the multiplicity
// entry, remove the session. Idempotent against concurrent cleanup.
func (c *Coordinator) Disconnect(ctx context.Context, connID domain.ConnID) {
	c.mu.Lock()
	snap, ok := c.reg.Snap(connID)
	if !ok || snap.Session.State == domain.ConnClosed {
		c.mu.Unlock()
		return
	}
	s := snap.Session
	if s.State == domain.ConnActive {
		s.State = domain.ConnLeaving
	}

	room := s.Room
	var (
		audience   []core.SessionSnap
		leftEvt    protocol.ParticipantLeft
		mirrorDrop bool
	)
	if room != "" {
		c.rooms.Leave(room, connID)
		audience = c.audienceLocked(room, connID)
		leftEvt = protocol.NewParticipantLeft(s)
		mirrorDrop = !c.userRemainsLocked(room, s.UserID)
	}
	c.users.Remove(s.UserID, connID)
	c.reg.Remove(connID)
	s.State = domain.ConnClosed
	stillOnline := c.users.Connected(s.UserID)
	metrics.Connections.Set(float64(c.reg.Len()))
	metrics.Rooms.Set(float64(c.rooms.Len()))
	c.mu.Unlock()

	if room != "" {
		c.fan(audience, protocol.Encode(leftEvt))
		if mirrorDrop {
			if err := c.state.RemoveRoomMember(ctx, room, s.UserID); err != nil {
				log.Warn().Err(err).Str("module", "app.coordinator").Msg("room mirror remove failed")
			}
		}
	}
	if err := c.state.ClearPresence(ctx, connID); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Msg("presence mirror clear failed")
	}

	if !stillOnline {
		log.Info().Str("module", "app.coordinator").
			Str("user", string(s.UserID)).
			Msg("user fully offline")
	}
	log.Info().Str("module", "app.coordinator").Str("conn", string(connID)).Msg("disconnected")
}

// rosterLocked builds the client-facing roster. Caller holds c.mu.
func (c *Coordinator) rosterLocked(room domain.RoomID) []core.ParticipantDTO {
	return lo.FilterMap(c.rooms.Members(room), func(id domain.ConnID, _ int) (core.ParticipantDTO, bool) {
		s := c.reg.Get(id)
		if s == nil {
			return core.ParticipantDTO{}, false
		}
		return core.ParticipantDTO{
			ConnID:   s.ConnID,
			UserID:   s.UserID,
			UserName: s.Name,
			Role:     s.Role,
			IsMuted:  s.Muted,
		}, true
	})
}

// audienceLocked snapshots the room members except one connection.
// Pass an empty except to address the whole room. Caller holds c.mu.
func (c *Coordinator) audienceLocked(room domain.RoomID, except domain.ConnID) []core.SessionSnap {
	return lo.FilterMap(c.rooms.Members(room), func(id domain.ConnID, _ int) (core.SessionSnap, bool) {
		if id == except {
			return core.SessionSnap{}, false
		}
		snap, ok := c.reg.Snap(id)
		return snap, ok
	})
}

// userRemainsLocked reports whether some other live connection of the user is
// still a member of the room. The room mirror is keyed by user, so the mirror
// entry stays until the user's last in-room connection goes. Caller holds c.mu.
func (c *Coordinator) userRemainsLocked(room domain.RoomID, user domain.UserID) bool {
	for _, id := range c.rooms.Members(room) {
		if s := c.reg.Get(id); s != nil && s.UserID == user {
			return true
		}
	}
	return false
}

// send delivers one frame at-most-once; a full buffer means the frame is
// dropped, never blocked on.
func (c *Coordinator) send(to core.SessionSnap, frame core.Frame) {
	if frame == nil || to.Signal == nil {
		return
	}
	if err := to.Signal.TrySend(frame); err != nil {
		metrics.DroppedFrames.Inc()
		log.Warn().Str("module", "app.coordinator").
			Str("conn", string(to.Session.ConnID)).
			Msg("dropped outbound frame")
		return
	}
	metrics.EventsOut.Inc()
}

func (c *Coordinator) fan(audience []core.SessionSnap, frame core.Frame) {
	for _, snap := range audience {
		c.send(snap, frame)
	}
}
