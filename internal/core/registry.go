package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hward/huddle/internal/domain"
)

type sessionEntry struct {
	Session *domain.Session
	Signal  SignalConnection
	Cancel  context.CancelFunc
}

// Registry owns every live session. Room index and user index only
// hold connection ids; the session structs live here and nowhere else.
//
// Registry does no cross-structure coordination on its own; the app
// coordinator serializes mutations that touch more than one structure.
type Registry struct {
	sessions map[domain.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ConnID]*sessionEntry)}
}

// Register creates a session for a fresh connection. A duplicate
// connection id is an internal inconsistency, not a client error.
func (r *Registry) Register(s *domain.Session, sig SignalConnection, cancel context.CancelFunc) error {
	if _, ok := r.sessions[s.ConnID]; ok {
		return domain.ErrDuplicateConnection
	}
	r.sessions[s.ConnID] = &sessionEntry{Session: s, Signal: sig, Cancel: cancel}
	log.Info().Str("module", "core.registry").
		Str("conn", string(s.ConnID)).
		Str("user", string(s.UserID)).
		Str("role", string(s.Role)).
		Msg("session registered")
	return nil
}

// Get returns the live session, or nil when the connection is already gone.
// Absence is not an error; callers treat it as "already gone".
func (r *Registry) Get(connID domain.ConnID) *domain.Session {
	if e, ok := r.sessions[connID]; ok {
		return e.Session
	}
	return nil
}

// Snap returns the session together with its transport endpoint.
func (r *Registry) Snap(connID domain.ConnID) (SessionSnap, bool) {
	e, ok := r.sessions[connID]
	if !ok {
		return SessionSnap{}, false
	}
	return SessionSnap{Session: e.Session, Signal: e.Signal}, true
}

// SetRoom updates the session's room assignment. No-op when the session
// is missing.
func (r *Registry) SetRoom(connID domain.ConnID, room domain.RoomID) {
	e, ok := r.sessions[connID]
	if !ok {
		return
	}
	e.Session.Room = room
	log.Debug().Str("module", "core.registry").
		Str("conn", string(connID)).
		Str("room", string(room)).
		Msg("room assignment updated")
}

// TouchBeat refreshes the heartbeat timestamp, returning false when the
// session is gone.
func (r *Registry) TouchBeat(connID domain.ConnID) bool {
	e, ok := r.sessions[connID]
	if !ok {
		return false
	}
	e.Session.LastBeat = time.Now()
	return true
}

// Remove deletes the session and returns its prior state, or nil when it
// was already absent. Idempotent.
func (r *Registry) Remove(connID domain.ConnID) *domain.Session {
	e, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	delete(r.sessions, connID)
	log.Info().Str("module", "core.registry").Str("conn", string(connID)).Msg("session removed")
	return e.Session
}

// CancelFunc hands out the connection's context cancel so a caller can
// finish other cleanup before tearing down the pumps.
func (r *Registry) CancelFunc(connID domain.ConnID) context.CancelFunc {
	if e, ok := r.sessions[connID]; ok {
		return e.Cancel
	}
	return nil
}

// Cancel fires the connection's context cancel, tearing down its pumps.
func (r *Registry) Cancel(connID domain.ConnID) bool {
	e, ok := r.sessions[connID]
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "core.registry").Str("conn", string(connID)).Msg("canceled connection")
	return true
}

func (r *Registry) Len() int { return len(r.sessions) }

// All snapshots every entry; the reaper and ops stats iterate over this.
func (r *Registry) All() []SessionSnap {
	out := make([]SessionSnap, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, SessionSnap{Session: e.Session, Signal: e.Signal})
	}
	return out
}
