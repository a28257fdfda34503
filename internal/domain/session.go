// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"
)

const (
	MaxUserNameLen = 36
	MaxRoomIDLen   = 64
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTargetNotFound      = errors.New("target not found")
	ErrNotInRoom           = errors.New("not in a room")
	ErrDuplicateConnection = errors.New("duplicate connection")
	ErrUserNameTooLong     = errors.New("user name too long")
	ErrUserNameEmpty       = errors.New("user name empty")
)

type (
	ConnID string
	UserID string
	RoomID string
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ConnState is the lifecycle of one connection. Transitions only move
// forward; cleanup paths check the state before acting so a kick racing
// a voluntary disconnect does not run twice.
type ConnState int32

const (
	ConnActive ConnState = iota
	ConnLeaving
	ConnTerminating
	ConnClosed
)

// Session is the per-connection presence record. Owned exclusively by the
// registry; the room index and user index only reference its ConnID.
type Session struct {
	ConnID      ConnID
	UserID      UserID
	Name        string
	Role        Role
	Room        RoomID // empty while not in a room
	Muted       bool
	State       ConnState
	ConnectedAt time.Time
	LastBeat    time.Time
}

func NewSession(connID ConnID, userID UserID, name string, role Role) (*Session, error) {
	if name == "" {
		return nil, ErrUserNameEmpty
	}
	if len(name) > MaxUserNameLen {
		return nil, ErrUserNameTooLong
	}
	now := time.Now()
	return &Session{
		ConnID:      connID,
		UserID:      userID,
		Name:        name,
		Role:        role,
		ConnectedAt: now,
		LastBeat:    now,
	}, nil
}

func (s *Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Idle reports the time since the session last proved liveness. The
// connection time counts too, so a fresh session is never considered idle.
func (s *Session) Idle(now time.Time) time.Duration {
	last := s.LastBeat
	if s.ConnectedAt.After(last) {
		last = s.ConnectedAt
	}
	return now.Sub(last)
}
