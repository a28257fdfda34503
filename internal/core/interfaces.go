package core

import "github.com/hward/huddle/internal/domain"

// Frame is an encoded outbound message.
type Frame []byte

// SignalConnection abstracts the messaging transport for one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// SessionSnap pairs a session with its transport endpoint. This is what
// fan-out iterates over.
type SessionSnap struct {
	Session *domain.Session
	Signal  SignalConnection
}

// ParticipantDTO is a read-only roster entry for clients and ops APIs
// (no transport fields).
type ParticipantDTO struct {
	ConnID   domain.ConnID `json:"connectionId"`
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
	Role     domain.Role   `json:"role"`
	IsMuted  bool          `json:"isMuted"`
}

type RoomInfo struct {
	ID               domain.RoomID `json:"roomId"`
	ParticipantCount int           `json:"participantCount"`
}
