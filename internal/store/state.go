// Package store mirrors presence into a shared durable store. The mirror
// is written for recovery and cross-instance visibility only; in-process
// decisions never consult it.
package store

import (
	"context"

	"github.com/hward/huddle/internal/domain"
)

// StateStore is the durable mirror of room membership and presence, plus
// the append-only emergency queue. All mutations are idempotent
// (set-add/set-remove) so optimistic writes are safe to repeat.
type StateStore interface {
	AddRoomMember(ctx context.Context, room domain.RoomID, user domain.UserID) error
	RemoveRoomMember(ctx context.Context, room domain.RoomID, user domain.UserID) error
	RoomMembers(ctx context.Context, room domain.RoomID) ([]domain.UserID, error)

	SetPresence(ctx context.Context, s *domain.Session) error
	ClearPresence(ctx context.Context, connID domain.ConnID) error

	// PushAlert appends newest-first; consumption is external tooling's job.
	PushAlert(ctx context.Context, a *domain.EmergencyAlert) error

	Close() error
}
