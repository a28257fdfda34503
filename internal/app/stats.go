package app

import (
	"time"

	"github.com/samber/lo"

	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
)

// Stats is the aggregate counters exposed to operational tooling.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
	Users       int `json:"users"`
}

// ConnectionInfo is one connection's ops snapshot (no transport fields).
type ConnectionInfo struct {
	ConnID      domain.ConnID `json:"connectionId"`
	UserID      domain.UserID `json:"userId"`
	UserName    string        `json:"userName"`
	RoomID      domain.RoomID `json:"roomId,omitempty"`
	ConnectedAt time.Time     `json:"connectedAt"`
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Connections: c.reg.Len(),
		Rooms:       c.rooms.Len(),
		Users:       c.users.Len(),
	}
}

func (c *Coordinator) Connections() []ConnectionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Map(c.reg.All(), func(snap core.SessionSnap, _ int) ConnectionInfo {
		s := snap.Session
		return ConnectionInfo{
			ConnID:      s.ConnID,
			UserID:      s.UserID,
			UserName:    s.Name,
			RoomID:      s.Room,
			ConnectedAt: s.ConnectedAt,
		}
	})
}

func (c *Coordinator) Rooms() []core.RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.List()
}

// Session returns a copy of the live session for inspection, mainly by
// tests and ops handlers.
func (c *Coordinator) Session(connID domain.ConnID) (domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.reg.Get(connID)
	if s == nil {
		return domain.Session{}, false
	}
	return *s, true
}

// RoomMembers returns the member connection ids of a room.
func (c *Coordinator) RoomMembers(room domain.RoomID) []domain.ConnID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.Members(room)
}
