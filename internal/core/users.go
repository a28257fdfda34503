package core

import "github.com/hward/huddle/internal/domain"

// UserIndex tracks every live connection per user identity, so one user
// on several devices is several connections under one key. It mirrors
// the room index add/remove pattern keyed by user instead of room.
type UserIndex struct {
	users map[domain.UserID]map[domain.ConnID]struct{}
}

func NewUserIndex() *UserIndex {
	return &UserIndex{users: make(map[domain.UserID]map[domain.ConnID]struct{})}
}

func (ui *UserIndex) Add(user domain.UserID, connID domain.ConnID) {
	set, ok := ui.users[user]
	if !ok {
		set = make(map[domain.ConnID]struct{})
		ui.users[user] = set
	}
	set[connID] = struct{}{}
}

func (ui *UserIndex) Remove(user domain.UserID, connID domain.ConnID) {
	set, ok := ui.users[user]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(ui.users, user)
	}
}

// Connected reports whether the user still has any live connection;
// used to decide whether a user went fully offline.
func (ui *UserIndex) Connected(user domain.UserID) bool {
	return len(ui.users[user]) > 0
}

func (ui *UserIndex) Connections(user domain.UserID) int { return len(ui.users[user]) }

func (ui *UserIndex) Len() int { return len(ui.users) }
