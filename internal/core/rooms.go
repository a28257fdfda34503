package core

import (
	"github.com/rs/zerolog/log"

	"github.com/hward/huddle/internal/domain"
)

// RoomIndex maps a room id to its member connection set. Rooms exist
// exactly while they have members: created on first join, dropped when
// the last member leaves.
type RoomIndex struct {
	rooms map[domain.RoomID]map[domain.ConnID]struct{}
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{rooms: make(map[domain.RoomID]map[domain.ConnID]struct{})}
}

func (ri *RoomIndex) Join(room domain.RoomID, connID domain.ConnID) {
	set, ok := ri.rooms[room]
	if !ok {
		set = make(map[domain.ConnID]struct{})
		ri.rooms[room] = set
		log.Info().Str("module", "core.rooms").Str("room", string(room)).Msg("room created")
	}
	set[connID] = struct{}{}
}

// Leave removes the connection from the room. Leaving a room you are not
// in is a no-op, not an error.
func (ri *RoomIndex) Leave(room domain.RoomID, connID domain.ConnID) {
	set, ok := ri.rooms[room]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(ri.rooms, room)
		log.Info().Str("module", "core.rooms").Str("room", string(room)).Msg("room is empty, removed")
	}
}

// Members returns the member connection ids of a room. Order is not
// meaningful.
func (ri *RoomIndex) Members(room domain.RoomID) []domain.ConnID {
	set, ok := ri.rooms[room]
	if !ok {
		return nil
	}
	out := make([]domain.ConnID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (ri *RoomIndex) Size(room domain.RoomID) int { return len(ri.rooms[room]) }

func (ri *RoomIndex) Len() int { return len(ri.rooms) }

func (ri *RoomIndex) List() []RoomInfo {
	out := make([]RoomInfo, 0, len(ri.rooms))
	for id, set := range ri.rooms {
		out = append(out, RoomInfo{ID: id, ParticipantCount: len(set)})
	}
	return out
}
