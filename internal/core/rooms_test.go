package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hward/huddle/internal/domain"
)

func TestRoomIndex_JoinCreatesRoom(t *testing.T) {
	req := require.New(t)
	ri := NewRoomIndex()

	ri.Join("alpha", "c1")
	ri.Join("alpha", "c2")

	req.Equal(1, ri.Len())
	req.Equal(2, ri.Size("alpha"))
	req.ElementsMatch([]domain.ConnID{"c1", "c2"}, ri.Members("alpha"))
}

func TestRoomIndex_JoinIsSetSemantics(t *testing.T) {
	req := require.New(t)
	ri := NewRoomIndex()

	ri.Join("alpha", "c1")
	ri.Join("alpha", "c1")

	req.Equal(1, ri.Size("alpha"))
}

func TestRoomIndex_EmptyRoomIsRemoved(t *testing.T) {
	req := require.New(t)
	ri := NewRoomIndex()

	ri.Join("alpha", "c1")
	ri.Leave("alpha", "c1")

	// A room entry exists iff its membership set is non-empty
	req.Equal(0, ri.Len())
	req.Nil(ri.Members("alpha"))
}

func TestRoomIndex_LeaveIsIdempotent(t *testing.T) {
	req := require.New(t)
	ri := NewRoomIndex()

	ri.Join("alpha", "c1")
	ri.Join("alpha", "c2")
	ri.Leave("alpha", "c1")
	ri.Leave("alpha", "c1")
	ri.Leave("beta", "c1") // room never existed

	req.Equal(1, ri.Size("alpha"))
}

func TestRoomIndex_List(t *testing.T) {
	req := require.New(t)
	ri := NewRoomIndex()

	ri.Join("alpha", "c1")
	ri.Join("alpha", "c2")
	ri.Join("beta", "c3")

	infos := ri.List()
	req.Len(infos, 2)
	counts := map[domain.RoomID]int{}
	for _, info := range infos {
		counts[info.ID] = info.ParticipantCount
	}
	req.Equal(2, counts["alpha"])
	req.Equal(1, counts["beta"])
}
