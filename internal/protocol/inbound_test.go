package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_JoinRoom(t *testing.T) {
	req := require.New(t)
	msg, err := Decode([]byte(`{"type":"room:join","roomId":"alpha","userName":"X"}`))
	req.NoError(err)

	join, ok := msg.(*JoinRoom)
	req.True(ok)
	req.Equal("alpha", join.RoomID)
	req.Equal("X", join.UserName)
}

func TestDecode_JoinRoomRequiresRoomID(t *testing.T) {
	_, err := Decode([]byte(`{"type":"room:join","userName":"X"}`))
	require.ErrorIs(t, err, ErrBadPayload)
}

func TestDecode_PayloadlessVariants(t *testing.T) {
	req := require.New(t)

	msg, err := Decode([]byte(`{"type":"room:leave"}`))
	req.NoError(err)
	req.IsType(&LeaveRoom{}, msg)

	msg, err = Decode([]byte(`{"type":"room:state"}`))
	req.NoError(err)
	req.IsType(&RoomStateRequest{}, msg)

	msg, err = Decode([]byte(`{"type":"ping"}`))
	req.NoError(err)
	req.IsType(&Ping{}, msg)
}

func TestDecode_AudioToggle(t *testing.T) {
	req := require.New(t)
	msg, err := Decode([]byte(`{"type":"audio:toggle","isMuted":true}`))
	req.NoError(err)
	req.True(msg.(*AudioToggle).IsMuted)
}

func TestDecode_AdminKick(t *testing.T) {
	req := require.New(t)
	msg, err := Decode([]byte(`{"type":"admin:kick","targetConnectionId":"c9","reason":"spam"}`))
	req.NoError(err)

	kick := msg.(*AdminKick)
	req.Equal("c9", kick.TargetConnID)
	req.Equal("spam", kick.Reason)

	_, err = Decode([]byte(`{"type":"admin:kick","reason":"spam"}`))
	req.ErrorIs(err, ErrBadPayload)
}

func TestDecode_EmergencyWithOptionalLocation(t *testing.T) {
	req := require.New(t)

	msg, err := Decode([]byte(`{"type":"emergency:alert","message":"help","location":{"lat":48.85,"lng":2.35,"accuracy":10}}`))
	req.NoError(err)
	raise := msg.(*EmergencyRaise)
	req.NotNil(raise.Location)
	req.InDelta(48.85, raise.Location.Lat, 1e-9)

	msg, err = Decode([]byte(`{"type":"emergency:alert","message":"help"}`))
	req.NoError(err)
	req.Nil(msg.(*EmergencyRaise).Location)
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"room:explode"}`))
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	require.ErrorIs(t, err, ErrBadPayload)
}
