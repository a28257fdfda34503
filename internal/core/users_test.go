package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserIndex_MultiDevice(t *testing.T) {
	req := require.New(t)
	ui := NewUserIndex()

	ui.Add("u1", "phone")
	ui.Add("u1", "laptop")
	ui.Add("u2", "phone2")

	req.Equal(2, ui.Len())
	req.Equal(2, ui.Connections("u1"))
	req.True(ui.Connected("u1"))
}

func TestUserIndex_ConnectedUntilLastDeviceGone(t *testing.T) {
	req := require.New(t)
	ui := NewUserIndex()

	ui.Add("u1", "phone")
	ui.Add("u1", "laptop")

	ui.Remove("u1", "phone")
	req.True(ui.Connected("u1"))

	ui.Remove("u1", "laptop")
	req.False(ui.Connected("u1"))
	req.Equal(0, ui.Len())
}

func TestUserIndex_RemoveUnknownIsNoOp(t *testing.T) {
	ui := NewUserIndex()
	ui.Remove("ghost", "phone")
	require.Equal(t, 0, ui.Len())
}
