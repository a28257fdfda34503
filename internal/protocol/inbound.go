// Package protocol defines the closed set of messages exchanged over the
// signal connection. Inbound frames are decoded and validated once at the
// transport boundary; handlers only ever see typed payloads.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hward/huddle/internal/domain"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrBadPayload  = errors.New("bad payload")
)

var validate = validator.New()

// Inbound is the closed variant of client-to-server messages.
type Inbound interface{ inbound() }

type JoinRoom struct {
	RoomID   string `json:"roomId" validate:"required,max=64"`
	UserName string `json:"userName" validate:"omitempty,max=36"`
}

type LeaveRoom struct{}

type RoomStateRequest struct{}

type AudioToggle struct {
	IsMuted bool `json:"isMuted"`
}

type AdminKick struct {
	TargetConnID string `json:"targetConnectionId" validate:"required"`
	Reason       string `json:"reason" validate:"max=256"`
}

type AdminMute struct {
	TargetConnID string `json:"targetConnectionId" validate:"required"`
}

type EmergencyRaise struct {
	Location *domain.Location `json:"location,omitempty"`
	Message  string           `json:"message" validate:"max=1024"`
}

type Ping struct{}

func (JoinRoom) inbound()         {}
func (LeaveRoom) inbound()        {}
func (RoomStateRequest) inbound() {}
func (AudioToggle) inbound()      {}
func (AdminKick) inbound()        {}
func (AdminMute) inbound()        {}
func (EmergencyRaise) inbound()   {}
func (Ping) inbound()             {}

type envelope struct {
	Type string `json:"type"`
}

// Decode parses one wire frame into its typed variant. Unknown types and
// malformed payloads are protocol errors; the connection stays usable.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	var msg Inbound
	switch env.Type {
	case "room:join":
		msg = &JoinRoom{}
	case "room:leave":
		return &LeaveRoom{}, nil
	case "room:state":
		return &RoomStateRequest{}, nil
	case "audio:toggle":
		msg = &AudioToggle{}
	case "admin:kick":
		msg = &AdminKick{}
	case "admin:mute":
		msg = &AdminMute{}
	case "emergency:alert":
		msg = &EmergencyRaise{}
	case "ping":
		return &Ping{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return msg, nil
}
