package protocol

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
)

// Outbound messages carry their wire type in the struct itself so the
// fan-out path is one marshal away from a frame.

type RoomJoined struct {
	Type         string                `json:"type"`
	RoomID       domain.RoomID         `json:"roomId"`
	Participants []core.ParticipantDTO `json:"participants"`
	Timestamp    time.Time             `json:"timestamp"`
}

type RoomState struct {
	Type             string                `json:"type"`
	RoomID           domain.RoomID         `json:"roomId"`
	Participants     []core.ParticipantDTO `json:"participants"`
	ParticipantCount int                   `json:"participantCount"`
	Timestamp        time.Time             `json:"timestamp"`
}

type ParticipantJoined struct {
	Type      string        `json:"type"`
	UserID    domain.UserID `json:"userId"`
	UserName  string        `json:"userName"`
	ConnID    domain.ConnID `json:"connectionId"`
	Timestamp time.Time     `json:"timestamp"`
}

type ParticipantLeft struct {
	Type      string        `json:"type"`
	UserID    domain.UserID `json:"userId"`
	UserName  string        `json:"userName"`
	Timestamp time.Time     `json:"timestamp"`
}

type AudioChanged struct {
	Type      string        `json:"type"`
	UserID    domain.UserID `json:"userId"`
	UserName  string        `json:"userName"`
	IsMuted   bool          `json:"isMuted"`
	Timestamp time.Time     `json:"timestamp"`
}

type Kicked struct {
	Type      string    `json:"type"`
	By        string    `json:"by"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type ForcedMute struct {
	Type      string    `json:"type"`
	By        string    `json:"by"`
	Timestamp time.Time `json:"timestamp"`
}

type EmergencyReceived struct {
	Type      string           `json:"type"`
	UserID    domain.UserID    `json:"userId"`
	UserName  string           `json:"userName"`
	Location  *domain.Location `json:"location,omitempty"`
	Message   string           `json:"message"`
	RoomID    domain.RoomID    `json:"roomId"`
	Timestamp time.Time        `json:"timestamp"`
}

type EmergencySent struct {
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Pong struct {
	Type      string    `json:"type"`
	Pong      bool      `json:"pong"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewRoomJoined(room domain.RoomID, roster []core.ParticipantDTO) RoomJoined {
	return RoomJoined{Type: "room:joined", RoomID: room, Participants: roster, Timestamp: time.Now()}
}

func NewRoomState(room domain.RoomID, roster []core.ParticipantDTO) RoomState {
	return RoomState{
		Type:             "room:state",
		RoomID:           room,
		Participants:     roster,
		ParticipantCount: len(roster),
		Timestamp:        time.Now(),
	}
}

func NewParticipantJoined(s *domain.Session) ParticipantJoined {
	return ParticipantJoined{
		Type:      "participant:joined",
		UserID:    s.UserID,
		UserName:  s.Name,
		ConnID:    s.ConnID,
		Timestamp: time.Now(),
	}
}

func NewParticipantLeft(s *domain.Session) ParticipantLeft {
	return ParticipantLeft{Type: "participant:left", UserID: s.UserID, UserName: s.Name, Timestamp: time.Now()}
}

func NewAudioChanged(s *domain.Session) AudioChanged {
	return AudioChanged{
		Type:      "participant:audio-changed",
		UserID:    s.UserID,
		UserName:  s.Name,
		IsMuted:   s.Muted,
		Timestamp: time.Now(),
	}
}

func NewKicked(by, reason string) Kicked {
	return Kicked{Type: "kicked", By: by, Reason: reason, Timestamp: time.Now()}
}

func NewForcedMute(by string) ForcedMute {
	return ForcedMute{Type: "forced-mute", By: by, Timestamp: time.Now()}
}

func NewEmergencyReceived(a *domain.EmergencyAlert) EmergencyReceived {
	return EmergencyReceived{
		Type:      "emergency:received",
		UserID:    a.UserID,
		UserName:  a.UserName,
		Location:  a.Location,
		Message:   a.Message,
		RoomID:    a.Room,
		Timestamp: a.At,
	}
}

func NewEmergencySent() EmergencySent {
	return EmergencySent{Type: "emergency:sent", Status: "received", Timestamp: time.Now()}
}

func NewPong() Pong {
	return Pong{Type: "pong", Pong: true, Timestamp: time.Now()}
}

func NewError(msg string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: msg}
}

// Encode marshals an outbound message to a wire frame. A marshal failure
// here is a programming error; it is logged and yields a nil frame that
// TrySend treats as a no-op.
func Encode(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "protocol").Msg("encode outbound")
		return nil
	}
	return core.Frame(b)
}
