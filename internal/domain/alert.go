package domain

import "time"

// Location is an optional geographic fix attached to an alert.
type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// EmergencyAlert is append-only: built once on raise, queued durably,
// never mutated afterwards.
type EmergencyAlert struct {
	UserID   UserID    `json:"user_id"`
	UserName string    `json:"user_name"`
	Location *Location `json:"location,omitempty"`
	Message  string    `json:"message"`
	Room     RoomID    `json:"room_id"`
	At       time.Time `json:"at"`
}

func NewEmergencyAlert(s *Session, loc *Location, message string) *EmergencyAlert {
	return &EmergencyAlert{
		UserID:   s.UserID,
		UserName: s.Name,
		Location: loc,
		Message:  message,
		Room:     s.Room,
		At:       time.Now(),
	}
}
