// Package domain contains core concepts of the chat relay.
// This file defines the message payload exchanged in rooms.
// Messages are immutable once published.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageStatus tracks how far a message made it towards its readers.
type MessageStatus int

const (
	StatusNotSent MessageStatus = iota + 1
	StatusSent
	StatusSeen
)

func (s MessageStatus) String() string {
	switch s {
	case StatusNotSent:
		return "NotSent"
	case StatusSent:
		return "Sent"
	case StatusSeen:
		return "Seen"
	}
	return fmt.Sprintf("MessageStatus(%d)", int(s))
}

// MarshalJSON encodes the status as its variant name, which is the form
// clients exchange on the wire.
func (s MessageStatus) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusNotSent, StatusSent, StatusSeen:
		return []byte(`"` + s.String() + `"`), nil
	}
	return nil, fmt.Errorf("invalid message status %d", int(s))
}

// UnmarshalJSON accepts either the variant name or its integer code.
func (s *MessageStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"NotSent"`, "1":
		*s = StatusNotSent
	case `"Sent"`, "2":
		*s = StatusSent
	case `"Seen"`, "3":
		*s = StatusSeen
	default:
		return fmt.Errorf("invalid message status %s", string(data))
	}
	return nil
}

// User is the author reference carried inside a message.
// Credentials never cross this boundary.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageContent is one chat message scoped to a room.
type MessageContent struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	Author    User          `json:"author"`
	Room      RoomID        `json:"room"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// FillDefaults assigns an id and a creation timestamp when the client
// left them empty.
func (m *MessageContent) FillDefaults() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Status == 0 {
		m.Status = StatusNotSent
	}
}
