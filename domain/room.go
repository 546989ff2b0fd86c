package domain

import "github.com/google/uuid"

// RoomID is a routing key: every subscriber to a room receives every
// event broadcast within it. Rooms are not persisted entities here.
type RoomID = uuid.UUID

func ParseRoomID(s string) (RoomID, error) {
	return uuid.Parse(s)
}
