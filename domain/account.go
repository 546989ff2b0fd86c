package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered identity able to mint session tokens. Unlike
// User it carries credentials and never travels on the wire.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
