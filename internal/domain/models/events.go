package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserLoggedInEvent is published after a successful login.
type UserLoggedInEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	TokenID    string    `json:"token_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
