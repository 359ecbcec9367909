package wshandler

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	ws "github.com/Temutjin2k/jwt-auth/pkg/wsHub"
)

// LoginNotification is pushed to the user's open session socket on every login.
type LoginNotification struct {
	Type       string    `json:"type"`
	TokenID    string    `json:"token_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers auth events to connected users. Users without an open socket are skipped.
type Notifier struct {
	hub *ws.ConnectionHub
}

func NewNotifier(hub *ws.ConnectionHub) *Notifier {
	return &Notifier{hub: hub}
}

// PublishUserRegistered is a no-op: a new user cannot have an open session yet.
func (n *Notifier) PublishUserRegistered(context.Context, models.UserRegisteredEvent) error {
	return nil
}

func (n *Notifier) PublishUserLoggedIn(_ context.Context, event models.UserLoggedInEvent) error {
	err := n.hub.SendTo(event.UserID, LoginNotification{
		Type:       TypeLogin,
		TokenID:    event.TokenID,
		OccurredAt: event.OccurredAt,
	})
	if errors.Is(err, ws.ErrConnIsNotFound) {
		return nil
	}
	return err
}
