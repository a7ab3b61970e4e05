package live

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OwnerResolver maps a profile to the account that owns it
type OwnerResolver interface {
	OwnerOf(ctx context.Context, profileID uuid.UUID) (uuid.UUID, error)
}

// BalanceUpdate is the payload of a balance.updated event
type BalanceUpdate struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Balance   int64     `json:"balance"`
}

// Notifier pushes balance changes to the owning account's connections
type Notifier struct {
	hub    *Hub
	owners OwnerResolver
}

// NewNotifier creates notifier
func NewNotifier(hub *Hub, owners OwnerResolver) *Notifier {
	return &Notifier{hub: hub, owners: owners}
}

// BalanceChanged sends a balance.updated event. Failures are logged only.
func (n *Notifier) BalanceChanged(ctx context.Context, profileID uuid.UUID, balance int64) {
	accountID, err := n.owners.OwnerOf(ctx, profileID)
	if err != nil {
		log.Warn().Err(err).Str("profile_id", profileID.String()).Msg("cannot resolve profile owner for live update")
		return
	}

	err = n.hub.SendToAccount(ctx, accountID, &Event{
		Type: EventBalanceUpdated,
		Data: BalanceUpdate{ProfileID: profileID, Balance: balance},
	})
	if err != nil {
		log.Warn().Err(err).Str("profile_id", profileID.String()).Msg("live balance update failed")
	}
}
