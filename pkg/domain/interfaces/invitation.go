package interfaces

import (
	"context"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

// InvitationRepository defines the interface for invitations
type InvitationRepository interface {
	// Upsert stores the invitation keyed by (BossID, Email). An existing row
	// keeps its ID and has every other field replaced.
	Upsert(ctx context.Context, inv *model.Invitation) (*model.Invitation, error)

	// GetByToken retrieves an invitation by token. Returns ErrNotFound if absent.
	GetByToken(ctx context.Context, token model.InvitationToken) (*model.Invitation, error)

	// Update overwrites an existing invitation. Returns ErrNotFound if absent.
	Update(ctx context.Context, inv *model.Invitation) (*model.Invitation, error)
}
