package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

type invitationKey struct {
	bossID string
	email  string
}

type invitationRepository struct {
	mu          sync.RWMutex
	invitations map[invitationKey]*model.Invitation
}

func newInvitationRepository() *invitationRepository {
	return &invitationRepository{
		invitations: make(map[invitationKey]*model.Invitation),
	}
}

func copyInvitation(inv *model.Invitation) *model.Invitation {
	copied := *inv
	if inv.AcceptedAt != nil {
		t := *inv.AcceptedAt
		copied.AcceptedAt = &t
	}
	return &copied
}

func keyOf(inv *model.Invitation) invitationKey {
	return invitationKey{bossID: inv.BossID, email: model.NormalizeEmail(inv.Email)}
}

func (r *invitationRepository) Upsert(ctx context.Context, inv *model.Invitation) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyInvitation(inv)
	stored.Email = model.NormalizeEmail(stored.Email)
	key := keyOf(stored)

	if existing, ok := r.invitations[key]; ok {
		stored.ID = existing.ID
	} else if stored.ID == "" {
		stored.ID = model.NewInvitationID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.invitations[key] = stored
	return copyInvitation(stored), nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token model.InvitationToken) (*model.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, inv := range r.invitations {
		if inv.Token == token {
			return copyInvitation(inv), nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "invitation not found")
}

func (r *invitationRepository) Update(ctx context.Context, inv *model.Invitation) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, existing := range r.invitations {
		if existing.ID != inv.ID {
			continue
		}
		updated := copyInvitation(inv)
		updated.BossID = existing.BossID
		updated.Email = existing.Email
		updated.CreatedAt = existing.CreatedAt
		r.invitations[key] = updated
		return copyInvitation(updated), nil
	}
	return nil, goerr.Wrap(ErrNotFound, "invitation not found", goerr.V("id", inv.ID))
}
