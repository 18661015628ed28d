package interfaces

import (
	"context"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

// ContactRepository defines the interface for flagged contacts
type ContactRepository interface {
	// Create inserts a contact
	Create(ctx context.Context, contact *model.Contact) (*model.Contact, error)

	// Get retrieves a contact by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id model.ContactID) (*model.Contact, error)

	// DeleteOwned deletes the contact only if it belongs to userID and returns
	// the deleted row. Returns ErrNotFound if no such (id, owner) row exists.
	DeleteOwned(ctx context.Context, id model.ContactID, userID string) (*model.Contact, error)

	// ListByUsers returns contacts owned by any of userIDs, newest first
	ListByUsers(ctx context.Context, userIDs []string) ([]*model.Contact, error)
}
