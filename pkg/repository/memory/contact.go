package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

type contactRepository struct {
	mu       sync.RWMutex
	contacts map[model.ContactID]*model.Contact
}

func newContactRepository() *contactRepository {
	return &contactRepository{
		contacts: make(map[model.ContactID]*model.Contact),
	}
}

// copyContact creates a deep copy of a contact
func copyContact(c *model.Contact) *model.Contact {
	copied := *c
	if c.ImageURLs != nil {
		copied.ImageURLs = make([]string, len(c.ImageURLs))
		copy(copied.ImageURLs, c.ImageURLs)
	}
	copied.OwnerName = ""
	return &copied
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyContact(contact)
	if created.ID == "" {
		created.ID = model.NewContactID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.contacts[created.ID] = created
	return copyContact(created), nil
}

func (r *contactRepository) Get(ctx context.Context, id model.ContactID) (*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contacts[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "contact not found", goerr.V("id", id))
	}
	return copyContact(c), nil
}

func (r *contactRepository) DeleteOwned(ctx context.Context, id model.ContactID, userID string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return nil, goerr.Wrap(ErrNotFound, "contact not found",
			goerr.V("id", id), goerr.V("user_id", userID))
	}

	delete(r.contacts, id)
	return copyContact(c), nil
}

func (r *contactRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		owners[id] = struct{}{}
	}

	result := make([]*model.Contact, 0)
	for _, c := range r.contacts {
		if _, ok := owners[c.UserID]; ok {
			result = append(result, copyContact(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
