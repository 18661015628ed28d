package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type contactDocument struct {
	ID          string    `firestore:"id"`
	UserID      string    `firestore:"user_id"`
	Name        string    `firestore:"name"`
	LinkedInURL string    `firestore:"linkedin_url"`
	Notes       string    `firestore:"notes"`
	Priority    string    `firestore:"priority"`
	ImageURLs   []string  `firestore:"image_urls"`
	DateAdded   string    `firestore:"date_added"`
	CreatedAt   time.Time `firestore:"created_at"`
}

type contactRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newContactRepository(client *firestore.Client) *contactRepository {
	return &contactRepository{client: client}
}

func (r *contactRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "contacts"))
}

func contactToDocument(c *model.Contact) *contactDocument {
	imageURLs := c.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return &contactDocument{
		ID:          string(c.ID),
		UserID:      c.UserID,
		Name:        c.Name,
		LinkedInURL: c.LinkedInURL,
		Notes:       c.Notes,
		Priority:    c.Priority.String(),
		ImageURLs:   imageURLs,
		DateAdded:   c.DateAdded.String(),
		CreatedAt:   c.CreatedAt,
	}
}

func contactToModel(doc *contactDocument) *model.Contact {
	imageURLs := doc.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return &model.Contact{
		ID:          model.ContactID(doc.ID),
		UserID:      doc.UserID,
		Name:        doc.Name,
		LinkedInURL: doc.LinkedInURL,
		Notes:       doc.Notes,
		Priority:    types.Priority(doc.Priority),
		ImageURLs:   imageURLs,
		DateAdded:   types.ActivityDate(doc.DateAdded),
		CreatedAt:   doc.CreatedAt,
	}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	created := *contact
	if created.ID == "" {
		created.ID = model.NewContactID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	doc := contactToDocument(&created)
	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create contact", goerr.V("user_id", created.UserID))
	}
	return contactToModel(doc), nil
}

func (r *contactRepository) Get(ctx context.Context, id model.ContactID) (*model.Contact, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "contact not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get contact", goerr.V("id", id))
	}

	var doc contactDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal contact", goerr.V("id", id))
	}
	return contactToModel(&doc), nil
}

func (r *contactRepository) DeleteOwned(ctx context.Context, id model.ContactID, userID string) (*model.Contact, error) {
	docRef := r.collection().Doc(id.String())

	var deleted *model.Contact
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "contact not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get contact", goerr.V("id", id))
		}

		var doc contactDocument
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to unmarshal contact", goerr.V("id", id))
		}
		if doc.UserID != userID {
			return goerr.Wrap(ErrNotFound, "contact not found",
				goerr.V("id", id), goerr.V("user_id", userID))
		}

		deleted = contactToModel(&doc)
		return tx.Delete(docRef)
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func (r *contactRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*model.Contact, error) {
	// Firestore has a limit of 30 items in an IN query, so we need to batch
	const batchSize = 30
	result := make([]*model.Contact, 0)

	for i := 0; i < len(userIDs); i += batchSize {
		end := min(i+batchSize, len(userIDs))

		iter := r.collection().Where("user_id", "in", userIDs[i:end]).Documents(ctx)
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to iterate contacts")
			}

			var doc contactDocument
			if err := snap.DataTo(&doc); err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to unmarshal contact")
			}
			result = append(result, contactToModel(&doc))
		}
		iter.Stop()
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
