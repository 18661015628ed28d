package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type profileDocument struct {
	ID              string    `firestore:"id"`
	Email           string    `firestore:"email"`
	FullName        string    `firestore:"full_name"`
	Role            string    `firestore:"role"`
	HourlyRate      float64   `firestore:"hourly_rate"`
	SlackWebhookURL string    `firestore:"slack_webhook_url"`
	CreatedBy       string    `firestore:"created_by"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

type profileRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProfileRepository(client *firestore.Client) *profileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "profiles"))
}

func profileToModel(doc *profileDocument) *model.Profile {
	return &model.Profile{
		ID:              doc.ID,
		Email:           doc.Email,
		FullName:        doc.FullName,
		Role:            types.Role(doc.Role),
		HourlyRate:      doc.HourlyRate,
		SlackWebhookURL: doc.SlackWebhookURL,
		CreatedBy:       doc.CreatedBy,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func (r *profileRepository) Get(ctx context.Context, id string) (*model.Profile, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "profile not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V("id", id))
	}

	var doc profileDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal profile", goerr.V("id", id))
	}
	return profileToModel(&doc), nil
}

func (r *profileRepository) Put(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	docRef := r.collection().Doc(profile.ID)
	now := time.Now().UTC().Truncate(time.Microsecond)

	var stored *profileDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc := &profileDocument{
			ID:              profile.ID,
			Email:           profile.Email,
			FullName:        profile.FullName,
			Role:            profile.Role.String(),
			HourlyRate:      profile.HourlyRate,
			SlackWebhookURL: profile.SlackWebhookURL,
			CreatedBy:       profile.CreatedBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		snap, err := tx.Get(docRef)
		switch {
		case err == nil:
			var existing profileDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal profile")
			}
			doc.CreatedAt = existing.CreatedAt
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get profile")
		}

		stored = doc
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put profile", goerr.V("id", profile.ID))
	}

	return profileToModel(stored), nil
}
