package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type invitationDocument struct {
	ID         string     `firestore:"id"`
	BossID     string     `firestore:"boss_id"`
	Email      string     `firestore:"email"`
	FullName   string     `firestore:"full_name"`
	HourlyRate float64    `firestore:"hourly_rate"`
	Status     string     `firestore:"status"`
	Token      string     `firestore:"token"`
	ExpiresAt  time.Time  `firestore:"expires_at"`
	CreatedAt  time.Time  `firestore:"created_at"`
	AcceptedAt *time.Time `firestore:"accepted_at,omitempty"`
}

type invitationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newInvitationRepository(client *firestore.Client) *invitationRepository {
	return &invitationRepository{client: client}
}

func (r *invitationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "invitations"))
}

// invitationDocID derives the document ID from (boss, email) so that the
// upsert key is enforced by the document key itself
func invitationDocID(bossID, email string) string {
	sum := sha256.Sum256([]byte(bossID + "\x00" + model.NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

func invitationToDocument(inv *model.Invitation) *invitationDocument {
	return &invitationDocument{
		ID:         string(inv.ID),
		BossID:     inv.BossID,
		Email:      model.NormalizeEmail(inv.Email),
		FullName:   inv.FullName,
		HourlyRate: inv.HourlyRate,
		Status:     inv.Status.String(),
		Token:      inv.Token.String(),
		ExpiresAt:  inv.ExpiresAt,
		CreatedAt:  inv.CreatedAt,
		AcceptedAt: inv.AcceptedAt,
	}
}

func invitationToModel(doc *invitationDocument) *model.Invitation {
	return &model.Invitation{
		ID:         model.InvitationID(doc.ID),
		BossID:     doc.BossID,
		Email:      doc.Email,
		FullName:   doc.FullName,
		HourlyRate: doc.HourlyRate,
		Status:     types.InvitationStatus(doc.Status),
		Token:      model.InvitationToken(doc.Token),
		ExpiresAt:  doc.ExpiresAt,
		CreatedAt:  doc.CreatedAt,
		AcceptedAt: doc.AcceptedAt,
	}
}

func (r *invitationRepository) Upsert(ctx context.Context, inv *model.Invitation) (*model.Invitation, error) {
	docRef := r.collection().Doc(invitationDocID(inv.BossID, inv.Email))

	var stored *invitationDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc := invitationToDocument(inv)

		snap, err := tx.Get(docRef)
		switch {
		case err == nil:
			var existing invitationDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal invitation")
			}
			doc.ID = existing.ID
		case status.Code(err) == codes.NotFound:
			if doc.ID == "" {
				doc.ID = string(model.NewInvitationID())
			}
		default:
			return goerr.Wrap(err, "failed to get invitation")
		}

		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}
		stored = doc
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert invitation",
			goerr.V("boss_id", inv.BossID))
	}

	return invitationToModel(stored), nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token model.InvitationToken) (*model.Invitation, error) {
	iter := r.collection().Where("token", "==", token.String()).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "invitation not found")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query invitation")
	}

	var doc invitationDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal invitation")
	}
	return invitationToModel(&doc), nil
}

func (r *invitationRepository) Update(ctx context.Context, inv *model.Invitation) (*model.Invitation, error) {
	docRef := r.collection().Doc(invitationDocID(inv.BossID, inv.Email))

	snap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "invitation not found", goerr.V("id", inv.ID))
		}
		return nil, goerr.Wrap(err, "failed to get invitation", goerr.V("id", inv.ID))
	}

	var existing invitationDocument
	if err := snap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal invitation", goerr.V("id", inv.ID))
	}
	if existing.ID != string(inv.ID) {
		return nil, goerr.Wrap(ErrNotFound, "invitation not found", goerr.V("id", inv.ID))
	}

	doc := invitationToDocument(inv)
	doc.CreatedAt = existing.CreatedAt
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update invitation", goerr.V("id", inv.ID))
	}
	return invitationToModel(doc), nil
}
