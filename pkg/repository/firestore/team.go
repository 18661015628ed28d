package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type teamDocument struct {
	ID           string    `firestore:"id"`
	BossID       string    `firestore:"boss_id"`
	VAID         string    `firestore:"va_id"`
	Status       string    `firestore:"status"`
	CreatedBy    string    `firestore:"created_by"`
	InvitationID string    `firestore:"invitation_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

type teamRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTeamRepository(client *firestore.Client) *teamRepository {
	return &teamRepository{client: client}
}

func (r *teamRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "team_relationships"))
}

func teamToModel(doc *teamDocument) *model.TeamRelationship {
	return &model.TeamRelationship{
		ID:           model.TeamRelationshipID(doc.ID),
		BossID:       doc.BossID,
		VAID:         doc.VAID,
		Status:       types.TeamStatus(doc.Status),
		CreatedBy:    doc.CreatedBy,
		InvitationID: model.InvitationID(doc.InvitationID),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func (r *teamRepository) Create(ctx context.Context, rel *model.TeamRelationship) (*model.TeamRelationship, error) {
	id := model.NewTeamRelationshipID(rel.BossID, rel.VAID)
	docRef := r.collection().Doc(string(id))

	var stored *teamDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		switch {
		case err == nil:
			var existing teamDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal team relationship")
			}
			if existing.Status == types.TeamStatusActive.String() {
				return goerr.Wrap(ErrAlreadyExists, "team relationship already active")
			}
		case status.Code(err) == codes.NotFound:
		default:
			return goerr.Wrap(err, "failed to get team relationship")
		}

		now := time.Now().UTC()
		doc := &teamDocument{
			ID:           string(id),
			BossID:       rel.BossID,
			VAID:         rel.VAID,
			Status:       rel.Status.String(),
			CreatedBy:    rel.CreatedBy,
			InvitationID: string(rel.InvitationID),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if doc.Status == "" {
			doc.Status = types.TeamStatusActive.String()
		}
		stored = doc
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create team relationship",
			goerr.V("boss_id", rel.BossID), goerr.V("va_id", rel.VAID))
	}
	return teamToModel(stored), nil
}

func (r *teamRepository) query(ctx context.Context, q firestore.Query) ([]*model.TeamRelationship, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.TeamRelationship, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate team relationships")
		}

		var doc teamDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal team relationship")
		}
		result = append(result, teamToModel(&doc))
	}
	return result, nil
}

func (r *teamRepository) ListActiveByBoss(ctx context.Context, bossID string) ([]*model.TeamRelationship, error) {
	return r.query(ctx, r.collection().
		Where("boss_id", "==", bossID).
		Where("status", "==", types.TeamStatusActive.String()).
		OrderBy("created_at", firestore.Asc))
}

func (r *teamRepository) FindActive(ctx context.Context, bossID, vaID string) (*model.TeamRelationship, error) {
	rels, err := r.query(ctx, r.collection().
		Where("boss_id", "==", bossID).
		Where("va_id", "==", vaID).
		Where("status", "==", types.TeamStatusActive.String()).
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return rels[0], nil
}

func (r *teamRepository) FindActiveByVA(ctx context.Context, vaID string) (*model.TeamRelationship, error) {
	rels, err := r.query(ctx, r.collection().
		Where("va_id", "==", vaID).
		Where("status", "==", types.TeamStatusActive.String()).
		OrderBy("created_at", firestore.Asc).
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return rels[0], nil
}

func (r *teamRepository) UpdateStatus(ctx context.Context, id model.TeamRelationshipID, newStatus types.TeamStatus) error {
	_, err := r.collection().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "status", Value: newStatus.String()},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "team relationship not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update team relationship", goerr.V("id", id))
	}
	return nil
}
