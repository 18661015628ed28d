package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type goalDocument struct {
	ID            string    `firestore:"id"`
	UserID        string    `firestore:"user_id"`
	GoalType      string    `firestore:"goal_type"`
	TargetValue   int       `firestore:"target_value"`
	EffectiveFrom time.Time `firestore:"effective_from"`
}

type goalRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newGoalRepository(client *firestore.Client) *goalRepository {
	return &goalRepository{client: client}
}

func (r *goalRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "goals"))
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
	created := *goal
	if created.ID == "" {
		created.ID = model.NewGoalID()
	}

	doc := &goalDocument{
		ID:            string(created.ID),
		UserID:        created.UserID,
		GoalType:      created.Type.String(),
		TargetValue:   created.TargetValue,
		EffectiveFrom: created.EffectiveFrom,
	}
	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create goal", goerr.V("user_id", created.UserID))
	}

	return &created, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]*model.Goal, error) {
	iter := r.collection().
		Where("user_id", "==", userID).
		OrderBy("effective_from", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Goal, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate goals", goerr.V("user_id", userID))
		}

		var doc goalDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal goal")
		}
		result = append(result, &model.Goal{
			ID:            model.GoalID(doc.ID),
			UserID:        doc.UserID,
			Type:          types.GoalType(doc.GoalType),
			TargetValue:   doc.TargetValue,
			EffectiveFrom: doc.EffectiveFrom,
		})
	}

	return result, nil
}
