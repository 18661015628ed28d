package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type activityDocument struct {
	ID                  string    `firestore:"id"`
	UserID              string    `firestore:"user_id"`
	Date                string    `firestore:"date"`
	DMsSent             int       `firestore:"dms_sent"`
	ConnectionsSent     int       `firestore:"connections_sent"`
	ConnectionsAccepted int       `firestore:"connections_accepted"`
	CreatedAt           time.Time `firestore:"created_at"`
	UpdatedAt           time.Time `firestore:"updated_at"`
}

type activityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newActivityRepository(client *firestore.Client) *activityRepository {
	return &activityRepository{client: client}
}

func (r *activityRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "daily_activities"))
}

func activityToDocument(a *model.DailyActivity) *activityDocument {
	return &activityDocument{
		ID:                  string(a.ID),
		UserID:              a.UserID,
		Date:                a.Date.String(),
		DMsSent:             a.DMsSent,
		ConnectionsSent:     a.ConnectionsSent,
		ConnectionsAccepted: a.ConnectionsAccepted,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func activityToModel(doc *activityDocument) *model.DailyActivity {
	return &model.DailyActivity{
		ID:                  model.ActivityID(doc.ID),
		UserID:              doc.UserID,
		Date:                types.ActivityDate(doc.Date),
		DMsSent:             doc.DMsSent,
		ConnectionsSent:     doc.ConnectionsSent,
		ConnectionsAccepted: doc.ConnectionsAccepted,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}

func (r *activityRepository) get(ctx context.Context, id model.ActivityID) (*model.DailyActivity, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "activity not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get activity", goerr.V("id", id))
	}

	var doc activityDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal activity", goerr.V("id", id))
	}
	return activityToModel(&doc), nil
}

func (r *activityRepository) GetOrCreate(ctx context.Context, userID string, date types.ActivityDate) (*model.DailyActivity, error) {
	id := model.NewActivityID(userID, date)

	existing, err := r.get(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	created := model.NewDailyActivity(userID, date)
	created.CreatedAt = now
	created.UpdatedAt = now

	// Create fails with AlreadyExists when another caller won the race; the
	// winner's row is then the one to return.
	if _, err := r.collection().Doc(string(id)).Create(ctx, activityToDocument(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return r.get(ctx, id)
		}
		return nil, goerr.Wrap(err, "failed to create activity", goerr.V("id", id))
	}

	return created, nil
}

func (r *activityRepository) Find(ctx context.Context, userID string, date types.ActivityDate) (*model.DailyActivity, error) {
	a, err := r.get(ctx, model.NewActivityID(userID, date))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *activityRepository) Get(ctx context.Context, id model.ActivityID) (*model.DailyActivity, error) {
	return r.get(ctx, id)
}

func (r *activityRepository) Update(ctx context.Context, activity *model.DailyActivity) (*model.DailyActivity, error) {
	now := time.Now().UTC()
	_, err := r.collection().Doc(string(activity.ID)).Update(ctx, []firestore.Update{
		{Path: "dms_sent", Value: activity.DMsSent},
		{Path: "connections_sent", Value: activity.ConnectionsSent},
		{Path: "connections_accepted", Value: activity.ConnectionsAccepted},
		{Path: "updated_at", Value: now},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "activity not found", goerr.V("id", activity.ID))
		}
		return nil, goerr.Wrap(err, "failed to update activity", goerr.V("id", activity.ID))
	}

	return r.get(ctx, activity.ID)
}

func (r *activityRepository) ListRange(ctx context.Context, userID string, from, to types.ActivityDate) ([]*model.DailyActivity, error) {
	iter := r.collection().
		Where("user_id", "==", userID).
		Where("date", ">=", from.String()).
		Where("date", "<=", to.String()).
		OrderBy("date", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.DailyActivity, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate activities", goerr.V("user_id", userID))
		}

		var doc activityDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal activity")
		}
		result = append(result, activityToModel(&doc))
	}

	return result, nil
}
