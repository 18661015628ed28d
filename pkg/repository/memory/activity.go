package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

type activityRepository struct {
	mu         sync.RWMutex
	activities map[model.ActivityID]*model.DailyActivity
}

func newActivityRepository() *activityRepository {
	return &activityRepository{
		activities: make(map[model.ActivityID]*model.DailyActivity),
	}
}

func copyActivity(a *model.DailyActivity) *model.DailyActivity {
	copied := *a
	return &copied
}

func (r *activityRepository) GetOrCreate(ctx context.Context, userID string, date types.ActivityDate) (*model.DailyActivity, error) {
	id := model.NewActivityID(userID, date)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.activities[id]; ok {
		return copyActivity(existing), nil
	}

	now := time.Now().UTC()
	created := model.NewDailyActivity(userID, date)
	created.CreatedAt = now
	created.UpdatedAt = now
	r.activities[id] = created

	return copyActivity(created), nil
}

func (r *activityRepository) Find(ctx context.Context, userID string, date types.ActivityDate) (*model.DailyActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[model.NewActivityID(userID, date)]
	if !ok {
		return nil, nil
	}
	return copyActivity(a), nil
}

func (r *activityRepository) Get(ctx context.Context, id model.ActivityID) (*model.DailyActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "activity not found", goerr.V("id", id))
	}
	return copyActivity(a), nil
}

func (r *activityRepository) Update(ctx context.Context, activity *model.DailyActivity) (*model.DailyActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.activities[activity.ID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "activity not found", goerr.V("id", activity.ID))
	}

	updated := copyActivity(existing)
	updated.DMsSent = activity.DMsSent
	updated.ConnectionsSent = activity.ConnectionsSent
	updated.ConnectionsAccepted = activity.ConnectionsAccepted
	updated.UpdatedAt = time.Now().UTC()

	r.activities[updated.ID] = updated
	return copyActivity(updated), nil
}

func (r *activityRepository) ListRange(ctx context.Context, userID string, from, to types.ActivityDate) ([]*model.DailyActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.DailyActivity, 0)
	for _, a := range r.activities {
		if a.UserID != userID || from.After(a.Date) || a.Date.After(to) {
			continue
		}
		result = append(result, copyActivity(a))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}
