package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

type goalRepository struct {
	mu    sync.RWMutex
	goals map[string][]*model.Goal
}

func newGoalRepository() *goalRepository {
	return &goalRepository{
		goals: make(map[string][]*model.Goal),
	}
}

func copyGoal(g *model.Goal) *model.Goal {
	copied := *g
	return &copied
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyGoal(goal)
	if created.ID == "" {
		created.ID = model.NewGoalID()
	}
	r.goals[created.UserID] = append(r.goals[created.UserID], created)
	return copyGoal(created), nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]*model.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Goal, 0, len(r.goals[userID]))
	for _, g := range r.goals[userID] {
		result = append(result, copyGoal(g))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EffectiveFrom.After(result[j].EffectiveFrom)
	})
	return result, nil
}
