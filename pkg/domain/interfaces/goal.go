package interfaces

import (
	"context"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

// GoalRepository defines the interface for Goal history access
type GoalRepository interface {
	// Create appends a goal row
	Create(ctx context.Context, goal *model.Goal) (*model.Goal, error)

	// ListByUser returns the user's goal rows ordered by EffectiveFrom descending
	ListByUser(ctx context.Context, userID string) ([]*model.Goal, error)
}
