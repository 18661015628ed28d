package interfaces

import (
	"context"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

// ActivityRepository defines the interface for DailyActivity data access.
// At most one row exists per (user, date).
type ActivityRepository interface {
	// GetOrCreate returns the row for (userID, date), inserting a zeroed row
	// if none exists. Concurrent callers all observe the same single row.
	GetOrCreate(ctx context.Context, userID string, date types.ActivityDate) (*model.DailyActivity, error)

	// Find returns the row for (userID, date) without creating it.
	// Returns nil, nil if no row exists.
	Find(ctx context.Context, userID string, date types.ActivityDate) (*model.DailyActivity, error)

	// Get retrieves a row by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id model.ActivityID) (*model.DailyActivity, error)

	// Update overwrites the counters of an existing row (last write wins)
	Update(ctx context.Context, activity *model.DailyActivity) (*model.DailyActivity, error)

	// ListRange returns the user's rows with from <= date <= to, newest first
	ListRange(ctx context.Context, userID string, from, to types.ActivityDate) ([]*model.DailyActivity, error)
}
