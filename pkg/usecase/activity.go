package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

// ActivityUseCase tracks the daily outreach counters of a user
type ActivityUseCase struct {
	root *UseCases
}

// GetOrCreateTodayActivity returns the caller's row for today, creating a
// zeroed one on first access
func (uc *ActivityUseCase) GetOrCreateTodayActivity(ctx context.Context, userID string) (*model.DailyActivity, error) {
	return uc.getOrCreate(ctx, userID, uc.root.Today(ctx))
}

// GetOrCreateActivity returns the row of a past day for historical correction.
// Malformed or future dates are rejected.
func (uc *ActivityUseCase) GetOrCreateActivity(ctx context.Context, userID string, date string) (*model.DailyActivity, error) {
	d, err := types.ParseActivityDate(date)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid activity date", goerr.T(TagValidation), goerr.V(DateKey, date))
	}
	if today := uc.root.Today(ctx); d.After(today) {
		return nil, validationErr("activity date is in the future", goerr.V(DateKey, date), goerr.V("today", today))
	}
	return uc.getOrCreate(ctx, userID, d)
}

func (uc *ActivityUseCase) getOrCreate(ctx context.Context, userID string, date types.ActivityDate) (*model.DailyActivity, error) {
	if userID == "" {
		return nil, validationErr("user ID is required")
	}
	activity, err := uc.root.repo.Activity().GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, storeErr(err, "failed to get or create activity", nil, goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}
	return activity, nil
}

// GetActivity returns a row owned by requesterID
func (uc *ActivityUseCase) GetActivity(ctx context.Context, requesterID string, id model.ActivityID) (*model.DailyActivity, error) {
	activity, err := uc.root.repo.Activity().Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "failed to get activity", ErrActivityNotFound, goerr.V(ActivityIDKey, id))
	}
	if activity.UserID != requesterID {
		return nil, goerr.Wrap(ErrAccessDenied, "activity belongs to another user",
			goerr.T(TagForbidden), goerr.V(ActivityIDKey, id), goerr.V(UserIDKey, requesterID))
	}
	return activity, nil
}

// AdjustCounter moves a counter by +1 or -1. Decrementing a counter that is
// already 0 is a no-op returning the unchanged row. Concurrent adjustments are
// read-modify-write and the last write wins.
func (uc *ActivityUseCase) AdjustCounter(ctx context.Context, requesterID string, id model.ActivityID, field types.ActivityField, delta int) (*model.DailyActivity, error) {
	if !field.IsValid() {
		return nil, validationErr("unknown activity field", goerr.V(FieldKey, field))
	}
	if delta != 1 && delta != -1 {
		return nil, validationErr("delta must be +1 or -1", goerr.V("delta", delta))
	}

	activity, err := uc.GetActivity(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	next := activity.Value(field) + delta
	if next < 0 {
		return activity, nil
	}
	activity.SetValue(field, next)

	return uc.update(ctx, activity)
}

// SetCounter overwrites a counter with an absolute value
func (uc *ActivityUseCase) SetCounter(ctx context.Context, requesterID string, id model.ActivityID, field types.ActivityField, value int) (*model.DailyActivity, error) {
	if !field.IsValid() {
		return nil, validationErr("unknown activity field", goerr.V(FieldKey, field))
	}
	if value < 0 {
		return nil, validationErr("counter value must not be negative", goerr.V(FieldKey, field), goerr.V("value", value))
	}

	activity, err := uc.GetActivity(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	activity.SetValue(field, value)

	return uc.update(ctx, activity)
}

func (uc *ActivityUseCase) update(ctx context.Context, activity *model.DailyActivity) (*model.DailyActivity, error) {
	updated, err := uc.root.repo.Activity().Update(ctx, activity)
	if err != nil {
		return nil, storeErr(err, "failed to update activity", ErrActivityNotFound, goerr.V(ActivityIDKey, activity.ID))
	}
	logging.From(ctx).Debug("activity updated",
		slog.String("activity_id", updated.ID.String()),
		slog.Int("dms_sent", updated.DMsSent),
		slog.Int("connections_sent", updated.ConnectionsSent),
		slog.Int("connections_accepted", updated.ConnectionsAccepted),
	)
	return updated, nil
}

// ResolveGoals returns the active targets of a user. Types without a goal row
// default to 20 independently.
func (uc *ActivityUseCase) ResolveGoals(ctx context.Context, userID string) (model.GoalSet, error) {
	goals, err := uc.root.repo.Goal().ListByUser(ctx, userID)
	if err != nil {
		return model.GoalSet{}, storeErr(err, "failed to list goals", nil, goerr.V(UserIDKey, userID))
	}
	return model.ResolveGoalSet(goals, uc.root.now()), nil
}

// SetGoal appends a new goal row effective now. Older rows are kept as history.
func (uc *ActivityUseCase) SetGoal(ctx context.Context, userID string, goalType types.GoalType, target int) (*model.Goal, error) {
	if !goalType.IsValid() {
		return nil, validationErr("unknown goal type", goerr.V("goal_type", goalType))
	}
	if target <= 0 {
		return nil, validationErr("goal target must be positive", goerr.V("target", target))
	}

	goal := &model.Goal{
		ID:            model.NewGoalID(),
		UserID:        userID,
		Type:          goalType,
		TargetValue:   target,
		EffectiveFrom: uc.root.now(),
	}
	created, err := uc.root.repo.Goal().Create(ctx, goal)
	if err != nil {
		return nil, storeErr(err, "failed to create goal", nil, goerr.V(UserIDKey, userID))
	}
	return created, nil
}

// MaxHistoryDays is the longest history window ListHistorical serves
const MaxHistoryDays = 366

// ListHistorical returns the user's existing rows between today-daysBack and
// today inclusive, newest first. Days without a row are not filled in.
func (uc *ActivityUseCase) ListHistorical(ctx context.Context, userID string, daysBack int) ([]*model.DailyActivity, error) {
	if daysBack < 0 || daysBack > MaxHistoryDays {
		return nil, validationErr("days back is out of range",
			goerr.V("days_back", daysBack), goerr.V("max", MaxHistoryDays))
	}

	today := uc.root.Today(ctx)
	from := today.AddDays(-daysBack)
	activities, err := uc.root.repo.Activity().ListRange(ctx, userID, from, today)
	if err != nil {
		return nil, storeErr(err, "failed to list activities", nil,
			goerr.V(UserIDKey, userID), goerr.V("from", from), goerr.V("to", today))
	}
	return activities, nil
}
