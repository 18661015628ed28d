package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

type GoalID string

func NewGoalID() GoalID {
	return GoalID(uuid.New().String())
}

// Goal is one row of a user's goal history. Rows are appended, never edited.
type Goal struct {
	ID            GoalID
	UserID        string
	Type          types.GoalType
	TargetValue   int
	EffectiveFrom time.Time
}

// GoalSet is the active daily target per counter
type GoalSet struct {
	DMs         int
	Connections int
}

// DefaultGoalSet is used when a user has no Goal rows at all
func DefaultGoalSet() GoalSet {
	return GoalSet{
		DMs:         types.DefaultGoalTarget,
		Connections: types.DefaultGoalTarget,
	}
}

// ResolveGoalSet picks, per goal type, the row with the latest EffectiveFrom
// not after now. Types without such a row keep the default independently.
func ResolveGoalSet(goals []*Goal, now time.Time) GoalSet {
	set := DefaultGoalSet()
	latest := make(map[types.GoalType]*Goal)

	for _, g := range goals {
		if g == nil || g.EffectiveFrom.After(now) || g.TargetValue <= 0 {
			continue
		}
		if cur, ok := latest[g.Type]; !ok || g.EffectiveFrom.After(cur.EffectiveFrom) {
			latest[g.Type] = g
		}
	}

	if g, ok := latest[types.GoalTypeDMsPerDay]; ok {
		set.DMs = g.TargetValue
	}
	if g, ok := latest[types.GoalTypeConnectionsPerDay]; ok {
		set.Connections = g.TargetValue
	}
	return set
}

// DefaultGoals returns the onboarding rows for a new VA
func DefaultGoals(userID string, now time.Time) []*Goal {
	goals := make([]*Goal, 0, len(types.AllGoalTypes()))
	for _, t := range types.AllGoalTypes() {
		goals = append(goals, &Goal{
			ID:            NewGoalID(),
			UserID:        userID,
			Type:          t,
			TargetValue:   types.DefaultGoalTarget,
			EffectiveFrom: now,
		})
	}
	return goals
}
