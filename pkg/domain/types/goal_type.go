package types

import "fmt"

// GoalType is the kind of daily target a Goal row sets
type GoalType string

const (
	GoalTypeDMsPerDay         GoalType = "dms_per_day"
	GoalTypeConnectionsPerDay GoalType = "connections_per_day"
)

// DefaultGoalTarget applies to every goal type without a Goal row
const DefaultGoalTarget = 20

func AllGoalTypes() []GoalType {
	return []GoalType{GoalTypeDMsPerDay, GoalTypeConnectionsPerDay}
}

func (g GoalType) IsValid() bool {
	switch g {
	case GoalTypeDMsPerDay, GoalTypeConnectionsPerDay:
		return true
	default:
		return false
	}
}

func (g GoalType) String() string {
	return string(g)
}

func ParseGoalType(s string) (GoalType, error) {
	g := GoalType(s)
	if !g.IsValid() {
		return "", fmt.Errorf("invalid goal type: %s", s)
	}
	return g, nil
}
