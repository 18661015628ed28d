package model

import (
	"math"
	"time"

	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

// ActivityID identifies a DailyActivity row. It is derived from (user, date)
// so that the store's primary key doubles as the uniqueness constraint.
type ActivityID string

// NewActivityID returns the row ID for userID on date
func NewActivityID(userID string, date types.ActivityDate) ActivityID {
	return ActivityID(userID + "_" + date.String())
}

func (id ActivityID) String() string {
	return string(id)
}

// DailyActivity holds the three outreach counters of one user on one calendar day
type DailyActivity struct {
	ID                  ActivityID
	UserID              string
	Date                types.ActivityDate
	DMsSent             int
	ConnectionsSent     int
	ConnectionsAccepted int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewDailyActivity returns a zeroed row for (userID, date)
func NewDailyActivity(userID string, date types.ActivityDate) *DailyActivity {
	return &DailyActivity{
		ID:     NewActivityID(userID, date),
		UserID: userID,
		Date:   date,
	}
}

// Value returns the counter named by field. Unknown fields read as 0.
func (a *DailyActivity) Value(field types.ActivityField) int {
	switch field {
	case types.ActivityFieldDMsSent:
		return a.DMsSent
	case types.ActivityFieldConnectionsSent:
		return a.ConnectionsSent
	case types.ActivityFieldConnectionsAccepted:
		return a.ConnectionsAccepted
	default:
		return 0
	}
}

// SetValue overwrites the counter named by field
func (a *DailyActivity) SetValue(field types.ActivityField, v int) {
	switch field {
	case types.ActivityFieldDMsSent:
		a.DMsSent = v
	case types.ActivityFieldConnectionsSent:
		a.ConnectionsSent = v
	case types.ActivityFieldConnectionsAccepted:
		a.ConnectionsAccepted = v
	}
}

// Progress is the goal-vs-actual view of one DailyActivity
type Progress struct {
	DMsPercent          float64
	ConnectionsPercent  float64
	DMsComplete         bool
	ConnectionsComplete bool
	AllGoalsMet         bool
	AcceptanceRate      int
}

// ComputeProgress derives percentages and completion flags. Percentages are
// not clamped; use BarPercent for display widths.
func ComputeProgress(a *DailyActivity, goals GoalSet) Progress {
	p := Progress{
		DMsPercent:          percentOf(a.DMsSent, goals.DMs),
		ConnectionsPercent:  percentOf(a.ConnectionsSent, goals.Connections),
		DMsComplete:         a.DMsSent >= goals.DMs,
		ConnectionsComplete: a.ConnectionsSent >= goals.Connections,
	}
	p.AllGoalsMet = p.DMsComplete && p.ConnectionsComplete

	if a.ConnectionsSent > 0 {
		p.AcceptanceRate = int(math.Round(100 * float64(a.ConnectionsAccepted) / float64(a.ConnectionsSent)))
	}

	return p
}

func percentOf(actual, target int) float64 {
	if target <= 0 {
		return 0
	}
	return 100 * float64(actual) / float64(target)
}

// BarPercent clamps a raw percentage to [0, 100]
func BarPercent(raw float64) float64 {
	return math.Max(0, math.Min(100, raw))
}
