package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

type TeamRelationshipID string

// NewTeamRelationshipID returns the row ID of the (boss, VA) pair. A pair has
// exactly one row, which is reactivated when the VA joins again.
func NewTeamRelationshipID(bossID, vaID string) TeamRelationshipID {
	sum := sha256.Sum256([]byte(bossID + "\x00" + vaID))
	return TeamRelationshipID(hex.EncodeToString(sum[:]))
}

// TeamRelationship links a boss to a VA. Removal flips Status to inactive so
// historical activity stays attributable.
type TeamRelationship struct {
	ID           TeamRelationshipID
	BossID       string
	VAID         string
	Status       types.TeamStatus
	CreatedBy    string
	InvitationID InvitationID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the relationship is active
func (r *TeamRelationship) IsActive() bool {
	return r.Status == types.TeamStatusActive
}

// TeamMember is one VA row of a boss dashboard
type TeamMember struct {
	VAID     string
	FullName string
	Email    string
	Activity *DailyActivity
	Goals    GoalSet
	Progress Progress
	// Degraded is set when the VA's activity could not be read and was zero-filled
	Degraded bool
}

// TeamTotals sums today's counters across the team
type TeamTotals struct {
	TotalDMs         int
	TotalConnections int
	TotalAccepted    int
}

// TeamSummary is the aggregate dashboard for a boss
type TeamSummary struct {
	BossID  string
	Date    types.ActivityDate
	Members []*TeamMember
	Totals  TeamTotals
}

// SumTeam computes totals over the member activities
func SumTeam(members []*TeamMember) TeamTotals {
	var totals TeamTotals
	for _, m := range members {
		if m == nil || m.Activity == nil {
			continue
		}
		totals.TotalDMs += m.Activity.DMsSent
		totals.TotalConnections += m.Activity.ConnectionsSent
		totals.TotalAccepted += m.Activity.ConnectionsAccepted
	}
	return totals
}
