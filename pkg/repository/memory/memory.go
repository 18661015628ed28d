package memory

import (
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist
var ErrNotFound = interfaces.ErrNotFound

// ErrAlreadyExists is returned (wrapped) when an insert hits a live row
var ErrAlreadyExists = interfaces.ErrAlreadyExists

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	activity   *activityRepository
	goal       *goalRepository
	team       *teamRepository
	contact    *contactRepository
	invitation *invitationRepository
	profile    *profileRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		activity:   newActivityRepository(),
		goal:       newGoalRepository(),
		team:       newTeamRepository(),
		contact:    newContactRepository(),
		invitation: newInvitationRepository(),
		profile:    newProfileRepository(),
	}
}

func (m *Memory) Activity() interfaces.ActivityRepository {
	return m.activity
}

func (m *Memory) Goal() interfaces.GoalRepository {
	return m.goal
}

func (m *Memory) Team() interfaces.TeamRepository {
	return m.team
}

func (m *Memory) Contact() interfaces.ContactRepository {
	return m.contact
}

func (m *Memory) Invitation() interfaces.InvitationRepository {
	return m.invitation
}

func (m *Memory) Profile() interfaces.ProfileRepository {
	return m.profile
}

func (m *Memory) Close() error {
	return nil
}
