package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
)

// ErrNotFound is returned (wrapped) when a requested document does not exist
var ErrNotFound = interfaces.ErrNotFound

// ErrAlreadyExists is returned (wrapped) when an insert hits a live row
var ErrAlreadyExists = interfaces.ErrAlreadyExists

type Firestore struct {
	client     *firestore.Client
	activity   *activityRepository
	goal       *goalRepository
	team       *teamRepository
	contact    *contactRepository
	invitation *invitationRepository
	profile    *profileRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.activity.collectionPrefix = prefix
		f.goal.collectionPrefix = prefix
		f.team.collectionPrefix = prefix
		f.contact.collectionPrefix = prefix
		f.invitation.collectionPrefix = prefix
		f.profile.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		activity:   newActivityRepository(client),
		goal:       newGoalRepository(client),
		team:       newTeamRepository(client),
		contact:    newContactRepository(client),
		invitation: newInvitationRepository(client),
		profile:    newProfileRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Activity() interfaces.ActivityRepository {
	return f.activity
}

func (f *Firestore) Goal() interfaces.GoalRepository {
	return f.goal
}

func (f *Firestore) Team() interfaces.TeamRepository {
	return f.team
}

func (f *Firestore) Contact() interfaces.ContactRepository {
	return f.contact
}

func (f *Firestore) Invitation() interfaces.InvitationRepository {
	return f.invitation
}

func (f *Firestore) Profile() interfaces.ProfileRepository {
	return f.profile
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// CollectionName returns name with the optional "<prefix>_" applied
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
