package interfaces

import (
	"context"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

// TeamRepository defines the interface for boss/VA relationships
type TeamRepository interface {
	// Create inserts the relationship of (BossID, VAID) under
	// NewTeamRelationshipID. An inactive row of the pair is replaced; an
	// active one makes Create fail with ErrAlreadyExists.
	Create(ctx context.Context, rel *model.TeamRelationship) (*model.TeamRelationship, error)

	// ListActiveByBoss returns the boss's active relationships
	ListActiveByBoss(ctx context.Context, bossID string) ([]*model.TeamRelationship, error)

	// FindActive returns the active relationship for the pair.
	// Returns nil, nil if there is none.
	FindActive(ctx context.Context, bossID, vaID string) (*model.TeamRelationship, error)

	// FindActiveByVA returns one active relationship where the user is the VA.
	// Returns nil, nil if there is none.
	FindActiveByVA(ctx context.Context, vaID string) (*model.TeamRelationship, error)

	// UpdateStatus sets the relationship status. Returns ErrNotFound if absent.
	UpdateStatus(ctx context.Context, id model.TeamRelationshipID, status types.TeamStatus) error
}
