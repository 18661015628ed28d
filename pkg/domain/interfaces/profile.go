package interfaces

import (
	"context"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

// ProfileRepository defines the interface for user profiles
type ProfileRepository interface {
	// Get retrieves a profile by user ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*model.Profile, error)

	// Put creates or replaces a profile
	Put(ctx context.Context, profile *model.Profile) (*model.Profile, error)
}
