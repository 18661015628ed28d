package interfaces

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is wrapped by every backend when a requested row is absent
var ErrNotFound = goerr.New("not found")

// ErrAlreadyExists is wrapped when an insert conflicts with a live row
var ErrAlreadyExists = goerr.New("already exists")

// Repository defines the interface for data persistence
type Repository interface {
	Activity() ActivityRepository
	Goal() GoalRepository
	Team() TeamRepository
	Contact() ContactRepository
	Invitation() InvitationRepository
	Profile() ProfileRepository

	Close() error
}
