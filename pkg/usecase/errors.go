package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/service/notify"
)

// Error classes. The HTTP layer maps them to status codes.
var (
	TagValidation   = goerr.NewTag("validation")
	TagStore        = goerr.NewTag("store")
	TagNotFound     = goerr.NewTag("not_found")
	TagForbidden    = goerr.NewTag("forbidden")
	TagNotification = notify.TagNotification
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrActivityNotFound = errors.New("activity not found")
	ErrContactNotFound  = errors.New("contact not found")
	ErrProfileNotFound  = errors.New("profile not found")

	// Invitation errors
	ErrInvalidInvitation = errors.New("invitation is invalid or has expired")
	ErrAlreadyOnTeam     = errors.New("VA is already on the boss's team")

	// Access control errors
	ErrNotBoss      = errors.New("boss role required")
	ErrAccessDenied = errors.New("access denied")
)

// Context keys for error values
const (
	UserIDKey     = "user_id"
	BossIDKey     = "boss_id"
	VAIDKey       = "va_id"
	ActivityIDKey = "activity_id"
	ContactIDKey  = "contact_id"
	DateKey       = "date"
	FieldKey      = "field"
)

// storeErr wraps a repository failure. Not-found from the backend becomes
// notFound (when given) tagged TagNotFound; everything else is TagStore.
func storeErr(err error, msg string, notFound error, values ...goerr.Option) error {
	if notFound != nil && errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(notFound, msg, append(values, goerr.T(TagNotFound))...)
	}
	return goerr.Wrap(err, msg, append(values, goerr.T(TagStore))...)
}

// validationErr builds a TagValidation error
func validationErr(msg string, values ...goerr.Option) error {
	return goerr.New(msg, append(values, goerr.T(TagValidation))...)
}
