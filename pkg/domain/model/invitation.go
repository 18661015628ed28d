package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

// DefaultInvitationTTL is how long an invitation stays acceptable
const DefaultInvitationTTL = 7 * 24 * time.Hour

// DefaultHourlyRate applies when the boss leaves the rate empty
const DefaultHourlyRate = 18.00

type InvitationID string

func NewInvitationID() InvitationID {
	return InvitationID(uuid.New().String())
}

// InvitationToken is the unguessable secret in an acceptance link
type InvitationToken string

// NewInvitationToken returns 64 hex characters from two random UUIDs
func NewInvitationToken() InvitationToken {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return InvitationToken(a + b)
}

func (t InvitationToken) String() string {
	return string(t)
}

// Invitation is a boss's pending or accepted invite of a VA. (BossID, Email)
// is unique; re-inviting replaces the token and expiry.
type Invitation struct {
	ID         InvitationID
	BossID     string
	Email      string
	FullName   string
	HourlyRate float64
	Status     types.InvitationStatus
	Token      InvitationToken `masq:"secret"`
	ExpiresAt  time.Time
	CreatedAt  time.Time
	AcceptedAt *time.Time
}

// IsExpired reports whether ExpiresAt is in the past, whatever the status
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

// IsValid reports whether the invitation can still be accepted
func (i *Invitation) IsValid(now time.Time) bool {
	return !i.IsExpired(now) && i.Status == types.InvitationStatusPending
}

// AcceptURL builds the link sent to the invitee
func (i *Invitation) AcceptURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/accept-invitation?token=" + url.QueryEscape(i.Token.String())
}

// NormalizeEmail lowercases and trims an address for the (boss, email) key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
