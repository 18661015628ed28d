package model

import (
	"time"

	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

// Profile is the application account of an authenticated user
type Profile struct {
	ID              string
	Email           string
	FullName        string
	Role            types.Role
	HourlyRate      float64
	SlackWebhookURL string `masq:"secret"`
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsBoss reports whether the profile manages a team
func (p *Profile) IsBoss() bool {
	return p != nil && p.Role == types.RoleBoss
}

// DisplayName falls back to the email when no name was set
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
