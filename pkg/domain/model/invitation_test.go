package model_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

func TestNewInvitationToken(t *testing.T) {
	tok := model.NewInvitationToken()
	gt.Bool(t, regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(tok.String())).True()
	gt.Value(t, model.NewInvitationToken()).NotEqual(tok)
}

func TestInvitation_IsValid(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		status types.InvitationStatus
		expiry time.Time
		valid  bool
	}{
		{"pending and fresh", types.InvitationStatusPending, now.Add(time.Hour), true},
		{"pending but expired", types.InvitationStatusPending, now.Add(-time.Second), false},
		{"accepted and fresh", types.InvitationStatusAccepted, now.Add(time.Hour), false},
		{"expired status but fresh date", types.InvitationStatusExpired, now.Add(time.Hour), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &model.Invitation{Status: tc.status, ExpiresAt: tc.expiry}
			gt.Value(t, inv.IsValid(now)).Equal(tc.valid)
		})
	}
}

func TestInvitation_AcceptURL(t *testing.T) {
	inv := &model.Invitation{Token: "abc123"}
	gt.Value(t, inv.AcceptURL("https://va.example.com/")).
		Equal("https://va.example.com/accept-invitation?token=abc123")
}

func TestNormalizeEmail(t *testing.T) {
	gt.Value(t, model.NormalizeEmail("  Alice@Example.COM ")).Equal("alice@example.com")
}
