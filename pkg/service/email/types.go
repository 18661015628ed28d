package email

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// Service sends VA Tracker notification emails
type Service interface {
	SendInvitation(ctx context.Context, mail InvitationMail) error
	SendVAJoined(ctx context.Context, mail VAJoinedMail) error
	SendContactFlagged(ctx context.Context, mail ContactFlaggedMail) error
}

// SESAPI is the subset of the SES client used here
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// InvitationMail is sent to an invited VA
type InvitationMail struct {
	To            string
	FullName      string
	BossName      string
	AcceptURL     string
	ExpiresInDays int
}

// VAJoinedMail is sent to a boss when a VA accepts
type VAJoinedMail struct {
	To           string
	BossName     string
	VAName       string
	VAEmail      string
	DashboardURL string
}

// ContactFlaggedMail is sent to a boss when a VA flags a contact
type ContactFlaggedMail struct {
	To          string
	BossName    string
	VAName      string
	ContactName string
	LinkedInURL string
	Notes       string
	Priority    string
	ImageURLs   []string
}
