package slack

import (
	"context"
)

// Service posts VA Tracker notifications to Slack incoming webhooks
type Service interface {
	// PostContactFlagged announces a contact flagged by a VA
	PostContactFlagged(ctx context.Context, webhookURL string, alert ContactAlert) error

	// PostVAJoined announces that a VA accepted an invitation
	PostVAJoined(ctx context.Context, webhookURL string, vaName, vaEmail string) error

	// SendTestMessage posts the "connected" message used by the settings screen
	SendTestMessage(ctx context.Context, webhookURL string) error
}

// ContactAlert is the content of a flagged-contact notification
type ContactAlert struct {
	ContactName string
	LinkedInURL string
	Notes       string
	Priority    string
	VAName      string
	ImageCount  int
}
