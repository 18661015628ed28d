package interfaces

import (
	"context"
	"io"

	"github.com/secmon-lab/vatracker/pkg/domain/model"
)

// Publisher receives domain events after the write they describe committed.
// Publish never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}

// ImageStore holds contact screenshots
type ImageStore interface {
	// Upload stores an image for userID and returns its public URL
	Upload(ctx context.Context, userID string, contentType string, r io.Reader) (string, error)

	// Delete removes the object referenced by a URL returned from Upload
	Delete(ctx context.Context, url string) error

	// Owns reports whether url was issued by this store for userID
	Owns(url string, userID string) bool
}

// SlackWebhook posts the "connected" test message to a webhook URL
type SlackWebhook interface {
	SendTestMessage(ctx context.Context, webhookURL string) error
}
