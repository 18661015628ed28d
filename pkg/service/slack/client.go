package slack

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// DefaultTimeout bounds a single webhook post
const DefaultTimeout = 10 * time.Second

// client implements Service interface
type client struct {
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the HTTP client used for webhook posts
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a new Slack webhook service
func New(opts ...Option) Service {
	c := &client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *client) post(ctx context.Context, webhookURL string, msg *slack.WebhookMessage) error {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return goerr.New("Slack webhook URL is required")
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, webhookURL, c.httpClient, msg); err != nil {
		// The webhook URL is a credential; keep it out of error values
		return goerr.Wrap(err, "failed to post Slack webhook")
	}
	return nil
}

// PostContactFlagged announces a contact flagged by a VA
func (c *client) PostContactFlagged(ctx context.Context, webhookURL string, alert ContactAlert) error {
	return c.post(ctx, webhookURL, &slack.WebhookMessage{
		Text:   "Priority contact flagged: " + alert.ContactName,
		Blocks: &slack.Blocks{BlockSet: contactFlaggedBlocks(alert)},
	})
}

// PostVAJoined announces that a VA accepted an invitation
func (c *client) PostVAJoined(ctx context.Context, webhookURL string, vaName, vaEmail string) error {
	return c.post(ctx, webhookURL, &slack.WebhookMessage{
		Text:   vaName + " joined your team",
		Blocks: &slack.Blocks{BlockSet: vaJoinedBlocks(vaName, vaEmail)},
	})
}

// SendTestMessage posts the "connected" message used by the settings screen
func (c *client) SendTestMessage(ctx context.Context, webhookURL string) error {
	return c.post(ctx, webhookURL, &slack.WebhookMessage{Text: testMessageText})
}
