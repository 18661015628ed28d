package notify

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/service/email"
	"github.com/secmon-lab/vatracker/pkg/service/slack"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

// Hooks builds the email and Slack hooks for the domain events
type Hooks struct {
	repo           interfaces.Repository
	email          email.Service
	slack          slack.Service
	defaultWebhook string
	baseURL        string
	invitationTTL  time.Duration
}

type HooksOption func(*Hooks)

func WithEmail(svc email.Service) HooksOption {
	return func(h *Hooks) {
		h.email = svc
	}
}

func WithSlack(svc slack.Service) HooksOption {
	return func(h *Hooks) {
		h.slack = svc
	}
}

// WithDefaultWebhook is used when the boss has no webhook on the profile
func WithDefaultWebhook(url string) HooksOption {
	return func(h *Hooks) {
		h.defaultWebhook = url
	}
}

func WithBaseURL(u string) HooksOption {
	return func(h *Hooks) {
		h.baseURL = strings.TrimRight(u, "/")
	}
}

func WithInvitationTTL(ttl time.Duration) HooksOption {
	return func(h *Hooks) {
		h.invitationTTL = ttl
	}
}

func NewHooks(repo interfaces.Repository, opts ...HooksOption) *Hooks {
	h := &Hooks{
		repo:          repo,
		invitationTTL: model.DefaultInvitationTTL,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Options returns dispatcher options for every configured channel
func (h *Hooks) Options() []Option {
	var opts []Option
	if h.email != nil {
		opts = append(opts, WithHook("email", h.Email))
	}
	if h.slack != nil {
		opts = append(opts, WithHook("slack", h.Slack))
	}
	return opts
}

// resolveBoss finds the boss of vaID through the active relationship.
// Returns nil, nil when the VA has no active boss.
func (h *Hooks) resolveBoss(ctx context.Context, vaID string) (*model.Profile, error) {
	rel, err := h.repo.Team().FindActiveByVA(ctx, vaID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find boss of VA", goerr.V("va_id", vaID))
	}
	if rel == nil {
		return nil, nil
	}

	boss, err := h.repo.Profile().Get(ctx, rel.BossID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get boss profile", goerr.V("boss_id", rel.BossID))
	}
	return boss, nil
}

// Email delivers events by mail
func (h *Hooks) Email(ctx context.Context, event model.Event) error {
	switch event.Type {
	case model.EventInvitationCreated:
		ev := event.InvitationCreated
		return h.email.SendInvitation(ctx, email.InvitationMail{
			To:            ev.Invitation.Email,
			FullName:      ev.Invitation.FullName,
			BossName:      ev.BossName,
			AcceptURL:     ev.AcceptURL,
			ExpiresInDays: int(math.Ceil(h.invitationTTL.Hours() / 24)),
		})

	case model.EventVAJoined:
		ev := event.VAJoined
		if ev.Boss == nil || ev.Boss.Email == "" {
			logging.From(ctx).Warn("boss has no email address, skip")
			return nil
		}
		return h.email.SendVAJoined(ctx, email.VAJoinedMail{
			To:           ev.Boss.Email,
			BossName:     ev.Boss.DisplayName(),
			VAName:       ev.VAName,
			VAEmail:      ev.VAEmail,
			DashboardURL: h.baseURL,
		})

	case model.EventContactFlagged:
		ev := event.ContactFlagged
		boss, err := h.resolveBoss(ctx, ev.Contact.UserID)
		if err != nil {
			return err
		}
		if boss == nil || boss.Email == "" {
			logging.From(ctx).Info("no boss to notify for contact", slog.String("va_id", ev.Contact.UserID))
			return nil
		}
		return h.email.SendContactFlagged(ctx, email.ContactFlaggedMail{
			To:          boss.Email,
			BossName:    boss.DisplayName(),
			VAName:      ev.VAName,
			ContactName: ev.Contact.Name,
			LinkedInURL: ev.Contact.LinkedInURL,
			Notes:       ev.Contact.Notes,
			Priority:    ev.Contact.Priority.String(),
			ImageURLs:   ev.Contact.ImageURLs,
		})
	}

	return nil
}

// webhookFor returns the boss's webhook, or the default one. Events without a
// boss get no webhook.
func (h *Hooks) webhookFor(boss *model.Profile) string {
	if boss == nil {
		return ""
	}
	if boss.SlackWebhookURL != "" {
		return boss.SlackWebhookURL
	}
	return h.defaultWebhook
}

// Slack delivers boss-facing events to the boss's webhook
func (h *Hooks) Slack(ctx context.Context, event model.Event) error {
	switch event.Type {
	case model.EventVAJoined:
		ev := event.VAJoined
		url := h.webhookFor(ev.Boss)
		if url == "" {
			logging.From(ctx).Debug("skip slack notification", slog.String("reason", "no webhook configured"))
			return nil
		}
		return h.slack.PostVAJoined(ctx, url, ev.VAName, ev.VAEmail)

	case model.EventContactFlagged:
		ev := event.ContactFlagged
		boss, err := h.resolveBoss(ctx, ev.Contact.UserID)
		if err != nil {
			return err
		}
		url := h.webhookFor(boss)
		if url == "" {
			logging.From(ctx).Debug("skip slack notification", slog.String("reason", "no webhook configured"))
			return nil
		}
		return h.slack.PostContactFlagged(ctx, url, slack.ContactAlert{
			ContactName: ev.Contact.Name,
			LinkedInURL: ev.Contact.LinkedInURL,
			Notes:       ev.Contact.Notes,
			Priority:    ev.Contact.Priority.String(),
			VAName:      ev.VAName,
			ImageCount:  len(ev.Contact.ImageURLs),
		})
	}

	return nil
}
