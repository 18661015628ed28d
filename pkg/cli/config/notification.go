package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/service/email"
	"github.com/secmon-lab/vatracker/pkg/service/notify"
	"github.com/secmon-lab/vatracker/pkg/service/slack"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Notification holds CLI flags for the email and Slack channels
type Notification struct {
	sesRegion      string
	emailFrom      string
	defaultWebhook string
	disableSlack   bool
}

func (x *Notification) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "email-from",
			Usage:       "Sender address of notification emails. Email is disabled when empty",
			Category:    "Notification",
			Sources:     cli.EnvVars("VATRACKER_EMAIL_FROM"),
			Destination: &x.emailFrom,
		},
		&cli.StringFlag{
			Name:        "ses-region",
			Usage:       "AWS region of the SES endpoint (default from the AWS configuration)",
			Category:    "Notification",
			Sources:     cli.EnvVars("VATRACKER_SES_REGION"),
			Destination: &x.sesRegion,
		},
		&cli.StringFlag{
			Name:        "slack-default-webhook",
			Usage:       "Slack incoming webhook used when a boss has not configured one",
			Category:    "Notification",
			Sources:     cli.EnvVars("VATRACKER_SLACK_DEFAULT_WEBHOOK"),
			Destination: &x.defaultWebhook,
		},
		&cli.BoolFlag{
			Name:        "disable-slack",
			Usage:       "Do not post Slack notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("VATRACKER_DISABLE_SLACK"),
			Destination: &x.disableSlack,
		},
	}
}

func (x Notification) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email_from", x.emailFrom),
		slog.String("ses_region", x.sesRegion),
		slog.Int("default_webhook.len", len(x.defaultWebhook)),
		slog.Bool("disable_slack", x.disableSlack),
	)
}

// Channels are the services built from the flags. Nil members are disabled.
type Channels struct {
	Email email.Service
	Slack slack.Service
}

// Configure builds the notification channels
func (x *Notification) Configure(ctx context.Context) (*Channels, error) {
	var ch Channels

	if x.emailFrom != "" {
		svc, err := email.NewSES(ctx, x.sesRegion, x.emailFrom)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize email service")
		}
		ch.Email = svc
		logging.Default().Info("Email notifications enabled", "from", x.emailFrom)
	} else {
		logging.Default().Info("Email sender not configured, email notifications are disabled")
	}

	if !x.disableSlack {
		ch.Slack = slack.New()
		logging.Default().Info("Slack notifications enabled", "default_webhook", x.defaultWebhook != "")
	}

	return &ch, nil
}

// Dispatcher wires the channels into a post-commit event dispatcher
func (x *Notification) Dispatcher(repo interfaces.Repository, ch *Channels, baseURL string, invitationTTL time.Duration) *notify.Dispatcher {
	opts := []notify.HooksOption{
		notify.WithBaseURL(baseURL),
		notify.WithDefaultWebhook(x.defaultWebhook),
	}
	if invitationTTL > 0 {
		opts = append(opts, notify.WithInvitationTTL(invitationTTL))
	}
	if ch.Email != nil {
		opts = append(opts, notify.WithEmail(ch.Email))
	}
	if ch.Slack != nil {
		opts = append(opts, notify.WithSlack(ch.Slack))
	}

	hooks := notify.NewHooks(repo, opts...)
	return notify.New(hooks.Options()...)
}
