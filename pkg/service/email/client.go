package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const charset = "UTF-8"

// client implements Service interface on Amazon SES
type client struct {
	api  SESAPI
	from string
}

// New creates an email service sending from the given address
func New(api SESAPI, from string) (Service, error) {
	if api == nil {
		return nil, goerr.New("SES client is required")
	}
	if from == "" {
		return nil, goerr.New("sender address is required")
	}
	return &client{api: api, from: from}, nil
}

// NewSES loads the default AWS configuration and creates an SES backed service
func NewSES(ctx context.Context, region, from string) (Service, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config", goerr.V("region", region))
	}

	return New(ses.NewFromConfig(cfg), from)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", goerr.Wrap(err, "failed to render email template", goerr.V("template", name))
	}
	return buf.String(), nil
}

func (c *client) send(ctx context.Context, to, subject, html string) error {
	if to == "" {
		return goerr.New("recipient address is required", goerr.V("subject", subject))
	}

	input := &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Charset: aws.String(charset),
				Data:    aws.String(subject),
			},
			Body: &sestypes.Body{
				Html: &sestypes.Content{
					Charset: aws.String(charset),
					Data:    aws.String(html),
				},
			},
		},
		Source: aws.String(c.from),
	}

	if _, err := c.api.SendEmail(ctx, input); err != nil {
		return goerr.Wrap(err, "failed to send email", goerr.V("to", to), goerr.V("subject", subject))
	}
	return nil
}

func (c *client) SendInvitation(ctx context.Context, mail InvitationMail) error {
	html, err := render("invitation.html", mail)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("You're invited to join %s's team on VA Tracker!", mail.BossName)
	return c.send(ctx, mail.To, subject, html)
}

func (c *client) SendVAJoined(ctx context.Context, mail VAJoinedMail) error {
	html, err := render("va_joined.html", mail)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("🎉 %s has joined your team on VA Tracker!", mail.VAName)
	return c.send(ctx, mail.To, subject, html)
}

type contactFlaggedView struct {
	ContactFlaggedMail
	Emoji    string
	Label    string
	FollowUp string
	Color    template.CSS
}

func (c *client) SendContactFlagged(ctx context.Context, mail ContactFlaggedMail) error {
	priority := types.Priority(mail.Priority).Normalize()
	view := contactFlaggedView{
		ContactFlaggedMail: mail,
		Emoji:              priority.Emoji(),
		Label:              priority.Label(),
		FollowUp:           priority.FollowUp(),
		Color:              template.CSS(priority.Color()),
	}

	html, err := render("contact_flagged.html", view)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s %s flagged %s for contact", priority.Emoji(), mail.VAName, mail.ContactName)
	return c.send(ctx, mail.To, subject, html)
}
