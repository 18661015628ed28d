package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/service/notify"
)

// DefaultTeamConcurrency bounds the per-VA lookups of AggregateTeam
const DefaultTeamConcurrency = 8

type UseCases struct {
	repo         interfaces.Repository
	publisher    interfaces.Publisher
	images       interfaces.ImageStore
	slackWebhook interfaces.SlackWebhook
	now          func() time.Time
	location     *time.Location
	baseURL      string
	invTTL       time.Duration
	concurrency  int

	Activity   *ActivityUseCase
	Team       *TeamUseCase
	Contact    *ContactUseCase
	Invitation *InvitationUseCase
	Profile    *ProfileUseCase
	Auth       AuthUseCaseInterface
}

type Option func(*UseCases)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// WithLocation sets the time zone used to derive "today" when the request
// does not carry one
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCases) {
		uc.location = loc
	}
}

// WithPublisher sets the post-commit event publisher
func WithPublisher(p interfaces.Publisher) Option {
	return func(uc *UseCases) {
		uc.publisher = p
	}
}

// WithImageStore sets the store that holds contact screenshots
func WithImageStore(s interfaces.ImageStore) Option {
	return func(uc *UseCases) {
		uc.images = s
	}
}

// WithSlackWebhook sets the client used by the "test webhook" setting
func WithSlackWebhook(s interfaces.SlackWebhook) Option {
	return func(uc *UseCases) {
		uc.slackWebhook = s
	}
}

// WithBaseURL sets the public URL used in invitation links
func WithBaseURL(u string) Option {
	return func(uc *UseCases) {
		uc.baseURL = u
	}
}

// WithInvitationTTL overrides the 7 day invitation lifetime
func WithInvitationTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		if ttl > 0 {
			uc.invTTL = ttl
		}
	}
}

// WithTeamConcurrency bounds parallel per-VA lookups
func WithTeamConcurrency(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		publisher:   notify.New(),
		now:         time.Now,
		location:    time.UTC,
		baseURL:     "http://localhost:8080",
		invTTL:      model.DefaultInvitationTTL,
		concurrency: DefaultTeamConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Activity = &ActivityUseCase{root: uc}
	uc.Team = &TeamUseCase{root: uc}
	uc.Contact = &ContactUseCase{root: uc}
	uc.Invitation = &InvitationUseCase{root: uc}
	uc.Profile = &ProfileUseCase{root: uc}

	return uc
}

// Today returns the caller's calendar day. The time zone comes from ctx and
// falls back to the configured location.
func (uc *UseCases) Today(ctx context.Context) types.ActivityDate {
	return types.DateOf(uc.now(), model.LocationFromContext(ctx, uc.location))
}

// Now returns the current time of the use case clock
func (uc *UseCases) Now() time.Time {
	return uc.now()
}
