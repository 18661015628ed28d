package usecase

import (
	"context"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

// ProfileUseCase manages the account of the signed-in user
type ProfileUseCase struct {
	root *UseCases
}

// GetProfile returns the profile of userID
func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := uc.root.repo.Profile().Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "failed to get profile", ErrProfileNotFound, goerr.V(UserIDKey, userID))
	}
	return profile, nil
}

// RequireBoss returns the profile of userID if it has the boss role
func (uc *ProfileUseCase) RequireBoss(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsBoss() {
		return nil, goerr.Wrap(ErrNotBoss, "boss role required", goerr.T(TagForbidden), goerr.V(UserIDKey, userID))
	}
	return profile, nil
}

// CreateProfile stores the profile chosen at role selection. VAs start with
// the default goals.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, user *auth.Identity, role types.Role, fullName string) (*model.Profile, error) {
	if user == nil || user.Subject == "" {
		return nil, goerr.Wrap(auth.ErrNoIdentity, "creating a profile requires a signed-in user", goerr.T(TagForbidden))
	}
	if !role.IsValid() {
		return nil, validationErr("invalid role", goerr.V("role", role))
	}

	now := uc.root.now()
	profile := &model.Profile{
		ID:        user.Subject,
		Email:     user.Email,
		FullName:  firstNonEmpty(fullName, user.Name),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if role == types.RoleVA {
		profile.HourlyRate = model.DefaultHourlyRate
	}

	stored, err := uc.root.repo.Profile().Put(ctx, profile)
	if err != nil {
		return nil, storeErr(err, "failed to store profile", nil, goerr.V(UserIDKey, user.Subject))
	}

	if role == types.RoleVA {
		for _, g := range model.DefaultGoals(user.Subject, now) {
			if _, err := uc.root.repo.Goal().Create(ctx, g); err != nil {
				return nil, storeErr(err, "failed to create default goal", nil, goerr.V(UserIDKey, user.Subject))
			}
		}
	}
	return stored, nil
}

// UpdateSettings sets the Slack webhook URL of a profile. An empty URL clears it.
func (uc *ProfileUseCase) UpdateSettings(ctx context.Context, userID string, webhookURL string) (*model.Profile, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL != "" {
		if err := validateWebhookURL(webhookURL); err != nil {
			return nil, err
		}
	}

	profile, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.SlackWebhookURL = webhookURL
	profile.UpdatedAt = uc.root.now()

	stored, err := uc.root.repo.Profile().Put(ctx, profile)
	if err != nil {
		return nil, storeErr(err, "failed to update settings", nil, goerr.V(UserIDKey, userID))
	}
	return stored, nil
}

// TestSlackWebhook posts the "connected" message to the given URL, or to the
// saved one when url is empty, and reports delivery errors to the caller
func (uc *ProfileUseCase) TestSlackWebhook(ctx context.Context, userID string, webhookURL string) error {
	if uc.root.slackWebhook == nil {
		return goerr.New("slack is not configured", goerr.T(TagStore))
	}

	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		profile, err := uc.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		webhookURL = profile.SlackWebhookURL
	}
	if webhookURL == "" {
		return validationErr("no Slack webhook URL configured")
	}
	if err := validateWebhookURL(webhookURL); err != nil {
		return err
	}

	if err := uc.root.slackWebhook.SendTestMessage(ctx, webhookURL); err != nil {
		return goerr.Wrap(err, "failed to send Slack test message", goerr.T(TagNotification), goerr.V(UserIDKey, userID))
	}
	return nil
}

func validateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return validationErr("invalid Slack webhook URL")
	}
	return nil
}
