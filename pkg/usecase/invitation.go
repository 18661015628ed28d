package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

// InviteInput is what a boss enters to invite a VA
type InviteInput struct {
	Email      string
	FullName   string
	HourlyRate float64
}

// InvitationUseCase handles inviting VAs and their onboarding
type InvitationUseCase struct {
	root *UseCases
}

// InviteVA creates or refreshes the boss's invitation for an email address.
// Re-inviting keeps the row and replaces token, expiry and details.
func (uc *InvitationUseCase) InviteVA(ctx context.Context, bossID string, input InviteInput) (*model.Invitation, string, error) {
	email := model.NormalizeEmail(input.Email)
	if email == "" {
		return nil, "", validationErr("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", goerr.Wrap(err, "invalid email address", goerr.T(TagValidation), goerr.V("email", email))
	}
	if input.HourlyRate < 0 {
		return nil, "", validationErr("hourly rate must not be negative", goerr.V("hourly_rate", input.HourlyRate))
	}

	boss, err := uc.root.Profile.RequireBoss(ctx, bossID)
	if err != nil {
		return nil, "", err
	}

	rate := input.HourlyRate
	if rate == 0 {
		rate = model.DefaultHourlyRate
	}

	now := uc.root.now()
	inv := &model.Invitation{
		ID:         model.NewInvitationID(),
		BossID:     bossID,
		Email:      email,
		FullName:   strings.TrimSpace(input.FullName),
		HourlyRate: rate,
		Status:     types.InvitationStatusPending,
		Token:      model.NewInvitationToken(),
		ExpiresAt:  now.Add(uc.root.invTTL),
		CreatedAt:  now,
	}

	stored, err := uc.root.repo.Invitation().Upsert(ctx, inv)
	if err != nil {
		return nil, "", storeErr(err, "failed to store invitation", nil, goerr.V(BossIDKey, bossID), goerr.V("email", email))
	}

	acceptURL := stored.AcceptURL(uc.root.baseURL)
	uc.root.publisher.Publish(ctx, model.Event{
		Type: model.EventInvitationCreated,
		InvitationCreated: &model.InvitationCreatedEvent{
			Invitation: stored,
			AcceptURL:  acceptURL,
			BossName:   boss.DisplayName(),
		},
	})

	logging.From(ctx).Info("VA invited", slog.String("boss_id", bossID), slog.Any("invitation", stored))
	return stored, acceptURL, nil
}

// GetInvitation returns a pending invitation that has not expired
func (uc *InvitationUseCase) GetInvitation(ctx context.Context, token model.InvitationToken) (*model.Invitation, error) {
	if token == "" {
		return nil, goerr.Wrap(ErrInvalidInvitation, "empty invitation token", goerr.T(TagValidation))
	}

	inv, err := uc.root.repo.Invitation().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrInvalidInvitation, "unknown invitation token", goerr.T(TagNotFound))
		}
		return nil, storeErr(err, "failed to get invitation", nil)
	}

	if !inv.IsValid(uc.root.now()) {
		return nil, goerr.Wrap(ErrInvalidInvitation, "invitation is not acceptable", goerr.T(TagValidation),
			goerr.V("invitation_id", inv.ID), goerr.V("status", inv.Status), goerr.V("expires_at", inv.ExpiresAt))
	}
	return inv, nil
}

// AcceptInvitation joins the authenticated user to the inviting boss's team.
// The store rejects a second active relationship for the pair, so concurrent
// accepts yield one member. The VA profile is created or updated, default
// goals are inserted and the invitation is marked accepted before the boss is
// notified.
func (uc *InvitationUseCase) AcceptInvitation(ctx context.Context, token model.InvitationToken, user *auth.Identity) (*model.TeamRelationship, error) {
	if user == nil || user.Subject == "" {
		return nil, goerr.Wrap(auth.ErrNoIdentity, "accepting an invitation requires a signed-in user", goerr.T(TagForbidden))
	}

	inv, err := uc.GetInvitation(ctx, token)
	if err != nil {
		return nil, err
	}

	now := uc.root.now()
	rel := &model.TeamRelationship{
		BossID:       inv.BossID,
		VAID:         user.Subject,
		Status:       types.TeamStatusActive,
		CreatedBy:    inv.BossID,
		InvitationID: inv.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := uc.root.repo.Team().Create(ctx, rel)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrAlreadyOnTeam, "VA already joined", goerr.T(TagValidation),
				goerr.V(BossIDKey, inv.BossID), goerr.V(VAIDKey, user.Subject))
		}
		return nil, storeErr(err, "failed to create team relationship", nil, goerr.V(BossIDKey, inv.BossID), goerr.V(VAIDKey, user.Subject))
	}

	profile := &model.Profile{
		ID:         user.Subject,
		Email:      firstNonEmpty(user.Email, inv.Email),
		FullName:   firstNonEmpty(inv.FullName, user.Name),
		Role:       types.RoleVA,
		HourlyRate: inv.HourlyRate,
		CreatedBy:  inv.BossID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := uc.root.repo.Profile().Put(ctx, profile); err != nil {
		return nil, storeErr(err, "failed to store VA profile", nil, goerr.V(VAIDKey, user.Subject))
	}

	for _, g := range model.DefaultGoals(user.Subject, now) {
		if _, err := uc.root.repo.Goal().Create(ctx, g); err != nil {
			return nil, storeErr(err, "failed to create default goal", nil, goerr.V(VAIDKey, user.Subject))
		}
	}

	inv.Status = types.InvitationStatusAccepted
	inv.AcceptedAt = &now
	if _, err := uc.root.repo.Invitation().Update(ctx, inv); err != nil {
		return nil, storeErr(err, "failed to mark invitation accepted", nil, goerr.V("invitation_id", inv.ID))
	}

	boss, err := uc.root.repo.Profile().Get(ctx, inv.BossID)
	if err != nil {
		logging.From(ctx).Warn("boss profile not available for join notification",
			slog.String("boss_id", inv.BossID), slog.String("error", err.Error()))
	} else {
		uc.root.publisher.Publish(ctx, model.Event{
			Type: model.EventVAJoined,
			VAJoined: &model.VAJoinedEvent{
				Boss:    boss,
				VAName:  profile.DisplayName(),
				VAEmail: profile.Email,
			},
		})
	}

	logging.From(ctx).Info("invitation accepted", slog.String("boss_id", inv.BossID), slog.String("va_id", user.Subject))
	return created, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
