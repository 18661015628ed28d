package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/usecase"
)

func TestInvitationUseCase_InviteVA(t *testing.T) {
	t.Run("creates a pending invitation with a 7 day expiry", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")

		inv, link, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{
			Email:    " Alice@Example.com ",
			FullName: "Alice",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, inv.Email).Equal("alice@example.com")
		gt.Value(t, inv.Status).Equal(types.InvitationStatusPending)
		gt.Value(t, inv.HourlyRate).Equal(model.DefaultHourlyRate)
		gt.Value(t, inv.ExpiresAt).Equal(testNow.Add(7 * 24 * time.Hour))
		gt.Number(t, len(inv.Token)).Equal(64)
		gt.Value(t, link).Equal("https://tracker.example.com/accept-invitation?token=" + inv.Token.String())

		evs := f.events.Events()
		gt.Array(t, evs).Length(1)
		gt.Value(t, evs[0].Type).Equal(model.EventInvitationCreated)
		gt.Value(t, evs[0].InvitationCreated.AcceptURL).Equal(link)
		gt.Value(t, evs[0].InvitationCreated.BossName).Equal("Boss boss1")
	})

	t.Run("re-inviting replaces token and expiry on the same row", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")

		first, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "alice@example.com"})
		gt.NoError(t, err).Required()
		f.clock.Advance(24 * time.Hour)
		second, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "ALICE@example.com", HourlyRate: 25})
		gt.NoError(t, err).Required()

		gt.Value(t, second.ID).Equal(first.ID)
		gt.Value(t, second.Token).NotEqual(first.Token)
		gt.Value(t, second.ExpiresAt).Equal(first.ExpiresAt.Add(24 * time.Hour))
		gt.Value(t, second.HourlyRate).Equal(25.0)

		_, err = f.uc.Invitation.GetInvitation(ctx, first.Token)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInvitation)).True()
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")

		_, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "  "})
		gt.Bool(t, goerr.HasTag(err, usecase.TagValidation)).True()
		_, _, err = f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "not-an-email"})
		gt.Bool(t, goerr.HasTag(err, usecase.TagValidation)).True()
		_, _, err = f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "a@example.com", HourlyRate: -1})
		gt.Bool(t, goerr.HasTag(err, usecase.TagValidation)).True()
	})

	t.Run("only bosses can invite", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.uc.Profile.CreateProfile(ctx, &auth.Identity{Subject: "va1"}, types.RoleVA, "VA")
		gt.NoError(t, err).Required()

		_, _, err = f.uc.Invitation.InviteVA(ctx, "va1", usecase.InviteInput{Email: "a@example.com"})
		gt.Bool(t, errors.Is(err, usecase.ErrNotBoss)).True()
		gt.Bool(t, goerr.HasTag(err, usecase.TagForbidden)).True()
	})
}

func TestInvitationUseCase_GetInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBoss(t, "boss1")
	inv, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "alice@example.com"})
	gt.NoError(t, err).Required()

	t.Run("valid", func(t *testing.T) {
		got, err := f.uc.Invitation.GetInvitation(ctx, inv.Token)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(inv.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.uc.Invitation.GetInvitation(ctx, "nope")
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInvitation)).True()
	})

	t.Run("expired regardless of status", func(t *testing.T) {
		f.clock.Advance(7*24*time.Hour + time.Second)
		_, err := f.uc.Invitation.GetInvitation(ctx, inv.Token)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInvitation)).True()
	})
}

func TestInvitationUseCase_AcceptInvitation(t *testing.T) {
	t.Run("joins the team with default goals", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")
		inv, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{
			Email: "alice@example.com", FullName: "Alice", HourlyRate: 22,
		})
		gt.NoError(t, err).Required()

		rel, err := f.uc.Invitation.AcceptInvitation(ctx, inv.Token, &auth.Identity{Subject: "va1", Email: "alice@example.com"})
		gt.NoError(t, err).Required()
		gt.Value(t, rel.BossID).Equal("boss1")
		gt.Value(t, rel.VAID).Equal("va1")
		gt.Value(t, rel.Status).Equal(types.TeamStatusActive)
		gt.Value(t, rel.InvitationID).Equal(inv.ID)

		profile, err := f.uc.Profile.GetProfile(ctx, "va1")
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Role).Equal(types.RoleVA)
		gt.Value(t, profile.FullName).Equal("Alice")
		gt.Value(t, profile.HourlyRate).Equal(22.0)
		gt.Value(t, profile.CreatedBy).Equal("boss1")

		goals, err := f.repo.Goal().ListByUser(ctx, "va1")
		gt.NoError(t, err).Required()
		gt.Array(t, goals).Length(2)
		for _, g := range goals {
			gt.Number(t, g.TargetValue).Equal(20)
		}

		var joined *model.VAJoinedEvent
		for _, ev := range f.events.Events() {
			if ev.Type == model.EventVAJoined {
				joined = ev.VAJoined
			}
		}
		gt.Value(t, joined).NotNil()
		gt.Value(t, joined.Boss.ID).Equal("boss1")
		gt.Value(t, joined.VAName).Equal("Alice")
	})

	t.Run("accepting twice fails", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")
		inv, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "alice@example.com"})
		gt.NoError(t, err).Required()

		user := &auth.Identity{Subject: "va1", Email: "alice@example.com"}
		_, err = f.uc.Invitation.AcceptInvitation(ctx, inv.Token, user)
		gt.NoError(t, err).Required()
		_, err = f.uc.Invitation.AcceptInvitation(ctx, inv.Token, user)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInvitation)).True()

		team, err := f.uc.Team.ListTeam(ctx, "boss1")
		gt.NoError(t, err).Required()
		gt.Array(t, team).Length(1)
	})

	t.Run("concurrent accepts create one membership", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")
		inv, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "alice@example.com"})
		gt.NoError(t, err).Required()

		const workers = 8
		var wg sync.WaitGroup
		var joined atomic.Int32
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				user := &auth.Identity{Subject: "va1", Email: "alice@example.com"}
				if _, err := f.uc.Invitation.AcceptInvitation(ctx, inv.Token, user); err == nil {
					joined.Add(1)
				}
			}()
		}
		wg.Wait()

		gt.Number(t, joined.Load()).Equal(1)

		team, err := f.uc.Team.ListTeam(ctx, "boss1")
		gt.NoError(t, err).Required()
		gt.Array(t, team).Length(1)

		goals, err := f.repo.Goal().ListByUser(ctx, "va1")
		gt.NoError(t, err).Required()
		gt.Array(t, goals).Length(len(types.AllGoalTypes()))
	})

	t.Run("an active member cannot join again through a new invitation", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")
		f.joinVA(t, "boss1", "va1", "Alice")

		inv, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "other@example.com"})
		gt.NoError(t, err).Required()
		_, err = f.uc.Invitation.AcceptInvitation(ctx, inv.Token, &auth.Identity{Subject: "va1"})
		gt.Bool(t, errors.Is(err, usecase.ErrAlreadyOnTeam)).True()
	})

	t.Run("expired invitation", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createBoss(t, "boss1")
		inv, _, err := f.uc.Invitation.InviteVA(ctx, "boss1", usecase.InviteInput{Email: "alice@example.com"})
		gt.NoError(t, err).Required()

		f.clock.Advance(8 * 24 * time.Hour)
		_, err = f.uc.Invitation.AcceptInvitation(ctx, inv.Token, &auth.Identity{Subject: "va1"})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInvitation)).True()
	})

	t.Run("requires a signed-in user", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Invitation.AcceptInvitation(context.Background(), "token", nil)
		gt.Bool(t, goerr.HasTag(err, usecase.TagForbidden)).True()
	})

	t.Run("custom TTL", func(t *testing.T) {
		f := newFixture(t, usecase.WithInvitationTTL(time.Hour))
		f.createBoss(t, "boss1")
		inv, link, err := f.uc.Invitation.InviteVA(context.Background(), "boss1", usecase.InviteInput{Email: "a@example.com"})
		gt.NoError(t, err).Required()
		gt.Value(t, inv.ExpiresAt).Equal(testNow.Add(time.Hour))
		gt.Bool(t, strings.Contains(link, "/accept-invitation?token=")).True()
	})
}
