package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/utils/errutil"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// TeamUseCase serves the boss dashboard
type TeamUseCase struct {
	root *UseCases
}

// ListTeam returns the boss's active relationships
func (uc *TeamUseCase) ListTeam(ctx context.Context, bossID string) ([]*model.TeamRelationship, error) {
	rels, err := uc.root.repo.Team().ListActiveByBoss(ctx, bossID)
	if err != nil {
		return nil, storeErr(err, "failed to list team", nil, goerr.V(BossIDKey, bossID))
	}
	return rels, nil
}

// AggregateTeam builds today's summary of every active VA. A VA without a row
// for today counts as zero and no row is created. A VA whose lookup fails is
// logged, zero-filled and marked Degraded so one failure never hides the team.
func (uc *TeamUseCase) AggregateTeam(ctx context.Context, bossID string) (*model.TeamSummary, error) {
	rels, err := uc.ListTeam(ctx, bossID)
	if err != nil {
		return nil, err
	}

	today := uc.root.Today(ctx)
	members := make([]*model.TeamMember, len(rels))

	var eg errgroup.Group
	eg.SetLimit(uc.root.concurrency)
	for i, rel := range rels {
		eg.Go(func() error {
			members[i] = uc.member(ctx, rel.VAID, today)
			return nil
		})
	}
	_ = eg.Wait()

	return &model.TeamSummary{
		BossID:  bossID,
		Date:    today,
		Members: members,
		Totals:  model.SumTeam(members),
	}, nil
}

func (uc *TeamUseCase) member(ctx context.Context, vaID string, today types.ActivityDate) *model.TeamMember {
	m := &model.TeamMember{
		VAID:  vaID,
		Goals: model.DefaultGoalSet(),
	}

	if profile, err := uc.root.repo.Profile().Get(ctx, vaID); err == nil {
		m.FullName = profile.FullName
		m.Email = profile.Email
	} else {
		logging.From(ctx).Warn("VA profile not available",
			slog.String("va_id", vaID), slog.String("error", err.Error()))
	}

	activity, err := uc.root.repo.Activity().Find(ctx, vaID, today)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to read VA activity",
			goerr.T(TagStore), goerr.V(VAIDKey, vaID), goerr.V(DateKey, today)), "team member degraded")
		m.Degraded = true
	}
	if activity == nil {
		activity = model.NewDailyActivity(vaID, today)
	}
	m.Activity = activity

	if goals, err := uc.root.Activity.ResolveGoals(ctx, vaID); err == nil {
		m.Goals = goals
	} else {
		errutil.Handle(ctx, err, "failed to resolve VA goals")
	}
	m.Progress = model.ComputeProgress(m.Activity, m.Goals)

	return m
}

// RemoveVA deactivates the relationship. Activity and contacts of the VA are
// kept.
func (uc *TeamUseCase) RemoveVA(ctx context.Context, bossID, vaID string) error {
	rel, err := uc.root.repo.Team().FindActive(ctx, bossID, vaID)
	if err != nil {
		return storeErr(err, "failed to find team relationship", nil, goerr.V(BossIDKey, bossID), goerr.V(VAIDKey, vaID))
	}
	if rel == nil {
		return goerr.New("VA is not on the team", goerr.T(TagNotFound), goerr.V(BossIDKey, bossID), goerr.V(VAIDKey, vaID))
	}

	if err := uc.root.repo.Team().UpdateStatus(ctx, rel.ID, types.TeamStatusInactive); err != nil {
		return storeErr(err, "failed to deactivate team relationship", nil, goerr.V("relationship_id", rel.ID))
	}

	logging.From(ctx).Info("VA removed from team", slog.String("boss_id", bossID), slog.String("va_id", vaID))
	return nil
}
