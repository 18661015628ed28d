package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

func mustDate(t *testing.T, s string) types.ActivityDate {
	t.Helper()
	d, err := types.ParseActivityDate(s)
	gt.NoError(t, err).Required()
	return d
}

func TestNewActivityID(t *testing.T) {
	id := model.NewActivityID("user-1", mustDate(t, "2024-03-15"))
	gt.Value(t, id).Equal(model.ActivityID("user-1_2024-03-15"))

	other := model.NewActivityID("user-1", mustDate(t, "2024-03-16"))
	gt.Value(t, other).NotEqual(id)
}

func TestDailyActivity_ValueAndSetValue(t *testing.T) {
	a := model.NewDailyActivity("user-1", mustDate(t, "2024-03-15"))
	gt.Number(t, a.DMsSent).Equal(0)

	a.SetValue(types.ActivityFieldDMsSent, 3)
	a.SetValue(types.ActivityFieldConnectionsSent, 5)
	a.SetValue(types.ActivityFieldConnectionsAccepted, 2)

	gt.Number(t, a.Value(types.ActivityFieldDMsSent)).Equal(3)
	gt.Number(t, a.Value(types.ActivityFieldConnectionsSent)).Equal(5)
	gt.Number(t, a.Value(types.ActivityFieldConnectionsAccepted)).Equal(2)
	gt.Number(t, a.Value(types.ActivityField("unknown"))).Equal(0)
}

func TestComputeProgress(t *testing.T) {
	t.Run("partial progress", func(t *testing.T) {
		a := &model.DailyActivity{DMsSent: 10, ConnectionsSent: 4, ConnectionsAccepted: 1}
		p := model.ComputeProgress(a, model.GoalSet{DMs: 20, Connections: 20})

		gt.Value(t, p.DMsPercent).Equal(50.0)
		gt.Value(t, p.ConnectionsPercent).Equal(20.0)
		gt.Bool(t, p.DMsComplete).False()
		gt.Bool(t, p.ConnectionsComplete).False()
		gt.Bool(t, p.AllGoalsMet).False()
		gt.Number(t, p.AcceptanceRate).Equal(25)
	})

	t.Run("over goal is not clamped", func(t *testing.T) {
		a := &model.DailyActivity{DMsSent: 30, ConnectionsSent: 20}
		p := model.ComputeProgress(a, model.GoalSet{DMs: 20, Connections: 20})

		gt.Value(t, p.DMsPercent).Equal(150.0)
		gt.Value(t, model.BarPercent(p.DMsPercent)).Equal(100.0)
		gt.Bool(t, p.DMsComplete).True()
		gt.Bool(t, p.ConnectionsComplete).True()
		gt.Bool(t, p.AllGoalsMet).True()
	})

	t.Run("no connections sent means zero acceptance", func(t *testing.T) {
		a := &model.DailyActivity{ConnectionsAccepted: 3}
		p := model.ComputeProgress(a, model.DefaultGoalSet())
		gt.Number(t, p.AcceptanceRate).Equal(0)
	})

	t.Run("acceptance rate is rounded", func(t *testing.T) {
		a := &model.DailyActivity{ConnectionsSent: 3, ConnectionsAccepted: 2}
		p := model.ComputeProgress(a, model.DefaultGoalSet())
		gt.Number(t, p.AcceptanceRate).Equal(67)
	})
}

func TestBarPercent(t *testing.T) {
	gt.Value(t, model.BarPercent(-5)).Equal(0.0)
	gt.Value(t, model.BarPercent(42.5)).Equal(42.5)
	gt.Value(t, model.BarPercent(250)).Equal(100.0)
}

func TestResolveGoalSet(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("defaults when empty", func(t *testing.T) {
		gt.Value(t, model.ResolveGoalSet(nil, now)).Equal(model.GoalSet{DMs: 20, Connections: 20})
	})

	t.Run("newest effective row wins per type", func(t *testing.T) {
		goals := []*model.Goal{
			{Type: types.GoalTypeDMsPerDay, TargetValue: 15, EffectiveFrom: now.Add(-48 * time.Hour)},
			{Type: types.GoalTypeDMsPerDay, TargetValue: 30, EffectiveFrom: now.Add(-time.Hour)},
			{Type: types.GoalTypeDMsPerDay, TargetValue: 99, EffectiveFrom: now.Add(time.Hour)},
		}
		set := model.ResolveGoalSet(goals, now)
		gt.Number(t, set.DMs).Equal(30)
		// connections has no row and falls back independently
		gt.Number(t, set.Connections).Equal(20)
	})
}

func TestDefaultGoals(t *testing.T) {
	now := time.Now()
	goals := model.DefaultGoals("va-1", now)
	gt.Array(t, goals).Length(2)
	for _, g := range goals {
		gt.Value(t, g.UserID).Equal("va-1")
		gt.Number(t, g.TargetValue).Equal(20)
	}
	gt.Value(t, model.ResolveGoalSet(goals, now)).Equal(model.DefaultGoalSet())
}
