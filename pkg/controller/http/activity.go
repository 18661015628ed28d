package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/usecase"
)

// defaultHistoryDays is the history window when ?days is absent
const defaultHistoryDays = 30

// activityView loads the caller's goals and renders the activity with progress
func activityView(w http.ResponseWriter, r *http.Request, uc *usecase.UseCases, a *model.DailyActivity) {
	goals, err := uc.Activity.ResolveGoals(r.Context(), a.UserID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toActivityView(a, goals))
}

func todayActivityHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		a, err := uc.Activity.GetOrCreateTodayActivity(r.Context(), id.Subject)
		if err != nil {
			handleError(w, r, err)
			return
		}
		activityView(w, r, uc, a)
	}
}

func dateActivityHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		a, err := uc.Activity.GetOrCreateActivity(r.Context(), id.Subject, chi.URLParam(r, "date"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		activityView(w, r, uc, a)
	}
}

type adjustRequest struct {
	Field string `json:"field"`
	Delta int    `json:"delta"`
}

func adjustCounterHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req adjustRequest
		if err := readJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		field, err := types.ParseActivityField(req.Field)
		if err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid field", goerr.T(usecase.TagValidation)))
			return
		}

		activityID := model.ActivityID(chi.URLParam(r, "id"))
		a, err := uc.Activity.AdjustCounter(r.Context(), id.Subject, activityID, field, req.Delta)
		if err != nil {
			handleError(w, r, err)
			return
		}
		activityView(w, r, uc, a)
	}
}

type setCounterRequest struct {
	Field string `json:"field"`
	Value *int   `json:"value"`
}

func setCounterHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req setCounterRequest
		if err := readJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		field, err := types.ParseActivityField(req.Field)
		if err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid field", goerr.T(usecase.TagValidation)))
			return
		}
		if req.Value == nil {
			handleError(w, r, goerr.New("value is required", goerr.T(usecase.TagValidation)))
			return
		}

		activityID := model.ActivityID(chi.URLParam(r, "id"))
		a, err := uc.Activity.SetCounter(r.Context(), id.Subject, activityID, field, *req.Value)
		if err != nil {
			handleError(w, r, err)
			return
		}
		activityView(w, r, uc, a)
	}
}

type historyResponse struct {
	Days       int                `json:"days"`
	Activities []activityResponse `json:"activities"`
}

func historyHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		days := defaultHistoryDays
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				handleError(w, r, goerr.Wrap(err, "invalid days parameter", goerr.T(usecase.TagValidation), goerr.V("days", v)))
				return
			}
			days = n
		}

		rows, err := uc.Activity.ListHistorical(r.Context(), id.Subject, days)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := historyResponse{Days: days, Activities: make([]activityResponse, len(rows))}
		for i, a := range rows {
			resp.Activities[i] = toActivityResponse(a)
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func getGoalsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		goals, err := uc.Activity.ResolveGoals(r.Context(), id.Subject)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toGoalsResponse(goals))
	}
}

type setGoalRequest struct {
	GoalType    string `json:"goal_type"`
	TargetValue int    `json:"target_value"`
}

func setGoalHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req setGoalRequest
		if err := readJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		goalType, err := types.ParseGoalType(req.GoalType)
		if err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid goal type", goerr.T(usecase.TagValidation)))
			return
		}

		if _, err := uc.Activity.SetGoal(r.Context(), id.Subject, goalType, req.TargetValue); err != nil {
			handleError(w, r, err)
			return
		}

		goals, err := uc.Activity.ResolveGoals(r.Context(), id.Subject)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toGoalsResponse(goals))
	}
}
