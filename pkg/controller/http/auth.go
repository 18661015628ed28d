package http

import (
	"errors"
	"net/http"

	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/usecase"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type meResponse struct {
	Sub     string           `json:"sub"`
	Email   string           `json:"email"`
	Name    string           `json:"name"`
	Profile *profileResponse `json:"profile"`
}

// getMeHandler returns the caller's identity and profile. A missing profile
// is not an error: the client shows role selection.
func getMeHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		resp := meResponse{Sub: id.Subject, Email: id.Email, Name: id.Name}
		profile, err := uc.Profile.GetProfile(r.Context(), id.Subject)
		switch {
		case err == nil:
			p := toProfileResponse(profile)
			resp.Profile = &p
		case errors.Is(err, usecase.ErrProfileNotFound):
		default:
			handleError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

type createProfileRequest struct {
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

func createProfileHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req createProfileRequest
		if err := readJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		profile, err := uc.Profile.CreateProfile(r.Context(), id, types.Role(req.Role), req.FullName)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toProfileResponse(profile))
	}
}

type settingsRequest struct {
	SlackWebhookURL string `json:"slack_webhook_url"`
}

func updateSettingsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req settingsRequest
		if err := readJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		profile, err := uc.Profile.UpdateSettings(r.Context(), id.Subject, req.SlackWebhookURL)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toProfileResponse(profile))
	}
}

// testSlackHandler sends the "connected" message. The body is optional; an
// empty URL tests the saved webhook.
func testSlackHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req settingsRequest
		if r.ContentLength != 0 {
			if err := readJSON(w, r, &req); err != nil {
				handleError(w, r, err)
				return
			}
		}

		if err := uc.Profile.TestSlackWebhook(r.Context(), id.Subject, req.SlackWebhookURL); err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}
