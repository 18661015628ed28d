package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/usecase"
)

type inviteRequest struct {
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	HourlyRate float64 `json:"hourly_rate"`
}

func inviteVAHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req inviteRequest
		if err := readJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		inv, link, err := uc.Invitation.InviteVA(r.Context(), id.Subject, usecase.InviteInput{
			Email:      req.Email,
			FullName:   req.FullName,
			HourlyRate: req.HourlyRate,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toInvitationResponse(inv, link))
	}
}

type publicInvitationResponse struct {
	invitationResponse
	BossName string `json:"boss_name"`
}

// getInvitationHandler is public: it backs the acceptance screen
func getInvitationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := uc.Invitation.GetInvitation(r.Context(), model.InvitationToken(chi.URLParam(r, "token")))
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := publicInvitationResponse{invitationResponse: toInvitationResponse(inv, "")}
		if boss, err := uc.Profile.GetProfile(r.Context(), inv.BossID); err == nil {
			resp.BossName = boss.DisplayName()
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

type acceptResponse struct {
	BossID string `json:"boss_id"`
	VAID   string `json:"va_id"`
	Status string `json:"status"`
}

func acceptInvitationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		rel, err := uc.Invitation.AcceptInvitation(r.Context(), model.InvitationToken(chi.URLParam(r, "token")), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, acceptResponse{
			BossID: rel.BossID,
			VAID:   rel.VAID,
			Status: rel.Status.String(),
		})
	}
}
