package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/service/poller"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

func teamHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		summary, err := uc.Team.AggregateTeam(r.Context(), id.Subject)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toTeamResponse(summary))
	}
}

type streamEvent struct {
	Initial bool          `json:"initial"`
	Team    *teamResponse `json:"team,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// teamStreamHandler serves the dashboard as server-sent events. The first
// event is the initial load; later events are silent refreshes. The stream
// ends when the team becomes empty or the client goes away.
func teamStreamHandler(uc *usecase.UseCases, interval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			handleError(w, r, goerr.New("streaming is not supported by the connection"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ctx := r.Context()
		logger := logging.From(ctx)

		fetch := func(ctx context.Context) (*model.TeamSummary, error) {
			return uc.Team.AggregateTeam(ctx, id.Subject)
		}
		send := func(s poller.Snapshot) {
			ev := streamEvent{Initial: s.Initial}
			name := "team"
			if s.Err != nil {
				name = "error"
				ev.Error = "failed to load team"
			} else {
				resp := toTeamResponse(s.Summary)
				ev.Team = &resp
			}
			if err := writeEvent(w, name, ev); err != nil {
				logger.Debug("stream write failed", slog.String("error", err.Error()))
				return
			}
			flusher.Flush()
		}

		p := poller.New(fetch, send, poller.WithInterval(interval))
		if err := p.Start(ctx); err != nil {
			logger.Warn("team stream initial load failed", slog.String("error", err.Error()))
			return
		}
		defer p.Stop()

		select {
		case <-p.Done():
			_ = writeEvent(w, "end", streamEvent{})
			flusher.Flush()
		case <-ctx.Done():
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal stream event")
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return goerr.Wrap(err, "failed to write stream event")
	}
	return nil
}

func removeVAHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		if err := uc.Team.RemoveVA(r.Context(), id.Subject, chi.URLParam(r, "vaID")); err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

func bossContactsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		groups, err := uc.Contact.ListForBoss(r.Context(), id.Subject)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toContactsResponse(groups))
	}
}
