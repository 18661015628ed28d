package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
	"github.com/secmon-lab/vatracker/pkg/service/poller"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/secmon-lab/vatracker/pkg/utils/errutil"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	authUC       AuthUseCase
	pollInterval time.Duration
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithPollInterval sets the refresh period of the team stream
func WithPollInterval(d time.Duration) Options {
	return func(s *Server) {
		s.pollInterval = d
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		uc:           uc,
		authUC:       uc.Auth,
		pollInterval: poller.DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		return nil, goerr.New("authentication is not configured")
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(timezoneMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	})

	r.Route("/api", func(r chi.Router) {
		// Public: the accept screen shows the invitation before sign-in
		r.Get("/invitations/{token}", getInvitationHandler(uc))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Post("/invitations/{token}/accept", acceptInvitationHandler(uc))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", getMeHandler(uc))
				r.Post("/profile", createProfileHandler(uc))
				r.Put("/settings", updateSettingsHandler(uc))
				r.Post("/settings/slack-test", testSlackHandler(uc))
			})

			r.Route("/activity", func(r chi.Router) {
				r.Get("/today", todayActivityHandler(uc))
				r.Get("/date/{date}", dateActivityHandler(uc))
				r.Get("/history", historyHandler(uc))
				r.Post("/{id}/adjust", adjustCounterHandler(uc))
				r.Put("/{id}", setCounterHandler(uc))
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", getGoalsHandler(uc))
				r.Post("/", setGoalHandler(uc))
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", listContactsHandler(uc))
				r.Post("/", addContactHandler(uc))
				r.Post("/images", uploadImageHandler(uc))
				r.Delete("/{id}", removeContactHandler(uc))
			})

			r.Route("/boss", func(r chi.Router) {
				r.Use(bossMiddleware(uc))
				r.Get("/team", teamHandler(uc))
				r.Get("/team/stream", teamStreamHandler(uc, s.pollInterval))
				r.Delete("/team/{vaID}", removeVAHandler(uc))
				r.Get("/contacts", bossContactsHandler(uc))
				r.Post("/invitations", inviteVAHandler(uc))
			})
		})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// statusOf maps use case error classes to HTTP status codes
func statusOf(err error) int {
	switch {
	case goerr.HasTag(err, usecase.TagValidation):
		return http.StatusBadRequest
	case goerr.HasTag(err, usecase.TagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, usecase.TagForbidden):
		if errors.Is(err, auth.ErrNoIdentity) {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case goerr.HasTag(err, usecase.TagNotification):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}
