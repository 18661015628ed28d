package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

// TimezoneHeader carries the browser's IANA time zone, e.g. "Asia/Manila"
const TimezoneHeader = "X-Timezone"

// authMiddleware resolves the caller from the identity proxy assertion
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authUC.Authenticate(r.Context(), r.Header.Get(usecase.IAPHeader))
			if err != nil {
				logging.From(r.Context()).Warn("authentication failed", slog.String("error", err.Error()))
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), id)
			ctx = logging.With(ctx, logging.From(ctx).With(slog.String("user_id", id.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bossMiddleware rejects callers whose profile is not a boss
func bossMiddleware(uc *usecase.UseCases) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.IdentityFromContext(r.Context())
			if err != nil {
				handleError(w, r, goerr.Wrap(err, "no identity", goerr.T(usecase.TagForbidden)))
				return
			}
			if _, err := uc.Profile.RequireBoss(r.Context(), id.Subject); err != nil {
				handleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// timezoneMiddleware puts the caller's time zone in the context so that
// "today" is the caller's calendar day. Unknown zones are ignored.
func timezoneMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name := r.Header.Get(TimezoneHeader); name != "" {
			loc, err := time.LoadLocation(name)
			if err != nil {
				logging.From(r.Context()).Debug("ignoring unknown time zone", slog.String("tz", name))
			} else {
				r = r.WithContext(model.ContextWithLocation(r.Context(), loc))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// identity returns the authenticated caller or writes 401
func identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
		return nil, false
	}
	return id, true
}
