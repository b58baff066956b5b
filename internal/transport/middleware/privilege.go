package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/access"
)

// Authorizer answers whether a user holds at least the required privilege on
// a view. Satisfied by the access resolver.
type Authorizer interface {
	Authorize(ctx context.Context, userID, viewCode string, required access.Privilege) bool
}

// RequirePrivilege gates a route group behind one view. Requests without an
// authenticated user get 401; authenticated users below the required
// privilege get 403. Resolution failures deny.
func RequirePrivilege(authorizer Authorizer, viewCode string, required access.Privilege, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := internal.UserIDFromContext(r.Context())
			if userID == "" {
				unauthorized(w)
				return
			}

			if !authorizer.Authorize(r.Context(), userID, viewCode, required) {
				logger.Warn("access denied",
					"user_id", userID,
					"view_code", viewCode,
					"required", required.String())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "forbidden"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
