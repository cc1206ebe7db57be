package middleware

import (
	"context"
	"net/http"

	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

type ctxKey string

const claimsKey ctxKey = "session_claims"

// RequireSession rejects requests without a valid session cookie.
func RequireSession(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.FromRequest(r)
			if err != nil {
				response.Unauthorized(w, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, logger.CustomerIDKey, claims.CustomerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches claims when the cookie is valid and continues
// either way. Used by /auth/me, where "not logged in" is a 200.
func OptionalSession(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := sessions.FromRequest(r); err == nil {
				ctx := context.WithValue(r.Context(), claimsKey, claims)
				ctx = context.WithValue(ctx, logger.CustomerIDKey, claims.CustomerID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Claims returns the session claims attached by RequireSession or
// OptionalSession, or nil.
func Claims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}
