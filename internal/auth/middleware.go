package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ubademy/users-service/internal/platform/httpx"
	"github.com/ubademy/users-service/internal/shared"
	"github.com/ubademy/users-service/internal/token"
)

// AdminDirectory answers whether the given email belongs to an account holding
// the admin role. A missing account reports (false, nil); only store failures
// return an error.
type AdminDirectory interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Authenticator gates protected routes by validating bearer tokens and, where
// required, the admin role.
type Authenticator struct {
	logger    *slog.Logger
	codec     *token.Codec
	directory AdminDirectory
}

// NewAuthenticator constructs the middleware with its dependencies.
func NewAuthenticator(logger *slog.Logger, codec *token.Codec, directory AdminDirectory) *Authenticator {
	return &Authenticator{logger: logger, codec: codec, directory: directory}
}

// RequireToken validates the Authorization header and attaches the token
// subject to the request context. Decoded tokens are never cached; every
// request re-verifies.
func (a *Authenticator) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.Message(w, http.StatusForbidden, "There is no authorization headers")
			return
		}
		var raw string
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
			raw = parts[1]
		}
		claims, err := a.codec.Decode(raw)
		if err != nil {
			// The decode error message is surfaced as-is; documented quirk.
			httpx.Message(w, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() <= time.Now().Unix() {
			httpx.Message(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := shared.ContextWithSubject(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin-only routes. It must run after RequireToken and
// re-queries the directory on every request.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := shared.SubjectFromContext(r.Context())
		isAdmin, err := a.directory.IsAdmin(r.Context(), subject)
		if err != nil {
			a.logger.Warn("admin role lookup failed", slog.Any("error", err))
			httpx.Message(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !isAdmin {
			httpx.Message(w, http.StatusUnauthorized, "User is not allowed to perform the action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
