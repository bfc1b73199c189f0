package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubademy/users-service/internal/shared"
	"github.com/ubademy/users-service/internal/token"
)

const middlewareSecret = "middleware-secret"

type stubDirectory struct {
	isAdminFn func(ctx context.Context, email string) (bool, error)
}

func (s *stubDirectory) IsAdmin(ctx context.Context, email string) (bool, error) {
	if s.isAdminFn == nil {
		return false, nil
	}
	return s.isAdminFn(ctx, email)
}

func newAuthenticator(directory AdminDirectory) *Authenticator {
	logger := slog.New(slog.DiscardHandler)
	return NewAuthenticator(logger, token.NewCodec(middlewareSecret), directory)
}

func okHandler(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = shared.SubjectFromContext(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func bodyMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Message
}

func TestRequireTokenMissingHeader(t *testing.T) {
	a := newAuthenticator(&stubDirectory{})
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rr := httptest.NewRecorder()

	a.RequireToken(okHandler(nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "There is no authorization headers", bodyMessage(t, rr))
}

func TestRequireTokenMalformed(t *testing.T) {
	a := newAuthenticator(&stubDirectory{})
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()

	a.RequireToken(okHandler(nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	// The raw decode error detail is surfaced as-is.
	assert.NotEmpty(t, bodyMessage(t, rr))
}

func TestRequireTokenWrongSecret(t *testing.T) {
	a := newAuthenticator(&stubDirectory{})
	minted, err := token.NewCodec("another-secret").Mint("a@b.com", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+minted)
	rr := httptest.NewRecorder()

	a.RequireToken(okHandler(nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireTokenExpired(t *testing.T) {
	a := newAuthenticator(&stubDirectory{})
	minted, err := token.NewCodec(middlewareSecret).Mint("a@b.com", -time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+minted)
	rr := httptest.NewRecorder()

	a.RequireToken(okHandler(nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid token", bodyMessage(t, rr))
}

func TestRequireTokenWithoutExpiry(t *testing.T) {
	a := newAuthenticator(&stubDirectory{})
	// Authentically signed but carrying no exp claim; the codec decodes it,
	// the middleware must still reject it.
	claims := jwt.RegisteredClaims{
		Subject:  "a@b.com",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	minted, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(middlewareSecret))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+minted)
	rr := httptest.NewRecorder()

	var subject string
	a.RequireToken(okHandler(&subject)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid token", bodyMessage(t, rr))
	assert.Empty(t, subject)
}

func TestRequireTokenAttachesSubject(t *testing.T) {
	a := newAuthenticator(&stubDirectory{})
	minted, err := token.NewCodec(middlewareSecret).Mint("a@b.com", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+minted)
	rr := httptest.NewRecorder()

	var subject string
	a.RequireToken(okHandler(&subject)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "a@b.com", subject)
}

func TestRequireAdminDenied(t *testing.T) {
	a := newAuthenticator(&stubDirectory{
		isAdminFn: func(ctx context.Context, email string) (bool, error) {
			return false, nil
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/users/1/block", nil)
	req = req.WithContext(shared.ContextWithSubject(req.Context(), "user@b.com"))
	rr := httptest.NewRecorder()

	a.RequireAdmin(okHandler(nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "User is not allowed to perform the action.", bodyMessage(t, rr))
}

func TestRequireAdminStoreError(t *testing.T) {
	a := newAuthenticator(&stubDirectory{
		isAdminFn: func(ctx context.Context, email string) (bool, error) {
			return false, errors.New("connection reset")
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/users/1/block", nil)
	req = req.WithContext(shared.ContextWithSubject(req.Context(), "admin@b.com"))
	rr := httptest.NewRecorder()

	a.RequireAdmin(okHandler(nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "connection reset", bodyMessage(t, rr))
}

func TestRequireAdminAllows(t *testing.T) {
	var queried string
	a := newAuthenticator(&stubDirectory{
		isAdminFn: func(ctx context.Context, email string) (bool, error) {
			queried = email
			return true, nil
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/users/1/block", nil)
	req = req.WithContext(shared.ContextWithSubject(req.Context(), "admin@b.com"))
	rr := httptest.NewRecorder()

	a.RequireAdmin(okHandler(nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "admin@b.com", queried)
}
