package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mockhub/mockhub-console/internal/authn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMiddleware_ValidToken_ClaimsPopulated(t *testing.T) {
	signer := authn.NewSigner("secret", time.Hour)
	token, err := signer.Issue(42, "alice@example.com")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(ClaimsKey).(authn.Claims)
		require.True(t, ok)
		id, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, token, r.Context().Value(TokenKey))
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Add("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	JWTMiddleware(signer)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTMiddleware_Rejected(t *testing.T) {
	signer := authn.NewSigner("secret", time.Hour)
	other, err := authn.NewSigner("other", time.Hour).Issue(1, "a@b.c")
	require.NoError(t, err)
	expired, err := authn.NewSigner("secret", -time.Minute).Issue(1, "a@b.c")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"opaque token", "Bearer invalid-token"},
		{"wrong key", "Bearer " + other},
		{"expired", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("request should have been rejected")
			})

			req := httptest.NewRequest(http.MethodGet, "/group", nil)
			if tt.header != "" {
				req.Header.Add("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			JWTMiddleware(signer)(next).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"detail":"Unauthorized"}`, w.Body.String())
		})
	}
}

func TestWithLogger_RequestID(t *testing.T) {
	var seen *zerolog.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = zerolog.Ctx(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, req)

	assert.NotNil(t, seen)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
