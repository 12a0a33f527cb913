package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mockhub/mockhub-console/internal/authn"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string
type tokenKey string

const ClaimsKey contextKey = "claims"
const TokenKey tokenKey = "token"

const RequestIDHeader = "X-Request-Id"

// JWTMiddleware verifies the bearer token and adds its claims to the request context.
func JWTMiddleware(signer *authn.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				logger := zerolog.Ctx(r.Context()).With().
					Str("handler", "JWTMiddleware").Logger()

				// Get the Authorization header
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					logger.Debug().Msg("authorization header missing")
					unauthorized(w)
					return
				}

				// Check the Authorization header format
				token := strings.TrimPrefix(authHeader, "Bearer ")
				if token == authHeader || token == "" {
					logger.Warn().Msg("invalid token format")
					unauthorized(w)
					return
				}

				claims, err := signer.Verify(token)
				if err != nil {
					logger.Warn().Err(err).Msg("invalid bearer jwt token")
					unauthorized(w)
					return
				}

				// Add the token and claims to the context
				ctx := context.WithValue(r.Context(), TokenKey, token)
				ctx = context.WithValue(ctx, ClaimsKey, claims)

				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			logger := log.With().
				Str("request_id", requestID).
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Time("timestamp", time.Now()).
				Logger()

			logger.Debug().Msg("request received")

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"detail":"Unauthorized"}` + "\n"))
}
