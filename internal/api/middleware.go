// internal/api/middleware.go
package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/authz"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

// UserIDHeader carries the caller's user ID, set by the upstream
// authentication proxy.
const UserIDHeader = "X-User-ID"

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestIDFromContext returns the ID assigned by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithAuth resolves the caller from UserIDHeader. Requests without a valid
// active user pass through anonymously; handlers decide whether that is
// allowed.
func WithAuth(queries *dbgen.Queries) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			logger := log.Ctx(r.Context())

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn().Str("header", raw).Msg("Ignoring malformed user header")
				next.ServeHTTP(w, r)
				return
			}

			// Timeout only applies to this lookup
			queryCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			user, err := queries.GetUserByID(queryCtx, userID)
			cancel()
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					logger.Warn().Int64("user_id", userID).Msg("Unknown user in auth header")
				} else {
					logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user for request")
				}
				next.ServeHTTP(w, r)
				return
			}
			if user.Status != "active" {
				logger.Warn().Int64("user_id", userID).Msg("Inactive user in auth header")
				next.ServeHTTP(w, r)
				return
			}

			authUser := &authz.AuthUser{ID: user.ID, FullName: user.FullName, Role: user.Role}
			userLogger := logger.With().Int64("user_id", user.ID).Logger()
			ctx := authz.ContextWithUser(r.Context(), authUser)
			ctx = userLogger.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
