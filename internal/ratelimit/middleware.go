// internal/ratelimit/middleware.go
package ratelimit

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
)

// Wrap throttles an authenticated submission handler. Anonymous requests
// pass through so the handler can answer 401.
func (l *Limiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := authz.UserFromContext(r.Context())
		if user == nil {
			next(w, r)
			return
		}

		ip := GetClientIP(r, l.config.TrustProxy)
		result := l.Allow(user.ID, r.Method+" "+r.URL.Path, ip)
		if !result.Allowed {
			log.Ctx(r.Context()).Warn().
				Str("event", "rate_limit_exceeded").
				Int64("user_id", user.ID).
				Str("ip", ip).
				Str("reason", result.Reason).
				Dur("retry_after", result.RetryAfter).
				Msg("Payment submission rate limited")
			w.Header().Set("Retry-After", RetryAfterHeader(result.RetryAfter))
			apiutil.WriteError(w, r, apiutil.HandlerError{
				Status:  http.StatusTooManyRequests,
				Message: "too many submissions, try again later",
			})
			return
		}
		next(w, r)
	}
}
