package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Rule is the limit applied to one route group.
type Rule struct {
	Group  string
	Limit  int
	Window time.Duration
}

// KeyFunc extracts the client identity from a request.
type KeyFunc func(r *http.Request) string

// RejectFunc is notified about every rejected request.
type RejectFunc func(group string)

// Middleware limits requests per client for one route group. Store errors let
// the request through.
func Middleware(l *Limiter, rule Rule, keyFn KeyFunc, log *zap.Logger, onReject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rule.Group + ":" + keyFn(r)

			decision, err := l.Allow(r.Context(), key, rule.Limit, rule.Window)
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request",
					zap.String("group", rule.Group),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				if onReject != nil {
					onReject(rule.Group)
				}
				log.Debug("rate limit exceeded",
					zap.String("group", rule.Group),
					zap.String("key", key))

				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision.RetryAfter)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"message": "Too many requests, please try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
