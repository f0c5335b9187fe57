package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Take(context.Context, string, int, time.Duration, time.Time) (Decision, error) {
	return Decision{}, errors.New("store down")
}

func (failingStore) Sweep(context.Context, time.Time) (int, error) { return 0, nil }

func remoteAddrKey(r *http.Request) string { return r.RemoteAddr }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	log := zap.NewNop()

	t.Run("rejects over limit with retry after", func(t *testing.T) {
		l, _, clock := newTestLimiter()
		var rejected []string
		h := Middleware(l, Rule{Group: "auth", Limit: 2, Window: time.Minute}, remoteAddrKey, log,
			func(group string) { rejected = append(rejected, group) })(okHandler())

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		clock.Advance(500 * time.Millisecond)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Contains(t, rec.Body.String(), "Too many requests")
		assert.Equal(t, []string{"auth"}, rejected)
	})

	t.Run("groups do not share counters", func(t *testing.T) {
		l, _, _ := newTestLimiter()
		auth := Middleware(l, Rule{Group: "auth", Limit: 1, Window: time.Minute}, remoteAddrKey, log, nil)(okHandler())
		clicks := Middleware(l, Rule{Group: "clicks", Limit: 1, Window: time.Minute}, remoteAddrKey, log, nil)(okHandler())

		rec := httptest.NewRecorder()
		auth.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		clicks.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("fails open when store errors", func(t *testing.T) {
		l := New(failingStore{}, "rl:")
		h := Middleware(l, Rule{Group: "clicks", Limit: 1, Window: time.Minute}, remoteAddrKey, log, nil)(okHandler())

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 2, retryAfterSeconds(1500*time.Millisecond))
	assert.Equal(t, 60, retryAfterSeconds(time.Minute))
}
