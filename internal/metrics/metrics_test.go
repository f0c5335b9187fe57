package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordClick("click", "recorded", "desktop")
	m.RecordClick("click", "recorded", "desktop")
	m.RecordClick("outbound", "duplicate", "mobile")
	m.RecordRateLimitRejection("auth")
	m.RecordPayment("paid")
	m.RecordExpired(3)
	m.RecordExpired(0)
	m.ObserveRequest(http.MethodGet, "/api/launches", http.StatusOK, 10*time.Millisecond)

	body := scrape(t, m)

	assert.Contains(t, body, `launchpad_click_events_total{device="desktop",result="recorded",type="click"} 2`)
	assert.Contains(t, body, `launchpad_click_events_total{device="mobile",result="duplicate",type="outbound"} 1`)
	assert.Contains(t, body, `launchpad_rate_limit_rejections_total{group="auth"} 1`)
	assert.Contains(t, body, `launchpad_placement_payments_total{status="paid"} 1`)
	assert.Contains(t, body, `launchpad_placements_expired_total 3`)
	assert.Contains(t, body, `launchpad_http_request_duration_seconds_count{method="GET",route="/api/launches",status="200"} 1`)
}

func TestNew_SeparateRegistries(t *testing.T) {
	a := New(nil)
	b := New(nil)

	a.RecordRateLimitRejection("clicks")

	assert.Contains(t, scrape(t, a), `group="clicks"`)
	assert.NotContains(t, scrape(t, b), `group="clicks"`)
}
