package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "launchpad"

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	// Click metrics
	ClickEvents *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitRejections *prometheus.CounterVec

	// Payment metrics
	CheckoutSessions  *prometheus.CounterVec
	PlacementPayments *prometheus.CounterVec
	ExpiredPlacements prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ClickEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "click_events_total",
				Help:      "Click events by type, outcome and device class",
			},
			[]string{"type", "result", "device"},
		),
		RateLimitRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_rejections_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"group"},
		),
		CheckoutSessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkout_sessions_total",
				Help:      "Checkout sessions by outcome",
			},
			[]string{"result"},
		),
		PlacementPayments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "placement_payments_total",
				Help:      "Payment outcomes applied to placements",
			},
			[]string{"status"},
		),
		ExpiredPlacements: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "placements_expired_total",
				Help:      "Placements moved to expired by the scheduler",
			},
		),
		HTTPRequests: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route", "status"},
		),
		gatherer: reg,
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordClick records a click event outcome. device is one of the useragent
// device classes (desktop, mobile, tablet, bot, unknown).
func (m *Metrics) RecordClick(clickType, result, device string) {
	m.ClickEvents.WithLabelValues(clickType, result, device).Inc()
}

// RecordRateLimitRejection records a rate limit hit.
func (m *Metrics) RecordRateLimitRejection(group string) {
	m.RateLimitRejections.WithLabelValues(group).Inc()
}

// RecordCheckout records a checkout session attempt.
func (m *Metrics) RecordCheckout(result string) {
	m.CheckoutSessions.WithLabelValues(result).Inc()
}

// RecordPayment records a payment outcome.
func (m *Metrics) RecordPayment(status string) {
	m.PlacementPayments.WithLabelValues(status).Inc()
}

// RecordExpired records placements expired in one pass.
func (m *Metrics) RecordExpired(n int64) {
	if n > 0 {
		m.ExpiredPlacements.Add(float64(n))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
