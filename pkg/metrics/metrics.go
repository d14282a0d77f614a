package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts records login attempts by result (success|failure|rate_limited).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enumm_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// Signups counts signup outcomes (created|resent|conflict).
	Signups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enumm_signups_total",
			Help: "Total number of signup requests",
		},
		[]string{"outcome"},
	)

	// Verifications counts email verification outcomes (verified|invalid|used|expired).
	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enumm_email_verifications_total",
			Help: "Total number of email verification attempts",
		},
		[]string{"outcome"},
	)

	// ActiveSessions tracks sessions that are neither expired nor closed.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "enumm_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enumm_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
