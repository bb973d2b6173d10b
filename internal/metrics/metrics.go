// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes.
const (
	OutcomeAccepted      = "accepted"
	OutcomeInvalid       = "invalid"
	OutcomePersistFailed = "persist_failed"
	OutcomeNotifyFailed  = "notify_failed"
	OutcomeNotifySkipped = "notify_skipped"
)

var (
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "contact_submissions_total", Help: "Contact form submissions by outcome."},
		[]string{"outcome"},
	)
	NotifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "portfolio", Name: "notify_duration_seconds", Help: "Time spent sending notification emails.", Buckets: prometheus.DefBuckets},
		[]string{"provider"},
	)
	AdminLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "admin_logins_total", Help: "Admin login attempts by result."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Submissions)
	reg.MustRegister(NotifyDuration)
	reg.MustRegister(AdminLogins)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
