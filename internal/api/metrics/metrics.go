// Package metrics defines and registers all custom Prometheus metrics for the
// authentication API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Flow metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "duplicate_email", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - method: "password" or the provider name ("google", "apple")
//   - result: "success", "invalid_credentials", "verification_failed", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// SocialVerifyDuration measures the round-trip of a provider verification.
// Label:
//   - provider: "google" or "apple"
var SocialVerifyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "social_verify_duration_seconds",
		Help:      "Duration of external identity verification calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// ── Token metrics ─────────────────────────────────────────────────────────────

// TokensIssuedTotal counts bearer tokens minted across all flows.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens minted.",
	},
)

// TokensRevokedTotal counts explicit revocations (logout).
var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of bearer tokens revoked.",
	},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditEventsRecordedTotal counts auth events persisted to the audit trail.
// Label:
//   - action: "register", "login", "social_login", or "logout"
var AuditEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_recorded_total",
		Help:      "Total number of auth events written to the audit trail.",
	},
	[]string{"action"},
)

// AuditEventsErrorsTotal counts audit events that failed to persist.
// Label:
//   - reason: short description of the failure (e.g. "insert_failed")
var AuditEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_errors_total",
		Help:      "Total number of auth events that failed processing.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of auth events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
