// Package metrics defines the custom Prometheus metrics of the maintenance
// tracker API. Metrics register with the default registry on package init
// through promauto; the HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "maintenance"

// Outcome label values.
const (
	OutcomeSuccess         = "success"
	OutcomeFailure         = "failure"
	OutcomeError           = "error"
	OutcomeAllowed         = "allowed"
	OutcomeDenied          = "denied"
	OutcomeUnauthenticated = "unauthenticated"
)

// ── Authentication ────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - operation: "login" or "register"
//   - outcome: "success", "failure" (rejected input or credentials) or "error" (fault)
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// AuthorizationDecisionsTotal counts guard decisions per capability.
// Labels:
//   - capability: the capability checked, or "session" for identity-only routes
//   - outcome: "allowed", "denied" or "unauthenticated"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of guard decisions, by capability and outcome.",
	},
	[]string{"capability", "outcome"},
)

// ── Issues & reports ──────────────────────────────────────────────────────────

// IssuesCreatedTotal counts newly created issues.
// Label:
//   - priority: "low", "medium" or "high"
var IssuesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_created_total",
		Help:      "Total number of issues created, by priority.",
	},
	[]string{"priority"},
)

// ReportsExportedTotal counts CSV exports.
var ReportsExportedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_exported_total",
		Help:      "Total number of issue CSV exports served.",
	},
)

// ExportedRows observes how many issue rows each export carried.
var ExportedRows = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_rows",
		Help:      "Number of issue rows written per CSV export.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	},
)
