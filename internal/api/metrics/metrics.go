// Package metrics holds the custom Prometheus metrics of the cardiology
// assistant API. Request-level HTTP metrics come from echoprometheus; the
// ones here describe domain outcomes.
//
// All metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cardio"

// ── Session metrics ───────────────────────────────────────────────────────────

// SignInAttemptsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "not_active" or "error"
var SignInAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_in_attempts_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// SignOutsTotal counts sessions revoked through sign-out.
var SignOutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_outs_total",
		Help:      "Total number of sessions revoked by sign-out.",
	},
)

// ── Completion metrics ────────────────────────────────────────────────────────

// CompletionRequestsTotal counts orchestrated completions.
// Label:
//   - result: "ok", "ok_unpersisted", "timeout", "upstream_error", "rejected" or "error"
var CompletionRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completion_requests_total",
		Help:      "Total number of completion requests, by result.",
	},
	[]string{"result"},
)

// CompletionDuration measures a completion request end to end, provider
// call and persistence included.
// Label:
//   - result: same values as CompletionRequestsTotal
var CompletionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "completion_duration_seconds",
		Help:      "Duration of completion requests.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 90},
	},
	[]string{"result"},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// UsersCreatedTotal counts accounts created.
// Label:
//   - role: "USER", "ADMIN" or "SUPERADMIN"
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user accounts created, by role.",
	},
	[]string{"role"},
)

// IntakeRecordsCreatedTotal counts submitted intake forms.
var IntakeRecordsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "intake_records_created_total",
		Help:      "Total number of intake records submitted.",
	},
)
