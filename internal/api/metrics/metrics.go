// Package metrics defines the business Prometheus metrics of the task
// tracker. They are registered with the default registry at package init and
// exposed on /metrics next to the HTTP metrics of echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tasktracker"

// Outcome label values.
const (
	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultFailure = "failure"
)

// ── Task metrics ─────────────────────────────────────────────────────────────

// TaskOperationsTotal counts task mutations that were applied.
// Label:
//   - op: "create", "update", "complete" or "delete"
var TaskOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_operations_total",
		Help:      "Total number of applied task mutations, by operation.",
	},
	[]string{"op"},
)

// TaskOperationsCancelledTotal counts forms submitted with cancel.
var TaskOperationsCancelledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_operations_cancelled_total",
		Help:      "Total number of task forms abandoned with cancel, by operation.",
	},
	[]string{"op"},
)

// SearchesTotal counts searches.
// Label:
//   - result: "hit" (at least one task) or "miss"
var SearchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of task searches, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Auth metrics ─────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unknown_email", "wrong_password", "invalid" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "duplicate", "invalid" or "failure"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)
