// Package metrics registers the Prometheus instruments for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Operations counts engine operations by name and outcome
	// (ok / rejected).
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dutchpay",
		Name:      "operations_total",
		Help:      "Engine operations by name and outcome.",
	}, []string{"op", "outcome"})

	// Warnings counts user-visible validation warnings by kind.
	Warnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dutchpay",
		Name:      "warnings_total",
		Help:      "Validation warnings by kind.",
	}, []string{"kind"})

	// InvariantViolations counts accounting-invariant deviations. These
	// indicate engine bugs and are alerted on separately.
	InvariantViolations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dutchpay",
		Name:      "invariant_violations_total",
		Help:      "Deviations between participant totals and the grand total beyond rounding tolerance.",
	})

	// SaveFailures counts best-effort autosave failures.
	SaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dutchpay",
		Name:      "save_failures_total",
		Help:      "Failed bill save attempts.",
	})

	// OperationSeconds observes wall time of engine operations,
	// recompute included.
	OperationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dutchpay",
		Name:      "operation_duration_seconds",
		Help:      "Engine operation duration.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)
