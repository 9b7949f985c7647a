// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/purerosefallen/YuzuDice/internal/identity"
)

// Outcome labels for operation metrics.
const (
	OutcomeOK      = "ok"
	OutcomeBanned  = "banned"
	OutcomeDenied  = "denied"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Operations counts facade operations by name and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "yuzudice_bot_operations_total",
		Help: "Total number of bot operations by outcome",
	},
	[]string{"operation", "outcome"},
)

// OperationDuration observes how long facade operations take.
// Use RegisterMetrics to register this with a Prometheus registry.
var OperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "yuzudice_bot_operation_duration_seconds",
		Help:    "Bot operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// BanShortCircuits counts operations stopped by a ban, by the level that
// carried it.
// Use RegisterMetrics to register this with a Prometheus registry.
var BanShortCircuits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "yuzudice_bot_ban_short_circuits_total",
		Help: "Total number of operations stopped by a ban",
	},
	[]string{"level"},
)

// RegisterMetrics registers bot metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Operations)
	reg.MustRegister(OperationDuration)
	reg.MustRegister(BanShortCircuits)
}

func recordOperation(name, outcome string, d time.Duration) {
	Operations.WithLabelValues(name, outcome).Inc()
	OperationDuration.WithLabelValues(name).Observe(d.Seconds())
}

func recordBan(level identity.BanLevel) {
	BanShortCircuits.WithLabelValues(string(level)).Inc()
}
