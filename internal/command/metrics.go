// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for command execution metrics.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusNotFound    = "not_found"
	StatusInvalidArgs = "invalid_args"
	StatusRateLimited = "rate_limited"
)

// CommandExecutions is the counter for command executions.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "yuzudice_command_executions_total",
		Help: "Total number of command executions",
	},
	[]string{"command", "source", "status"},
)

// CommandDuration is the histogram for command execution duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "yuzudice_command_duration_seconds",
		Help:    "Command execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"command", "source"},
)

// CommandRateLimited counts commands rejected by the rate limiter.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandRateLimited = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "yuzudice_command_rate_limited_total",
		Help: "Total number of commands rejected by rate limiting",
	},
	[]string{"command"},
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// This must be called at startup to make metrics available on /metrics.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandExecutions)
	reg.MustRegister(CommandDuration)
	reg.MustRegister(CommandRateLimited)
}

// RecordCommandExecution increments the command execution counter with the given attributes.
// Parameters:
//   - command: the canonical command name
//   - source: where the command is defined (e.g., "core")
//   - status: execution result (use Status* constants)
func RecordCommandExecution(command, source, status string) {
	CommandExecutions.WithLabelValues(command, source, status).Inc()
}

// RecordCommandDuration records the duration of a command execution.
func RecordCommandDuration(command, source string, duration time.Duration) {
	CommandDuration.WithLabelValues(command, source).Observe(duration.Seconds())
}

// RecordCommandRateLimited increments the rate limit counter for command.
func RecordCommandRateLimited(command string) {
	CommandRateLimited.WithLabelValues(command).Inc()
}
