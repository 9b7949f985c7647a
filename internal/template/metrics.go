// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package template

import "github.com/prometheus/client_golang/prometheus"

// Resolutions counts rendered templates by the tier that supplied them.
// Use RegisterMetrics to register this with a Prometheus registry.
var Resolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "yuzudice_template_resolutions_total",
		Help: "Total number of template resolutions by tier",
	},
	[]string{"tier"},
)

// RenderFailures counts renders that fell back to the bare key.
// Use RegisterMetrics to register this with a Prometheus registry.
var RenderFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "yuzudice_template_render_failures_total",
		Help: "Total number of template renders that returned the bare key",
	},
	[]string{"key", "reason"},
)

// RegisterMetrics registers template metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Resolutions)
	reg.MustRegister(RenderFailures)
}

// Render failure reasons.
const (
	failureMissing = "missing"
	failureParse   = "parse"
	failureRender  = "render"
	failureEmpty   = "empty"
)

func recordResolution(tier Tier) {
	Resolutions.WithLabelValues(string(tier)).Inc()
}

func recordRenderFailure(key, reason string) {
	RenderFailures.WithLabelValues(key, reason).Inc()
}
