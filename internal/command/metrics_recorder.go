// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import "time"

// metricsRecorder collects the labels of one dispatch and records them once.
type metricsRecorder struct {
	start   time.Time
	command string
	source  string
	status  string
}

func newMetricsRecorder() *metricsRecorder {
	return &metricsRecorder{start: time.Now(), status: StatusSuccess}
}

// record writes the collected metrics. Dispatches that never matched a
// command are only counted under the "unknown" name to bound label
// cardinality.
func (m *metricsRecorder) record() {
	name := m.command
	if name == "" {
		name = "unknown"
	}
	RecordCommandExecution(name, m.source, m.status)
	if m.command != "" {
		RecordCommandDuration(m.command, m.source, time.Since(m.start))
	}
}
