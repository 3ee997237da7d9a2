// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hookexec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics is the concrete Metrics sink backed by
// prometheus/client_golang. It registers itself against reg, or against
// prometheus.DefaultRegisterer if reg is nil.
type PrometheusMetrics struct {
	executed *prometheus.CounterVec
	duration *prometheus.HistogramVec
	skipped  *prometheus.CounterVec
	timedOut *prometheus.CounterVec
	panicked *prometheus.CounterVec
}

// NewPrometheusMetrics builds and registers a PrometheusMetrics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentkit",
			Subsystem: "hooks",
			Name:      "executed_total",
			Help:      "Hook executions by point and outcome.",
		}, []string{"point", "success"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentkit",
			Subsystem: "hooks",
			Name:      "execution_seconds",
			Help:      "Hook execution latency by point.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"point"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentkit",
			Subsystem: "hooks",
			Name:      "skipped_by_breaker_total",
			Help:      "Hook executions skipped because the circuit breaker was open.",
		}, []string{"point"}),
		timedOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentkit",
			Subsystem: "hooks",
			Name:      "timed_out_total",
			Help:      "Hook executions that exceeded their timeout.",
		}, []string{"point", "hook_id"}),
		panicked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentkit",
			Subsystem: "hooks",
			Name:      "panicked_total",
			Help:      "Hook executions that recovered from a panic.",
		}, []string{"point", "hook_id"}),
	}
	reg.MustRegister(m.executed, m.duration, m.skipped, m.timedOut, m.panicked)
	return m
}

func (m *PrometheusMetrics) HookExecuted(point string, success bool, d time.Duration) {
	m.executed.WithLabelValues(point, boolLabel(success)).Inc()
	m.duration.WithLabelValues(point).Observe(d.Seconds())
}

func (m *PrometheusMetrics) HookSkippedByBreaker(point string) {
	m.skipped.WithLabelValues(point).Inc()
}

func (m *PrometheusMetrics) HookTimedOut(point, hookID string) {
	m.timedOut.WithLabelValues(point, hookID).Inc()
}

func (m *PrometheusMetrics) HookPanicked(point, hookID string) {
	m.panicked.WithLabelValues(point, hookID).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

var _ Metrics = (*PrometheusMetrics)(nil)
