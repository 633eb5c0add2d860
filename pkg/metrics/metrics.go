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

// Package metrics exposes Prometheus counters/histograms for the three
// hard subsystems (kernel, tool runtime, agent loop), grounded on the
// teacher's pkg/observability/metrics.go vector-metric set, trimmed to
// this service's own call surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every counter/histogram this service records.
type Metrics struct {
	registry *prometheus.Registry

	agentTurns    *prometheus.CounterVec
	agentTurnDur  *prometheus.HistogramVec
	agentIters    *prometheus.HistogramVec
	toolCalls     *prometheus.CounterVec
	toolCallDur   *prometheus.HistogramVec
	kernelExecs   *prometheus.CounterVec
	kernelExecDur *prometheus.HistogramVec
	kernelsLive   prometheus.Gauge
}

// New builds a Metrics bundle registered into a fresh, private registry
// (never the global default, so tests can instantiate many side by side).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		agentTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cortex_agent_turns_total",
			Help: "Completed ReAct agent turns by outcome.",
		}, []string{"outcome"}),
		agentTurnDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cortex_agent_turn_duration_seconds",
			Help:    "Wall-clock duration of a full agent turn.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		agentIters: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cortex_agent_iterations",
			Help:    "Number of react_steps entries (thought, action, observation, answer) recorded per turn.",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 15, 20},
		}, []string{"outcome"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cortex_tool_calls_total",
			Help: "Tool invocations by name and success.",
		}, []string{"tool", "success"}),
		toolCallDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cortex_tool_call_duration_seconds",
			Help:    "Tool call duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		kernelExecs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cortex_kernel_executions_total",
			Help: "Kernel execute calls by success.",
		}, []string{"success"}),
		kernelExecDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cortex_kernel_execution_duration_seconds",
			Help:    "Kernel execute wall-clock duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{}),
		kernelsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cortex_kernels_live",
			Help: "Kernels currently held by the registry.",
		}),
	}
	reg.MustRegister(m.agentTurns, m.agentTurnDur, m.agentIters,
		m.toolCalls, m.toolCallDur, m.kernelExecs, m.kernelExecDur, m.kernelsLive)
	return m
}

// Handler returns the /metrics scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAgentTurn records a completed turn's outcome, duration, and
// step count (the number of react_steps entries the turn recorded).
func (m *Metrics) ObserveAgentTurn(outcome string, dur time.Duration, iterations int) {
	m.agentTurns.WithLabelValues(outcome).Inc()
	m.agentTurnDur.WithLabelValues(outcome).Observe(dur.Seconds())
	m.agentIters.WithLabelValues(outcome).Observe(float64(iterations))
}

// ObserveToolCall records one tool invocation.
func (m *Metrics) ObserveToolCall(tool string, success bool, dur time.Duration) {
	m.toolCalls.WithLabelValues(tool, successLabel(success)).Inc()
	m.toolCallDur.WithLabelValues(tool).Observe(dur.Seconds())
}

// ObserveKernelExecute records one kernel execute call.
func (m *Metrics) ObserveKernelExecute(success bool, dur time.Duration) {
	m.kernelExecs.WithLabelValues(successLabel(success)).Inc()
	m.kernelExecDur.WithLabelValues().Observe(dur.Seconds())
}

// SetKernelsLive updates the live-kernel gauge.
func (m *Metrics) SetKernelsLive(n int) {
	m.kernelsLive.Set(float64(n))
}

func successLabel(ok bool) string {
	if ok {
		return "true"
	}
	return "false"
}
