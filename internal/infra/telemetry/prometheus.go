package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wpmcp/internal/domain"
)

type PrometheusMetrics struct {
	toolCalls        *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	generations      *prometheus.CounterVec
	registeredTools  prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wpmcp_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "status", "kind"},
		),
		toolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wpmcp_tool_call_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"tool", "status"},
		),
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wpmcp_tool_generations_total",
				Help: "Total number of tool source generation attempts",
			},
			[]string{"outcome"},
		),
		registeredTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wpmcp_registered_tools",
				Help: "Current number of registered tools",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveToolCall(metric domain.ToolCallMetric) {
	status := string(metric.Status)
	if status == "" {
		status = string(domain.CallStatusSuccess)
	}
	p.toolCalls.WithLabelValues(metric.Tool, status, string(metric.Kind)).Inc()
	p.toolCallDuration.WithLabelValues(metric.Tool, status).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveGeneration(outcome string) {
	p.generations.WithLabelValues(outcome).Inc()
}

func (p *PrometheusMetrics) SetRegisteredTools(count int) {
	p.registeredTools.Set(float64(count))
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
