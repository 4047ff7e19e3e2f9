// Package observability provides Prometheus metrics for the decision
// pipeline and an optional debug endpoint serving them.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all Prometheus metrics of the pipeline. A nil *Metrics is
// valid and records nothing, so components do not need to guard every call.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal          prometheus.Counter
	DegradedSamplesTotal prometheus.Counter
	InferenceErrorsTotal prometheus.Counter
	InferenceLatency     prometheus.Histogram
	CycleDuration        prometheus.Histogram
	AlertsSentTotal      *prometheus.CounterVec
	AlertsRateLimited    *prometheus.CounterVec
	AlertAttemptsTotal   prometheus.Counter
	AlertFailuresTotal   prometheus.Counter
	BatteryVoltage       prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics on a fresh registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	m := &Metrics{registry: registry}

	m.CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cropsentry_cycles_total",
		Help: "Total number of completed duty cycles",
	})
	m.DegradedSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cropsentry_degraded_samples_total",
		Help: "Total number of samples with substituted channel readings",
	})
	m.InferenceErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cropsentry_inference_errors_total",
		Help: "Total number of cycles skipped due to inference errors",
	})
	m.InferenceLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cropsentry_inference_latency_seconds",
		Help:    "Latency of the quantized forward pass",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12),
	})
	m.CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cropsentry_cycle_duration_seconds",
		Help:    "Duration of the active phase of each duty cycle",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	m.AlertsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cropsentry_alerts_sent_total",
		Help: "Total number of alerts successfully transmitted",
	}, []string{"type"})
	m.AlertsRateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cropsentry_alerts_rate_limited_total",
		Help: "Total number of alerts suppressed by rate limiting",
	}, []string{"type"})
	m.AlertAttemptsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cropsentry_alert_attempts_total",
		Help: "Total number of transmission attempts, including retries",
	})
	m.AlertFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cropsentry_alert_failures_total",
		Help: "Total number of alerts dropped after exhausting retries",
	})
	m.BatteryVoltage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cropsentry_battery_voltage",
		Help: "Most recent battery voltage reading in volts",
	})

	collectors := []prometheus.Collector{
		m.CyclesTotal, m.DegradedSamplesTotal, m.InferenceErrorsTotal,
		m.InferenceLatency, m.CycleDuration, m.AlertsSentTotal,
		m.AlertsRateLimited, m.AlertAttemptsTotal, m.AlertFailuresTotal,
		m.BatteryVoltage,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
		}
	}

	return m, nil
}

// ObserveCycle records one completed duty cycle.
func (m *Metrics) ObserveCycle(duration time.Duration, degraded bool) {
	if m == nil {
		return
	}
	m.CyclesTotal.Inc()
	m.CycleDuration.Observe(duration.Seconds())
	if degraded {
		m.DegradedSamplesTotal.Inc()
	}
}

// ObserveInference records a forward pass latency.
func (m *Metrics) ObserveInference(latency time.Duration) {
	if m == nil {
		return
	}
	m.InferenceLatency.Observe(latency.Seconds())
}

// IncInferenceError records a skipped cycle.
func (m *Metrics) IncInferenceError() {
	if m == nil {
		return
	}
	m.InferenceErrorsTotal.Inc()
}

// IncAlertSent records a successful dispatch for the alert type.
func (m *Metrics) IncAlertSent(alertType string) {
	if m == nil {
		return
	}
	m.AlertsSentTotal.WithLabelValues(alertType).Inc()
}

// IncAlertRateLimited records a suppressed dispatch for the alert type.
func (m *Metrics) IncAlertRateLimited(alertType string) {
	if m == nil {
		return
	}
	m.AlertsRateLimited.WithLabelValues(alertType).Inc()
}

// IncAlertAttempt records one transmission attempt.
func (m *Metrics) IncAlertAttempt() {
	if m == nil {
		return
	}
	m.AlertAttemptsTotal.Inc()
}

// IncAlertFailure records an alert dropped after exhausting retries.
func (m *Metrics) IncAlertFailure() {
	if m == nil {
		return
	}
	m.AlertFailuresTotal.Inc()
}

// SetBatteryVoltage records the latest battery reading.
func (m *Metrics) SetBatteryVoltage(volts float64) {
	if m == nil {
		return
	}
	m.BatteryVoltage.Set(volts)
}

// Registry exposes the underlying registry for the metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
