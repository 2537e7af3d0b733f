// Package metrics implements the MetricsRecorder port with Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/strata/internal/ports/secondary"
)

// Recorder holds the strata collectors on its own registry.
type Recorder struct {
	registry       *prometheus.Registry
	kpiStatus      *prometheus.CounterVec
	krSync         *prometheus.CounterVec
	cycleWarnings  prometheus.Counter
	traceNodes     *prometheus.HistogramVec
	traceDurations *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with a fresh registry that also carries the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		kpiStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Name:      "kpi_evaluations_total",
			Help:      "KPI evaluations by resulting status.",
		}, []string{"status"}),
		krSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Name:      "key_result_syncs_total",
			Help:      "Key result syncs by outcome.",
		}, []string{"outcome"}),
		cycleWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "strata",
			Name:      "causal_cycle_warnings_total",
			Help:      "Causal cycles encountered by queries.",
		}),
		traceNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "strata",
			Name:      "trace_nodes",
			Help:      "Nodes returned per trace query.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"direction"}),
		traceDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "strata",
			Name:      "trace_duration_seconds",
			Help:      "Trace query latency, dataset load included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.kpiStatus,
		r.krSync,
		r.cycleWarnings,
		r.traceNodes,
		r.traceDurations,
	)
	return r
}

// ObserveStatus counts one KPI evaluation.
func (r *Recorder) ObserveStatus(status string) {
	r.kpiStatus.WithLabelValues(status).Inc()
}

// ObserveSync counts one key result sync.
func (r *Recorder) ObserveSync(outcome string) {
	r.krSync.WithLabelValues(outcome).Inc()
}

// ObserveCycleWarnings adds count to the cycle warning counter.
func (r *Recorder) ObserveCycleWarnings(count int) {
	if count <= 0 {
		return
	}
	r.cycleWarnings.Add(float64(count))
}

// ObserveTrace records one trace query.
func (r *Recorder) ObserveTrace(direction string, nodes int, elapsed time.Duration) {
	r.traceNodes.WithLabelValues(direction).Observe(float64(nodes))
	r.traceDurations.WithLabelValues(direction).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

var _ secondary.MetricsRecorder = (*Recorder)(nil)
