// Package metrics exports sync queue activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// Ensure Prometheus implements the interface.
var _ driven.SyncMetrics = (*Prometheus)(nil)

const namespace = "tillsync"

// Prometheus records sync metrics on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	synced       *prometheus.CounterVec
	failed       *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	passes       prometheus.Counter
	passDuration prometheus.Histogram
	lastPass     prometheus.Gauge
	depth        prometheus.Gauge
}

// NewPrometheus creates the collectors and registers them, along with the
// Go runtime and process collectors, on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		synced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "synced_total",
			Help:      "Queue items confirmed by the server.",
		}, []string{"operation"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "failed_total",
			Help:      "Failed replays that left the item queued.",
		}, []string{"operation"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "dropped_total",
			Help:      "Queue items dropped after exhausting their attempts.",
		}, []string{"operation"}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "passes_total",
			Help:      "Completed replay passes.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "pass_duration_seconds",
			Help:      "Duration of replay passes.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix time the last replay pass ended.",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Outstanding queue items at the last listing.",
		}),
	}

	p.registry.MustRegister(
		p.synced, p.failed, p.dropped,
		p.passes, p.passDuration, p.lastPass, p.depth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prometheus) ItemSynced(op domain.Operation) {
	p.synced.WithLabelValues(op.String()).Inc()
}

func (p *Prometheus) ItemFailed(op domain.Operation) {
	p.failed.WithLabelValues(op.String()).Inc()
}

func (p *Prometheus) ItemDropped(op domain.Operation) {
	p.dropped.WithLabelValues(op.String()).Inc()
}

func (p *Prometheus) PassCompleted(report domain.SyncReport) {
	p.passes.Inc()
	if !report.EndedAt.IsZero() && !report.StartedAt.IsZero() {
		p.passDuration.Observe(report.EndedAt.Sub(report.StartedAt).Seconds())
		p.lastPass.Set(float64(report.EndedAt.Unix()))
	}
}

func (p *Prometheus) QueueDepth(n int) {
	p.depth.Set(float64(n))
}
