package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the builder collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	blockMutations *prometheus.CounterVec
	pageSaves      *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	blockCount     *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors, along with the Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		blockMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_blocks_mutated_total",
				Help: "Total number of block list mutations",
			},
			[]string{"op", "block_type"},
		),
		pageSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_page_saves_total",
				Help: "Total number of page saves",
			},
			[]string{"result"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lattice_render_duration_seconds",
				Help:    "Duration of page renders",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"mode"},
		),
		blockCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lattice_last_list_length",
				Help: "Length of the block list after the last mutation",
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(
		m.blockMutations,
		m.pageSaves,
		m.renderDuration,
		m.blockCount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, e.g. to add collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records metrics for every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockMutated: func(_ context.Context, e *domain.BlockEvent) {
			m.blockMutations.WithLabelValues(string(e.Op), e.BlockType).Inc()
			m.blockCount.WithLabelValues(string(e.Op)).Set(float64(e.Length))
		},
		OnPageSaved: func(_ context.Context, e *domain.PageEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.pageSaves.WithLabelValues(result).Inc()
		},
		OnPageRendered: func(_ context.Context, e *domain.PageEvent) {
			m.renderDuration.WithLabelValues(e.Mode).Observe(e.Duration.Seconds())
		},
	}
}
