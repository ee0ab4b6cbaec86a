package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records conversion and cache events as Prometheus metrics. It
// implements [PipelineHooks] and [CacheHooks].
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	RunNodes           prometheus.Histogram
	RunDiagnostics     prometheus.Histogram
	StageDuration      *prometheus.HistogramVec
	HookFailuresTotal  *prometheus.CounterVec
	CacheRequestsTotal *prometheus.CounterVec
	CacheWrittenBytes  *prometheus.CounterVec
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	f := promauto.With(m.registry)

	m.RunsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadebridge_runs_total",
			Help: "Total number of material conversions",
		},
		[]string{"renderer", "status"}, // ok, error
	)
	m.RunDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shadebridge_run_duration_seconds",
			Help:    "Duration of material conversions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"renderer"},
	)
	m.RunNodes = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shadebridge_run_nodes",
			Help:    "Number of nodes emitted per conversion",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	m.RunDiagnostics = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shadebridge_run_diagnostics",
			Help:    "Number of diagnostics reported per conversion",
			Buckets: []float64{0, 1, 5, 10, 50},
		},
	)
	m.StageDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shadebridge_stage_duration_seconds",
			Help:    "Duration of conversion stages in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
		[]string{"stage"},
	)
	m.HookFailuresTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadebridge_hook_failures_total",
			Help: "Total number of rewrite hooks that failed",
		},
		[]string{"phase", "type"},
	)
	m.CacheRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadebridge_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"key_type", "result"}, // hit, miss
	)
	m.CacheWrittenBytes = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadebridge_cache_written_bytes_total",
			Help: "Total bytes written to the cache",
		},
		[]string{"key_type"},
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) OnRunStart(context.Context, string, string) {}

func (m *Metrics) OnRunComplete(_ context.Context, _, renderer string, nodes, diagnostics int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(renderer, status).Inc()
	m.RunDuration.WithLabelValues(renderer).Observe(d.Seconds())
	if err == nil {
		m.RunNodes.Observe(float64(nodes))
		m.RunDiagnostics.Observe(float64(diagnostics))
	}
}

func (m *Metrics) OnStageComplete(_ context.Context, stage string, _ int, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) OnHookFailure(_ context.Context, phase, nodeType string) {
	m.HookFailuresTotal.WithLabelValues(phase, nodeType).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
)
