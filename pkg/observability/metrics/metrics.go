// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// Register one [Metrics] value for every hook category at startup and expose
// the registry over HTTP with [Handler]:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	observability.SetPipelineHooks(m)
//	observability.SetPathHooks(m)
//	observability.SetHTTPHooks(m)
//	router.Handle("/metrics", metrics.Handler(reg))
//
// All collectors are safe for concurrent use.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errs "github.com/matzehuels/upkeep/pkg/errors"
	"github.com/matzehuels/upkeep/pkg/observability"
)

const namespace = "upkeep"

// Metrics holds the Prometheus collectors fed by the hooks.
type Metrics struct {
	StageDuration *prometheus.HistogramVec
	StageTotal    *prometheus.CounterVec
	GraphNodes    prometheus.Gauge
	TreeNodes     prometheus.Histogram
	PathQueries   *prometheus.CounterVec
	PathLength    prometheus.Histogram

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
	HTTPErrors   *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.PathHooks     = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
// It panics if they are already registered there.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages by stage and status",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage", "status"}),
		StageTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Pipeline stages run by stage and status",
		}, []string{"stage", "status"}),
		GraphNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Packages in the most recently loaded graph",
		}),
		TreeNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "nodes",
			Help:      "Distinct packages per built tree",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		PathQueries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "path",
			Name:      "queries_total",
			Help:      "Attribution path queries by result status",
		}, []string{"status"}),
		PathLength: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "path",
			Name:      "length",
			Help:      "Packages on found attribution paths",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served",
		}),
		HTTPErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Failed HTTP requests by route and error code",
		}, []string{"method", "route", "error_code"}),
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) stage(name string, d time.Duration, err error) {
	s := status(err)
	m.StageDuration.WithLabelValues(name, s).Observe(d.Seconds())
	m.StageTotal.WithLabelValues(name, s).Inc()
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _, _ string, nodeCount int, d time.Duration, err error) {
	m.stage("load", d, err)
	if err == nil {
		m.GraphNodes.Set(float64(nodeCount))
	}
}

func (m *Metrics) OnBuildStart(context.Context, string) {}

func (m *Metrics) OnBuildComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	m.stage("build", d, err)
	if err == nil {
		m.TreeNodes.Observe(float64(nodeCount))
	}
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.stage("render_"+format, d, err)
}

// =============================================================================
// Path Hooks
// =============================================================================

func (m *Metrics) OnPathResolved(_ context.Context, _, _, status string, length int) {
	m.PathQueries.WithLabelValues(status).Inc()
	if length > 0 {
		m.PathLength.Observe(float64(length))
	}
}

// =============================================================================
// HTTP Hooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	m.HTTPErrors.WithLabelValues(method, route, string(code)).Inc()
}
