package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 独立 registry，不使用全局默认 registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	OrdersTotal    *prometheus.CounterVec
	TrackingCalls  *prometheus.CounterVec
	FallbacksTotal *prometheus.CounterVec
	SweepCancels   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderrelay_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orderrelay_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		OrdersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderrelay_orders_total",
				Help: "Place-order calls by mode, side and result",
			},
			[]string{"mode", "side", "result"},
		),
		TrackingCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderrelay_tracking_calls_total",
				Help: "Tracking lookups by operation, source and result",
			},
			[]string{"operation", "source", "result"},
		),
		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderrelay_fallbacks_total",
				Help: "Times the secondary path was used",
			},
			[]string{"operation"},
		),
		SweepCancels: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderrelay_sweep_cancels_total",
				Help: "Cancel attempts made by the sweeper",
			},
			[]string{"result"},
		),
	}
	registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.OrdersTotal,
		m.TrackingCalls,
		m.FallbacksTotal,
		m.SweepCancels,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 测试时读取指标
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Result 统一的 result 标签
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
