package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds, up to the model timeout.
	latencyBuckets = []float64{
		25, 50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 20000, 30000,
	}

	MessagesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_messages_total",
			Help: "Assistant replies by source (ai, fallback, redirect, unavailable)",
		},
		[]string{"source"},
	)

	RejectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_rejections_total",
			Help: "Messages rejected before generation, by reason",
		},
		[]string{"reason"},
	)

	ModelLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_model_latency_ms",
			Help:    "Model service latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"provider", "outcome"},
	)

	SessionsSweptTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_active_sessions_swept_total",
			Help: "Sessions transitioned by the background sweeper",
		},
		[]string{"transition"},
	)

	HTTPRequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_http_requests_total",
			Help: "HTTP requests served by route and status class",
		},
		[]string{"method", "route", "status"},
	)

	BreakerState = promauto.With(registerer).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assistant_model_breaker_open",
			Help: "1 while the model circuit breaker is open",
		},
		[]string{"name"},
	)
)

type MetricsConfig struct {
	EnableModelLatency bool `mapstructure:"enable_model_latency"`
	EnableHTTP         bool `mapstructure:"enable_http"`
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableModelLatency: true,
		EnableHTTP:         true,
	}
}

var Config = DefaultMetricsConfig()

var registerOnce sync.Once

// Initialize sets the feature flags; runtime collectors are registered once.
func Initialize(cfg MetricsConfig) {
	Config = cfg
	registerOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func Gatherer() prometheus.Gatherer {
	return registry
}
