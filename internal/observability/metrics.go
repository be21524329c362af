package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CamerasRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "firewatch",
		Name:      "cameras_registered",
		Help:      "Number of cameras currently in the registry",
	})

	AlertsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firewatch",
		Name:      "alerts_ingested_total",
		Help:      "Total number of detection alerts ingested",
	}, []string{"severity"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "firewatch",
		Name:      "active_sessions",
		Help:      "Number of active playback sessions (0 or 1)",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "firewatch",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "firewatch",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
