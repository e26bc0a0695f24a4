package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики регистрируются в prometheus.DefaultRegisterer
// и отдаются через promhttp.Handler() на /metrics.
var (
	// RPCRequests — вызовы node-management endpoint по методу и результату
	// (ok, remote_error, transport_error, timeout).
	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraphd_rpc_requests_total",
			Help: "Total number of JSON-RPC calls to the node-management endpoint",
		},
		[]string{"method", "result"},
	)

	// RPCDuration — длительность вызовов node-management endpoint.
	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subgraphd_rpc_duration_seconds",
			Help:    "JSON-RPC call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"method"},
	)

	// EnsureTotal — результаты ensure (ensured, retry_required, failed).
	EnsureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraphd_ensure_total",
			Help: "Total number of ensure calls by result",
		},
		[]string{"result"},
	)

	// GraftResolutions — результаты разбора ошибок graft base.
	GraftResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraphd_graft_resolutions_total",
			Help: "Total number of graft base resolutions by result",
		},
		[]string{"result"},
	)

	// ActionsProcessed — обработанные actions по типу и итоговому статусу.
	ActionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraphd_actions_processed_total",
			Help: "Total number of deployment actions processed",
		},
		[]string{"type", "status"},
	)

	// ReconcileEnqueued — actions, поставленные в очередь reconciler'ом.
	ReconcileEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subgraphd_reconcile_enqueued_total",
			Help: "Total number of ensure actions enqueued by the reconciler",
		},
	)

	// HTTPRequests — запросы к HTTP API по шаблону маршрута и статусу.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraphd_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration — длительность обработки запросов HTTP API.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subgraphd_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
