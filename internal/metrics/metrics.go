package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	// HTTPRequestsTotal tracks served requests by method, route pattern and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPPanicsTotal tracks handler panics recovered by the pipeline
	HTTPPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_panics_total",
			Help: "Total handler panics recovered",
		},
	)
)

// Session Metrics
var (
	// SessionStoreOpsTotal tracks session store operations by operation and status
	SessionStoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_operations_total",
			Help: "Total session store operations by operation and status",
		},
		[]string{"operation", "status"},
	)
)

// Backend Metrics
var (
	// MongoCommandsTotal tracks MongoDB commands by command name and status
	MongoCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_commands_total",
			Help: "Total MongoDB commands by command and status",
		},
		[]string{"command", "status"},
	)

	// MongoCommandDuration tracks MongoDB command latency in seconds
	MongoCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_command_duration_seconds",
			Help:    "MongoDB command duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"command"},
	)

	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveSessionOp records one session store operation. Its signature
// matches session.Observer.
func ObserveSessionOp(op string, err error) {
	SessionStoreOpsTotal.WithLabelValues(op, status(err)).Inc()
}
