// Package observability provides logging, metrics, and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MongoErrors counts document-store errors by operation and collection.
	MongoErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatherly_mongo_errors_total",
		Help: "Total number of MongoDB errors by operation and collection",
	}, []string{"operation", "collection"})

	// StoreQueryLatency records document-store query latency.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gatherly_store_query_latency_seconds",
		Help:    "Document store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatherly_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SessionOperations counts session lifecycle operations.
	SessionOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatherly_session_operations_total",
		Help: "Total number of session store operations by type",
	}, []string{"operation"})

	// FavouritesCleanupFailures counts failed favourites pulls after an
	// event deletion. A non-zero value means dangling references exist
	// until the tolerant read path masks them.
	FavouritesCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatherly_favourites_cleanup_failures_total",
		Help: "Total number of favourites cleanup failures after event deletion",
	})
)
