// Package repository implements the data access layer over MongoDB.
package repository

import (
	"time"

	"gatherly/internal/observability"
)

// observe records query latency and, for failures, the store error counter.
func observe(operation, collection string, start time.Time, err error) {
	observability.StoreQueryLatency.WithLabelValues(operation, collection).
		Observe(time.Since(start).Seconds())
	if err != nil {
		observability.MongoErrors.WithLabelValues(operation, collection).Inc()
	}
}
