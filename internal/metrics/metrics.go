// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "realty"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Property lifecycle metrics
	StatusTransitionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Total number of property status transitions",
		},
		[]string{"from", "to"},
	)

	StatusConflictsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_conflicts_total",
		Help:      "Total number of status changes rejected by a concurrent writer",
	})

	PropertyOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "property_operations_total",
			Help:      "Total number of property catalogue operations",
		},
		[]string{"operation"},
	)

	// Realtor metrics
	RealtorLifecycleCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtor_lifecycle_total",
			Help:      "Total number of realtor lifecycle actions",
		},
		[]string{"action"},
	)

	CounterRebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "counter_rebuild_duration_seconds",
		Help:      "Duration of realtor counter rebuilds in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordStatusTransition increments the transition counter
func RecordStatusTransition(from, to string) {
	StatusTransitionsCounter.WithLabelValues(from, to).Inc()
}

func RecordStatusConflict() {
	StatusConflictsCounter.Inc()
}

func RecordPropertyOperation(operation string) {
	PropertyOperationsCounter.WithLabelValues(operation).Inc()
}

func RecordRealtorLifecycle(action string) {
	RealtorLifecycleCounter.WithLabelValues(action).Inc()
}

// TrackCounterRebuild returns a function that records the rebuild duration
func TrackCounterRebuild() func(startTime time.Time) {
	return func(startTime time.Time) {
		CounterRebuildDuration.Observe(time.Since(startTime).Seconds())
	}
}

// Handler exposes the default registry for scraping
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
