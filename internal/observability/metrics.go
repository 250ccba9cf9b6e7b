package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tribune_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// VisibilityDenials counts post reads denied by the privilege engine,
	// labelled by the surface that asked (get, summary, raw, filter).
	VisibilityDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_visibility_denials_total",
		Help: "Total number of post reads denied by privilege checks",
	}, []string{"surface"})

	// SolvedTransitions counts applied solved-state transitions by direction.
	// Idempotent no-ops are not counted.
	SolvedTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_solved_transitions_total",
		Help: "Total number of topic solved-state transitions applied",
	}, []string{"direction"})

	// EventsPublished counts topic events pushed to subscribers by type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_events_published_total",
		Help: "Total number of topic events published",
	}, []string{"type"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
