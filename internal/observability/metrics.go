package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision labels for MediaAccessDecisions.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
	DecisionError = "error"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "innercircle_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// MediaAccessDecisions counts media authorization outcomes by media kind.
	MediaAccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "innercircle_media_access_decisions_total",
		Help: "Media access checks by media kind and decision",
	}, []string{"kind", "decision"})

	// PostPageSize observes how many posts each feed page returned.
	PostPageSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "innercircle_post_page_size",
		Help:    "Number of posts returned per feed page",
		Buckets: []float64{0, 1, 5, 10, 15, 20},
	})

	// SessionsIssued counts issued sessions by login provider.
	SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "innercircle_sessions_issued_total",
		Help: "Sessions issued by login provider",
	}, []string{"provider"})
)

// DatabaseMetrics records query latency for repository calls.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordMediaDecision counts one media access decision.
func RecordMediaDecision(kind, decision string) {
	MediaAccessDecisions.WithLabelValues(kind, decision).Inc()
}
