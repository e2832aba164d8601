package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
		[]string{"sql"},
	)

	TaskTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_transition_count",
			Help: "Total number of task update attempts by outcome",
		},
		[]string{"outcome"}, // outcome: accepted, rejected_subtasks, rejected_proof, error
	)

	ProofGateFailureCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proof_gate_failure_count",
			Help: "Total number of proof gate failures by field",
		},
		[]string{"field"},
	)

	RecurringGeneratedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recurring_generated_count",
			Help: "Total number of tasks generated from recurring templates",
		},
	)

	HabitCompletionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completion_count",
			Help: "Total number of habit log upserts",
		},
		[]string{"completed"},
	)

	OutboxDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_dispatch_count",
			Help: "Total number of outbox events dispatched by status",
		},
		[]string{"status"}, // status: sent, retry, failed
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementSlowQuery(sql string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

func IncrementTaskTransition(outcome string) {
	TaskTransitionCount.WithLabelValues(outcome).Inc()
}

func IncrementProofGateFailure(field string) {
	ProofGateFailureCount.WithLabelValues(field).Inc()
}

func IncrementRecurringGenerated() {
	RecurringGeneratedCount.Inc()
}

func IncrementHabitCompletion(completed bool) {
	label := "false"
	if completed {
		label = "true"
	}
	HabitCompletionCount.WithLabelValues(label).Inc()
}

func IncrementOutboxDispatch(status string) {
	OutboxDispatchCount.WithLabelValues(status).Inc()
}
