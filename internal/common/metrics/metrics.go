// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CreditDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_decisions_total",
			Help: "Eligibility decisions by operation, outcome and score band",
		},
		[]string{"operation", "outcome", "band"},
	)

	CreditScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credit_score",
			Help:    "Distribution of computed credit scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	LoansCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credit_loans_created_total",
			Help: "Loan records materialised on approval",
		},
	)

	CustomerCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_customer_cache_lookups_total",
			Help: "Customer profile cache lookups by result",
		},
		[]string{"result"},
	)
)
