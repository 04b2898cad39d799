package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the agent.
type Metrics struct {
	ReconcileRuns     *prometheus.CounterVec
	ReconcileDuration prometheus.Histogram
	KeyBatchFetches   prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	CurrentStatus     *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ReconcileRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shield_reconcile_runs_total",
			Help: "Reconciliation runs by outcome",
		}, []string{"outcome"}),
		ReconcileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shield_reconcile_duration_seconds",
			Help:    "Wall time of a full reconciliation run",
			Buckets: prometheus.DefBuckets,
		}),
		KeyBatchFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shield_key_batch_fetches_total",
			Help: "Diagnosis-key batch downloads issued to the backend",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shield_status_transitions_total",
			Help: "Exposure status transitions by from/to variant",
		}, []string{"from", "to"}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shield_key_submissions_total",
			Help: "Diagnosis-key submission attempts by outcome",
		}, []string{"outcome"}),
		CurrentStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shield_exposure_status",
			Help: "1 for the current exposure status variant, 0 otherwise",
		}, []string{"status"}),
	}
}

// ObserveReconcile records one reconciliation run.
func (m *Metrics) ObserveReconcile(outcome string, d time.Duration) {
	m.ReconcileRuns.WithLabelValues(outcome).Inc()
	m.ReconcileDuration.Observe(d.Seconds())
}

// SetCurrentStatus flips the status gauge to the given variant.
func (m *Metrics) SetCurrentStatus(status string) {
	for _, s := range []string{"monitoring", "exposed", "diagnosed"} {
		v := 0.0
		if s == status {
			v = 1.0
		}
		m.CurrentStatus.WithLabelValues(s).Set(v)
	}
}
