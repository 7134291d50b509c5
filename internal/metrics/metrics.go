package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for a unit of work besides the apperr kinds.
const (
	OutcomeCommitted = "committed"
	OutcomeReplayed  = "replayed"
)

// UnitOfWork instruments the transaction coordinator.
type UnitOfWork struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	lockWait   prometheus.Histogram
}

// NewUnitOfWork registers the collectors with registerer, or the default
// registerer when nil.
func NewUnitOfWork(registerer prometheus.Registerer) *UnitOfWork {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "farmbook_operations_total",
		Help: "Book-keeping operations by kind and outcome.",
	}, []string{"kind", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farmbook_operation_duration_seconds",
		Help:    "Time spent inside a unit of work, lock held.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"kind"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "farmbook_write_lock_wait_seconds",
		Help:    "Time a unit of work waited for the write lock.",
		Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	registerer.MustRegister(operations, duration, lockWait)

	return &UnitOfWork{operations: operations, duration: duration, lockWait: lockWait}
}

// Observe records one finished unit of work.
func (m *UnitOfWork) Observe(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *UnitOfWork) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}

	m.lockWait.Observe(d.Seconds())
}

// Count returns the collector for kind and outcome, for tests and health checks.
func (m *UnitOfWork) Count(kind, outcome string) prometheus.Counter {
	return m.operations.WithLabelValues(kind, outcome)
}
