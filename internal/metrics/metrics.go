package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hourplan"

// Outcome labels a finished mutation.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeExhausted Outcome = "capacity_exhausted"
	OutcomeError     Outcome = "error"
)

// Recorder records mutation metrics. A nil *Recorder discards everything.
type Recorder struct {
	mutations    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	slices       *prometheus.CounterVec
	overassigned *prometheus.GaugeVec
}

// NewRecorder registers the collectors on reg, or on the default registerer
// when reg is nil. Collectors that are already registered are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	mutations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of schedule mutations by operation and outcome",
	}, []string{"operation", "outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mutation_duration_seconds",
		Help:      "Time spent loading, planning and persisting a mutation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	slices, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slices_written_total",
		Help:      "Total number of task slices written per worker",
	}, []string{"worker_id"}))
	if err != nil {
		return nil, err
	}
	overassigned, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "overassigned_days",
		Help:      "Days whose committed hours exceed capacity after the last mutation",
	}, []string{"worker_id"}))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		mutations:    mutations,
		duration:     duration,
		slices:       slices,
		overassigned: overassigned,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// ObserveMutation counts one mutation and its latency.
func (r *Recorder) ObserveMutation(operation string, outcome Outcome, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(operation, string(outcome)).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddSlicesWritten counts slices persisted for a worker.
func (r *Recorder) AddSlicesWritten(workerID string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.slices.WithLabelValues(workerID).Add(float64(n))
}

// SetOverassigned records the overassigned day count for a worker.
func (r *Recorder) SetOverassigned(workerID string, days int) {
	if r == nil {
		return
	}
	r.overassigned.WithLabelValues(workerID).Set(float64(days))
}

// ForgetWorker drops the per-worker series of a deleted worker.
func (r *Recorder) ForgetWorker(workerID string) {
	if r == nil {
		return
	}
	r.slices.DeleteLabelValues(workerID)
	r.overassigned.DeleteLabelValues(workerID)
}
