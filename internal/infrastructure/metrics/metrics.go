package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jesuschaires594-droid/proyecto/internal/domain/entities"
)

// Outcome labels
const (
	OutcomeOK           = "ok"
	OutcomeDuplicate    = "duplicate_id"
	OutcomeNotFound     = "not_found"
	OutcomeInvalid      = "invalid_input"
	OutcomeStorageError = "storage_error"
	OutcomeError        = "error"
)

// Recorder counts user operations on a private registry
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_operations_total",
			Help: "Total number of user operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_operation_duration_seconds",
			Help:    "User operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registry.MustRegister(operations, duration)

	return &Recorder{
		registry:   registry,
		operations: operations,
		duration:   duration,
	}
}

// Observe records one completed operation
func (r *Recorder) Observe(operation string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, Outcome(err)).Inc()
	r.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// Summary returns operation counts keyed by "operation/outcome"
func (r *Recorder) Summary() (map[string]float64, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != "user_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var op, outcome string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "operation":
					op = lp.GetValue()
				case "outcome":
					outcome = lp.GetValue()
				}
			}
			out[op+"/"+outcome] = m.GetCounter().GetValue()
		}
	}
	return out, nil
}

// Outcome maps an operation error to its label value
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, entities.ErrDuplicateID):
		return OutcomeDuplicate
	case errors.Is(err, entities.ErrUserNotFound):
		return OutcomeNotFound
	case errors.Is(err, entities.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, entities.ErrStorageUnavailable):
		return OutcomeStorageError
	default:
		return OutcomeError
	}
}
