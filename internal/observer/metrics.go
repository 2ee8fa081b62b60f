package observer

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "taskrun"

// Metrics records task lifecycle events as Prometheus collectors.
type Metrics struct {
	started  *prom.CounterVec
	finished *prom.CounterVec
	duration *prom.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// that are already registered are reused.
func NewMetrics(reg prom.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	startedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "task_started_total",
		Help:      "Total number of task starts.",
	}, []string{"task", "mode"})
	finishedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "task_finished_total",
		Help:      "Total number of finished tasks by result.",
	}, []string{"task", "result"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "task_duration_seconds",
		Help:      "Task run time in seconds.",
		Buckets:   prom.DefBuckets,
	}, []string{"task"})

	var err error
	if startedVec, err = registerCollector(reg, startedVec); err != nil {
		return nil, err
	}
	if finishedVec, err = registerCollector(reg, finishedVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}

	return &Metrics{
		started:  startedVec,
		finished: finishedVec,
		duration: durationVec,
	}, nil
}

func (m *Metrics) OnTaskStart(e Event) {
	m.started.WithLabelValues(e.Task, e.Mode.String()).Inc()
}

func (m *Metrics) OnTaskStop(e Event) {
	m.finished.WithLabelValues(e.Task, "ok").Inc()
	m.duration.WithLabelValues(e.Task).Observe(e.Duration.Seconds())
}

func (m *Metrics) OnTaskError(e Event) {
	m.finished.WithLabelValues(e.Task, "error").Inc()
	m.duration.WithLabelValues(e.Task).Observe(e.Duration.Seconds())
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
