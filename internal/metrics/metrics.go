package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels operations that produced records.
	OutcomeSuccess = "success"
	// OutcomeError labels operations that failed.
	OutcomeError = "error"
	// OutcomePartial labels runs where some directions failed.
	OutcomePartial = "partial"
)

const namespace = "oportune"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of advisory runs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	runDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_seconds",
			Help:      "Advisory run latency in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
	)

	directionTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "direction_tasks_total",
			Help:      "Direction tasks processed, partitioned by failed stage (none on success).",
		},
		[]string{"stage"},
	)

	extractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Structured extractions, partitioned by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	recordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Recommendation rows produced by runs.",
		},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Result set exports, partitioned by format and outcome.",
		},
		[]string{"format", "outcome"},
	)
)

// Register attaches the collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		runsTotal,
		runDurationSeconds,
		directionTasksTotal,
		extractionsTotal,
		recordsTotal,
		exportsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records a run duration, its outcome and the number of rows produced.
func ObserveRun(duration time.Duration, outcome string, records int) {
	switch outcome {
	case OutcomeError, OutcomePartial:
	default:
		outcome = OutcomeSuccess
	}
	runsTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	runDurationSeconds.Observe(duration.Seconds())
	if records > 0 {
		recordsTotal.Add(float64(records))
	}
}

// ObserveDirection counts a finished direction task. An empty stage means success.
func ObserveDirection(failedStage string) {
	if failedStage == "" {
		failedStage = "none"
	}
	directionTasksTotal.WithLabelValues(failedStage).Inc()
}

func ObserveExtraction(strategy string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	extractionsTotal.WithLabelValues(strategy, outcome).Inc()
}

func ObserveExport(format string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	exportsTotal.WithLabelValues(format, outcome).Inc()
}
