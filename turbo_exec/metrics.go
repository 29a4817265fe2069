package turbo_exec

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	attemptSucceeded = "succeeded"
	attemptFailed    = "failed"
	attemptCancelled = "cancelled"
)

// Metrics collects Prometheus series for executions. One Metrics value is
// shared by every executor built with it.
type Metrics struct {
	attempts   *prometheus.CounterVec
	executions *prometheus.CounterVec
	overrides  prometheus.Counter
	timeouts   prometheus.Counter
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the execution metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turboexec_attempts_total",
				Help: "Total number of work invocations by result.",
			},
			[]string{"result"},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turboexec_executions_total",
				Help: "Total number of finished executions by terminal state.",
			},
			[]string{"state"},
		),
		overrides: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "turboexec_retry_overrides_total",
				Help: "Total number of retries granted by the retry predicate.",
			},
		),
		timeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "turboexec_attempt_timeouts_total",
				Help: "Total number of attempts whose deadline elapsed.",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turboexec_execution_duration_seconds",
				Help:    "Execution duration in seconds from start to settlement.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"state"},
		),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.executions, m.overrides, m.timeouts, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register execution metrics: %w", err)
		}
	}

	return m, nil
}

func (m *Metrics) observeAttempt(result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(result).Inc()
}

func (m *Metrics) observeOverride() {
	if m == nil {
		return
	}
	m.overrides.Inc()
}

func (m *Metrics) observeTimeout() {
	if m == nil {
		return
	}
	m.timeouts.Inc()
}

func (m *Metrics) observeExecution(state State, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(state.String()).Inc()
	m.duration.WithLabelValues(state.String()).Observe(elapsed.Seconds())
}
