package flowchart

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for workflow execution.
// A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec   // Completed runs by workflow and outcome
	duration *prometheus.HistogramVec // Run duration by workflow
	steps    *prometheus.CounterVec   // Executed nodes by workflow and node type
	changes  *prometheus.CounterVec   // Applied changes by workflow and strategy
}

// NewMetrics creates the workflow collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewlab",
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Workflow runs by outcome",
		}, []string{"workflow", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brewlab",
			Subsystem: "workflow",
			Name:      "run_duration_seconds",
			Help:      "Workflow run duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"workflow"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewlab",
			Subsystem: "workflow",
			Name:      "steps_total",
			Help:      "Executed workflow nodes by node type",
		}, []string{"workflow", "node_type"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewlab",
			Subsystem: "workflow",
			Name:      "strategy_changes_total",
			Help:      "Recipe changes produced by each strategy",
		}, []string{"workflow", "strategy"}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.duration, m.steps, m.changes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRun(workflow string, kind ErrorKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if kind != ErrorKindNone {
		outcome = string(kind)
	}
	m.runs.WithLabelValues(workflow, outcome).Inc()
	m.duration.WithLabelValues(workflow).Observe(elapsed.Seconds())
}

func (m *Metrics) observeStep(workflow string, t NodeType) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(workflow, string(t)).Inc()
}

func (m *Metrics) observeChanges(workflow, strategy string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.changes.WithLabelValues(workflow, strategy).Add(float64(n))
}
