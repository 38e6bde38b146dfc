// Package metrics exposes prometheus instrumentation for pipeline runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"ragflow/pkg/pipeline"
)

// Pipeline holds the run-level collectors. It implements
// pipeline.Observer, so attaching it to an executor is all the wiring a
// server needs.
type Pipeline struct {
	queries       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
}

// NewPipeline creates the collectors and registers them with reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragflow",
			Name:      "queries_total",
			Help:      "Queries processed, by terminal outcome.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ragflow",
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragflow",
			Name:      "stage_errors_total",
			Help:      "Stage executions that returned an error.",
		}, []string{"stage"}),
	}
	reg.MustRegister(p.queries, p.stageDuration, p.stageErrors)
	return p
}

// OnEvent records pipeline events. Stage timings come from stage_exit
// events; run outcomes from run_complete and run_error.
func (p *Pipeline) OnEvent(e pipeline.Event) {
	switch e.Type {
	case pipeline.EventStageExit:
		p.stageDuration.WithLabelValues(e.Stage).Observe(e.Elapsed.Seconds())
		if e.Err != nil {
			p.stageErrors.WithLabelValues(e.Stage).Inc()
		}
	case pipeline.EventRunComplete:
		p.queries.WithLabelValues(string(e.Outcome)).Inc()
	case pipeline.EventRunError:
		p.queries.WithLabelValues(string(pipeline.OutcomeFailed)).Inc()
	}
}
