// Package metrics exposes planning activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/renderplan/internal/engine"
)

var _ engine.Observer = (*Recorder)(nil)

// Recorder is an engine.Observer counting dispatched jobs and chunks.
type Recorder struct {
	jobs      *prometheus.CounterVec
	nops      prometheus.Counter
	chunks    prometheus.Counter
	chunkSize prometheus.Histogram
	depth     prometheus.Histogram
}

// NewRecorder registers the planner metrics with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated; nil uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		jobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "renderplan_jobs_dispatched_total",
			Help: "Jobs handed to the scheduler, by job kind and planning level.",
		}, []string{"kind", "level"}),
		nops: f.NewCounter(prometheus.CounterOpts{
			Name: "renderplan_nop_jobs_total",
			Help: "Dispatched jobs for frames without an attached exit node.",
		}),
		chunks: f.NewCounter(prometheus.CounterOpts{
			Name: "renderplan_chunks_dispatched_total",
			Help: "Completed dispatch chunks.",
		}),
		chunkSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "renderplan_chunk_jobs",
			Help:    "Jobs per dispatch chunk.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		depth: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "renderplan_prerequisite_depth",
			Help:    "Depth of dispatched jobs below their frame's top-level job.",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
	}
}

// JobDispatched implements engine.Observer.
func (r *Recorder) JobDispatched(j engine.ScheduledJob) {
	if j.Job.IsNOP() {
		r.nops.Inc()
	}
	level := "prerequisite"
	if j.IsTopLevel() {
		level = "top"
	}
	r.jobs.WithLabelValues(j.Job.Kind().String(), level).Inc()
	r.depth.Observe(float64(j.Depth))
}

// ChunkDispatched implements engine.Observer.
func (r *Recorder) ChunkDispatched(_ string, jobs int) {
	r.chunks.Inc()
	r.chunkSize.Observe(float64(jobs))
}
