package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records metadata for scheduled pipeline jobs.
type PipelineMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	rows      *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_job_duration_seconds",
		Help:    "Duration of pipeline jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_job_success",
		Help: "Successful pipeline job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_job_failure",
		Help: "Failed pipeline job executions.",
	}, []string{"job"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_rows_persisted_total",
		Help: "Rows persisted per entity and target store.",
	}, []string{"entity", "target"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_csv_fallback_total",
		Help: "Times the persistence adapter fell back from database to CSV.",
	}, []string{"entity"})
	reg.MustRegister(duration, success, failure, rows, fallbacks)
	return &PipelineMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		rows:      rows,
		fallbacks: fallbacks,
	}
}

// ObserveDuration records the duration for the named job.
func (p *PipelineMetrics) ObserveDuration(job string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (p *PipelineMetrics) IncSuccess(job string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (p *PipelineMetrics) IncFailure(job string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddRows records persisted rows for an entity and target store.
func (p *PipelineMetrics) AddRows(entity, target string, count int) {
	if p == nil || p.rows == nil || count <= 0 {
		return
	}
	p.rows.WithLabelValues(normalizeLabel(entity), normalizeLabel(target)).Add(float64(count))
}

// IncFallback counts a database-to-CSV fallback for an entity.
func (p *PipelineMetrics) IncFallback(entity string) {
	if p == nil || p.fallbacks == nil {
		return
	}
	p.fallbacks.WithLabelValues(normalizeLabel(entity)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
