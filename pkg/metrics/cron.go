package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// CronJobMetrics covers the nightly storefront jobs (outbox retention,
// coupon expiry). A nil *CronJobMetrics records nothing.
type CronJobMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return nil
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cron_job_runs_total",
			Help: "Cron job executions by outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_cron_job_duration_seconds",
			Help:    "Wall time of one cron job execution.",
			Buckets: []float64{0.05, 0.25, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storefront_cron_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run, for staleness alerts.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs, m.duration, m.lastSuccess)
	return m
}

func (m *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (m *CronJobMetrics) IncSuccess(job string) {
	if m == nil {
		return
	}
	job = normalizeLabel(job)
	m.runs.WithLabelValues(job, outcomeSuccess).Inc()
	m.lastSuccess.WithLabelValues(job).SetToCurrentTime()
}

func (m *CronJobMetrics) IncFailure(job string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(job), outcomeFailure).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
