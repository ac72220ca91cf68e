package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics counts outbox dispatch outcomes per event type.
type OutboxMetrics struct {
	published    *prometheus.CounterVec
	retried      *prometheus.CounterVec
	deadLettered *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox publisher metrics.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_outbox_published_total",
		Help: "Outbox events delivered to Pub/Sub.",
	}, []string{"event_type"})
	retried := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_outbox_retry_total",
		Help: "Outbox publish attempts that failed and will be retried.",
	}, []string{"event_type"})
	deadLettered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_outbox_dead_lettered_total",
		Help: "Outbox events moved to the dead letter table.",
	}, []string{"event_type", "reason"})
	reg.MustRegister(published, retried, deadLettered)
	return &OutboxMetrics{published: published, retried: retried, deadLettered: deadLettered}
}

func (m *OutboxMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) IncRetry(eventType string) {
	if m == nil || m.retried == nil {
		return
	}
	m.retried.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) IncDeadLettered(eventType, reason string) {
	if m == nil || m.deadLettered == nil {
		return
	}
	m.deadLettered.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}
