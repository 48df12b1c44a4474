// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "incident_bot"

type Metrics struct {
	registry *prometheus.Registry

	AlertsProcessed      *prometheus.CounterVec
	HealingActions       *prometheus.CounterVec
	ArchiveUploads       *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
	SuggestionConfidence prometheus.Histogram
}

// New - 전용 레지스트리에 컬렉터 등록 (테스트마다 독립 인스턴스 사용 가능)
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AlertsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_processed_total",
			Help:      "Alerts handled by the webhook, by result (success, failed).",
		}, []string{"result"}),
		HealingActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "healing_actions_total",
			Help:      "Self-healing decisions, by alert kind and success.",
		}, []string{"kind", "success"}),
		ArchiveUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_uploads_total",
			Help:      "Object storage uploads, by kind (logs, data, alerts) and result.",
		}, []string{"kind", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Slack notifications, by result (sent, failed, skipped).",
		}, []string{"result"}),
		SuggestionConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_confidence",
			Help:      "Confidence scores parsed from AI suggestions.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AlertsProcessed,
		m.HealingActions,
		m.ArchiveUploads,
		m.Notifications,
		m.SuggestionConfidence,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// 아래 헬퍼는 nil *Metrics에서도 안전하게 동작 (서비스 단위 테스트에서 metrics 생략 가능)

func (m *Metrics) ObserveAlert(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.AlertsProcessed.WithLabelValues("success").Inc()
		return
	}
	m.AlertsProcessed.WithLabelValues("failed").Inc()
}

func (m *Metrics) ObserveHealing(kind string, success bool) {
	if m == nil {
		return
	}
	m.HealingActions.WithLabelValues(kind, boolLabel(success)).Inc()
}

func (m *Metrics) ObserveUpload(kind string, err error) {
	if m == nil {
		return
	}
	m.ArchiveUploads.WithLabelValues(kind, resultLabel(err)).Inc()
}

func (m *Metrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveConfidence(c float64) {
	if m == nil {
		return
	}
	m.SuggestionConfidence.Observe(c)
}
