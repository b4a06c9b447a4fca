// Package metrics provides Prometheus counters for the bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "villa_bot"

// PrometheusRecorder implements service.Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prometheus.Registry
	conversations  *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	chatReplies    *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder registers metrics in reg. A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prometheus.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		conversations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversations_total",
				Help:      "Survey conversations by outcome",
			},
			[]string{"event"},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lead_deliveries_total",
				Help:      "Lead deliveries by sink and status",
			},
			[]string{"sink", "status"},
		),
		chatReplies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_replies_total",
				Help:      "Free chat replies by source",
			},
			[]string{"source"},
		),
		updateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "update_duration_seconds",
				Help:      "Time spent handling one Telegram update",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
}

func (p *PrometheusRecorder) ConversationStarted() {
	p.conversations.WithLabelValues("started").Inc()
}

func (p *PrometheusRecorder) LeadCompleted() {
	p.conversations.WithLabelValues("completed").Inc()
}

func (p *PrometheusRecorder) ConversationCancelled() {
	p.conversations.WithLabelValues("cancelled").Inc()
}

func (p *PrometheusRecorder) Delivery(sink string, ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	p.deliveries.WithLabelValues(sink, status).Inc()
}

func (p *PrometheusRecorder) ChatReply(source string) {
	p.chatReplies.WithLabelValues(source).Inc()
}

// ObserveUpdate records how long one update took
func (p *PrometheusRecorder) ObserveUpdate(kind string, d time.Duration) {
	p.updateDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// Handler exposes the registry for scraping.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
