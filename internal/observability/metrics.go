package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	LLMCalls        *prometheus.CounterVec
	LLMErrors       *prometheus.CounterVec
	LLMLatency      *prometheus.HistogramVec
	FactExtractions *prometheus.CounterVec
	StoreErrors     *prometheus.CounterVec
	WSMessages      *prometheus.CounterVec

	stages *stageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_requests_total",
			Help:      "HTTP API requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		LLMCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Completion calls by provider and call shape.",
		}, []string{"provider", "call"}),
		LLMErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_errors_total",
			Help:      "Completion errors by provider and class.",
		}, []string{"provider", "class"}),
		LLMLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_latency_ms",
			Help:      "Completion latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 16000},
		}, []string{"provider", "call"}),
		FactExtractions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fact_extractions_total",
			Help:      "Fact extraction attempts by outcome.",
		}, []string{"outcome"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Absorbed memory store errors by store and operation.",
		}, []string{"store", "op"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		stages: newStageWindow(256),
	}
}

func (m *Metrics) ObserveRequest(endpoint string, status int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, http.StatusText(status)).Inc()
}

func (m *Metrics) ObserveLLMCall(provider, call string, d time.Duration) {
	if m == nil {
		return
	}
	m.LLMCalls.WithLabelValues(provider, call).Inc()
	m.LLMLatency.WithLabelValues(provider, call).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveLLMError(provider, class string) {
	if m == nil {
		return
	}
	m.LLMErrors.WithLabelValues(provider, class).Inc()
}

func (m *Metrics) ObserveExtraction(outcome string) {
	if m == nil {
		return
	}
	m.FactExtractions.WithLabelValues(outcome).Inc()
	m.stages.ObserveIndicator("extraction_" + outcome)
}

func (m *Metrics) ObserveStoreError(store, op string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(store, op).Inc()
}

func (m *Metrics) ObserveWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.Observe(stage, float64(d.Microseconds())/1000)
}

func (m *Metrics) SnapshotStages() StageSnapshot {
	if m == nil {
		return StageSnapshot{GeneratedAt: time.Now().UTC(), Stages: []StageStats{}}
	}
	return m.stages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
