// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ai-speech-confidence-service/internal/scoring"
)

const namespace = "ai_speech_confidence"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Scoring
	ScoresTotal   *prometheus.CounterVec
	ScoreRejected *prometheus.CounterVec
	ScoreValue    *prometheus.HistogramVec
	GrammarErrors *prometheus.CounterVec
	FillerWords   prometheus.Counter
	ScoreLatency  prometheus.Histogram

	// Capture sessions
	CaptureSessionsTotal   prometheus.Counter
	CaptureSessionsActive  prometheus.Gauge
	CaptureSessionsDropped *prometheus.CounterVec
	AudioBytesReceived     prometheus.Counter
	TranscriptsFinal       prometheus.Counter
	STTErrors              *prometheus.CounterVec

	// Kafka
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
	KafkaConsumeTotal   *prometheus.CounterVec

	// History and live feed
	HistoryWrites   *prometheus.CounterVec
	LiveSubscribers prometheus.Gauge

	// API
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScoresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_total",
			Help:      "Total number of transcripts scored",
		}, []string{"source"}),
		ScoreRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_rejected_total",
			Help:      "Total number of scoring requests rejected",
		}, []string{"reason"}),
		ScoreValue: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_value",
			Help:      "Distribution of produced scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"kind"}),
		GrammarErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grammar_errors_total",
			Help:      "Total number of grammar issues detected",
		}, []string{"category"}),
		FillerWords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filler_words_total",
			Help:      "Total number of filler words detected",
		}),
		ScoreLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_latency_seconds",
			Help:      "Time spent scoring a transcript",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		CaptureSessionsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_sessions_total",
			Help:      "Total number of audio capture sessions started",
		}),
		CaptureSessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capture_sessions_active",
			Help:      "Number of audio capture sessions in progress",
		}),
		CaptureSessionsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_sessions_dropped_total",
			Help:      "Total number of capture sessions dropped",
		}, []string{"reason"}),
		AudioBytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),
		TranscriptsFinal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_final_total",
			Help:      "Total number of final STT results received",
		}),
		STTErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_errors_total",
			Help:      "Total number of STT errors",
		}, []string{"provider"}),

		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
		KafkaConsumeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_consume_total",
			Help:      "Total number of Kafka messages consumed",
		}, []string{"topic", "outcome"}),

		HistoryWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "Total number of history writes",
		}, []string{"outcome"}),
		LiveSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Number of connected live score subscribers",
		}),

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"transport", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport"}),
	}
}

// RecordScore records a completed scoring run.
func (m *Metrics) RecordScore(source string, res *scoring.ScoreResult, latencySeconds float64) {
	m.ScoresTotal.WithLabelValues(source).Inc()
	m.ScoreLatency.Observe(latencySeconds)
	m.ScoreValue.WithLabelValues("grammar").Observe(float64(res.GrammarAccuracy))
	m.ScoreValue.WithLabelValues("confidence").Observe(float64(res.ConfidenceLevel))
	m.ScoreValue.WithLabelValues("overall").Observe(float64(res.OverallPerformance))
	for _, issue := range res.GrammarErrors {
		m.GrammarErrors.WithLabelValues(issue.Category).Inc()
	}
	m.FillerWords.Add(float64(res.Metrics.FillerCount))
}

// RecordScoreRejected records a request that could not be scored.
func (m *Metrics) RecordScoreRejected(reason string) {
	m.ScoreRejected.WithLabelValues(reason).Inc()
}

// RecordCaptureStart records a new capture session starting.
func (m *Metrics) RecordCaptureStart() {
	m.CaptureSessionsTotal.Inc()
	m.CaptureSessionsActive.Inc()
}

// RecordCaptureEnd records a capture session ending.
func (m *Metrics) RecordCaptureEnd() {
	m.CaptureSessionsActive.Dec()
}

// RecordCaptureDropped records a capture session being dropped.
func (m *Metrics) RecordCaptureDropped(reason string) {
	m.CaptureSessionsDropped.WithLabelValues(reason).Inc()
}

// RecordAudioReceived records audio bytes received.
func (m *Metrics) RecordAudioReceived(bytes int) {
	m.AudioBytesReceived.Add(float64(bytes))
}

// RecordFinalTranscript records a final STT result.
func (m *Metrics) RecordFinalTranscript() {
	m.TranscriptsFinal.Inc()
}

// RecordSTTError records an STT error.
func (m *Metrics) RecordSTTError(provider string) {
	m.STTErrors.WithLabelValues(provider).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordKafkaConsume records the outcome of handling a consumed message.
func (m *Metrics) RecordKafkaConsume(topic, outcome string) {
	m.KafkaConsumeTotal.WithLabelValues(topic, outcome).Inc()
}

// RecordHistoryWrite records a history insert.
func (m *Metrics) RecordHistoryWrite(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.HistoryWrites.WithLabelValues(outcome).Inc()
}

// RecordRequest records one API call.
func (m *Metrics) RecordRequest(transport, method, code string, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(transport, method, code).Inc()
	m.RequestDuration.WithLabelValues(transport).Observe(durationSeconds)
}
