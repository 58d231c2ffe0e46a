// Package analysis scores transcripts and fans the outcome out to history,
// Kafka and live subscribers.
package analysis

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ai-speech-confidence-service/internal/history"
	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/observability/metrics"
	"ai-speech-confidence-service/internal/observability/tracing"
	"ai-speech-confidence-service/internal/scoring"
	"ai-speech-confidence-service/internal/service/capture"
)

// HistoryStore persists scored attempts.
type HistoryStore interface {
	Add(ctx context.Context, rec history.Record) error
}

// ScorePublisher emits score events.
type ScorePublisher interface {
	PublishScore(ctx context.Context, ev models.ScoreCompleted) error
}

// Broadcaster pushes events to live subscribers without blocking.
type Broadcaster interface {
	Broadcast(event any) bool
}

// Config wires an Analyzer. Only Engine is required.
type Config struct {
	Engine    *scoring.Engine
	History   HistoryStore
	Publisher ScorePublisher
	Live      Broadcaster
	Metrics   *metrics.Metrics
	Tracer    trace.Tracer
}

// Analyzer runs the scoring engine and records every successful result.
// Safe for concurrent use.
type Analyzer struct {
	engine    *scoring.Engine
	history   HistoryStore
	publisher ScorePublisher
	live      Broadcaster
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time

	audio *audioCapture
}

// New creates an Analyzer. A nil Engine selects the default rule set.
func New(cfg Config) *Analyzer {
	a := &Analyzer{
		engine:    cfg.Engine,
		history:   cfg.History,
		publisher: cfg.Publisher,
		live:      cfg.Live,
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
		now:       time.Now,
	}
	if a.engine == nil {
		a.engine = scoring.New()
	}
	if a.metrics == nil {
		a.metrics = metrics.DefaultMetrics
	}
	if a.tracer == nil {
		a.tracer = tracing.Tracer()
	}
	return a
}

// Request is one transcript to score.
type Request struct {
	Transcript      string
	DurationSeconds float64
	Language        string
	Source          string

	// WPM overrides the engine's speaking rate in the history record. Capture
	// sessions set it from their own word count.
	WPM int

	RecognizerConfidence *float64
	SessionID            string
	InteractionID        string
	TenantID             string
	SegmentID            string
}

// Outcome is a scored transcript with everything derived from it.
type Outcome struct {
	Event  models.ScoreCompleted
	Record history.Record
}

// Result returns the engine result.
func (o *Outcome) Result() *scoring.ScoreResult { return o.Event.Result }

// Analyze scores req.Transcript. Empty input is rejected with
// scoring.ErrEmptyInput before anything is recorded. Failures to record the
// result are logged, not returned.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Outcome, error) {
	if req.Language == "" {
		req.Language = capture.DefaultLanguage
	}
	if req.Source == "" {
		req.Source = models.SourceHTTP
	}

	ctx, span := a.tracer.Start(ctx, "scoring.Score", trace.WithAttributes(
		attribute.String("score.source", req.Source),
		attribute.String("score.language", req.Language),
		attribute.Float64("transcript.duration_seconds", req.DurationSeconds),
	))
	defer span.End()

	start := a.now()
	res, err := a.engine.Score(req.Transcript, req.DurationSeconds)
	if err != nil {
		reason := "error"
		if errors.Is(err, scoring.ErrEmptyInput) {
			reason = "empty_input"
		}
		a.metrics.RecordScoreRejected(reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		return nil, err
	}
	a.metrics.RecordScore(req.Source, res, time.Since(start).Seconds())
	span.SetAttributes(tracing.ScoreAttributes(res)...)

	now := a.now()
	out := &Outcome{
		Event: models.ScoreCompleted{
			EventType:            models.EventTypeScoreCompleted,
			EventID:              uuid.NewString(),
			Source:               req.Source,
			Timestamp:            now.UnixMilli(),
			Language:             req.Language,
			InteractionID:        req.InteractionID,
			TenantID:             req.TenantID,
			SegmentID:            req.SegmentID,
			SessionID:            req.SessionID,
			Transcript:           req.Transcript,
			RecognizerConfidence: req.RecognizerConfidence,
			Result:               res,
		},
	}
	wpm := req.WPM
	if wpm == 0 {
		wpm = int(math.Round(res.Metrics.WordsPerMinute))
	}
	out.Record = history.Record{
		ID:                 out.Event.EventID,
		Transcript:         req.Transcript,
		WPM:                wpm,
		Language:           req.Language,
		Source:             req.Source,
		Timestamp:          now,
		Confidence:         req.RecognizerConfidence,
		ConfidenceLevel:    res.ConfidenceLevel,
		GrammarAccuracy:    res.GrammarAccuracy,
		OverallPerformance: res.OverallPerformance,
	}
	span.SetAttributes(attribute.String("score.event_id", out.Event.EventID))

	a.record(ctx, out)
	return out, nil
}

func (a *Analyzer) record(ctx context.Context, out *Outcome) {
	logger := log.With().
		Str("eventId", out.Event.EventID).
		Str("source", out.Event.Source).
		Logger()

	if a.history != nil {
		err := a.history.Add(ctx, out.Record)
		a.metrics.RecordHistoryWrite(err)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to store history record")
		}
	}

	if a.publisher != nil {
		if err := a.publisher.PublishScore(ctx, out.Event); err != nil {
			logger.Error().Err(err).Msg("Failed to publish score event")
		}
	}

	if a.live != nil {
		a.live.Broadcast(out.Event)
	}

	logger.Info().
		Int("grammar", out.Event.Result.GrammarAccuracy).
		Int("confidence", out.Event.Result.ConfidenceLevel).
		Int("overall", out.Event.Result.OverallPerformance).
		Msg("Transcript scored")
}

// HandleTranscriptFinal scores a final transcript consumed from Kafka. It
// matches events.TranscriptHandler.
func (a *Analyzer) HandleTranscriptFinal(ctx context.Context, ev models.TranscriptFinal) error {
	req := Request{
		Transcript:      ev.Text,
		DurationSeconds: float64(ev.DurationMs) / 1000,
		Language:        ev.Language,
		Source:          models.SourceKafka,
		InteractionID:   ev.InteractionID,
		TenantID:        ev.TenantID,
		SegmentID:       ev.SegmentID,
	}
	if ev.Confidence != nil {
		c := *ev.Confidence
		req.RecognizerConfidence = &c
	}
	_, err := a.Analyze(ctx, req)
	return err
}
