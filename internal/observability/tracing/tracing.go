// Package tracing sets up the OpenTelemetry tracer provider and the span
// attributes recorded for each scoring run.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"ai-speech-confidence-service/internal/scoring"
)

// TracerName is the instrumentation scope for spans created by this service.
const TracerName = "ai-speech-confidence-service"

// Config configures the tracer provider.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP/HTTP collector, as host:port or a full URL. It is
	// ignored when Exporter is set.
	Endpoint string
	Insecure bool

	// Exporter overrides the OTLP exporter. With neither an Exporter nor an
	// Endpoint, spans are recorded but not exported.
	Exporter sdktrace.SpanExporter
}

// Init installs a global tracer provider and returns its shutdown function.
// When tracing is disabled the global no-op provider is left in place.
func Init(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter := cfg.Exporter
	if exporter == nil && cfg.Endpoint != "" {
		exporter, err = newOTLPExporter(ctx, cfg.Endpoint, cfg.Insecure)
		if err != nil {
			return nil, fmt.Errorf("creating trace exporter: %w", err)
		}
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func newOTLPExporter(ctx context.Context, endpoint string, insecure bool) (sdktrace.SpanExporter, error) {
	var opts []otlptracehttp.Option
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
	}
	return otlptracehttp.New(ctx, opts...)
}

// Tracer returns the service tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// ScoreAttributes flattens a score and its penalty breakdown into span
// attributes.
func ScoreAttributes(res *scoring.ScoreResult) []attribute.KeyValue {
	g, c := res.Breakdown.Grammar, res.Breakdown.Confidence
	return []attribute.KeyValue{
		attribute.Int("score.grammar_accuracy", res.GrammarAccuracy),
		attribute.Int("score.confidence_level", res.ConfidenceLevel),
		attribute.Int("score.overall_performance", res.OverallPerformance),
		attribute.String("score.feedback", string(res.Feedback)),
		attribute.Int("transcript.total_words", res.Metrics.TotalWords),
		attribute.Float64("transcript.filler_percentage", res.Metrics.FillerPercentage),
		attribute.Float64("transcript.vocab_richness", res.Metrics.VocabRichness),
		attribute.Int("grammar.error_count", g.ErrorCount),
		attribute.Int("grammar.error_penalty", g.ErrorPenalty),
		attribute.Int("grammar.repetition_penalty", g.RepetitionPenalty),
		attribute.Int("grammar.sentence_penalty", g.SentencePenalty),
		attribute.Float64("grammar.avg_words_per_sentence", g.AvgWordsPerSentence),
		attribute.Int("confidence.filler_penalty", c.FillerPenalty),
		attribute.Int("confidence.vocab_penalty", c.VocabPenalty),
		attribute.Int("confidence.repetition_penalty", c.RepetitionPenalty),
		attribute.Int("confidence.sentence_penalty", c.SentencePenalty),
		attribute.Int("confidence.run_on_penalty", c.RunOnPenalty),
		attribute.Int("confidence.length_penalty", c.LengthPenalty),
		attribute.Bool("confidence.capped", c.Capped),
	}
}
