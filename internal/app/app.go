// Package app assembles the service components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ai-speech-confidence-service/internal/config"
	"ai-speech-confidence-service/internal/events"
	"ai-speech-confidence-service/internal/history"
	"ai-speech-confidence-service/internal/live"
	"ai-speech-confidence-service/internal/observability/logging"
	"ai-speech-confidence-service/internal/observability/metrics"
	"ai-speech-confidence-service/internal/schema"
	"ai-speech-confidence-service/internal/scoring"
	"ai-speech-confidence-service/internal/service/analysis"
	"ai-speech-confidence-service/internal/service/capture"
	"ai-speech-confidence-service/internal/service/stt"
	"ai-speech-confidence-service/internal/service/stt/google"
	"ai-speech-confidence-service/internal/service/stt/mock"
)

// liveBuffer is the number of score events queued for live subscribers.
const liveBuffer = 256

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Metrics   *metrics.Metrics
	Validator *schema.Validator
	History   *history.Store
	Publisher *events.Publisher
	Consumer  *events.Consumer
	Hub       *live.Hub
	Analyzer  *analysis.Analyzer
}

// New constructs the Application and every component it owns. The logger
// must already be initialised.
func New(cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:     cfg,
		Logger:  logging.WithComponent("application"),
		Metrics: metrics.DefaultMetrics,
	}

	validator, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("compile event schemas: %w", err)
	}
	a.Validator = validator

	store, err := history.OpenFile(cfg.History.DBPath, cfg.History.MaxRecords)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.History = store

	a.Publisher = events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.TopicScoreCompleted,
		Principal: cfg.Kafka.Principal,
	}, validator)

	a.Hub = live.NewHub(liveBuffer)

	a.Analyzer = analysis.New(analysis.Config{
		Engine:    scoring.New(),
		History:   store,
		Publisher: a.Publisher,
		Live:      a.Hub,
		Metrics:   a.Metrics,
	})
	a.Analyzer.EnableAudio(AdapterFactory(cfg.STT.Provider), analysis.AudioConfig{
		Provider: cfg.STT.Provider,
		STT: stt.Config{
			LanguageCode:   cfg.STT.LanguageCode,
			SampleRateHz:   cfg.STT.SampleRateHz,
			InterimResults: cfg.STT.InterimResults,
			AudioEncoding:  cfg.STT.AudioEncoding,
		},
		Limits: capture.Limits{
			MaxAudioBytes: cfg.Capture.MaxAudioBytes,
			MaxDuration:   cfg.Capture.MaxDuration,
			MinDuration:   cfg.Capture.MinDuration,
		},
	})

	a.Consumer = events.NewConsumer(&events.ConsumerConfig{
		Enabled: cfg.Kafka.Enabled,
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TopicTranscriptFinal,
		GroupID: cfg.Kafka.GroupID,
	}, a.Analyzer.HandleTranscriptFinal, validator)

	a.Logger.Info().
		Str("sttProvider", cfg.STT.Provider).
		Bool("kafkaEnabled", cfg.Kafka.Enabled).
		Str("historyDb", cfg.History.DBPath).
		Msg("AI Speech Confidence service application created")
	return a, nil
}

// AdapterFactory returns the recognizer factory for an STT provider name.
// Unknown providers fall back to the mock.
func AdapterFactory(provider string) analysis.AdapterFactory {
	switch provider {
	case "google":
		return func(ctx context.Context, cfg stt.Config) (stt.Adapter, error) {
			adapter, err := google.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return adapter, nil
		}
	default:
		return func(context.Context, stt.Config) (stt.Adapter, error) {
			return mock.New(), nil
		}
	}
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Msg("AI Speech Confidence service starting")
	return nil
}

// Ready reports whether the service can take traffic.
func (a *Application) Ready(ctx context.Context) error {
	return a.History.Ping(ctx)
}

// Shutdown releases every component. It is safe to call once after the
// servers have stopped.
func (a *Application) Shutdown() error {
	a.Logger.Info().Msg("AI Speech Confidence service shutting down")
	return errors.Join(
		a.Consumer.Close(),
		a.Publisher.Close(),
		a.History.Close(),
	)
}
