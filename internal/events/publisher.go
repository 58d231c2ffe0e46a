// Package events publishes score events to Kafka and consumes final
// transcripts from the ingress pipeline.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/observability/metrics"
	"ai-speech-confidence-service/internal/schema"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes score events to a Kafka topic. When Kafka is disabled
// it only logs the payloads.
type Publisher struct {
	writer    messageWriter
	principal string
	topic     string
	enabled   bool
	metrics   *metrics.Metrics
	validator *schema.Validator
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// New creates a new Kafka event publisher. validator may be nil.
func New(cfg *Config, validator *schema.Validator) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{metrics: m, validator: validator}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topic:     cfg.Topic,
			metrics:   m,
			validator: validator,
		}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport: &kafka.Transport{
			Dial: (&kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}).DialFunc,
		},
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:    writer,
		principal: cfg.Principal,
		topic:     cfg.Topic,
		enabled:   true,
		metrics:   m,
		validator: validator,
	}
}

// Enabled reports whether events are written to Kafka.
func (p *Publisher) Enabled() bool { return p.enabled }

// PublishScore publishes a score event keyed by its interaction, session or
// event ID, in that order of preference.
func (p *Publisher) PublishScore(ctx context.Context, ev models.ScoreCompleted) error {
	if p.validator != nil {
		if err := p.validator.Validate(models.EventTypeScoreCompleted, ev); err != nil {
			log.Error().Err(err).Str("eventId", ev.EventID).Msg("Score event failed schema validation")
			return err
		}
	}

	key := ev.InteractionID
	if key == "" {
		key = ev.SessionID
	}
	if key == "" {
		key = ev.EventID
	}
	return p.publish(ctx, models.EventTypeScoreCompleted, key, ev)
}

func (p *Publisher) publish(ctx context.Context, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", p.topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || p.writer == nil {
		p.metrics.RecordKafkaPublish(p.topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(p.topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(p.topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Kafka writer")
		return err
	}
	return nil
}
