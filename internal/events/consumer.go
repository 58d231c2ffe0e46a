package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/observability/metrics"
	"ai-speech-confidence-service/internal/schema"
	"ai-speech-confidence-service/internal/scoring"
)

// Consume outcomes recorded per message.
const (
	outcomeScored  = "scored"
	outcomeInvalid = "invalid"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// TranscriptHandler processes one final transcript.
type TranscriptHandler func(ctx context.Context, ev models.TranscriptFinal) error

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Enabled bool
}

// Consumer reads final transcripts and hands them to a TranscriptHandler.
// Every message is committed once handled, including ones that fail, so a
// malformed event never blocks the partition.
type Consumer struct {
	reader    messageReader
	topic     string
	handler   TranscriptHandler
	validator *schema.Validator
	metrics   *metrics.Metrics
}

// NewConsumer creates a consumer group reader. When Kafka is disabled Run
// simply waits for cancellation.
func NewConsumer(cfg *ConsumerConfig, handler TranscriptHandler, validator *schema.Validator) *Consumer {
	c := &Consumer{
		handler:   handler,
		validator: validator,
		metrics:   metrics.DefaultMetrics,
	}
	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka consumer disabled")
		return c
	}

	c.topic = cfg.Topic
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("groupId", cfg.GroupID).
		Msg("Kafka consumer initialized")
	return c
}

// Run consumes until ctx is cancelled. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	if c.reader == nil {
		<-ctx.Done()
		return nil
	}

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Str("topic", c.topic).Msg("Kafka fetch failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		outcome := c.handleMessage(ctx, msg)
		c.metrics.RecordKafkaConsume(c.topic, outcome)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("topic", c.topic).Int64("offset", msg.Offset).Msg("Kafka commit failed")
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) string {
	if c.validator != nil {
		if err := c.validator.ValidateJSON(models.EventTypeTranscriptFinal, msg.Value); err != nil {
			log.Warn().Err(err).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("Dropping invalid transcript event")
			return outcomeInvalid
		}
	}

	var ev models.TranscriptFinal
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		log.Warn().Err(err).Int64("offset", msg.Offset).Msg("Dropping undecodable transcript event")
		return outcomeInvalid
	}

	logger := log.With().
		Str("interactionId", ev.InteractionID).
		Str("segmentId", ev.SegmentID).
		Logger()

	if err := c.handler(ctx, ev); err != nil {
		if errors.Is(err, scoring.ErrEmptyInput) {
			logger.Debug().Msg("Skipping empty transcript")
			return outcomeSkipped
		}
		logger.Error().Err(err).Msg("Failed to score transcript")
		return outcomeFailed
	}
	return outcomeScored
}

// Close closes the Kafka reader.
func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
