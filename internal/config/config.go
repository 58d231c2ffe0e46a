// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	Kafka         KafkaConfig
	STT           STTConfig
	Capture       CaptureConfig
	History       HistoryConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name        string
	Principal   string
	GRPCPort    string
	HTTPPort    string
	MetricsPort string
}

// KafkaConfig covers both the transcript consumer and the score publisher.
type KafkaConfig struct {
	Enabled              bool
	Brokers              []string
	TopicTranscriptFinal string
	TopicScoreCompleted  string
	GroupID              string
	Principal            string
}

type STTConfig struct {
	Provider       string // mock, google
	LanguageCode   string
	SampleRateHz   int32
	InterimResults bool
	AudioEncoding  string
}

// CaptureConfig bounds a single audio capture session.
type CaptureConfig struct {
	MaxAudioBytes int64
	MaxDuration   time.Duration
	MinDuration   time.Duration
}

type HistoryConfig struct {
	DBPath     string
	MaxRecords int
}

type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	TracingEnabled bool
	// OTLPEndpoint is the OTLP/HTTP collector for spans. Empty keeps spans
	// in process.
	OTLPEndpoint string
	OTLPInsecure bool
}

// Load reads the configuration from environment variables, falling back to
// defaults for anything unset or unparsable.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-speech-confidence")

	return &Config{
		Service: ServiceConfig{
			Name:        envOrDefault("SERVICE_NAME", "ai-speech-confidence-service"),
			Principal:   principal,
			GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		Kafka: KafkaConfig{
			Enabled:              envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:              envOrDefaultList("KAFKA_BROKERS", []string{"localhost:9092"}),
			TopicTranscriptFinal: envOrDefault("KAFKA_TOPIC_TRANSCRIPT_FINAL", "interaction.transcript.final"),
			TopicScoreCompleted:  envOrDefault("KAFKA_TOPIC_SCORE_COMPLETED", "speech.score.completed"),
			GroupID:              envOrDefault("KAFKA_GROUP_ID", "speech-confidence"),
			Principal:            envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		STT: STTConfig{
			Provider:       envOrDefault("STT_PROVIDER", "mock"),
			LanguageCode:   envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz:   int32(envOrDefaultInt("STT_SAMPLE_RATE_HZ", 8000)),
			InterimResults: envOrDefaultBool("STT_INTERIM_RESULTS", true),
			AudioEncoding:  envOrDefault("STT_AUDIO_ENCODING", "LINEAR16"),
		},
		Capture: CaptureConfig{
			MaxAudioBytes: int64(envOrDefaultInt("CAPTURE_MAX_AUDIO_BYTES", 5*1024*1024)),
			MaxDuration:   envOrDefaultDuration("CAPTURE_MAX_DURATION", 5*time.Minute),
			MinDuration:   envOrDefaultDuration("CAPTURE_MIN_DURATION", 500*time.Millisecond),
		},
		History: HistoryConfig{
			DBPath:     envOrDefault("HISTORY_DB_PATH", "speech-history.db"),
			MaxRecords: envOrDefaultInt("HISTORY_MAX_RECORDS", 200),
		},
		Observability: ObservabilityConfig{
			LogLevel:       envOrDefault("LOG_LEVEL", "info"),
			LogFormat:      envOrDefault("LOG_FORMAT", "json"),
			TracingEnabled: envOrDefaultBool("TRACING_ENABLED", true),
			OTLPEndpoint:   envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure:   envOrDefaultBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
	}
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
