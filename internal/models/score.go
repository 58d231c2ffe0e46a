package models

import "ai-speech-confidence-service/internal/scoring"

const EventTypeScoreCompleted = "speech.score.completed"

// Score sources.
const (
	SourceHTTP  = "http"
	SourceGRPC  = "grpc"
	SourceKafka = "kafka"
	SourceAudio = "audio"
	SourceCLI   = "cli"
)

// ScoreCompleted is published once per scored transcript.
type ScoreCompleted struct {
	EventType     string `json:"eventType"`
	EventID       string `json:"eventId"`
	Source        string `json:"source"`
	Timestamp     int64  `json:"timestamp"`
	Language      string `json:"language"`
	InteractionID string `json:"interactionId,omitempty"`
	TenantID      string `json:"tenantId,omitempty"`
	SegmentID     string `json:"segmentId,omitempty"`
	SessionID     string `json:"sessionId,omitempty"`
	Transcript    string `json:"transcript"`
	// RecognizerConfidence is the STT engine's confidence (0-1), when known.
	RecognizerConfidence *float64             `json:"recognizerConfidence,omitempty"`
	Result               *scoring.ScoreResult `json:"result"`
}
