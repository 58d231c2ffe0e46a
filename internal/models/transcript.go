// Package models defines the event payloads exchanged over Kafka.
package models

// EventTypeTranscriptFinal is the event type of final transcripts produced by
// the speech ingress pipeline.
const EventTypeTranscriptFinal = "interaction.transcript.final"

// TranscriptFinal represents a final transcript result with the recognizer's
// confidence.
type TranscriptFinal struct {
	EventType     string `json:"eventType"`
	InteractionID string `json:"interactionId"`
	TenantID      string `json:"tenantId"`
	Timestamp     int64  `json:"timestamp"`
	SegmentID     string `json:"segmentId"`
	Text          string `json:"text"`
	// Confidence is nil when the producer reported none.
	Confidence    *float64 `json:"confidence,omitempty"`
	AudioOffsetMs int64    `json:"audioOffsetMs"`
	Language      string   `json:"language,omitempty"`
	// DurationMs is the spoken duration when the producer knows it.
	DurationMs int64 `json:"durationMs,omitempty"`
}
