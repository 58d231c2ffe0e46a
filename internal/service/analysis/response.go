package analysis

import (
	"time"

	"ai-speech-confidence-service/internal/scoring"
)

// Correction is a grammar issue paired with a suggested fix.
type Correction struct {
	Category   string `json:"category"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Response is the API view of an Outcome.
type Response struct {
	ID                   string               `json:"id"`
	Source               string               `json:"source"`
	Language             string               `json:"language"`
	Timestamp            time.Time            `json:"timestamp"`
	Transcript           string               `json:"transcript"`
	WPM                  int                  `json:"wpm"`
	RecognizerConfidence *float64             `json:"recognizerConfidence,omitempty"`
	Result               *scoring.ScoreResult `json:"result"`
	Corrections          []Correction         `json:"corrections"`
}

// Response builds the API response for o.
func (o *Outcome) Response() Response {
	return Response{
		ID:                   o.Event.EventID,
		Source:               o.Event.Source,
		Language:             o.Event.Language,
		Timestamp:            o.Record.Timestamp,
		Transcript:           o.Event.Transcript,
		WPM:                  o.Record.WPM,
		RecognizerConfidence: o.Event.RecognizerConfidence,
		Result:               o.Event.Result,
		Corrections:          Corrections(o.Event.Result),
	}
}

// Corrections pairs each grammar error with its suggested fix. Categories
// without a suggestion keep an empty Suggestion.
func Corrections(res *scoring.ScoreResult) []Correction {
	out := make([]Correction, 0, len(res.GrammarErrors))
	for _, issue := range res.GrammarErrors {
		out = append(out, Correction{
			Category:   issue.Category,
			Detail:     issue.Detail,
			Suggestion: scoring.SuggestedCorrection(issue.Category),
		})
	}
	return out
}
