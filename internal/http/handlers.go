package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"ai-speech-confidence-service/internal/app"
	"ai-speech-confidence-service/internal/history"
	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/scoring"
	"ai-speech-confidence-service/internal/service/analysis"
	"ai-speech-confidence-service/internal/service/capture"
)

// maxScoreBody bounds the JSON body of a text score request.
const maxScoreBody = 1 << 20

type handlers struct {
	app      *app.Application
	validate *validator.Validate
}

type scoreRequest struct {
	Transcript      string  `json:"transcript" validate:"max=20000"`
	DurationSeconds float64 `json:"durationSeconds" validate:"gte=0,lte=3600"`
	Language        string  `json:"language" validate:"omitempty,oneof=en-US ta-IN hi-IN"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// TrendPoint is one entry of the progress chart.
type TrendPoint struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	// Confidence is the recognizer confidence as a percentage, or nil for
	// typed transcripts.
	Confidence         *int `json:"confidence"`
	ConfidenceLevel    int  `json:"confidenceLevel"`
	GrammarAccuracy    int  `json:"grammarAccuracy"`
	OverallPerformance int  `json:"overallPerformance"`
	WPM                int  `json:"wpm"`
}

func (h *handlers) readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Ready(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *handlers) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScoreBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	out, err := h.app.Analyzer.Analyze(r.Context(), analysis.Request{
		Transcript:      req.Transcript,
		DurationSeconds: req.DurationSeconds,
		Language:        req.Language,
		Source:          models.SourceHTTP,
	})
	if err != nil {
		h.writeScoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Response())
}

func (h *handlers) scoreAudio(w http.ResponseWriter, r *http.Request) {
	out, err := h.app.Analyzer.AnalyzeAudio(r.Context(), r.Body, r.URL.Query().Get("language"))
	if err != nil {
		h.writeScoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Response())
}

func (h *handlers) writeScoreError(w http.ResponseWriter, err error) {
	var langErr *capture.UnsupportedLanguageError
	switch {
	case errors.Is(err, scoring.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &langErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, capture.ErrNoSpeech):
		writeError(w, http.StatusUnprocessableEntity, capture.NoSpeechMessage)
	case errors.Is(err, capture.ErrLimitExceeded):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, analysis.ErrAudioDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("Scoring request failed")
		writeError(w, http.StatusInternalServerError, "scoring failed")
	}
}

func (h *handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := h.app.History.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Listing history failed")
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *handlers) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.app.History.Clear(r.Context()); err != nil {
		log.Error().Err(err).Msg("Clearing history failed")
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) trend(w http.ResponseWriter, r *http.Request) {
	recs, err := h.app.History.Trend(r.Context(), history.TrendSize)
	if err != nil {
		log.Error().Err(err).Msg("Loading trend failed")
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, trendPoints(recs))
}

func trendPoints(recs []history.Record) []TrendPoint {
	points := make([]TrendPoint, 0, len(recs))
	for _, rec := range recs {
		p := TrendPoint{
			ID:                 rec.ID,
			Timestamp:          rec.Timestamp,
			ConfidenceLevel:    rec.ConfidenceLevel,
			GrammarAccuracy:    rec.GrammarAccuracy,
			OverallPerformance: rec.OverallPerformance,
			WPM:                rec.WPM,
		}
		if rec.Confidence != nil {
			pct := int(math.Round(*rec.Confidence * 100))
			p.Confidence = &pct
		}
		points = append(points, p)
	}
	return points
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Writing response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
