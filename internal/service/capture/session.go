// Package capture turns a stream of recognizer results into one transcript
// ready for scoring. A Session owns an STT adapter, enforces audio limits and
// reports the spoken duration and speaking rate.
package capture

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ai-speech-confidence-service/internal/observability/logging"
	"ai-speech-confidence-service/internal/observability/metrics"
	"ai-speech-confidence-service/internal/service/stt"
)

// NoSpeechMessage is the user-facing text for ErrNoSpeech.
const NoSpeechMessage = "We couldn't hear you clearly"

var (
	// ErrNoSpeech is returned by Finish when nothing usable was heard, either
	// because the session was dropped or because the transcript is empty.
	ErrNoSpeech = errors.New("no speech captured")

	// ErrLimitExceeded is returned by SendAudio once a capture limit is hit.
	ErrLimitExceeded = errors.New("capture limit exceeded")
)

// Drop reasons, used as metric labels.
const (
	ReasonMaxAudioBytes = "max_audio_bytes"
	ReasonMaxDuration   = "max_duration"
	ReasonSTTError      = "stt_error"
	ReasonNoSpeech      = "no_speech"
	ReasonAborted       = "aborted"
)

// Limits defines safety guardrails for a capture session.
type Limits struct {
	MaxAudioBytes int64         // Max audio accepted per session
	MaxDuration   time.Duration // Max session duration
	MinDuration   time.Duration // Floor applied to the measured duration
}

// DefaultLimits returns the default capture limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAudioBytes: 5 * 1024 * 1024, // 5MB (~5 minutes at 8kHz 16-bit mono)
		MaxDuration:   5 * time.Minute,
		MinDuration:   500 * time.Millisecond,
	}
}

// Config configures a Session.
type Config struct {
	Language string
	// Provider names the STT backend in metrics and logs.
	Provider string
	Limits   Limits
}

// Result is the outcome of a completed capture.
type Result struct {
	SessionID  string
	Language   string
	Transcript string
	// Confidence is the recognizer confidence of the last final result.
	Confidence *float64
	Duration   time.Duration
	WordCount  int
	WPM        int
	Utterances int
	AudioBytes int64
}

// DurationSeconds returns the capture duration in seconds.
func (r *Result) DurationSeconds() float64 {
	return r.Duration.Seconds()
}

// Session collects recognizer results for one capture.
// It implements stt.Callback.
type Session struct {
	id        string
	cfg       Config
	adapter   stt.Adapter
	lifecycle *Lifecycle
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time

	mu           sync.Mutex
	startedAt    time.Time
	transcript   strings.Builder
	confidence   *float64
	lastPartial  string
	partialCount int
	utterances   int
	audioBytes   int64
	running      bool
	sttErr       error

	endOnce sync.Once
}

// NewSession creates a capture session around adapter. An empty language
// selects DefaultLanguage.
func NewSession(adapter stt.Adapter, cfg Config) (*Session, error) {
	lang, err := ResolveLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}
	cfg.Language = lang
	if cfg.Provider == "" {
		cfg.Provider = "unknown"
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}

	id := uuid.NewString()
	return &Session{
		id:        id,
		cfg:       cfg,
		adapter:   adapter,
		lifecycle: NewLifecycle(),
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithSession(id, lang),
		now:       time.Now,
	}, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Language returns the capture language.
func (s *Session) Language() string { return s.cfg.Language }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.lifecycle.State() }

// Start begins the STT session with this session as the callback receiver.
func (s *Session) Start(ctx context.Context) error {
	if err := s.lifecycle.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	s.startedAt = s.now()
	s.mu.Unlock()

	if err := s.adapter.Start(ctx, s); err != nil {
		s.lifecycle.Drop(ReasonSTTError)
		s.metrics.RecordSTTError(s.cfg.Provider)
		return fmt.Errorf("start %s recognizer: %w", s.cfg.Provider, err)
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.metrics.RecordCaptureStart()
	s.log.Info().Str("provider", s.cfg.Provider).Msg("Capture started")
	return nil
}

// SendAudio forwards audio bytes to the STT adapter.
// Returns an ErrLimitExceeded error if a limit is hit; the session is then
// dropped.
func (s *Session) SendAudio(ctx context.Context, audio []byte) error {
	if !s.lifecycle.IsListening() {
		return ErrNotListening
	}

	s.mu.Lock()
	s.audioBytes += int64(len(audio))
	currentBytes := s.audioBytes
	elapsed := s.now().Sub(s.startedAt)
	failed := s.sttErr != nil
	s.mu.Unlock()
	s.metrics.RecordAudioReceived(len(audio))

	if limit := s.cfg.Limits.MaxAudioBytes; limit > 0 && currentBytes > limit {
		s.drop(ReasonMaxAudioBytes)
		return fmt.Errorf("%w: audio bytes %d > %d", ErrLimitExceeded, currentBytes, limit)
	}
	if limit := s.cfg.Limits.MaxDuration; limit > 0 && elapsed > limit {
		s.drop(ReasonMaxDuration)
		return fmt.Errorf("%w: duration %v > %v", ErrLimitExceeded, elapsed.Round(time.Millisecond), limit)
	}

	// The recognizer stream is gone; keep draining the client so the finals
	// heard so far can still be scored.
	if failed {
		return nil
	}
	return s.adapter.SendAudio(ctx, audio)
}

// Finish closes the recognizer, waits for its remaining results and returns
// the captured transcript. It returns ErrNoSpeech when the session was
// dropped or heard nothing. Finals received before a recognizer error are
// still returned.
func (s *Session) Finish() (*Result, error) {
	if err := s.adapter.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Closing recognizer failed")
	}
	defer s.end()

	if s.lifecycle.State() == StateDropped {
		return nil, fmt.Errorf("%w: session dropped (%s)", ErrNoSpeech, s.lifecycle.DropReason())
	}

	s.mu.Lock()
	transcript := strings.TrimSpace(s.transcript.String())
	elapsed := s.now().Sub(s.startedAt)
	res := &Result{
		SessionID:  s.id,
		Language:   s.cfg.Language,
		Transcript: transcript,
		Confidence: s.confidence,
		Utterances: s.utterances,
		AudioBytes: s.audioBytes,
	}
	sttErr := s.sttErr
	s.mu.Unlock()

	if transcript == "" {
		if sttErr != nil {
			s.drop(ReasonSTTError)
			return nil, fmt.Errorf("%w: %v", ErrNoSpeech, sttErr)
		}
		s.drop(ReasonNoSpeech)
		return nil, ErrNoSpeech
	}
	if err := s.lifecycle.Complete(); err != nil {
		return nil, err
	}

	res.Duration = max(s.cfg.Limits.MinDuration, elapsed)
	res.WordCount = len(strings.Fields(transcript))
	if secs := res.Duration.Seconds(); secs > 0 {
		res.WPM = int(math.Round(float64(res.WordCount) / secs * 60))
	}

	s.log.Info().
		Int("words", res.WordCount).
		Int("wpm", res.WPM).
		Dur("duration", res.Duration).
		Int("utterances", res.Utterances).
		Msg("Capture completed")
	return res, nil
}

// Abort drops the session and closes the recognizer without producing a
// result. Use when the client goes away mid-capture.
func (s *Session) Abort(reason string) {
	s.drop(reason)
	if err := s.adapter.Close(); err != nil {
		s.log.Debug().Err(err).Msg("Closing recognizer after abort failed")
	}
	s.end()
}

func (s *Session) drop(reason string) {
	prev := s.lifecycle.State()
	if !s.lifecycle.Drop(reason) {
		return
	}
	s.metrics.RecordCaptureDropped(reason)
	s.log.Warn().Str("previousState", prev.String()).Str("reason", reason).Msg("Capture DROPPED")
}

func (s *Session) end() {
	s.endOnce.Do(func() {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if running {
			s.metrics.RecordCaptureEnd()
		}
	})
}

// Partial returns the most recent interim transcript.
func (s *Session) Partial() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPartial
}

// --- stt.Callback implementation ---

// OnPartial records the latest interim transcript.
func (s *Session) OnPartial(text string) {
	if !s.lifecycle.IsListening() {
		return
	}
	s.mu.Lock()
	s.lastPartial = text
	s.partialCount++
	s.mu.Unlock()
}

// OnFinal appends a final result to the transcript and keeps its confidence.
func (s *Session) OnFinal(text string, confidence float64) {
	if !s.lifecycle.IsListening() {
		s.log.Debug().Str("state", s.lifecycle.State().String()).Msg("OnFinal ignored")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sttErr != nil {
		s.log.Debug().Msg("OnFinal after recognizer error ignored")
		return
	}
	s.metrics.RecordFinalTranscript()
	s.transcript.WriteString(text)
	s.transcript.WriteString(" ")
	s.lastPartial = ""
	c := confidence
	s.confidence = &c
}

// OnEndOfUtterance counts a pause detected by the recognizer.
func (s *Session) OnEndOfUtterance() {
	s.mu.Lock()
	s.utterances++
	n := s.utterances
	s.mu.Unlock()
	s.log.Debug().Int("utterance", n).Msg("End of utterance")
}

// OnError stops the recognizer side of the session. Finals already received
// are kept and scored by Finish; later results are ignored.
func (s *Session) OnError(err error) {
	s.metrics.RecordSTTError(s.cfg.Provider)
	s.log.Error().Err(err).Msg("STT error")

	s.mu.Lock()
	if s.sttErr == nil {
		s.sttErr = err
	}
	s.mu.Unlock()
}
