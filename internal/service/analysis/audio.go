package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/service/capture"
	"ai-speech-confidence-service/internal/service/stt"
)

// ErrAudioDisabled is returned by AnalyzeAudio when no recognizer is wired.
var ErrAudioDisabled = errors.New("audio scoring is not configured")

// DefaultChunkBytes is 100ms of 8kHz 16-bit mono audio.
const DefaultChunkBytes = 1600

// AdapterFactory opens a recognizer for one capture.
type AdapterFactory func(ctx context.Context, cfg stt.Config) (stt.Adapter, error)

// AudioConfig configures audio capture.
type AudioConfig struct {
	Provider   string
	STT        stt.Config
	Limits     capture.Limits
	ChunkBytes int
}

type audioCapture struct {
	factory AdapterFactory
	cfg     AudioConfig
}

// EnableAudio lets the Analyzer score raw audio through recognizers created
// by factory.
func (a *Analyzer) EnableAudio(factory AdapterFactory, cfg AudioConfig) {
	if cfg.ChunkBytes <= 0 {
		cfg.ChunkBytes = DefaultChunkBytes
	}
	a.audio = &audioCapture{factory: factory, cfg: cfg}
}

// AnalyzeAudio streams audio from r through a capture session in the given
// language and scores what was heard. It returns capture.ErrNoSpeech when
// the capture produced no usable transcript.
func (a *Analyzer) AnalyzeAudio(ctx context.Context, r io.Reader, language string) (*Outcome, error) {
	if a.audio == nil {
		return nil, ErrAudioDisabled
	}
	lang, err := capture.ResolveLanguage(language)
	if err != nil {
		return nil, err
	}

	sttCfg := a.audio.cfg.STT
	sttCfg.LanguageCode = lang
	adapter, err := a.audio.factory(ctx, sttCfg)
	if err != nil {
		return nil, fmt.Errorf("open recognizer: %w", err)
	}

	session, err := capture.NewSession(adapter, capture.Config{
		Language: lang,
		Provider: a.audio.cfg.Provider,
		Limits:   a.audio.cfg.Limits,
	})
	if err != nil {
		adapter.Close()
		return nil, err
	}
	if err := session.Start(ctx); err != nil {
		adapter.Close()
		return nil, err
	}

	if err := a.stream(ctx, session, r); err != nil {
		return nil, err
	}

	res, err := session.Finish()
	if err != nil {
		return nil, err
	}
	return a.AnalyzeCapture(ctx, res)
}

func (a *Analyzer) stream(ctx context.Context, session *capture.Session, r io.Reader) error {
	buf := make([]byte, a.audio.cfg.ChunkBytes)
	for {
		if err := ctx.Err(); err != nil {
			session.Abort(capture.ReasonAborted)
			return err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if err := session.SendAudio(ctx, buf[:n]); err != nil {
				session.Abort(capture.ReasonAborted)
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			session.Abort(capture.ReasonAborted)
			return fmt.Errorf("read audio: %w", readErr)
		}
	}
}

// AnalyzeCapture scores a completed capture.
func (a *Analyzer) AnalyzeCapture(ctx context.Context, res *capture.Result) (*Outcome, error) {
	return a.Analyze(ctx, Request{
		Transcript:           res.Transcript,
		DurationSeconds:      res.DurationSeconds(),
		Language:             res.Language,
		Source:               models.SourceAudio,
		WPM:                  res.WPM,
		RecognizerConfidence: res.Confidence,
		SessionID:            res.SessionID,
	})
}
