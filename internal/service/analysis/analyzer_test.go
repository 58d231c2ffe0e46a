package analysis

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"ai-speech-confidence-service/internal/history"
	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/scoring"
	"ai-speech-confidence-service/internal/service/capture"
	"ai-speech-confidence-service/internal/service/stt"
	"ai-speech-confidence-service/internal/service/stt/mock"
)

type fakeHistory struct {
	mu      sync.Mutex
	records []history.Record
	err     error
}

func (h *fakeHistory) Add(_ context.Context, rec history.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.ScoreCompleted
	err    error
}

func (p *fakePublisher) PublishScore(_ context.Context, ev models.ScoreCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fakeHub struct {
	events []any
}

func (h *fakeHub) Broadcast(event any) bool {
	h.events = append(h.events, event)
	return true
}

type fixture struct {
	analyzer  *Analyzer
	history   *fakeHistory
	publisher *fakePublisher
	hub       *fakeHub
	spans     *tracetest.SpanRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		history:   &fakeHistory{},
		publisher: &fakePublisher{},
		hub:       &fakeHub{},
		spans:     tracetest.NewSpanRecorder(),
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	f.analyzer = New(Config{
		History:   f.history,
		Publisher: f.publisher,
		Live:      f.hub,
		Tracer:    tp.Tracer("test"),
	})
	return f
}

func TestAnalyze_RecordsEverywhere(t *testing.T) {
	f := newFixture(t)

	out, err := f.analyzer.Analyze(context.Background(), Request{
		Transcript:      "I is going to the store. Yesterday I go there with my friend.",
		DurationSeconds: 6,
		Source:          models.SourceHTTP,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	res := out.Result()
	if res == nil || len(res.GrammarErrors) == 0 {
		t.Fatalf("expected grammar errors, got %+v", res)
	}
	if out.Event.EventType != models.EventTypeScoreCompleted || out.Event.EventID == "" {
		t.Errorf("unexpected event identity %+v", out.Event)
	}
	if out.Event.Language != capture.DefaultLanguage {
		t.Errorf("expected default language, got %q", out.Event.Language)
	}

	if len(f.history.records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(f.history.records))
	}
	rec := f.history.records[0]
	if rec.ID != out.Event.EventID {
		t.Errorf("record id %q != event id %q", rec.ID, out.Event.EventID)
	}
	if rec.WPM != int(math.Round(res.Metrics.WordsPerMinute)) {
		t.Errorf("record wpm = %d, engine wpm = %v", rec.WPM, res.Metrics.WordsPerMinute)
	}
	if rec.Confidence != nil {
		t.Errorf("typed transcript should have nil confidence")
	}
	if rec.GrammarAccuracy != res.GrammarAccuracy || rec.ConfidenceLevel != res.ConfidenceLevel {
		t.Errorf("record scores differ from result")
	}

	if len(f.publisher.events) != 1 || len(f.hub.events) != 1 {
		t.Errorf("expected one publish and one broadcast, got %d/%d", len(f.publisher.events), len(f.hub.events))
	}

	spans := f.spans.Ended()
	if len(spans) != 1 || spans[0].Name() != "scoring.Score" {
		t.Fatalf("expected one scoring span, got %d", len(spans))
	}
	found := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "score.grammar_accuracy" && attr.Value.AsInt64() == int64(res.GrammarAccuracy) {
			found = true
		}
	}
	if !found {
		t.Error("expected score.grammar_accuracy attribute on span")
	}
}

func TestAnalyze_EmptyInputRecordsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.analyzer.Analyze(context.Background(), Request{Transcript: "   \n\t"})
	if !errors.Is(err, scoring.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if len(f.history.records) != 0 || len(f.publisher.events) != 0 || len(f.hub.events) != 0 {
		t.Error("empty input must not be recorded")
	}
}

func TestAnalyze_SinkFailuresAreNotFatal(t *testing.T) {
	f := newFixture(t)
	f.history.err = errors.New("disk full")
	f.publisher.err = errors.New("broker down")

	if _, err := f.analyzer.Analyze(context.Background(), Request{Transcript: "We shipped the release on time."}); err != nil {
		t.Fatalf("expected sink failures to be logged only, got %v", err)
	}
	if len(f.hub.events) != 1 {
		t.Error("expected broadcast despite sink failures")
	}
}

func TestAnalyze_NoSinks(t *testing.T) {
	a := New(Config{})
	out, err := a.Analyze(context.Background(), Request{Transcript: "Hello there."})
	if err != nil {
		t.Fatal(err)
	}
	if out.Event.Source != models.SourceHTTP {
		t.Errorf("expected default source, got %q", out.Event.Source)
	}
}

func TestHandleTranscriptFinal(t *testing.T) {
	f := newFixture(t)

	err := f.analyzer.HandleTranscriptFinal(context.Background(), models.TranscriptFinal{
		EventType:     models.EventTypeTranscriptFinal,
		InteractionID: "int-1",
		TenantID:      "tenant-1",
		SegmentID:     "int-1-seg-1",
		Text:          "I would like to discuss about the plan.",
		Confidence:    ptr(0.88),
		Language:      "ta-IN",
		DurationMs:    3000,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	ev := f.publisher.events[0]
	if ev.Source != models.SourceKafka || ev.InteractionID != "int-1" || ev.SegmentID != "int-1-seg-1" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.RecognizerConfidence == nil || *ev.RecognizerConfidence != 0.88 {
		t.Errorf("expected recognizer confidence 0.88")
	}
	if ev.Language != "ta-IN" || ev.Result.Metrics.DurationSeconds != 3 {
		t.Errorf("unexpected language/duration %q/%v", ev.Language, ev.Result.Metrics.DurationSeconds)
	}

	err = f.analyzer.HandleTranscriptFinal(context.Background(), models.TranscriptFinal{Text: ""})
	if !errors.Is(err, scoring.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestHandleTranscriptFinal_RecognizerConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence *float64
		want       *float64
	}{
		{"reported", ptr(0.5), ptr(0.5)},
		{"reported as zero", ptr(0), ptr(0)},
		{"not reported", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.analyzer.HandleTranscriptFinal(context.Background(), models.TranscriptFinal{
				InteractionID: "int-2",
				SegmentID:     "int-2-seg-1",
				Text:          "We shipped the release on time.",
				Confidence:    tt.confidence,
			})
			if err != nil {
				t.Fatalf("handle: %v", err)
			}

			got := f.history.records[0].Confidence
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected nil confidence, got %v", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("expected confidence %v, got %v", *tt.want, got)
			}
		})
	}
}

func ptr(v float64) *float64 { return &v }

func TestCorrections(t *testing.T) {
	res := &scoring.ScoreResult{GrammarErrors: []scoring.Issue{
		{Category: scoring.CategorySubjectVerb, Detail: "i is"},
		{Category: scoring.CategoryRepeatedWord, Detail: "the the"},
	}}

	got := Corrections(res)
	if len(got) != 2 {
		t.Fatalf("expected 2 corrections, got %d", len(got))
	}
	if got[0].Suggestion == "" {
		t.Error("expected a suggestion for subject-verb agreement")
	}
	if got[1].Suggestion != "" {
		t.Errorf("expected no suggestion for repeated word, got %q", got[1].Suggestion)
	}

	if empty := Corrections(&scoring.ScoreResult{}); empty == nil || len(empty) != 0 {
		t.Error("expected an empty, non-nil slice")
	}
}

func TestOutcome_Response(t *testing.T) {
	f := newFixture(t)
	out, err := f.analyzer.Analyze(context.Background(), Request{Transcript: "She go to work every day."})
	if err != nil {
		t.Fatal(err)
	}

	resp := out.Response()
	if resp.ID != out.Event.EventID || resp.Result != out.Result() {
		t.Error("response does not mirror the outcome")
	}
	if len(resp.Corrections) != len(resp.Result.GrammarErrors) {
		t.Errorf("corrections %d != grammar errors %d", len(resp.Corrections), len(resp.Result.GrammarErrors))
	}
}

func scriptedFactory(utterances ...mock.SimulatedUtterance) (AdapterFactory, *stt.Config) {
	var seen stt.Config
	return func(_ context.Context, cfg stt.Config) (stt.Adapter, error) {
		seen = cfg
		return mock.NewWithScript(0, utterances...), nil
	}, &seen
}

func TestAnalyzeAudio(t *testing.T) {
	f := newFixture(t)
	factory, seen := scriptedFactory(mock.SimulatedUtterance{
		Final:      "I led the team and we shipped the product on time",
		Confidence: 0.9,
	})
	f.analyzer.EnableAudio(factory, AudioConfig{Provider: "mock", STT: stt.DefaultConfig(), Limits: capture.DefaultLimits()})

	out, err := f.analyzer.AnalyzeAudio(context.Background(), bytes.NewReader(make([]byte, 3200)), "hi-IN")
	if err != nil {
		t.Fatalf("analyze audio: %v", err)
	}

	if seen.LanguageCode != "hi-IN" {
		t.Errorf("recognizer language = %q, want hi-IN", seen.LanguageCode)
	}
	if out.Event.Source != models.SourceAudio || out.Event.SessionID == "" {
		t.Errorf("unexpected event %+v", out.Event)
	}
	if out.Event.Transcript != "I led the team and we shipped the product on time" {
		t.Errorf("transcript = %q", out.Event.Transcript)
	}
	if out.Record.Confidence == nil || *out.Record.Confidence != 0.9 {
		t.Error("expected recognizer confidence on the record")
	}
	if out.Record.WPM <= 0 {
		t.Errorf("expected positive wpm, got %d", out.Record.WPM)
	}
}

func TestAnalyzeAudio_NoSpeech(t *testing.T) {
	f := newFixture(t)
	factory, _ := scriptedFactory(mock.SimulatedUtterance{Final: ""})
	f.analyzer.EnableAudio(factory, AudioConfig{Provider: "mock"})

	_, err := f.analyzer.AnalyzeAudio(context.Background(), bytes.NewReader(make([]byte, 1600)), "")
	if !errors.Is(err, capture.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
	if len(f.history.records) != 0 {
		t.Error("no-speech capture must not be recorded")
	}
}

func TestAnalyzeAudio_LimitExceeded(t *testing.T) {
	f := newFixture(t)
	factory, _ := scriptedFactory(mock.SimulatedUtterance{Final: "too long", Confidence: 0.9})
	f.analyzer.EnableAudio(factory, AudioConfig{Provider: "mock", Limits: capture.Limits{MaxAudioBytes: 2000}})

	_, err := f.analyzer.AnalyzeAudio(context.Background(), bytes.NewReader(make([]byte, 4000)), "en-US")
	if !errors.Is(err, capture.ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}

func TestAnalyzeAudio_Errors(t *testing.T) {
	a := New(Config{})
	if _, err := a.AnalyzeAudio(context.Background(), bytes.NewReader(nil), "en-US"); !errors.Is(err, ErrAudioDisabled) {
		t.Errorf("expected ErrAudioDisabled, got %v", err)
	}

	factory, _ := scriptedFactory()
	a.EnableAudio(factory, AudioConfig{})
	_, err := a.AnalyzeAudio(context.Background(), bytes.NewReader(nil), "fr-FR")
	var langErr *capture.UnsupportedLanguageError
	if !errors.As(err, &langErr) {
		t.Errorf("expected UnsupportedLanguageError, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.AnalyzeAudio(ctx, bytes.NewReader(make([]byte, 10)), "en-US"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
