package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"

	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/observability/metrics"
	"ai-speech-confidence-service/internal/schema"
	"ai-speech-confidence-service/internal/scoring"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func scoreEvent(t *testing.T) models.ScoreCompleted {
	t.Helper()
	res, err := scoring.Score("I is going to the market yesterday I go there", 5)
	if err != nil {
		t.Fatal(err)
	}
	return models.ScoreCompleted{
		EventType:  models.EventTypeScoreCompleted,
		EventID:    "evt-1",
		Source:     models.SourceHTTP,
		Timestamp:  1700000000000,
		Language:   "en-US",
		Transcript: "I is going to the market yesterday I go there",
		Result:     res,
	}
}

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg, nil)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.Enabled() {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
			if err := p.Close(); err != nil {
				t.Errorf("close: %v", err)
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	p := New(&Config{
		Enabled:   false,
		Brokers:   []string{"localhost:9092"},
		Topic:     "test.scores",
		Principal: "test-principal",
	}, nil)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topic != "test.scores" {
		t.Errorf("expected topic 'test.scores', got %s", p.topic)
	}
}

func TestPublishScore_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false}, schema.MustNew())
	if err := p.PublishScore(context.Background(), scoreEvent(t)); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublishScore_WritesMessage(t *testing.T) {
	w := &fakeWriter{}
	p := New(&Config{Enabled: false, Topic: "speech.score.completed", Principal: "svc"}, schema.MustNew())
	p.writer, p.enabled = w, true

	ev := scoreEvent(t)
	ev.SessionID = "sess-9"
	if err := p.PublishScore(context.Background(), ev); err != nil {
		t.Fatalf("PublishScore: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "sess-9" {
		t.Errorf("expected session key, got %q", msg.Key)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != models.EventTypeScoreCompleted {
		t.Errorf("unexpected headers %+v", msg.Headers)
	}

	var decoded models.ScoreCompleted
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Result.GrammarAccuracy != ev.Result.GrammarAccuracy {
		t.Errorf("payload grammar = %d, want %d", decoded.Result.GrammarAccuracy, ev.Result.GrammarAccuracy)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("expected writer to be closed, err=%v", err)
	}
}

func TestPublishScore_KeyPreference(t *testing.T) {
	tests := []struct {
		name          string
		interactionID string
		sessionID     string
		want          string
	}{
		{"interaction wins", "int-1", "sess-1", "int-1"},
		{"session next", "", "sess-1", "sess-1"},
		{"event id last", "", "", "evt-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{}
			p := &Publisher{writer: w, enabled: true, topic: "t", metrics: metrics.DefaultMetrics}

			ev := scoreEvent(t)
			ev.InteractionID, ev.SessionID = tt.interactionID, tt.sessionID
			if err := p.PublishScore(context.Background(), ev); err != nil {
				t.Fatal(err)
			}
			if got := string(w.msgs[0].Key); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublishScore_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := New(&Config{Enabled: false, Topic: "t"}, nil)
	p.writer, p.enabled = w, true

	if err := p.PublishScore(context.Background(), scoreEvent(t)); err == nil {
		t.Error("expected write error to be returned")
	}
}

func TestPublishScore_RejectsInvalidEvent(t *testing.T) {
	w := &fakeWriter{}
	p := New(&Config{Enabled: false, Topic: "t"}, schema.MustNew())
	p.writer, p.enabled = w, true

	ev := scoreEvent(t)
	ev.Language = ""
	if err := p.PublishScore(context.Background(), ev); !errors.Is(err, schema.ErrInvalidEvent) {
		t.Errorf("expected schema error, got %v", err)
	}
	if len(w.msgs) != 0 {
		t.Error("invalid event must not be written")
	}
}
