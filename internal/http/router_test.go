package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ai-speech-confidence-service/internal/app"
	"ai-speech-confidence-service/internal/config"
	"ai-speech-confidence-service/internal/history"
	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/service/analysis"
)

func newTestApp(t *testing.T) *app.Application {
	t.Helper()
	cfg := config.Load()
	cfg.Kafka.Enabled = false
	cfg.STT.Provider = "mock"
	cfg.History.DBPath = filepath.Join(t.TempDir(), "history.db")

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { a.Shutdown() })
	return a
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e.Error
}

func TestHealthEndpoints(t *testing.T) {
	router := NewRouter(newTestApp(t))

	if rec := do(t, router, http.MethodGet, "/v1/liveness", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("liveness = %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodGet, "/v1/readiness", ""); rec.Code != http.StatusOK {
		t.Errorf("readiness = %d", rec.Code)
	}
}

func TestReadiness_Unavailable(t *testing.T) {
	a := newTestApp(t)
	router := NewRouter(a)
	a.History.Close()

	if rec := do(t, router, http.MethodGet, "/v1/readiness", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness = %d, want 503", rec.Code)
	}
}

func TestScore(t *testing.T) {
	a := newTestApp(t)
	router := NewRouter(a)

	rec := do(t, router, http.MethodPost, "/v1/score",
		`{"transcript":"I is excited to discuss about this role.","durationSeconds":5,"language":"en-US"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var resp analysis.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Source != models.SourceHTTP || resp.Result == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Corrections) == 0 || resp.Corrections[0].Suggestion == "" {
		t.Errorf("expected corrections with suggestions, got %+v", resp.Corrections)
	}

	n, _ := a.History.Count(context.Background())
	if n != 1 {
		t.Errorf("history count = %d, want 1", n)
	}
}

func TestScore_BadRequests(t *testing.T) {
	router := NewRouter(newTestApp(t))

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty transcript", `{"transcript":"   "}`, "no speech to analyze"},
		{"missing transcript", `{}`, "no speech to analyze"},
		{"invalid json", `{"transcript":`, "invalid JSON body"},
		{"negative duration", `{"transcript":"Hello.","durationSeconds":-2}`, "DurationSeconds"},
		{"unsupported language", `{"transcript":"Hello.","language":"fr-FR"}`, "Language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/v1/score", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decodeError(t, rec); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestScoreAudio(t *testing.T) {
	router := NewRouter(newTestApp(t))

	req := httptest.NewRequest(http.MethodPost, "/v1/score/audio?language=ta-IN", bytes.NewReader(make([]byte, 3200)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp analysis.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Source != models.SourceAudio || resp.Language != "ta-IN" || resp.Transcript == "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.RecognizerConfidence == nil {
		t.Error("expected recognizer confidence from the capture")
	}
}

func TestScoreAudio_Errors(t *testing.T) {
	router := NewRouter(newTestApp(t))

	rec := do(t, router, http.MethodPost, "/v1/score/audio?language=fr-FR", "abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported language status = %d, want 400", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/v1/score/audio", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty audio status = %d, want 422", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "We couldn't hear you clearly" {
		t.Errorf("error = %q", msg)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	a := newTestApp(t)
	router := NewRouter(a)

	for _, text := range []string{"First answer here.", "Second answer here.", "Third answer here."} {
		if rec := do(t, router, http.MethodPost, "/v1/score", `{"transcript":"`+text+`","durationSeconds":2}`); rec.Code != http.StatusOK {
			t.Fatalf("score status = %d", rec.Code)
		}
	}

	rec := do(t, router, http.MethodGet, "/v1/history?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var recs []history.Record
	json.NewDecoder(rec.Body).Decode(&recs)
	if len(recs) != 2 || recs[0].Transcript != "Third answer here." {
		t.Errorf("expected the two newest records first, got %+v", recs)
	}

	rec = do(t, router, http.MethodGet, "/v1/history/trend", "")
	var points []TrendPoint
	json.NewDecoder(rec.Body).Decode(&points)
	if len(points) != 3 {
		t.Fatalf("expected 3 trend points, got %d", len(points))
	}
	if points[2].ID != recs[0].ID {
		t.Errorf("expected the newest record last in the trend")
	}

	if rec := do(t, router, http.MethodGet, "/v1/history?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}

	if rec := do(t, router, http.MethodDelete, "/v1/history", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = do(t, router, http.MethodGet, "/v1/history", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty list after clear, got %s", rec.Body.String())
	}
}

func TestTrendPoints(t *testing.T) {
	conf := 0.876
	points := trendPoints([]history.Record{
		{ID: "a", Confidence: &conf, ConfidenceLevel: 70},
		{ID: "b", ConfidenceLevel: 55},
	})

	if points[0].Confidence == nil || *points[0].Confidence != 88 {
		t.Errorf("expected 88%%, got %v", points[0].Confidence)
	}
	if points[1].Confidence != nil {
		t.Errorf("expected nil confidence for typed transcript")
	}
}

func TestLiveFeed(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = a.Hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	srv := httptest.NewServer(NewRouter(a))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/scores/live", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for a.Hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(`{"transcript":"We grew revenue last year."}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.ScoreCompleted
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.EventType != models.EventTypeScoreCompleted || ev.Transcript != "We grew revenue last year." {
		t.Errorf("unexpected event %+v", ev)
	}
}
