// Package mock provides a mock STT adapter for running without cloud
// credentials. It replays scripted utterances: one partial per audio frame,
// then exactly one final followed by an end-of-utterance signal.
package mock

import (
	"context"
	"errors"
	"sync"
	"time"

	"ai-speech-confidence-service/internal/service/stt"
)

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("mock stt: session already started")

// SimulatedUtterance represents a mock utterance with progressive transcripts.
type SimulatedUtterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultUtterances are sample practice answers, cycled across sessions.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:   []string{"I think", "I think my biggest", "I think my biggest strength is"},
		Final:      "I think my biggest strength is staying calm when a project changes direction",
		Confidence: 0.93,
	},
	{
		Partials:   []string{"Last year", "Last year I led", "Last year I led a small team"},
		Final:      "Last year I led a small team that rebuilt our billing system in three months",
		Confidence: 0.91,
	},
	{
		Partials:   []string{"Um so", "Um so basically", "Um so basically I like"},
		Final:      "Um so basically I like working with people you know and I mean solving problems",
		Confidence: 0.84,
	},
	{
		Partials:   []string{"When I", "When I disagree", "When I disagree with a colleague"},
		Final:      "When I disagree with a colleague I ask questions first and then share my view",
		Confidence: 0.95,
	},
	{
		Partials:   []string{"Thank you"},
		Final:      "Thank you for the opportunity to speak with you today",
		Confidence: 0.97,
	},
}

// DefaultDelay is the simulated recognition latency per result.
const DefaultDelay = 50 * time.Millisecond

// Adapter implements stt.Adapter with scripted responses. Results are
// delivered in order on a single goroutine.
type Adapter struct {
	mu           sync.Mutex
	cb           stt.Callback
	script       []SimulatedUtterance
	current      int
	partialIndex int
	finalSent    bool
	audioFrames  int
	closed       bool
	delay        time.Duration

	queue chan func()
	done  chan struct{}
}

var (
	utteranceCounter int
	counterMu        sync.Mutex
)

// New creates a mock adapter that plays the next default utterance.
func New() *Adapter {
	counterMu.Lock()
	idx := utteranceCounter % len(DefaultUtterances)
	utteranceCounter++
	counterMu.Unlock()

	return NewWithScript(DefaultDelay, DefaultUtterances[idx])
}

// NewWithScript creates a mock adapter that plays utterances in order, one
// after another, with the given per-result delay.
func NewWithScript(delay time.Duration, utterances ...SimulatedUtterance) *Adapter {
	return &Adapter{script: utterances, delay: delay}
}

// Start begins a mock transcription session.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cb != nil {
		return ErrAlreadyStarted
	}
	a.cb = cb
	a.queue = make(chan func(), 64)
	a.done = make(chan struct{})
	go a.deliver()
	return nil
}

func (a *Adapter) deliver() {
	defer close(a.done)
	for fn := range a.queue {
		if a.delay > 0 {
			time.Sleep(a.delay)
		}
		fn()
	}
}

// SendAudio emits the next partial for the current utterance, or its final
// once every partial has been sent.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.cb == nil || len(a.script) == 0 {
		return nil
	}
	a.audioFrames++

	cb := a.cb
	utt := a.script[a.current]
	switch {
	case a.partialIndex < len(utt.Partials):
		text := utt.Partials[a.partialIndex]
		a.partialIndex++
		a.queue <- func() { cb.OnPartial(text) }

	case !a.finalSent:
		a.finalSent = true
		a.queue <- func() {
			cb.OnFinal(utt.Final, utt.Confidence)
			cb.OnEndOfUtterance()
		}
		if a.current+1 < len(a.script) {
			a.current++
			a.partialIndex = 0
			a.finalSent = false
		}
	}
	return nil
}

// Close ends the mock session. If audio was received but the current
// utterance has not produced its final yet, the final is sent now. Close
// returns once every queued result has been delivered.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	if a.cb == nil {
		a.mu.Unlock()
		return nil
	}

	if !a.finalSent && a.audioFrames > 0 && len(a.script) > 0 {
		a.finalSent = true
		cb, utt := a.cb, a.script[a.current]
		a.queue <- func() { cb.OnFinal(utt.Final, utt.Confidence) }
	}
	close(a.queue)
	done := a.done
	a.mu.Unlock()

	<-done
	return nil
}
