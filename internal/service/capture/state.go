package capture

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a capture session.
type State int

const (
	// StateIdle - Session created, recognizer not started yet.
	StateIdle State = iota
	// StateListening - Audio is flowing and results are accumulated.
	StateListening
	// StateCompleted - Capture finished with a usable transcript.
	StateCompleted
	// StateDropped - Capture abandoned. Nothing it heard is scored.
	StateDropped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateListening:
		return "LISTENING"
	case StateCompleted:
		return "COMPLETED"
	case StateDropped:
		return "DROPPED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (COMPLETED or DROPPED).
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateDropped
}

// Errors for invalid state transitions.
var (
	ErrNotListening   = errors.New("capture session is not listening")
	ErrAlreadyStarted = errors.New("capture session already started")
)

// Lifecycle is the state machine for a single capture session.
// Thread-safe for concurrent access.
//
//	IDLE → LISTENING → COMPLETED
//	          │
//	          └── Drop() ──→ DROPPED
type Lifecycle struct {
	mu         sync.RWMutex
	state      State
	dropReason string
}

// NewLifecycle creates a lifecycle in IDLE state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateIdle}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// DropReason returns why the session was dropped, or "" if it was not.
func (l *Lifecycle) DropReason() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dropReason
}

// IsListening returns true while results may be accepted.
func (l *Lifecycle) IsListening() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateListening
}

// Listen transitions IDLE to LISTENING.
func (l *Lifecycle) Listen() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateIdle {
		return ErrAlreadyStarted
	}
	l.state = StateListening
	return nil
}

// Complete transitions LISTENING to COMPLETED.
func (l *Lifecycle) Complete() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateListening {
		return ErrNotListening
	}
	l.state = StateCompleted
	return nil
}

// Drop abandons the session from any non-terminal state.
// Returns true if the session was dropped, false if already terminal.
func (l *Lifecycle) Drop(reason string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateDropped
	l.dropReason = reason
	return true
}
