package store

import (
	"log/slog"
	"sync"
)

// State is the connection readiness of a store.
// Numeric values are part of the status API.
type State int32

const (
	StateDisconnected  State = 0
	StateConnected     State = 1
	StateConnecting    State = 2
	StateDisconnecting State = 3
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateConnecting:
		return "connecting"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// StateNames maps every readiness code to its name.
func StateNames() map[int]string {
	return map[int]string{
		int(StateDisconnected):  StateDisconnected.String(),
		int(StateConnected):     StateConnected.String(),
		int(StateConnecting):    StateConnecting.String(),
		int(StateDisconnecting): StateDisconnecting.String(),
	}
}

// StateSource exposes the current readiness.
type StateSource interface {
	ReadyState() State
}

// Tracker holds a store's readiness and logs disconnect and reconnect
// transitions.
type Tracker struct {
	mu           sync.Mutex
	state        State
	wasConnected bool
	logger       *slog.Logger
	driver       string
}

// NewTracker returns a tracker starting in StateDisconnected.
func NewTracker(driver string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{state: StateDisconnected, logger: logger, driver: driver}
}

// ReadyState returns the current state.
func (t *Tracker) ReadyState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Set moves to next and reports whether the state changed.
// While disconnecting, only a move to disconnected is accepted.
func (t *Tracker) Set(next State) bool {
	t.mu.Lock()
	prev := t.state
	if prev == next || (prev == StateDisconnecting && next != StateDisconnected) {
		t.mu.Unlock()
		return false
	}
	t.state = next
	reconnected := next == StateConnected && t.wasConnected
	if next == StateConnected {
		t.wasConnected = true
	}
	t.mu.Unlock()

	switch {
	case reconnected:
		t.logger.Info("store reconnected", "driver", t.driver)
	case next == StateConnected:
		t.logger.Info("store connected", "driver", t.driver)
	case next == StateDisconnected && prev == StateConnected:
		t.logger.Warn("store disconnected, waiting for reconnect", "driver", t.driver)
	}
	return true
}
