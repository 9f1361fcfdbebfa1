package machine

import (
	"time"

	"github.com/tendbot/tendbot-core/internal/device"
)

// Logger defines the logging interface used by the Controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// PhaseStatus is the observable state of one phase region.
type PhaseStatus struct {
	Bound     bool `json:"bound"`
	Running   bool `json:"running"`
	Completed bool `json:"completed"`
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State    State       `json:"state"`
	Ready    bool        `json:"ready"`
	Spraying PhaseStatus `json:"spraying"`
	Tending  PhaseStatus `json:"tending"`
}

// Transition describes one accepted event.
//
// For top-level changes From and To differ and Phase is NoPhase. Phase
// events (run, complete) have From == To == Running and name the phase.
type Transition struct {
	Event    Event     `json:"event"`
	From     State     `json:"from"`
	To       State     `json:"to"`
	Phase    PhaseID   `json:"phase,omitempty"`
	At       time.Time `json:"at"`
	Snapshot Snapshot  `json:"snapshot"`
}

// LineChange describes one successful write to a handshake line or actuator.
// Duty is set for the finger PWM channel only.
type LineChange struct {
	ID       device.ID `json:"id"`
	Asserted bool      `json:"asserted"`
	Duty     uint32    `json:"duty,omitempty"`
	Phase    PhaseID   `json:"phase"`
	At       time.Time `json:"at"`
}

// Observer receives controller notifications. Calls happen while the
// controller lock is held; implementations must return quickly and must
// not call Controller methods.
type Observer interface {
	OnTransition(Transition)
	OnLineChange(LineChange)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Transition func(Transition)
	LineChange func(LineChange)
}

// OnTransition implements Observer.
func (f ObserverFuncs) OnTransition(t Transition) {
	if f.Transition != nil {
		f.Transition(t)
	}
}

// OnLineChange implements Observer.
func (f ObserverFuncs) OnLineChange(lc LineChange) {
	if f.LineChange != nil {
		f.LineChange(lc)
	}
}
