package machine

import "fmt"

// State is the top-level machine state.
type State int

const (
	Idle State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event drives the state machine.
type Event int

const (
	EventStart Event = iota
	EventStop
	EventRunSpraying
	EventRunTending
	EventTaskComplete
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	case EventRunSpraying:
		return "run_spraying"
	case EventRunTending:
		return "run_tending"
	case EventTaskComplete:
		return "task_complete"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// PhaseID names one orthogonal region of Running. The zero value means
// "no phase" and is used for top-level transitions.
type PhaseID int

const (
	NoPhase PhaseID = iota
	Spraying
	Tending
)

func (p PhaseID) String() string {
	switch p {
	case NoPhase:
		return ""
	case Spraying:
		return "spraying"
	case Tending:
		return "tending"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p PhaseID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePhase converts "spraying" or "tending" to a PhaseID.
func ParsePhase(s string) (PhaseID, error) {
	switch s {
	case "spraying":
		return Spraying, nil
	case "tending":
		return Tending, nil
	default:
		return NoPhase, fmt.Errorf("unknown phase %q", s)
	}
}
