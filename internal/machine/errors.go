package machine

import (
	"errors"
	"fmt"
)

// Errors returned by Controller operations. All of them are
// ErrRuntimeState: the caller can recover by calling Stop.
var (
	// ErrRuntimeState is the category of caller-recoverable failures.
	ErrRuntimeState = errors.New("machine: runtime state error")

	// ErrNotReady is returned by Start while the readiness flag is false.
	ErrNotReady = fmt.Errorf("%w: machine not ready", ErrRuntimeState)

	// ErrMissingDevice is returned by Start when a spraying device is absent,
	// and by RunTending when a tending device is absent.
	ErrMissingDevice = fmt.Errorf("%w: required device missing", ErrRuntimeState)

	// ErrEventRejected is returned for an event the current state does not handle.
	ErrEventRejected = fmt.Errorf("%w: event rejected", ErrRuntimeState)

	// ErrTerminated is returned for any event other than Stop after termination.
	ErrTerminated = fmt.Errorf("%w: machine terminated", ErrEventRejected)

	// ErrPhaseNotRunning is returned when completion is reported for an idle phase.
	ErrPhaseNotRunning = fmt.Errorf("%w: phase not running", ErrEventRejected)
)
