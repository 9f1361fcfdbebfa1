// Package machine implements the tendbot life-cycle state machine.
//
// The Controller is an explicit state (Idle, Running, Terminated) plus a
// transition function. Running is a composite state holding two
// orthogonal phase regions, spraying and tending. Each phase binds its
// handshake lines and actuator from the device Set the first time it
// runs, then drives the level-based PLC handshake:
//
//	run:      READY on, COMPLETE off, RUNNING on, actuator on
//	complete: actuator off, RUNNING off, COMPLETE on
//
// A run whose RUNNING line or actuator write fails drops RUNNING and
// restores COMPLETE before returning the error.
//
// # Transitions
//
//	Idle     --Start (ready, spraying devices)--> Running
//	Idle     --Stop-->                           Terminated
//	Running  --RunSpraying / RunTending-->       Running (phase runs)
//	Running  --TaskComplete(phase)-->            Running (phase completes)
//	Running  --Stop-->                           Terminated
//	Terminated is terminal; Stop there is a no-op.
//
// Stop is unconditional and performs no line cleanup: outputs keep the
// level they were last driven to.
//
// # Concurrency
//
// Events are dispatched run-to-completion under one mutex. Observers are
// called while the mutex is held and must not call back into the
// Controller; everything they need is in the Transition or LineChange.
package machine
