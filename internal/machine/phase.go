package machine

import (
	"fmt"

	"github.com/tendbot/tendbot-core/internal/device"
)

// phase tracks one orthogonal region of Running.
//
// lines is nil until bind succeeds; after that the same handles are used
// for the life of the region.
type phase struct {
	id        PhaseID
	ids       lineIDs
	lines     *boundLines
	running   bool
	completed bool

	actuatorFor func(*device.Set) actuator
}

func newSprayingPhase() *phase {
	return &phase{
		id:  Spraying,
		ids: handshakeLines[Spraying],
		actuatorFor: func(set *device.Set) actuator {
			return valve{out: set.DigitalOutputs().Get(device.Spray)}
		},
	}
}

func newTendingPhase(duty uint32) *phase {
	return &phase{
		id:  Tending,
		ids: handshakeLines[Tending],
		actuatorFor: func(set *device.Set) actuator {
			return finger{pwm: set.PWMs().Get(device.Finger), duty: duty}
		},
	}
}

// bind fetches the phase's handles on first call; later calls do nothing.
// A missing registry kind or id panics with device.PreconditionViolation.
func (p *phase) bind(set *device.Set) {
	if p.lines != nil {
		return
	}
	outs := set.DigitalOutputs()
	p.lines = &boundLines{
		ready:    outs.Get(p.ids.ready),
		running:  outs.Get(p.ids.running),
		complete: outs.Get(p.ids.complete),
		actuator: p.actuatorFor(set),
	}
}

func (p *phase) isBound() bool { return p.lines != nil }

// run starts a new cycle. The completion flag of a previous cycle is
// cleared together with the COMPLETE line.
func (p *phase) run(set *device.Set, sink lineSink) error {
	if p.running {
		return fmt.Errorf("%w: %s already running", ErrEventRejected, p.id)
	}
	p.bind(set)
	if err := handshakeRun(p.ids, p.lines, sink); err != nil {
		return fmt.Errorf("run %s: %w", p.id, err)
	}
	p.running = true
	p.completed = false
	return nil
}

// complete ends the cycle and marks the phase complete.
func (p *phase) complete(sink lineSink) error {
	if !p.running {
		return fmt.Errorf("%w: %s", ErrPhaseNotRunning, p.id)
	}
	if err := handshakeComplete(p.ids, p.lines, sink); err != nil {
		return fmt.Errorf("complete %s: %w", p.id, err)
	}
	p.running = false
	p.markComplete()
	return nil
}

func (p *phase) markComplete() { p.completed = true }

func (p *phase) isComplete() bool { return p.completed }

func (p *phase) status() PhaseStatus {
	return PhaseStatus{Bound: p.isBound(), Running: p.running, Completed: p.completed}
}
