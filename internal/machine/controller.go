package machine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tendbot/tendbot-core/internal/device"
)

// Options configures a Controller.
type Options struct {
	// Devices is the bring-up device set. Required.
	Devices *device.Set

	// TendingDutyCycle is the finger duty while tending runs.
	TendingDutyCycle uint32

	// Ready is the initial readiness flag. Defaults to false.
	Ready bool

	Logger    Logger
	Observers []Observer

	// Now is the clock used for notification timestamps. Defaults to time.Now.
	Now func() time.Time
}

// runningRegion is the composite part of Running. It exists only while
// the machine is Running.
type runningRegion struct {
	spraying *phase
	tending  *phase
}

func (r *runningRegion) phase(id PhaseID) *phase {
	switch id {
	case Spraying:
		return r.spraying
	case Tending:
		return r.tending
	default:
		return nil
	}
}

// Controller is the top-level machine state machine.
//
// Thread Safety:
//   - All methods are safe for concurrent use; events are processed one
//     at a time, each to completion.
type Controller struct {
	mu          sync.Mutex
	devices     *device.Set
	tendingDuty uint32
	state       State
	ready       bool
	region      *runningRegion
	observers   []Observer
	logger      Logger
	now         func() time.Time
}

// New creates a Controller in Idle.
func New(opts Options) (*Controller, error) {
	if opts.Devices == nil {
		return nil, errors.New("machine: device set is required")
	}
	c := &Controller{
		devices:     opts.Devices,
		tendingDuty: opts.TendingDutyCycle,
		state:       Idle,
		ready:       opts.Ready,
		observers:   append([]Observer(nil), opts.Observers...),
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// AddObserver registers o for subsequent notifications.
func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Start moves Idle to Running when the machine is ready and the spraying
// devices are present. Tending devices are checked when tending first runs.
// On failure the machine stays Idle.
func (c *Controller) Start() error { return c.dispatch(EventStart, NoPhase) }

// Stop moves Idle or Running to Terminated. It is a no-op once terminated.
func (c *Controller) Stop() error { return c.dispatch(EventStop, NoPhase) }

// RunSpraying starts a spraying cycle.
func (c *Controller) RunSpraying() error { return c.dispatch(EventRunSpraying, Spraying) }

// RunTending starts a tending cycle.
func (c *Controller) RunTending() error { return c.dispatch(EventRunTending, Tending) }

// TaskCompleted reports that the running cycle of phase finished.
func (c *Controller) TaskCompleted(phase PhaseID) error {
	return c.dispatch(EventTaskComplete, phase)
}

// SetReady arms or disarms the Start guard.
func (c *Controller) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready != ready {
		c.logger.Info("readiness changed", "ready", ready)
	}
	c.ready = ready
}

// IsReady reports the readiness flag.
func (c *Controller) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// IsRunning reports whether the machine is in Running.
func (c *Controller) IsRunning() bool { return c.State() == Running }

// IsTerminated reports whether the machine is in Terminated.
func (c *Controller) IsTerminated() bool { return c.State() == Terminated }

// IsSprayingCompleted reports the spraying completion flag of the
// current run. It is false outside Running.
func (c *Controller) IsSprayingCompleted() bool { return c.phaseCompleted(Spraying) }

// IsTendingCompleted reports the tending completion flag of the current run.
func (c *Controller) IsTendingCompleted() bool { return c.phaseCompleted(Tending) }

func (c *Controller) phaseCompleted(id PhaseID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.region == nil {
		return false
	}
	return c.region.phase(id).isComplete()
}

// State returns the current top-level state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{State: c.state, Ready: c.ready}
	if c.region != nil {
		s.Spraying = c.region.spraying.status()
		s.Tending = c.region.tending.status()
	}
	return s
}

// dispatch is the transition function.
func (c *Controller) dispatch(ev Event, ph PhaseID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Terminated:
		if ev == EventStop {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrTerminated, ev)

	case Idle:
		switch ev {
		case EventStart:
			if err := c.checkStartLocked(); err != nil {
				c.logger.Warn("start rejected", "error", err)
				return err
			}
			c.region = &runningRegion{
				spraying: newSprayingPhase(),
				tending:  newTendingPhase(c.tendingDuty),
			}
			c.transitionLocked(ev, Running, NoPhase)
			return nil
		case EventStop:
			c.transitionLocked(ev, Terminated, NoPhase)
			return nil
		}

	case Running:
		switch ev {
		case EventRunSpraying, EventRunTending:
			return c.runPhaseLocked(ev, ph)
		case EventTaskComplete:
			return c.completePhaseLocked(ph)
		case EventStop:
			c.region = nil
			c.transitionLocked(ev, Terminated, NoPhase)
			return nil
		}
	}

	return fmt.Errorf("%w: %s in %s", ErrEventRejected, ev, c.state)
}

func (c *Controller) checkStartLocked() error {
	if !c.ready {
		return ErrNotReady
	}
	return checkDevices(c.devices, Spraying)
}

func (c *Controller) runPhaseLocked(ev Event, id PhaseID) error {
	p := c.region.phase(id)
	if !p.isBound() {
		if err := checkDevices(c.devices, id); err != nil {
			c.logger.Warn("phase run rejected", "phase", id.String(), "error", err)
			return err
		}
	}
	if err := p.run(c.devices, c.lineSinkLocked(id)); err != nil {
		c.logger.Error("phase run failed", "phase", id.String(), "error", err)
		return err
	}
	c.transitionLocked(ev, Running, id)
	return nil
}

func (c *Controller) completePhaseLocked(id PhaseID) error {
	p := c.region.phase(id)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrEventRejected, id)
	}
	if err := p.complete(c.lineSinkLocked(id)); err != nil {
		if !errors.Is(err, ErrPhaseNotRunning) {
			c.logger.Error("phase completion failed", "phase", id.String(), "error", err)
		}
		return err
	}
	c.transitionLocked(EventTaskComplete, Running, id)
	return nil
}

func (c *Controller) transitionLocked(ev Event, to State, ph PhaseID) {
	from := c.state
	c.state = to
	t := Transition{
		Event:    ev,
		From:     from,
		To:       to,
		Phase:    ph,
		At:       c.now(),
		Snapshot: c.snapshotLocked(),
	}
	c.logger.Info("transition", "event", ev.String(), "from", from.String(), "to", to.String(), "phase", ph.String())
	for _, o := range c.observers {
		o.OnTransition(t)
	}
}

func (c *Controller) lineSinkLocked(ph PhaseID) lineSink {
	return func(id device.ID, asserted bool, duty uint32) {
		lc := LineChange{ID: id, Asserted: asserted, Duty: duty, Phase: ph, At: c.now()}
		c.logger.Debug("line changed", "id", string(id), "asserted", asserted, "duty", duty)
		for _, o := range c.observers {
			o.OnLineChange(lc)
		}
	}
}

// checkDevices returns ErrMissingDevice listing what binding phase id
// would fail to find.
func checkDevices(set *device.Set, id PhaseID) error {
	if missing := missingDevices(set, id); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingDevice, strings.Join(missing, ", "))
	}
	return nil
}

func missingDevices(set *device.Set, id PhaseID) []string {
	var missing []string

	lines := handshakeLines[id]
	outputs := []device.ID{lines.ready, lines.running, lines.complete}
	if id == Spraying {
		outputs = append(outputs, device.Spray)
	}

	if !set.HasDigitalOutputs() {
		missing = append(missing, device.KindDigitalOutput+" registry")
	} else {
		outs := set.DigitalOutputs()
		for _, oid := range outputs {
			if !outs.Has(oid) {
				missing = append(missing, string(oid))
			}
		}
	}

	if id == Tending {
		if !set.HasPWMs() {
			missing = append(missing, device.KindPWM+" registry")
		} else if !set.PWMs().Has(device.Finger) {
			missing = append(missing, string(device.Finger))
		}
	}

	return missing
}
