package machine

import (
	"errors"

	"github.com/tendbot/tendbot-core/internal/device"
)

// lineIDs are the three handshake outputs of one phase.
type lineIDs struct {
	ready    device.ID
	running  device.ID
	complete device.ID
}

var handshakeLines = map[PhaseID]lineIDs{
	Spraying: {ready: device.SprayingReady, running: device.SprayingRunning, complete: device.SprayingComplete},
	Tending:  {ready: device.TendingReady, running: device.TendingRunning, complete: device.TendingComplete},
}

// actuator is the thing a phase drives inside its RUNNING window.
type actuator interface {
	id() device.ID
	// drive switches the actuator and returns the duty written (0 for
	// on/off actuators).
	drive(on bool) (uint32, error)
}

// valve is the spray solenoid.
type valve struct {
	out *device.DigitalOutput
}

func (v valve) id() device.ID { return device.Spray }

func (v valve) drive(on bool) (uint32, error) {
	return 0, v.out.Set(on)
}

// finger is the tending mechanism on a PWM channel.
type finger struct {
	pwm  *device.PWM
	duty uint32
}

func (f finger) id() device.ID { return device.Finger }

func (f finger) drive(on bool) (uint32, error) {
	var duty uint32
	if on {
		duty = f.duty
	}
	return duty, f.pwm.SetDutyCycle(duty)
}

// boundLines are the handles a phase holds once bound.
type boundLines struct {
	ready    *device.DigitalOutput
	running  *device.DigitalOutput
	complete *device.DigitalOutput
	actuator actuator
}

// lineSink receives every successful line write.
type lineSink func(id device.ID, asserted bool, duty uint32)

// handshakeRun raises the phase into its RUNNING window. The actuator is
// engaged last so it is never driven outside RUNNING. If RUNNING or the
// actuator cannot be driven, RUNNING is dropped and COMPLETE restored so
// the lines match the phase, which stays not running.
func handshakeRun(ids lineIDs, l *boundLines, sink lineSink) error {
	if err := l.ready.Assert(); err != nil {
		return err
	}
	sink(ids.ready, true, 0)

	wasComplete := l.complete.IsAsserted()
	if err := l.complete.Deassert(); err != nil {
		return err
	}
	sink(ids.complete, false, 0)

	if err := l.running.Assert(); err != nil {
		return errors.Join(err, restoreLine(ids.complete, l.complete, wasComplete, sink))
	}
	sink(ids.running, true, 0)

	duty, err := l.actuator.drive(true)
	if err != nil {
		return errors.Join(err,
			restoreLine(ids.running, l.running, false, sink),
			restoreLine(ids.complete, l.complete, wasComplete, sink))
	}
	sink(l.actuator.id(), true, duty)
	return nil
}

// restoreLine sets out back to asserted after a failed run step.
func restoreLine(id device.ID, out *device.DigitalOutput, asserted bool, sink lineSink) error {
	if out.IsAsserted() == asserted {
		return nil
	}
	if err := out.Set(asserted); err != nil {
		return err
	}
	sink(id, asserted, 0)
	return nil
}

// handshakeComplete closes the RUNNING window and signals COMPLETE.
// READY stays asserted.
func handshakeComplete(ids lineIDs, l *boundLines, sink lineSink) error {
	if _, err := l.actuator.drive(false); err != nil {
		return err
	}
	sink(l.actuator.id(), false, 0)

	if err := l.running.Deassert(); err != nil {
		return err
	}
	sink(ids.running, false, 0)

	if err := l.complete.Assert(); err != nil {
		return err
	}
	sink(ids.complete, true, 0)
	return nil
}
