package device

import (
	"fmt"

	"github.com/tendbot/tendbot-core/internal/gpio"
	"github.com/tendbot/tendbot-core/internal/infrastructure/config"
)

// limitSwitches maps limit switch ids to their config keys.
var limitSwitches = []struct {
	id  ID
	key string
}{
	{LimitX, "x"},
	{LimitY, "y"},
	{LimitZ1, "z1"},
	{LimitZ2, "z2"},
}

// Bringup opens chip and creates every device named in cfg.
//
// Order: analog converter, digital inputs (limit switches, PLC lines,
// optional anomaly line), digital outputs (spray valve, handshake lines),
// the finger PWM channel at duty 0, then the x/y/z steppers.
//
// Any failure closes what was opened and returns an error wrapping
// ErrConfiguration (missing or invalid keys) or ErrHardwareIO.
func Bringup(cfg config.DevicesConfig, chip gpio.Chip, logger Logger) (*Set, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	if err := chip.Open(); err != nil {
		return nil, fmt.Errorf("%w: opening gpio: %w", ErrHardwareIO, err)
	}

	set := NewSet(chip)
	set.SetLogger(logger)

	steps := []struct {
		name string
		fn   func(*Set, config.DevicesConfig) error
	}{
		{"analog", bringupAnalog},
		{"digital inputs", bringupInputs},
		{"digital outputs", bringupOutputs},
		{"pwm", bringupPWM},
		{"steppers", bringupSteppers},
	}
	for _, step := range steps {
		if err := step.fn(set, cfg); err != nil {
			logger.Error("device bring-up failed", "step", step.name, "error", err)
			if cerr := set.Close(); cerr != nil {
				logger.Warn("closing devices after failed bring-up", "error", cerr)
			}
			return nil, fmt.Errorf("bring-up %s: %w", step.name, err)
		}
		logger.Debug("device bring-up step complete", "step", step.name)
	}

	logger.Info("devices ready",
		"digital_inputs", set.DigitalInputs().Len(),
		"digital_outputs", set.DigitalOutputs().Len(),
		"pwm", set.PWMs().Len(),
		"analog", set.Analogs().Len(),
		"steppers", set.Steppers().Len(),
	)
	return set, nil
}

func configErr(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

func bringupAnalog(set *Set, cfg config.DevicesConfig) error {
	reg, err := set.CreateAnalogs()
	if err != nil {
		return err
	}
	return reg.Create(ADC, func() (*Analog, error) {
		return NewAnalog(set.Chip(), cfg.Analog.Bus, cfg.Analog.Address)
	})
}

func createInput(set *Set, reg *Registry[*DigitalInput], id ID, line config.Line, pull gpio.Pull) error {
	return reg.Create(id, func() (*DigitalInput, error) {
		return NewDigitalInput(set.Chip(), line.Pin, line.ActiveHigh, pull)
	})
}

func createOutput(set *Set, reg *Registry[*DigitalOutput], id ID, line config.Line, pull gpio.Pull) error {
	return reg.Create(id, func() (*DigitalOutput, error) {
		return NewDigitalOutput(set.Chip(), line.Pin, line.ActiveHigh, pull)
	})
}

func bringupInputs(set *Set, cfg config.DevicesConfig) error {
	reg, err := set.CreateDigitalInputs()
	if err != nil {
		return err
	}

	// Limit switches are wired to ground and pulled up.
	for _, ls := range limitSwitches {
		line, err := cfg.LimitSwitch.Lookup("limit_switch", ls.key)
		if err != nil {
			return configErr(err)
		}
		if err := createInput(set, reg, ls.id, line, gpio.PullUp); err != nil {
			return err
		}
	}

	for _, id := range PLCToPi {
		line, err := cfg.PLCToPi.Lookup("plc_to_pi", string(id))
		if err != nil {
			return configErr(err)
		}
		if err := createInput(set, reg, id, line, gpio.PullOff); err != nil {
			return err
		}
	}

	if cfg.Anomaly != nil {
		line, err := cfg.Anomaly.Resolve("devices.anomaly")
		if err != nil {
			return configErr(err)
		}
		if err := createInput(set, reg, Anomaly, line, gpio.PullOff); err != nil {
			return err
		}
	}
	return nil
}

func bringupOutputs(set *Set, cfg config.DevicesConfig) error {
	reg, err := set.CreateDigitalOutputs()
	if err != nil {
		return err
	}

	line, err := cfg.Spray.Resolve("devices.spray")
	if err != nil {
		return configErr(err)
	}
	if err := createOutput(set, reg, Spray, line, gpio.PullUp); err != nil {
		return err
	}

	for _, id := range PiToPLC {
		line, err := cfg.PiToPLC.Lookup("pi_to_plc", string(id))
		if err != nil {
			return configErr(err)
		}
		if err := createOutput(set, reg, id, line, gpio.PullUp); err != nil {
			return err
		}
	}
	return nil
}

func bringupPWM(set *Set, cfg config.DevicesConfig) error {
	reg, err := set.CreatePWMs()
	if err != nil {
		return err
	}
	line, err := cfg.Finger.Resolve("devices.finger")
	if err != nil {
		return configErr(err)
	}
	return reg.Create(Finger, func() (*PWM, error) {
		return NewPWM(set.Chip(), line.Pin, line.ActiveHigh, cfg.FingerPWM.Frequency, cfg.FingerPWM.Range)
	})
}

func bringupSteppers(set *Set, cfg config.DevicesConfig) error {
	reg, err := set.CreateSteppers()
	if err != nil {
		return err
	}
	for _, axis := range []ID{AxisX, AxisY, AxisZ} {
		sc, err := cfg.LookupStepper(string(axis))
		if err != nil {
			return configErr(err)
		}
		settings := StepperSettings{
			StepPin:          sc.StepPin,
			DirPin:           sc.DirPin,
			EnablePin:        sc.EnablePin,
			Microsteps:       sc.Microsteps,
			RPM:              sc.RPM,
			Acceleration:     sc.Acceleration,
			Deceleration:     sc.Deceleration,
			StepActiveHigh:   sc.StepActiveState,
			DirActiveHigh:    sc.DirActiveState,
			EnableActiveHigh: sc.EnableActiveState,
		}
		if err := reg.Create(axis, func() (*Stepper, error) {
			return NewStepper(set.Chip(), settings)
		}); err != nil {
			return err
		}
	}
	return nil
}
