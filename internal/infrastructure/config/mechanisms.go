package config

import (
	"fmt"
	"sort"
)

// Speed selects one of the three profiles of a mechanism.
type Speed string

const (
	SpeedSlow   Speed = "slow"
	SpeedNormal Speed = "normal"
	SpeedFast   Speed = "fast"
)

// Speeds lists the profile names in ascending order.
var Speeds = []Speed{SpeedSlow, SpeedNormal, SpeedFast}

// Mechanism names under the mechanisms section.
const (
	MechanismSpraying = "spraying"
	MechanismTending  = "tending"
	MechanismHoming   = "homing"
	MechanismCleaning = "cleaning"
	MechanismFault    = "fault"
)

// AxisSpeed is the motion setting of one stepper axis.
type AxisSpeed struct {
	RPM          float64 `yaml:"rpm"`
	Acceleration float64 `yaml:"acceleration"`
	Deceleration float64 `yaml:"deceleration"`
}

// SpeedProfile is one speed of a mechanism: per-axis motion plus the
// finger duty, in units of devices.finger_pwm.range.
type SpeedProfile struct {
	X         AxisSpeed `yaml:"x"`
	Y         AxisSpeed `yaml:"y"`
	Z         AxisSpeed `yaml:"z"`
	DutyCycle uint32    `yaml:"duty_cycle"`
}

// Axis returns the setting for axis x, y or z.
func (p SpeedProfile) Axis(axis string) (AxisSpeed, bool) {
	switch axis {
	case "x":
		return p.X, true
	case "y":
		return p.Y, true
	case "z":
		return p.Z, true
	default:
		return AxisSpeed{}, false
	}
}

// SpeedProfiles holds the slow, normal and fast profiles of a mechanism.
type SpeedProfiles struct {
	Slow   SpeedProfile `yaml:"slow"`
	Normal SpeedProfile `yaml:"normal"`
	Fast   SpeedProfile `yaml:"fast"`
}

// Profile returns the profile for speed.
func (s SpeedProfiles) Profile(speed Speed) (SpeedProfile, error) {
	switch speed {
	case SpeedSlow:
		return s.Slow, nil
	case SpeedNormal:
		return s.Normal, nil
	case SpeedFast:
		return s.Fast, nil
	default:
		return SpeedProfile{}, fmt.Errorf("unknown speed %q", speed)
	}
}

// Mechanism is one machine mechanism.
// Movement paths are motion-planning data and are not read here.
type Mechanism struct {
	Speed SpeedProfiles `yaml:"speed"`
}

// ManualConfig configures manual jogging while the machine is faulted.
type ManualConfig struct {
	// Movement is the jog distance per command, keyed by axis.
	Movement map[string]float64 `yaml:"movement"`
}

// FaultMechanism is the fault-recovery mechanism.
type FaultMechanism struct {
	Mechanism `yaml:",inline"`
	Manual    ManualConfig `yaml:"manual"`
}

// MechanismsConfig holds the speed profiles of every mechanism.
type MechanismsConfig struct {
	Spraying Mechanism      `yaml:"spraying"`
	Tending  Mechanism      `yaml:"tending"`
	Homing   Mechanism      `yaml:"homing"`
	Cleaning Mechanism      `yaml:"cleaning"`
	Fault    FaultMechanism `yaml:"fault"`
}

// Lookup returns the named mechanism.
func (m MechanismsConfig) Lookup(name string) (Mechanism, error) {
	switch name {
	case MechanismSpraying:
		return m.Spraying, nil
	case MechanismTending:
		return m.Tending, nil
	case MechanismHoming:
		return m.Homing, nil
	case MechanismCleaning:
		return m.Cleaning, nil
	case MechanismFault:
		return m.Fault.Mechanism, nil
	default:
		return Mechanism{}, fmt.Errorf("%w: mechanisms.%s", ErrMissingKey, name)
	}
}

// Names returns the mechanism names in sorted order.
func (m MechanismsConfig) Names() []string {
	names := []string{MechanismSpraying, MechanismTending, MechanismHoming, MechanismCleaning, MechanismFault}
	sort.Strings(names)
	return names
}

// ManualMovement returns the fault jog distance for axis.
func (m MechanismsConfig) ManualMovement(axis string) (float64, error) {
	v, ok := m.Fault.Manual.Movement[axis]
	if !ok {
		return 0, fmt.Errorf("%w: mechanisms.fault.manual.movement.%s", ErrMissingKey, axis)
	}
	return v, nil
}

// validate checks every profile. maxDuty is the finger PWM range.
func (m MechanismsConfig) validate(maxDuty uint32) []string {
	var errs []string

	for _, name := range m.Names() {
		mech, _ := m.Lookup(name)
		for _, speed := range Speeds {
			p, _ := mech.Speed.Profile(speed)
			path := fmt.Sprintf("mechanisms.%s.speed.%s", name, speed)
			for _, axis := range []string{"x", "y", "z"} {
				a, _ := p.Axis(axis)
				if a.RPM <= 0 {
					errs = append(errs, fmt.Sprintf("%s.%s.rpm must be positive", path, axis))
				}
				if a.Acceleration < 0 || a.Deceleration < 0 {
					errs = append(errs, fmt.Sprintf("%s.%s acceleration and deceleration must not be negative", path, axis))
				}
			}
			if p.DutyCycle > maxDuty {
				errs = append(errs, fmt.Sprintf("%s.duty_cycle must not exceed devices.finger_pwm.range", path))
			}
		}
	}

	axes := make([]string, 0, len(m.Fault.Manual.Movement))
	for axis := range m.Fault.Manual.Movement {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	for _, axis := range axes {
		if axis != "x" && axis != "y" && axis != "z" {
			errs = append(errs, fmt.Sprintf("mechanisms.fault.manual.movement.%s is not an axis", axis))
		} else if m.Fault.Manual.Movement[axis] <= 0 {
			errs = append(errs, fmt.Sprintf("mechanisms.fault.manual.movement.%s must be positive", axis))
		}
	}

	return errs
}

// defaultMechanism gives every axis the same motion at each speed.
func defaultMechanism(duty uint32) Mechanism {
	profile := func(rpm float64) SpeedProfile {
		a := AxisSpeed{RPM: rpm, Acceleration: 1000, Deceleration: 1000}
		return SpeedProfile{X: a, Y: a, Z: a, DutyCycle: duty}
	}
	return Mechanism{Speed: SpeedProfiles{
		Slow:   profile(30),
		Normal: profile(60),
		Fast:   profile(120),
	}}
}
