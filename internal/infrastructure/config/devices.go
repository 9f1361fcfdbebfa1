package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingKey is returned when a required device key is absent.
var ErrMissingKey = errors.New("config: missing required key")

// GPIO backends.
const (
	BackendRPIO = "rpio"
	BackendSim  = "sim"
)

// Header pin range (BCM numbering) accepted for device lines.
const (
	minPin = 0
	maxPin = 27
)

// DevicesConfig describes every hardware line and channel.
//
// Line sections are keyed by line name, mirroring the key paths the
// bring-up code looks up, e.g. devices.pi_to_plc.tending-ready.pin.
type DevicesConfig struct {
	Backend     string                   `yaml:"backend"`
	PiToPLC     Lines                    `yaml:"pi_to_plc"`
	PLCToPi     Lines                    `yaml:"plc_to_pi"`
	LimitSwitch Lines                    `yaml:"limit_switch"`
	Spray       *LineConfig              `yaml:"spray"`
	Finger      *LineConfig              `yaml:"finger"`
	FingerPWM   PWMConfig                `yaml:"finger_pwm"`
	Anomaly     *LineConfig              `yaml:"anomaly,omitempty"`
	Analog      AnalogConfig             `yaml:"analog"`
	Stepper     map[string]StepperConfig `yaml:"stepper"`
}

// LineConfig is one discrete line as written in YAML.
// Pointers distinguish "absent" from pin 0 / active-low.
type LineConfig struct {
	Pin         *int  `yaml:"pin"`
	ActiveState *bool `yaml:"active_state"`
}

// Line is a resolved discrete line.
type Line struct {
	Pin int
	// ActiveHigh is true when the asserted state is a high level.
	ActiveHigh bool
}

// Lines maps line names to their configuration.
type Lines map[string]LineConfig

// PWMConfig configures a PWM channel.
type PWMConfig struct {
	Frequency int    `yaml:"frequency"`
	Range     uint32 `yaml:"range"`
}

// AnalogConfig locates the PCF8591 converter.
type AnalogConfig struct {
	Bus     int    `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// StepperConfig is one stepper axis driven by an A4988.
type StepperConfig struct {
	StepPin           *int    `yaml:"step_pin"`
	DirPin            *int    `yaml:"dir_pin"`
	EnablePin         *int    `yaml:"enable_pin"`
	Microsteps        int     `yaml:"microsteps"`
	RPM               float64 `yaml:"rpm"`
	Acceleration      float64 `yaml:"acceleration"`
	Deceleration      float64 `yaml:"deceleration"`
	StepActiveState   *bool   `yaml:"step_active_state"`
	DirActiveState    *bool   `yaml:"dir_active_state"`
	EnableActiveState *bool   `yaml:"enable_active_state"`
}

// Stepper is a resolved stepper axis.
type Stepper struct {
	StepPin           int
	DirPin            int
	EnablePin         int
	Microsteps        int
	RPM               float64
	Acceleration      float64
	Deceleration      float64
	StepActiveState   bool
	DirActiveState    bool
	EnableActiveState bool
}

// Lookup resolves the line name within section (e.g. "pi_to_plc").
//
// Returns ErrMissingKey naming the full key path when the line,
// its pin, or its active state is absent.
func (l Lines) Lookup(section, name string) (Line, error) {
	lc, ok := l[name]
	if !ok {
		return Line{}, fmt.Errorf("%w: devices.%s.%s", ErrMissingKey, section, name)
	}
	return lc.Resolve(fmt.Sprintf("devices.%s.%s", section, name))
}

// Names returns the configured line names in sorted order.
func (l Lines) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve converts the YAML line to a Line. path is used in error messages.
func (lc *LineConfig) Resolve(path string) (Line, error) {
	if lc == nil {
		return Line{}, fmt.Errorf("%w: %s", ErrMissingKey, path)
	}
	if lc.Pin == nil {
		return Line{}, fmt.Errorf("%w: %s.pin", ErrMissingKey, path)
	}
	if lc.ActiveState == nil {
		return Line{}, fmt.Errorf("%w: %s.active_state", ErrMissingKey, path)
	}
	return Line{Pin: *lc.Pin, ActiveHigh: *lc.ActiveState}, nil
}

// LookupStepper resolves the stepper axis (x, y or z).
//
// Returns ErrMissingKey naming the full key path when the axis, one of
// its pins, or one of its active states is absent.
func (d DevicesConfig) LookupStepper(axis string) (Stepper, error) {
	sc, ok := d.Stepper[axis]
	if !ok {
		return Stepper{}, fmt.Errorf("%w: devices.stepper.%s", ErrMissingKey, axis)
	}
	path := "devices.stepper." + axis
	switch {
	case sc.StepPin == nil:
		return Stepper{}, fmt.Errorf("%w: %s.step_pin", ErrMissingKey, path)
	case sc.DirPin == nil:
		return Stepper{}, fmt.Errorf("%w: %s.dir_pin", ErrMissingKey, path)
	case sc.EnablePin == nil:
		return Stepper{}, fmt.Errorf("%w: %s.enable_pin", ErrMissingKey, path)
	case sc.StepActiveState == nil:
		return Stepper{}, fmt.Errorf("%w: %s.step_active_state", ErrMissingKey, path)
	case sc.DirActiveState == nil:
		return Stepper{}, fmt.Errorf("%w: %s.dir_active_state", ErrMissingKey, path)
	case sc.EnableActiveState == nil:
		return Stepper{}, fmt.Errorf("%w: %s.enable_active_state", ErrMissingKey, path)
	}
	return Stepper{
		StepPin:           *sc.StepPin,
		DirPin:            *sc.DirPin,
		EnablePin:         *sc.EnablePin,
		Microsteps:        sc.Microsteps,
		RPM:               sc.RPM,
		Acceleration:      sc.Acceleration,
		Deceleration:      sc.Deceleration,
		StepActiveState:   *sc.StepActiveState,
		DirActiveState:    *sc.DirActiveState,
		EnableActiveState: *sc.EnableActiveState,
	}, nil
}

// validate checks value ranges of the lines that are present.
// Presence itself is checked lazily by Lookup during bring-up.
func (d DevicesConfig) validate() []string {
	var errs []string

	if d.Backend != BackendRPIO && d.Backend != BackendSim {
		errs = append(errs, fmt.Sprintf("devices.backend must be %q or %q", BackendRPIO, BackendSim))
	}

	checkPin := func(path string, pin *int) {
		if pin != nil && (*pin < minPin || *pin > maxPin) {
			errs = append(errs, fmt.Sprintf("%s must be between %d and %d", path, minPin, maxPin))
		}
	}

	for section, lines := range map[string]Lines{
		"pi_to_plc":    d.PiToPLC,
		"plc_to_pi":    d.PLCToPi,
		"limit_switch": d.LimitSwitch,
	} {
		for _, name := range lines.Names() {
			lc := lines[name]
			checkPin(fmt.Sprintf("devices.%s.%s.pin", section, name), lc.Pin)
		}
	}
	for path, lc := range map[string]*LineConfig{
		"devices.spray":   d.Spray,
		"devices.finger":  d.Finger,
		"devices.anomaly": d.Anomaly,
	} {
		if lc != nil {
			checkPin(path+".pin", lc.Pin)
		}
	}
	for axis, sc := range d.Stepper {
		path := "devices.stepper." + axis
		checkPin(path+".step_pin", sc.StepPin)
		checkPin(path+".dir_pin", sc.DirPin)
		checkPin(path+".enable_pin", sc.EnablePin)
	}

	if d.FingerPWM.Frequency <= 0 {
		errs = append(errs, "devices.finger_pwm.frequency must be positive")
	}
	if d.FingerPWM.Range == 0 {
		errs = append(errs, "devices.finger_pwm.range must be positive")
	}

	return errs
}
