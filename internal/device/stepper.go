package device

import (
	"fmt"
	"sync"

	"github.com/tendbot/tendbot-core/internal/gpio"
)

// Direction of stepper rotation.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// StepperSettings parameterises an A4988 driver.
type StepperSettings struct {
	StepPin   int
	DirPin    int
	EnablePin int

	Microsteps   int
	RPM          float64
	Acceleration float64
	Deceleration float64

	StepActiveHigh   bool
	DirActiveHigh    bool
	EnableActiveHigh bool
}

var validMicrosteps = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true}

// Validate checks the motion settings.
func (s StepperSettings) Validate() error {
	if !validMicrosteps[s.Microsteps] {
		return fmt.Errorf("%w: microsteps %d not one of 1, 2, 4, 8, 16", ErrInvalidSetting, s.Microsteps)
	}
	if s.RPM <= 0 {
		return fmt.Errorf("%w: rpm must be positive", ErrInvalidSetting)
	}
	if s.Acceleration < 0 || s.Deceleration < 0 {
		return fmt.Errorf("%w: acceleration and deceleration must not be negative", ErrInvalidSetting)
	}
	return nil
}

// Stepper is an A4988 stepper driver. Only enable and direction are
// driven here; step pulse generation belongs to the motion layer.
type Stepper struct {
	settings StepperSettings
	step     *DigitalOutput
	dir      *DigitalOutput
	enable   *DigitalOutput

	mu        sync.Mutex
	direction Direction
}

// NewStepper configures the three driver pins. The driver starts disabled
// with direction Forward.
func NewStepper(chip gpio.Chip, s StepperSettings) (*Stepper, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	step, err := NewDigitalOutput(chip, s.StepPin, s.StepActiveHigh, gpio.PullOff)
	if err != nil {
		return nil, err
	}
	dir, err := NewDigitalOutput(chip, s.DirPin, s.DirActiveHigh, gpio.PullOff)
	if err != nil {
		return nil, err
	}
	enable, err := NewDigitalOutput(chip, s.EnablePin, s.EnableActiveHigh, gpio.PullOff)
	if err != nil {
		return nil, err
	}
	return &Stepper{settings: s, step: step, dir: dir, enable: enable}, nil
}

// Enable energises the coils.
func (m *Stepper) Enable() error { return m.enable.Assert() }

// Disable releases the coils.
func (m *Stepper) Disable() error { return m.enable.Deassert() }

// IsEnabled reports whether the driver is enabled.
func (m *Stepper) IsEnabled() bool { return m.enable.IsAsserted() }

// SetDirection drives the DIR pin. Forward is the deasserted level.
func (m *Stepper) SetDirection(d Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.dir.Set(d == Backward); err != nil {
		return err
	}
	m.direction = d
	return nil
}

// Direction returns the last direction set.
func (m *Stepper) Direction() Direction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.direction
}

// Settings returns the driver settings.
func (m *Stepper) Settings() StepperSettings { return m.settings }
