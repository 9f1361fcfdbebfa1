package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tendbot/tendbot-core/internal/gpio"
)

// Registry kind names, used in errors and log fields.
const (
	KindDigitalInput  = "digital input"
	KindDigitalOutput = "digital output"
	KindPWM           = "pwm"
	KindAnalog        = "analog"
	KindStepper       = "stepper"
)

// Set is the process-wide device context: one chip and at most one
// registry per device kind. It is built once at bring-up and passed by
// reference to every component that needs hardware.
//
// A kind's registry must be created before it is used. Asking for a kind
// that was never created panics with a PreconditionViolation.
type Set struct {
	mu     sync.Mutex
	chip   gpio.Chip
	logger Logger
	closed bool

	digitalInputs  *Registry[*DigitalInput]
	digitalOutputs *Registry[*DigitalOutput]
	pwms           *Registry[*PWM]
	analogs        *Registry[*Analog]
	steppers       *Registry[*Stepper]
}

// NewSet creates an empty Set over an opened chip.
func NewSet(chip gpio.Chip) *Set {
	return &Set{chip: chip, logger: noopLogger{}}
}

// SetLogger sets the logger handed to registries created afterwards.
func (s *Set) SetLogger(logger Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Chip returns the GPIO chip devices are created on.
func (s *Set) Chip() gpio.Chip {
	return s.chip
}

func createKind[T any](s *Set, slot **Registry[T], kind string) (*Registry[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *slot != nil {
		return nil, fmt.Errorf("%w: %s", ErrRegistryExists, kind)
	}
	r := NewRegistry[T](kind)
	r.SetLogger(s.logger)
	*slot = r
	return r, nil
}

func kindOf[T any](s *Set, slot **Registry[T], kind string) *Registry[T] {
	s.mu.Lock()
	r := *slot
	s.mu.Unlock()
	if r == nil {
		violate("%s registry not created", kind)
	}
	return r
}

func hasKind[T any](s *Set, slot **Registry[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *slot != nil
}

// CreateDigitalInputs creates the digital input registry.
func (s *Set) CreateDigitalInputs() (*Registry[*DigitalInput], error) {
	return createKind(s, &s.digitalInputs, KindDigitalInput)
}

// DigitalInputs returns the digital input registry.
func (s *Set) DigitalInputs() *Registry[*DigitalInput] {
	return kindOf(s, &s.digitalInputs, KindDigitalInput)
}

// HasDigitalInputs reports whether the digital input registry exists.
func (s *Set) HasDigitalInputs() bool { return hasKind(s, &s.digitalInputs) }

// CreateDigitalOutputs creates the digital output registry.
func (s *Set) CreateDigitalOutputs() (*Registry[*DigitalOutput], error) {
	return createKind(s, &s.digitalOutputs, KindDigitalOutput)
}

// DigitalOutputs returns the digital output registry.
func (s *Set) DigitalOutputs() *Registry[*DigitalOutput] {
	return kindOf(s, &s.digitalOutputs, KindDigitalOutput)
}

// HasDigitalOutputs reports whether the digital output registry exists.
func (s *Set) HasDigitalOutputs() bool { return hasKind(s, &s.digitalOutputs) }

// CreatePWMs creates the PWM registry.
func (s *Set) CreatePWMs() (*Registry[*PWM], error) {
	return createKind(s, &s.pwms, KindPWM)
}

// PWMs returns the PWM registry.
func (s *Set) PWMs() *Registry[*PWM] {
	return kindOf(s, &s.pwms, KindPWM)
}

// HasPWMs reports whether the PWM registry exists.
func (s *Set) HasPWMs() bool { return hasKind(s, &s.pwms) }

// CreateAnalogs creates the analog registry.
func (s *Set) CreateAnalogs() (*Registry[*Analog], error) {
	return createKind(s, &s.analogs, KindAnalog)
}

// Analogs returns the analog registry.
func (s *Set) Analogs() *Registry[*Analog] {
	return kindOf(s, &s.analogs, KindAnalog)
}

// HasAnalogs reports whether the analog registry exists.
func (s *Set) HasAnalogs() bool { return hasKind(s, &s.analogs) }

// CreateSteppers creates the stepper registry.
func (s *Set) CreateSteppers() (*Registry[*Stepper], error) {
	return createKind(s, &s.steppers, KindStepper)
}

// Steppers returns the stepper registry.
func (s *Set) Steppers() *Registry[*Stepper] {
	return kindOf(s, &s.steppers, KindStepper)
}

// HasSteppers reports whether the stepper registry exists.
func (s *Set) HasSteppers() bool { return hasKind(s, &s.steppers) }

// Close releases the analog buses and the chip. Output lines keep their
// last driven level. Calling Close more than once is a no-op.
func (s *Set) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	analogs := s.analogs
	s.mu.Unlock()

	var errs []error
	if analogs != nil {
		analogs.each(func(id ID, a *Analog) {
			if err := a.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing analog %q: %w", id, err))
			}
		})
	}
	if err := s.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing gpio chip: %w", err))
	}
	return errors.Join(errs...)
}
