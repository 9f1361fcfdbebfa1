package device

import (
	"fmt"
	"sync"

	"github.com/tendbot/tendbot-core/internal/gpio"
)

// PWM is a hardware PWM channel with a fixed range.
//
// Duty is logical: 0 is fully released and Range is fully driven. For an
// active-low channel the physical duty is Range-duty.
type PWM struct {
	chip       gpio.Chip
	pin        int
	activeHigh bool
	rng        uint32

	mu   sync.Mutex
	duty uint32
}

// NewPWM configures pin for PWM at freq Hz and sets the duty to 0.
func NewPWM(chip gpio.Chip, pin int, activeHigh bool, freq int, rng uint32) (*PWM, error) {
	if rng == 0 {
		return nil, fmt.Errorf("%w: pwm range must be positive", ErrInvalidSetting)
	}
	if freq <= 0 {
		return nil, fmt.Errorf("%w: pwm frequency must be positive", ErrInvalidSetting)
	}
	if err := chip.SetupPWM(pin, freq); err != nil {
		return nil, hardwareErr("setup pwm", pin, err)
	}
	p := &PWM{chip: chip, pin: pin, activeHigh: activeHigh, rng: rng}
	if err := p.SetDutyCycle(0); err != nil {
		return nil, err
	}
	return p, nil
}

// SetDutyCycle sets the logical duty, 0..Range.
func (p *PWM) SetDutyCycle(duty uint32) error {
	if duty > p.rng {
		return fmt.Errorf("%w: duty %d exceeds range %d", ErrInvalidSetting, duty, p.rng)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	physical := duty
	if !p.activeHigh {
		physical = p.rng - duty
	}
	if err := p.chip.SetDutyCycle(p.pin, physical, p.rng); err != nil {
		return hardwareErr("set duty", p.pin, err)
	}
	p.duty = duty
	return nil
}

// DutyCycle returns the last logical duty written.
func (p *PWM) DutyCycle() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duty
}

// Range returns the full-scale duty value.
func (p *PWM) Range() uint32 { return p.rng }

// Pin returns the BCM pin number.
func (p *PWM) Pin() int { return p.pin }
