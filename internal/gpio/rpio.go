package gpio

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIOChip drives the Raspberry Pi GPIO block through go-rpio.
//
// go-rpio memory-maps the peripheral registers; every call here is a
// register access, so the chip serialises them with a mutex.
type RPIOChip struct {
	mu     sync.Mutex
	opened bool
	modes  map[int]pinMode
}

type pinMode int

const (
	modeUnset pinMode = iota
	modeOutput
	modeInput
	modePWM
)

// NewRPIOChip returns an unopened Raspberry Pi chip.
func NewRPIOChip() *RPIOChip {
	return &RPIOChip{modes: make(map[int]pinMode)}
}

// Open maps /dev/gpiomem.
func (c *RPIOChip) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return nil
	}
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("opening gpio memory: %w", err)
	}
	c.opened = true
	return nil
}

// Close unmaps the GPIO memory. Safe to call more than once.
func (c *RPIOChip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil
	}
	c.opened = false
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("closing gpio memory: %w", err)
	}
	return nil
}

// SetupOutput configures pin as an output.
func (c *RPIOChip) SetupOutput(pin int, pull Pull) error {
	return c.setup(pin, modeOutput, func(p rpio.Pin) {
		applyPull(p, pull)
		p.Output()
	})
}

// SetupInput configures pin as an input.
func (c *RPIOChip) SetupInput(pin int, pull Pull) error {
	return c.setup(pin, modeInput, func(p rpio.Pin) {
		p.Input()
		applyPull(p, pull)
	})
}

// SetupPWM routes pin to the PWM peripheral at freq Hz.
func (c *RPIOChip) SetupPWM(pin int, freq int) error {
	if !hardwarePWMPins[pin] {
		return fmt.Errorf("%w: %d", ErrNoHardwarePWM, pin)
	}
	return c.setup(pin, modePWM, func(p rpio.Pin) {
		p.Pwm()
		p.Freq(freq)
	})
}

func (c *RPIOChip) setup(pin int, mode pinMode, fn func(rpio.Pin)) error {
	if err := validatePin(pin); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return ErrNotOpen
	}
	fn(rpio.Pin(pin))
	c.modes[pin] = mode
	return nil
}

// Write drives an output pin.
func (c *RPIOChip) Write(pin int, high bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkMode(pin, modeOutput); err != nil {
		return err
	}
	if high {
		rpio.Pin(pin).Write(rpio.High)
	} else {
		rpio.Pin(pin).Write(rpio.Low)
	}
	return nil
}

// Read samples a pin level. Output pins can be read back as well.
func (c *RPIOChip) Read(pin int) (bool, error) {
	if err := validatePin(pin); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return false, ErrNotOpen
	}
	return rpio.Pin(pin).Read() == rpio.High, nil
}

// SetDutyCycle sets the PWM duty of a pin configured with SetupPWM.
func (c *RPIOChip) SetDutyCycle(pin int, duty, cycle uint32) error {
	if duty > cycle {
		return fmt.Errorf("%w: %d/%d", ErrInvalidDutyCycle, duty, cycle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkMode(pin, modePWM); err != nil {
		return err
	}
	rpio.Pin(pin).DutyCycle(duty, cycle)
	return nil
}

// OpenI2C opens /dev/i2c-<bus> for the slave at addr.
func (c *RPIOChip) OpenI2C(bus int, addr uint16) (I2CBus, error) {
	return openI2CDev(bus, addr)
}

func (c *RPIOChip) checkMode(pin int, want pinMode) error {
	if err := validatePin(pin); err != nil {
		return err
	}
	if !c.opened {
		return ErrNotOpen
	}
	if c.modes[pin] != want {
		return fmt.Errorf("%w: pin %d", ErrWrongMode, pin)
	}
	return nil
}

func applyPull(p rpio.Pin, pull Pull) {
	switch pull {
	case PullUp:
		p.PullUp()
	case PullDown:
		p.PullDown()
	default:
		p.PullOff()
	}
}
