package device

import (
	"sync"

	"github.com/tendbot/tendbot-core/internal/gpio"
)

// DigitalOutput is one discrete output line.
//
// "Asserted" is the logical state; activeHigh decides which physical
// level that is.
type DigitalOutput struct {
	chip       gpio.Chip
	pin        int
	activeHigh bool

	mu       sync.Mutex
	asserted bool
}

// NewDigitalOutput configures pin as an output and drives it deasserted.
func NewDigitalOutput(chip gpio.Chip, pin int, activeHigh bool, pull gpio.Pull) (*DigitalOutput, error) {
	if err := chip.SetupOutput(pin, pull); err != nil {
		return nil, hardwareErr("setup output", pin, err)
	}
	o := &DigitalOutput{chip: chip, pin: pin, activeHigh: activeHigh}
	if err := o.Set(false); err != nil {
		return nil, err
	}
	return o, nil
}

// Set drives the line to the asserted or deasserted level.
// The cached state only changes when the write succeeds.
func (o *DigitalOutput) Set(asserted bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.chip.Write(o.pin, asserted == o.activeHigh); err != nil {
		return hardwareErr("write", o.pin, err)
	}
	o.asserted = asserted
	return nil
}

// Assert drives the line to its active level.
func (o *DigitalOutput) Assert() error { return o.Set(true) }

// Deassert drives the line to its inactive level.
func (o *DigitalOutput) Deassert() error { return o.Set(false) }

// IsAsserted returns the last successfully written logical state.
func (o *DigitalOutput) IsAsserted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.asserted
}

// Pin returns the BCM pin number.
func (o *DigitalOutput) Pin() int { return o.pin }

// ActiveHigh reports the configured polarity.
func (o *DigitalOutput) ActiveHigh() bool { return o.activeHigh }

// DigitalInput is one discrete input line, polled.
type DigitalInput struct {
	chip       gpio.Chip
	pin        int
	activeHigh bool
}

// NewDigitalInput configures pin as an input with the given pull.
func NewDigitalInput(chip gpio.Chip, pin int, activeHigh bool, pull gpio.Pull) (*DigitalInput, error) {
	if err := chip.SetupInput(pin, pull); err != nil {
		return nil, hardwareErr("setup input", pin, err)
	}
	return &DigitalInput{chip: chip, pin: pin, activeHigh: activeHigh}, nil
}

// Read samples the line and reports whether it is asserted.
func (i *DigitalInput) Read() (bool, error) {
	high, err := i.chip.Read(i.pin)
	if err != nil {
		return false, hardwareErr("read", i.pin, err)
	}
	return high == i.activeHigh, nil
}

// Pin returns the BCM pin number.
func (i *DigitalInput) Pin() int { return i.pin }

// ActiveHigh reports the configured polarity.
func (i *DigitalInput) ActiveHigh() bool { return i.activeHigh }
