package gpio

import "fmt"

// Pull selects the internal pull resistor of an input or output pin.
type Pull int

const (
	// PullOff leaves the pin floating.
	PullOff Pull = iota
	// PullUp enables the internal pull-up resistor.
	PullUp
	// PullDown enables the internal pull-down resistor.
	PullDown
)

// String returns the pull mode name.
func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return "off"
	}
}

// Pin limits for the 40-pin header (BCM numbering).
const (
	MinPin = 0
	MaxPin = 27
)

// Chip is a GPIO controller.
//
// Implementations must be safe for concurrent use; the device layer may
// share one Chip between many device handles.
type Chip interface {
	// Open maps the controller. It must be called before any pin operation.
	Open() error

	// Close releases the controller. Pins keep their last driven level.
	Close() error

	// SetupOutput configures pin as a digital output with the given pull.
	SetupOutput(pin int, pull Pull) error

	// SetupInput configures pin as a digital input with the given pull.
	SetupInput(pin int, pull Pull) error

	// SetupPWM configures pin as a hardware PWM channel at freq Hz.
	SetupPWM(pin int, freq int) error

	// Write drives an output pin high (true) or low (false).
	Write(pin int, high bool) error

	// Read samples the physical level of a pin.
	Read(pin int) (bool, error)

	// SetDutyCycle sets the PWM duty as duty/cycle.
	SetDutyCycle(pin int, duty, cycle uint32) error

	// OpenI2C opens the I2C bus number bus and selects the slave address.
	OpenI2C(bus int, addr uint16) (I2CBus, error)
}

// I2CBus is an I2C connection to a single slave device.
type I2CBus interface {
	// Write sends data to the slave in one transaction.
	Write(data []byte) error

	// ReadByte reads one byte from the slave.
	ReadByte() (byte, error)

	// Close releases the bus handle.
	Close() error
}

// validatePin checks pin against the header range.
func validatePin(pin int) error {
	if pin < MinPin || pin > MaxPin {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidPin, pin, MinPin, MaxPin)
	}
	return nil
}

// hardwarePWMPins are the BCM pins routed to the PWM peripheral.
var hardwarePWMPins = map[int]bool{12: true, 13: true, 18: true, 19: true}
