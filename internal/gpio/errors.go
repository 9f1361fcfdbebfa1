package gpio

import "errors"

// Domain errors for GPIO operations.
var (
	// ErrNotOpen is returned when a pin operation runs before Open or after Close.
	ErrNotOpen = errors.New("gpio: chip not open")

	// ErrInvalidPin is returned for pin numbers outside the header range.
	ErrInvalidPin = errors.New("gpio: invalid pin")

	// ErrWrongMode is returned when a pin is used in a mode it was not set up for.
	ErrWrongMode = errors.New("gpio: pin not configured for this operation")

	// ErrNoHardwarePWM is returned when PWM is requested on a pin without a PWM channel.
	ErrNoHardwarePWM = errors.New("gpio: pin has no hardware PWM channel")

	// ErrInvalidDutyCycle is returned when duty exceeds the cycle length.
	ErrInvalidDutyCycle = errors.New("gpio: duty cycle exceeds cycle length")

	// ErrI2CUnsupported is returned on platforms without i2c-dev.
	ErrI2CUnsupported = errors.New("gpio: i2c not supported on this platform")

	// ErrI2CFailed is returned when an I2C transfer fails.
	ErrI2CFailed = errors.New("gpio: i2c transfer failed")
)
