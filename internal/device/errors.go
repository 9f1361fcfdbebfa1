package device

import (
	"errors"
	"fmt"
)

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrConfiguration) {
//	    // abort bring-up
//	}
var (
	// ErrConfiguration is the category of bring-up failures caused by
	// configuration: duplicate ids, missing keys, out-of-range settings.
	ErrConfiguration = errors.New("device: configuration error")

	// ErrDuplicateDevice is returned when creating a device with an ID that already exists.
	ErrDuplicateDevice = fmt.Errorf("%w: duplicate device id", ErrConfiguration)

	// ErrRegistryExists is returned when a registry kind is created twice.
	ErrRegistryExists = fmt.Errorf("%w: registry already created", ErrConfiguration)

	// ErrInvalidSetting is returned when a device parameter is out of range.
	ErrInvalidSetting = fmt.Errorf("%w: invalid setting", ErrConfiguration)

	// ErrHardwareIO is returned when a pin or bus read/write fails.
	ErrHardwareIO = errors.New("device: hardware i/o failed")
)

// PreconditionViolation is the panic value raised when a caller asks for
// a registry kind that was never created or a device id that was never
// registered. Both are bring-up bugs, not runtime conditions.
type PreconditionViolation struct {
	Msg string
}

func (p PreconditionViolation) Error() string {
	return "device: precondition violated: " + p.Msg
}

func violate(format string, args ...any) {
	panic(PreconditionViolation{Msg: fmt.Sprintf(format, args...)})
}

func hardwareErr(op string, pin int, err error) error {
	return fmt.Errorf("%w: %s pin %d: %w", ErrHardwareIO, op, pin, err)
}
