// Package device provides the hardware device registries for tendbot.
//
// Every physical line or channel the machine touches is a device owned by
// a kind-specific Registry. The registries live in a Set, the explicit
// process-wide context created once by Bringup and passed to the state
// machine by reference.
//
// # Key Types
//
//   - Registry[T]: ID -> handle store for one device kind
//   - Set: one chip plus at most one registry per kind
//   - DigitalInput, DigitalOutput, PWM, Analog (PCF8591), Stepper (A4988)
//
// # Ownership
//
// Registries own their devices until Set.Close. Get returns the same
// pointer on every call; callers keep references and never take
// ownership, so two phases can share a line.
//
// # Failure Classes
//
//   - ErrConfiguration: duplicate ids, missing config keys, bad settings
//   - ErrHardwareIO: a pin or bus operation failed
//   - PreconditionViolation (panic): unknown kind or id, a bring-up bug
//
// # Usage
//
//	set, err := device.Bringup(cfg.Devices, gpio.NewRPIOChip(), logger)
//	if err != nil {
//	    return err
//	}
//	defer set.Close()
//
//	ready := set.DigitalOutputs().Get(device.TendingReady)
//	_ = ready.Assert()
package device
