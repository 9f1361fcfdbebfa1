// Package gpio is the hardware abstraction the device layer is built on.
//
// A Chip exposes numbered pins (BCM numbering) that can be configured as
// digital outputs, digital inputs with pull resistors, or hardware PWM
// channels, plus access to I2C buses for peripheral converters.
//
// Two backends are provided:
//
//   - RPIOChip drives the Raspberry Pi through /dev/gpiomem using go-rpio.
//   - SimChip keeps every pin in memory. It is used by tests and for bench
//     runs without hardware, and supports fault injection per pin.
//
// All I/O is synchronous and level based; there is no edge detection or
// interrupt handling in this package.
//
// # Usage
//
//	chip := gpio.NewRPIOChip()
//	if err := chip.Open(); err != nil {
//	    return err
//	}
//	defer chip.Close()
//
//	if err := chip.SetupOutput(17, gpio.PullOff); err != nil {
//	    return err
//	}
//	_ = chip.Write(17, true)
package gpio
