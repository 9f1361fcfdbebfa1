package device

import (
	"fmt"
	"sync"

	"github.com/tendbot/tendbot-core/internal/gpio"
)

// PCF8591 defaults.
const (
	DefaultAnalogBus     = 1
	DefaultAnalogAddress = 0x48

	// pcf8591Control enables the analog output; the low two bits select
	// the channel.
	pcf8591Control = 0x40
)

// Analog is a PCF8591 4-channel 8-bit converter on I2C.
type Analog struct {
	mu   sync.Mutex
	bus  gpio.I2CBus
	addr uint16
}

// NewAnalog opens the converter at addr on the given I2C bus.
func NewAnalog(chip gpio.Chip, bus int, addr uint16) (*Analog, error) {
	b, err := chip.OpenI2C(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: open i2c-%d addr %#x: %w", ErrHardwareIO, bus, addr, err)
	}
	return &Analog{bus: b, addr: addr}, nil
}

func controlByte(channel int) byte {
	return pcf8591Control | byte(channel&0x03)
}

// Read selects channel and returns one conversion.
func (a *Analog) Read(channel int) (uint8, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.bus.Write([]byte{controlByte(channel)}); err != nil {
		return 0, fmt.Errorf("%w: pcf8591 select channel %d: %w", ErrHardwareIO, channel, err)
	}
	v, err := a.bus.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: pcf8591 read channel %d: %w", ErrHardwareIO, channel, err)
	}
	return v, nil
}

// Write sets the analog output value.
func (a *Analog) Write(channel int, value uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.bus.Write([]byte{controlByte(channel), value}); err != nil {
		return fmt.Errorf("%w: pcf8591 write channel %d: %w", ErrHardwareIO, channel, err)
	}
	return nil
}

// Address returns the I2C address.
func (a *Analog) Address() uint16 { return a.addr }

// Close releases the bus.
func (a *Analog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bus.Close()
}
