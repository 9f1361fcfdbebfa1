package gpio

import (
	"fmt"
	"sync"
)

// SimChip is an in-memory Chip.
//
// Outputs remember their last written level, inputs return whatever the
// test (or bench operator) drove with SetInput, and PWM pins remember their
// duty cycle. Failures can be injected per pin with FailPin.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type SimChip struct {
	mu       sync.Mutex
	opened   bool
	openErr  error
	pins     map[int]*simPin
	failures map[int]error
	buses    map[simBusKey]*SimI2CBus
	writes   []SimWrite
}

type simPin struct {
	mode  pinMode
	pull  Pull
	level bool
	freq  int
	duty  uint32
	cycle uint32
}

type simBusKey struct {
	bus  int
	addr uint16
}

// SimWrite is one recorded output write.
type SimWrite struct {
	Pin  int
	High bool
}

// NewSimChip returns an unopened simulated chip.
func NewSimChip() *SimChip {
	return &SimChip{
		pins:     make(map[int]*simPin),
		failures: make(map[int]error),
		buses:    make(map[simBusKey]*SimI2CBus),
	}
}

// FailOpen makes the next Open return err.
func (c *SimChip) FailOpen(err error) {
	c.mu.Lock()
	c.openErr = err
	c.mu.Unlock()
}

// FailPin makes every subsequent operation on pin return err.
// Passing nil clears the fault.
func (c *SimChip) FailPin(pin int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, pin)
		return
	}
	c.failures[pin] = err
}

// Open marks the chip open.
func (c *SimChip) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.opened = true
	return nil
}

// Close marks the chip closed. Pin state is retained for inspection.
func (c *SimChip) Close() error {
	c.mu.Lock()
	c.opened = false
	c.mu.Unlock()
	return nil
}

// IsOpen reports whether Open has been called without a matching Close.
func (c *SimChip) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// SetupOutput configures pin as an output.
func (c *SimChip) SetupOutput(pin int, pull Pull) error {
	return c.setup(pin, func(p *simPin) {
		p.mode = modeOutput
		p.pull = pull
	})
}

// SetupInput configures pin as an input. A pulled-up input idles high.
func (c *SimChip) SetupInput(pin int, pull Pull) error {
	return c.setup(pin, func(p *simPin) {
		p.mode = modeInput
		p.pull = pull
		p.level = pull == PullUp
	})
}

// SetupPWM configures pin as a PWM channel.
func (c *SimChip) SetupPWM(pin int, freq int) error {
	if !hardwarePWMPins[pin] {
		return fmt.Errorf("%w: %d", ErrNoHardwarePWM, pin)
	}
	return c.setup(pin, func(p *simPin) {
		p.mode = modePWM
		p.freq = freq
	})
}

func (c *SimChip) setup(pin int, fn func(*simPin)) error {
	if err := validatePin(pin); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(pin); err != nil {
		return err
	}
	p, ok := c.pins[pin]
	if !ok {
		p = &simPin{}
		c.pins[pin] = p
	}
	fn(p)
	return nil
}

// Write drives an output pin.
func (c *SimChip) Write(pin int, high bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.pinLocked(pin, modeOutput)
	if err != nil {
		return err
	}
	p.level = high
	c.writes = append(c.writes, SimWrite{Pin: pin, High: high})
	return nil
}

// Read returns the pin level.
func (c *SimChip) Read(pin int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(pin); err != nil {
		return false, err
	}
	p, ok := c.pins[pin]
	if !ok {
		return false, nil
	}
	return p.level, nil
}

// SetDutyCycle sets a PWM duty.
func (c *SimChip) SetDutyCycle(pin int, duty, cycle uint32) error {
	if duty > cycle {
		return fmt.Errorf("%w: %d/%d", ErrInvalidDutyCycle, duty, cycle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.pinLocked(pin, modePWM)
	if err != nil {
		return err
	}
	p.duty = duty
	p.cycle = cycle
	return nil
}

// OpenI2C returns the simulated bus for (bus, addr), creating it on first use.
func (c *SimChip) OpenI2C(bus int, addr uint16) (I2CBus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil, ErrNotOpen
	}
	key := simBusKey{bus: bus, addr: addr}
	b, ok := c.buses[key]
	if !ok {
		b = &SimI2CBus{}
		c.buses[key] = b
	}
	return b, nil
}

// SetInput drives the level seen on an input pin.
func (c *SimChip) SetInput(pin int, high bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pins[pin]
	if !ok {
		p = &simPin{mode: modeInput}
		c.pins[pin] = p
	}
	p.level = high
}

// Level returns the last level of pin.
func (c *SimChip) Level(pin int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pins[pin]; ok {
		return p.level
	}
	return false
}

// Duty returns the PWM duty and cycle of pin.
func (c *SimChip) Duty(pin int) (duty, cycle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pins[pin]; ok {
		return p.duty, p.cycle
	}
	return 0, 0
}

// PullOf returns the pull configured on pin.
func (c *SimChip) PullOf(pin int) Pull {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pins[pin]; ok {
		return p.pull
	}
	return PullOff
}

// Bus returns the simulated I2C bus for (bus, addr), or nil if never opened.
func (c *SimChip) Bus(bus int, addr uint16) *SimI2CBus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buses[simBusKey{bus: bus, addr: addr}]
}

// Writes returns a copy of all recorded output writes in order.
func (c *SimChip) Writes() []SimWrite {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SimWrite, len(c.writes))
	copy(out, c.writes)
	return out
}

func (c *SimChip) checkLocked(pin int) error {
	if !c.opened {
		return ErrNotOpen
	}
	if err, ok := c.failures[pin]; ok {
		return err
	}
	return nil
}

func (c *SimChip) pinLocked(pin int, want pinMode) (*simPin, error) {
	if err := validatePin(pin); err != nil {
		return nil, err
	}
	if err := c.checkLocked(pin); err != nil {
		return nil, err
	}
	p, ok := c.pins[pin]
	if !ok || p.mode != want {
		return nil, fmt.Errorf("%w: pin %d", ErrWrongMode, pin)
	}
	return p, nil
}

// SimI2CBus records writes and replays queued read bytes.
type SimI2CBus struct {
	mu      sync.Mutex
	written [][]byte
	reads   []byte
	fail    error
	closed  bool
}

// QueueRead appends bytes returned by subsequent ReadByte calls.
func (b *SimI2CBus) QueueRead(data ...byte) {
	b.mu.Lock()
	b.reads = append(b.reads, data...)
	b.mu.Unlock()
}

// Fail makes every subsequent transfer return err. nil clears it.
func (b *SimI2CBus) Fail(err error) {
	b.mu.Lock()
	b.fail = err
	b.mu.Unlock()
}

// Written returns a copy of every write transaction.
func (b *SimI2CBus) Written() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.written))
	for i, w := range b.written {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Write implements I2CBus.
func (b *SimI2CBus) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.written = append(b.written, append([]byte(nil), data...))
	return nil
}

// ReadByte implements I2CBus.
func (b *SimI2CBus) ReadByte() (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return 0, b.fail
	}
	if len(b.reads) == 0 {
		return 0, fmt.Errorf("%w: no data queued", ErrI2CFailed)
	}
	v := b.reads[0]
	b.reads = b.reads[1:]
	return v, nil
}

// Close implements I2CBus.
func (b *SimI2CBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (b *SimI2CBus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
