//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlaveRequest is the I2C_SLAVE ioctl from linux/i2c-dev.h.
const i2cSlaveRequest = 0x0703

// i2cDev is an open /dev/i2c-N handle bound to one slave address.
type i2cDev struct {
	mu sync.Mutex
	fd int
}

func openI2CDev(bus int, addr uint16) (I2CBus, error) {
	path := fmt.Sprintf("/dev/i2c-%d", bus)

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrI2CFailed, path, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlaveRequest, int(addr)); err != nil {
		unix.Close(fd) //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: selecting slave 0x%02x on %s: %w", ErrI2CFailed, addr, path, err)
	}

	return &i2cDev{fd: fd}, nil
}

func (d *i2cDev) Write(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := unix.Write(d.fd, data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrI2CFailed, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: short write %d/%d", ErrI2CFailed, n, len(data))
	}
	return nil
}

func (d *i2cDev) ReadByte() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf := make([]byte, 1)
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrI2CFailed, err)
	}
	if n != 1 {
		return 0, fmt.Errorf("%w: short read", ErrI2CFailed)
	}
	return buf[0], nil
}

func (d *i2cDev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
