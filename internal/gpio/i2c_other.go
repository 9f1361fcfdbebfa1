//go:build !linux

package gpio

func openI2CDev(bus int, addr uint16) (I2CBus, error) {
	return nil, ErrI2CUnsupported
}
