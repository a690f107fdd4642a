package tun

import (
	"fmt"

	"github.com/songgao/water"
)

// WaterDevice is the portable, unframed NIC transport, built on
// github.com/songgao/water instead of a raw Linux ioctl — the same library
// github.com/therealutkarshpriyadarshi/network's sibling examples in this
// retrieval pack (soypat-dgrams, bitsinside-httptap) depend on directly for
// exactly this purpose. water.Config's default PI is off, matching spec §6's
// "without frame-info prefix" flavor.
type WaterDevice struct {
	iface *water.Interface
	buf   []byte
}

// waterConfig builds the water.Config for the named TUN interface; split out
// from OpenWater so it's exercisable without opening a real device.
func waterConfig(name string) water.Config {
	cfg := water.Config{DeviceType: water.TUN}
	cfg.Name = name
	return cfg
}

// OpenWater opens the named TUN interface through water, always in the
// unframed flavor.
func OpenWater(name string) (*WaterDevice, error) {
	iface, err := water.New(waterConfig(name))
	if err != nil {
		return nil, fmt.Errorf("tun: water.New %s: %w", name, err)
	}
	return &WaterDevice{iface: iface, buf: make([]byte, unframedBufferSize)}, nil
}

// Recv blocks for one read: a raw IPv4 datagram, no frame-info prefix.
func (d *WaterDevice) Recv() ([]byte, error) {
	n, err := d.iface.Read(d.buf)
	if err != nil {
		return nil, fmt.Errorf("tun: water read: %w", err)
	}
	return d.buf[:n], nil
}

// Send writes p as a single raw IPv4 datagram.
func (d *WaterDevice) Send(p []byte) error {
	if _, err := d.iface.Write(p); err != nil {
		return fmt.Errorf("tun: water write: %w", err)
	}
	return nil
}

// Close releases the underlying TUN interface.
func (d *WaterDevice) Close() error {
	return d.iface.Close()
}

var _ Device = (*WaterDevice)(nil)
