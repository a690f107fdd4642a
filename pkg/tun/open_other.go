//go:build !linux

package tun

// Open returns the platform's default NIC transport. Everywhere but Linux,
// this is WaterDevice; water has no framed mode, so the framed flavor is
// unreachable outside Linux (the TUN devices water targets don't expose a
// portable equivalent of the frame-info prefix).
func Open(name string, framed bool) (Device, error) {
	return OpenWater(name)
}
