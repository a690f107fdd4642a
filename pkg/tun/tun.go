// Package tun implements the NIC transport external collaborator spec §6
// names: blocking recv/send of whole IPv4 datagrams, in the two wire flavors
// spec §6 and design note "Ethertype prefix" describe — with and without a
// 4-octet frame-info prefix — behind the single tcpcore.Device interface.
// RawDevice (Linux only) implements both flavors directly against
// /dev/net/tun; WaterDevice, built on github.com/songgao/water, is the
// portable unframed alternative used on every other GOOS. Open picks
// whichever backend the target platform supports.
package tun

import "github.com/tuntcp/tuntcp/pkg/tcpcore"

const (
	// framedBufferSize is the 1504-octet buffer spec §6 names for the framed
	// flavor: a 4-octet frame-info prefix plus a 1500-octet IPv4 datagram.
	framedBufferSize = 1504
	// unframedBufferSize is the 1500-octet buffer for the unframed flavor.
	unframedBufferSize = 1500

	ethertypeIPv4 = 0x0800
)

// Device is a NIC transport that can also be closed; both RawDevice and
// WaterDevice implement it, and it's what Open returns.
type Device interface {
	tcpcore.Device
	Close() error
}
