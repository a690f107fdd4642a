//go:build linux

package tun

import (
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/tuntcp/tuntcp/pkg/tcpcore"
)

// Open returns the platform's default NIC transport. On Linux this is
// RawDevice, opened directly against /dev/net/tun.
func Open(name string, framed bool) (Device, error) {
	return OpenRaw(name, framed)
}

// RawDevice opens /dev/net/tun directly via the TUNSETIFF ioctl. It is the
// framed-or-unframed Linux-specific NIC transport; pkg/tun's WaterDevice
// offers the portable unframed alternative.
type RawDevice struct {
	fd     int
	framed bool
	buf    []byte
}

// OpenRaw opens the named TUN interface. framed selects the wire flavor: true
// keeps the kernel's 4-octet protocol-info prefix on every read (IFF_TUN
// alone), false asks the kernel to omit it (IFF_TUN|IFF_NO_PI).
func OpenRaw(name string, framed bool) (*RawDevice, error) {
	if len(name) >= unix.IFNAMSIZ {
		return nil, fmt.Errorf("tun: interface name %q too long", name)
	}

	fd, err := syscall.Open("/dev/net/tun", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("tun: open /dev/net/tun: %w", err)
	}

	var ifr ifreq
	copy(ifr.name[:], name)
	flags := uint16(unix.IFF_TUN)
	if !framed {
		flags |= uint16(unix.IFF_NO_PI)
	}
	ifr.setflags(flags)
	if err := ioctl(fd, unix.TUNSETIFF, ifr.ptr()); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("tun: TUNSETIFF %s: %w", name, err)
	}

	bufSize := unframedBufferSize
	if framed {
		bufSize = framedBufferSize
	}
	return &RawDevice{fd: fd, framed: framed, buf: make([]byte, bufSize)}, nil
}

// Recv blocks for one read from the TUN fd. In framed mode it validates the
// ethertype (spec §4.5 step 2) and strips the 4-octet prefix before
// returning, surfacing tcpcore.ErrEthertypeMismatch on a non-IPv4 frame
// rather than silently looping — Demux owns that decision.
func (d *RawDevice) Recv() ([]byte, error) {
	n, err := syscall.Read(d.fd, d.buf)
	if err != nil {
		return nil, fmt.Errorf("tun: read: %w", err)
	}
	if !d.framed {
		return d.buf[:n], nil
	}
	return stripFrameInfo(d.buf[:n])
}

// stripFrameInfo validates the 4-octet frame-info prefix (flags, ethertype,
// both big-endian) and returns the IPv4 datagram that follows it.
func stripFrameInfo(frame []byte) ([]byte, error) {
	if len(frame) < 4 {
		return nil, fmt.Errorf("tun: short framed read: %d bytes", len(frame))
	}
	if ethertype := binary.BigEndian.Uint16(frame[2:4]); ethertype != ethertypeIPv4 {
		return nil, tcpcore.ErrEthertypeMismatch
	}
	return frame[4:], nil
}

// Send writes p as a single datagram, prepending the 4-octet frame-info
// header (flags 0, ethertype IPv4) in framed mode.
func (d *RawDevice) Send(p []byte) error {
	if !d.framed {
		if _, err := syscall.Write(d.fd, p); err != nil {
			return fmt.Errorf("tun: write: %w", err)
		}
		return nil
	}

	frame := make([]byte, 4+len(p))
	binary.BigEndian.PutUint16(frame[2:4], ethertypeIPv4)
	copy(frame[4:], p)
	if _, err := syscall.Write(d.fd, frame); err != nil {
		return fmt.Errorf("tun: write: %w", err)
	}
	return nil
}

// Close releases the TUN file descriptor.
func (d *RawDevice) Close() error {
	return syscall.Close(d.fd)
}

var _ Device = (*RawDevice)(nil)

func ioctl(fd int, request uintptr, argp unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), request, uintptr(argp))
	if errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}

// ifreq mirrors struct ifreq from <net/if.h>: an interface name plus a union
// of device-specific data, here used only to carry TUNSETIFF's flags word.
type ifreq struct {
	name [unix.IFNAMSIZ]byte
	data [64]byte
}

func (r *ifreq) setflags(flags uint16) {
	*(*uint16)(unsafe.Pointer(&r.data[0])) = flags
}

func (r *ifreq) ptr() unsafe.Pointer { return unsafe.Pointer(r) }
