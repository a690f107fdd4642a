package tcpcore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/gopacket/layers"

	"github.com/tuntcp/tuntcp/pkg/headercodec"
)

// ErrEthertypeMismatch is returned by Device.Recv when the NIC prepends a
// frame-info header and that header's ethertype is not IPv4 (spec §4.5 step
// 2). Demux treats it as a silent drop, not an I/O error.
var ErrEthertypeMismatch = errors.New("tcpcore: ethertype mismatch")

// Device is the NIC transport external collaborator (spec §6): blocking
// recv/send of whole IPv4 datagrams. Implementations that prepend a 4-octet
// frame-info header strip it themselves and return ErrEthertypeMismatch from
// Recv on a non-IPv4 frame; see pkg/tun.
type Device interface {
	// Recv blocks until one IPv4 datagram is available and returns it.
	Recv() ([]byte, error)
	// Send transmits one IPv4 datagram, blocking until the kernel accepts it.
	Send(p []byte) error
}

// Stats counts the dropped-segment outcomes named in the error-handling
// taxonomy (spec §7), for tests and diagnostics — this core never surfaces
// these to a caller as an error. An UnacceptableRecv drop still draws an
// empty ACK; the other three are dropped without a reply.
type Stats struct {
	EthertypeMismatch int
	ProtocolMismatch  int
	ParseError        int
	UnacceptableRecv  int
}

// Demux is the packet demultiplexer (spec §4.5, §9): it exclusively owns the
// Hosts→Connection map and is the sole execution context that ever touches a
// Connection, so no locking is needed anywhere in this package.
type Demux struct {
	dev   Device
	conns map[Hosts]*Connection
	Stats Stats
	log   *slog.Logger
}

// NewDemux builds a Demux that reads and writes through dev.
func NewDemux(dev Device, log *slog.Logger) *Demux {
	return &Demux{
		dev:   dev,
		conns: make(map[Hosts]*Connection),
		log:   log,
	}
}

// Run reads and processes datagrams from the device until an error occurs,
// at which point it returns the error (spec §7: I/O errors are
// process-fatal): a NIC I/O error, or an error from Accept or
// Connection.OnSegment (a failed send or an unimplemented branch). It never
// returns nil.
func (d *Demux) Run() error {
	for {
		if err := d.readOne(); err != nil {
			return err
		}
	}
}

func (d *Demux) readOne() error {
	raw, err := d.dev.Recv()
	if errors.Is(err, ErrEthertypeMismatch) {
		d.Stats.EthertypeMismatch++
		return nil
	}
	if err != nil {
		return fmt.Errorf("tcpcore: demux: recv: %w", err)
	}
	return d.handle(raw)
}

// handle parses one raw IPv4 datagram and routes it to its connection,
// creating one via passive accept if none exists (spec §4.5 steps 3-5).
func (d *Demux) handle(raw []byte) error {
	ip, err := headercodec.ParseIPv4(raw)
	if err != nil {
		d.Stats.ParseError++
		if d.log != nil {
			d.log.Debug("dropping unparsable ipv4 datagram", "error", err)
		}
		return nil
	}
	if ip.Protocol != layers.IPProtocolTCP {
		d.Stats.ProtocolMismatch++
		return nil
	}

	tcp, err := headercodec.ParseTCP(ip.Payload)
	if err != nil {
		d.Stats.ParseError++
		if d.log != nil {
			d.log.Debug("dropping unparsable tcp segment", "error", err)
		}
		return nil
	}

	seg := &Segment{IP: ip, TCP: tcp, Payload: tcp.Payload}
	hosts := HostsFromSegment(ip.SrcIP, ip.DstIP, uint16(tcp.SrcPort), uint16(tcp.DstPort))

	if d.log != nil {
		d.log.Debug("segment received", "hosts", hosts.String(), "bytes", len(seg.Payload))
	}

	if c, ok := d.conns[hosts]; ok {
		if err := c.OnSegment(d.dev, seg, &d.Stats); err != nil {
			return fmt.Errorf("tcpcore: demux: %w", err)
		}
		return nil
	}

	c, err := Accept(d.dev, hosts, seg, d.log)
	if err != nil {
		return fmt.Errorf("tcpcore: demux: accept: %w", err)
	}
	if c != nil {
		d.conns[hosts] = c
	}
	return nil
}
