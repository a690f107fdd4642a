package tcpcore

import (
	"fmt"
	"net"

	"github.com/google/gopacket/layers"
)

// Hosts is the 4-tuple key identifying a connection (spec §3, GLOSSARY):
// (remote_ip, remote_port, local_ip, local_port). It retains the orientation
// of the inbound segment that created the entry — remote is always the
// segment's source, local its destination (invariant 5) — even though the
// connection's own IPv4/TCP templates invert that orientation (invariant 4).
type Hosts struct {
	RemoteAddr [4]byte
	RemotePort uint16
	LocalAddr  [4]byte
	LocalPort  uint16
}

// HostsFromSegment builds the lookup key for an inbound IPv4+TCP segment.
func HostsFromSegment(srcIP, dstIP net.IP, srcPort, dstPort uint16) Hosts {
	var h Hosts
	copy(h.RemoteAddr[:], srcIP.To4())
	h.RemotePort = srcPort
	copy(h.LocalAddr[:], dstIP.To4())
	h.LocalPort = dstPort
	return h
}

func (h Hosts) String() string {
	r := net.IP(h.RemoteAddr[:])
	l := net.IP(h.LocalAddr[:])
	return fmt.Sprintf("%s:%d->%s:%d", r, h.RemotePort, l, h.LocalPort)
}

// Segment is one inbound IPv4+TCP datagram, already parsed by the header
// codec (spec §6's "header codec" external collaborator).
type Segment struct {
	IP      *layers.IPv4
	TCP     *layers.TCP
	Payload []byte
}

// SegLen is seg_len as defined in the GLOSSARY: payload length, plus 1 if SYN
// is set, plus 1 if FIN is set.
func (s *Segment) SegLen() uint32 {
	n := uint32(len(s.Payload))
	if s.TCP.SYN {
		n++
	}
	if s.TCP.FIN {
		n++
	}
	return n
}
