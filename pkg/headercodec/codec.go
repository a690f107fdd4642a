// Package headercodec parses and serializes IPv4+TCP headers and computes the
// IPv4-pseudo-header TCP checksum. It is the "header codec" external collaborator
// the core depends on: a thin wrapper around github.com/google/gopacket's
// layers.IPv4 and layers.TCP, which already implement the RFC 791/793 wire
// formats and the pseudo-header checksum.
package headercodec

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// IPv4TemplateTTL is the TTL stamped on every IPv4 header this stack emits.
const IPv4TemplateTTL = 64

// ParseIPv4 parses an IPv4 header from the front of data. The returned layer's
// Payload field holds everything after the header, including the TCP segment.
func ParseIPv4(data []byte) (*layers.IPv4, error) {
	ip := &layers.IPv4{}
	if err := ip.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("headercodec: parse ipv4: %w", err)
	}
	return ip, nil
}

// ParseTCP parses a TCP segment from data, which must be an IPv4 payload (i.e.
// start immediately after the IPv4 header). The returned layer's Payload field
// holds the segment's application data.
func ParseTCP(data []byte) (*layers.TCP, error) {
	tcp := &layers.TCP{}
	if err := tcp.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("headercodec: parse tcp: %w", err)
	}
	return tcp, nil
}

// NewIPv4Template builds an IPv4 header skeleton: TTL 64, protocol TCP,
// identification 0, src/dst as given. Length and checksum are computed by
// Serialize.
func NewIPv4Template(src, dst net.IP) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      IPv4TemplateTTL,
		Id:       0,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    src,
		DstIP:    dst,
	}
}

// NewTCPTemplate builds a TCP header skeleton with the given ports, initial
// sequence number, and advertised window, and no control flags set. Callers set
// SYN/ACK/FIN on the returned template before calling Serialize; Connection.Write
// clears SYN and FIN again once sent (spec.md §4.4's single-shot flag
// convention) and leaves ACK set.
func NewTCPTemplate(srcPort, dstPort uint16, seq uint32, window uint16) *layers.TCP {
	return &layers.TCP{
		SrcPort:    layers.TCPPort(srcPort),
		DstPort:    layers.TCPPort(dstPort),
		Seq:        seq,
		Window:     window,
		DataOffset: 5,
	}
}

// Serialize assembles ip+tcp+payload into a wire-format datagram into buf,
// fixing up header lengths and computing both the IPv4 header checksum and the
// TCP checksum over the IPv4 pseudo-header. buf is cleared and reused; the
// returned slice aliases buf's internal storage and is only valid until the next
// call that reuses buf. Returns an error if the assembled datagram exceeds
// maxLen octets.
func Serialize(buf gopacket.SerializeBuffer, ip *layers.IPv4, tcp *layers.TCP, payload []byte, maxLen int) ([]byte, error) {
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, fmt.Errorf("headercodec: set checksum network layer: %w", err)
	}

	buf.Clear()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, tcp, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("headercodec: serialize datagram: %w", err)
	}

	out := buf.Bytes()
	if len(out) > maxLen {
		return nil, fmt.Errorf("headercodec: serialized datagram too large: %d > %d octets", len(out), maxLen)
	}
	return out, nil
}
