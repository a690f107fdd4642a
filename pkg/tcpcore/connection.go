// Package tcpcore implements the core of this stack: the per-connection TCP
// state machine (passive open through graceful active close), the 4-tuple
// demultiplexer, and the send/receive sequence-space validation that backs
// both. Header parsing/serialization and NIC I/O are external collaborators
// (pkg/headercodec and pkg/tun respectively); tcpcore only consumes them
// through the Device interface and the headercodec functions.
package tcpcore

import (
	"fmt"
	"log/slog"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/tuntcp/tuntcp/pkg/headercodec"
)

const (
	// acceptWindow is the fixed send.wnd advertised to every peer at accept
	// (spec §4.3). This core never grows or shrinks it.
	acceptWindow = 1024

	// maxDatagram is the largest IPv4 datagram this core will emit (spec §4.4).
	maxDatagram = 1500
)

// SendSequenceSpace tracks this side's send sequence variables (spec §3,
// RFC 793 §3.2). WL1/WL2 are carried for fidelity with the canonical state
// but never read or written anywhere in this core — window updates are a
// non-goal.
type SendSequenceSpace struct {
	ISS uint32 // initial send sequence number, chosen at accept
	UNA uint32 // oldest unacknowledged sequence number
	NXT uint32 // next sequence number to send
	WND uint16 // window advertised to the peer
	UP  bool   // urgent pointer flag, unused
	WL1 uint32 // unused
	WL2 uint32 // unused
}

// RecvSequenceSpace tracks this side's receive sequence variables.
type RecvSequenceSpace struct {
	IRS uint32 // initial receive sequence number, taken from the peer's SYN
	NXT uint32 // next sequence number expected from the peer
	WND uint16 // peer's advertised window, captured at SYN
	UP  bool   // urgent pointer flag, unused
}

// Connection is a per-flow TCP record: state, both sequence spaces, the
// IPv4/TCP header templates for this flow, and the one serialize buffer
// reused across every segment this connection emits.
type Connection struct {
	Hosts Hosts
	State State

	Send SendSequenceSpace
	Recv RecvSequenceSpace

	ipTemplate  *layers.IPv4
	tcpTemplate *layers.TCP

	buf gopacket.SerializeBuffer

	log *slog.Logger
}

// Accept performs the passive-open handshake (spec §4.3): given an inbound
// segment and the 4-tuple key it was received under, it builds a new
// Connection in SynReceived and immediately emits the SYN+ACK reply through
// dev. If the segment does not carry SYN, no connection is created and
// (nil, nil) is returned — the caller drops the segment silently.
func Accept(dev Device, hosts Hosts, seg *Segment, log *slog.Logger) (*Connection, error) {
	if !seg.TCP.SYN {
		return nil, nil
	}

	c := &Connection{
		Hosts: hosts,
		State: StateSynReceived,
		Send: SendSequenceSpace{
			ISS: 0, // deterministic in this core; production would randomize
			UNA: 0,
			NXT: 0,
			WND: acceptWindow,
		},
		Recv: RecvSequenceSpace{
			IRS: seg.TCP.Seq,
			NXT: seg.TCP.Seq + 1, // SYN consumes one sequence slot (invariant 2)
			WND: seg.TCP.Window,
		},
		buf: gopacket.NewSerializeBuffer(),
		log: log,
	}

	// Templates are built LOCAL/REMOTE, inverted from the received SYN's
	// REMOTE/LOCAL orientation (invariant 4) — unlike Hosts, which keeps it.
	c.ipTemplate = headercodec.NewIPv4Template(seg.IP.DstIP, seg.IP.SrcIP)
	c.tcpTemplate = headercodec.NewTCPTemplate(hosts.LocalPort, hosts.RemotePort, c.Send.ISS, c.Send.WND)
	c.tcpTemplate.SYN = true
	c.tcpTemplate.ACK = true

	if log != nil {
		log.Debug("passive accept", "hosts", hosts.String(), "irs", c.Recv.IRS)
	}

	if _, err := c.Write(dev, nil); err != nil {
		return nil, fmt.Errorf("tcpcore: accept %s: %w", hosts, err)
	}
	return c, nil
}

// Write serializes the connection's current templates plus an optional
// payload and transmits it through dev (spec §4.4). send.nxt advances by the
// number of payload bytes written, plus 1 for each of SYN/FIN that was set on
// the template — which is then cleared, the single-shot convention design
// note 4 describes.
func (c *Connection) Write(dev Device, payload []byte) (int, error) {
	c.tcpTemplate.Seq = c.Send.NXT
	c.tcpTemplate.Ack = c.Recv.NXT

	raw, err := headercodec.Serialize(c.buf, c.ipTemplate, c.tcpTemplate, payload, maxDatagram)
	if err != nil {
		return 0, fmt.Errorf("tcpcore: write: %w", err)
	}
	if err := dev.Send(raw); err != nil {
		return 0, fmt.Errorf("tcpcore: write: send: %w", err)
	}

	n := len(payload)
	c.Send.NXT += uint32(n)
	if c.tcpTemplate.SYN {
		c.Send.NXT++
		c.tcpTemplate.SYN = false
	}
	if c.tcpTemplate.FIN {
		c.Send.NXT++
		c.tcpTemplate.FIN = false
	}
	return n, nil
}

// OnSegment processes one inbound segment against an existing connection
// (spec §4.3, steps 1-5). stats, if non-nil, is credited for a
// receive-unacceptable drop; it is the demultiplexer's shared counters, not
// per-connection state. The errors returned are a failed Write (of the empty
// ACK for an unacceptable segment, of the FIN, or of the closing ACK) and the
// explicitly unimplemented branches: an unacceptable ACK in any state (no RST
// is sent in SynReceived) and any segment received in TimeWait. None of them
// is retried; Demux.Run returns them to its caller.
func (c *Connection) OnSegment(dev Device, seg *Segment, stats *Stats) error {
	segLen := seg.SegLen()

	if !receiveAcceptable(c.Recv.NXT, c.Recv.WND, seg.TCP.Seq, segLen) {
		if stats != nil {
			stats.UnacceptableRecv++
		}
		if c.log != nil {
			c.log.Debug("segment not receive-acceptable, dropping", "hosts", c.Hosts.String(), "seq", seg.TCP.Seq)
		}
		_, err := c.Write(dev, nil)
		return err
	}

	// SYN/FIN contribution to recv.nxt is handled only via the transitions
	// below (open question 1), not here.
	c.Recv.NXT = seg.TCP.Seq + uint32(len(seg.Payload))

	if !seg.TCP.ACK {
		if c.log != nil {
			c.log.Debug("segment has no ACK, dropping", "hosts", c.Hosts.String())
		}
		return nil
	}

	if !sendAcceptable(c.State, c.Send.UNA, c.Send.NXT, seg.TCP.Ack) {
		if c.State == StateSynReceived {
			// TODO: emit RST instead of failing the connection.
			return fmt.Errorf("tcpcore: %s: ack %d unacceptable in SYN_RECEIVED, RST unimplemented", c.Hosts, seg.TCP.Ack)
		}
		return fmt.Errorf("tcpcore: %s: ack %d unacceptable in %s, unimplemented", c.Hosts, seg.TCP.Ack, c.State)
	}

	switch c.State {
	case StateSynReceived:
		c.State = StateEstablished

	case StateEstablished:
		// Any acceptable segment here starts an active close (open question 2).
		c.Send.UNA = seg.TCP.Ack
		c.tcpTemplate.FIN = true
		c.State = StateFinWait1
		if _, err := c.Write(dev, nil); err != nil {
			return fmt.Errorf("tcpcore: %s: emit FIN: %w", c.Hosts, err)
		}

	case StateFinWait1:
		c.Send.UNA = seg.TCP.Ack
		if seg.TCP.Ack == c.Send.ISS+2 {
			c.State = StateFinWait2
		} else if c.log != nil {
			c.log.Debug("expected FIN,ACK", "hosts", c.Hosts.String(), "state", c.State, "ack", seg.TCP.Ack)
		}

	case StateFinWait2:
		if seg.TCP.FIN {
			c.Send.UNA = seg.TCP.Ack
			c.Recv.NXT++ // the FIN itself consumes one sequence slot
			c.State = StateTimeWait
			if _, err := c.Write(dev, nil); err != nil {
				return fmt.Errorf("tcpcore: %s: emit closing ACK: %w", c.Hosts, err)
			}
		} else if c.log != nil {
			c.log.Debug("expected FIN,ACK", "hosts", c.Hosts.String(), "state", c.State)
		}

	case StateTimeWait:
		return fmt.Errorf("tcpcore: %s: segment received in TIME_WAIT, unimplemented", c.Hosts)
	}

	return nil
}
