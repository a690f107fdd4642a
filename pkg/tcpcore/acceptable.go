package tcpcore

import "github.com/tuntcp/tuntcp/pkg/seqnum"

// receiveAcceptable implements the receive-window acceptability table (spec
// §4.2, RFC 793 §3.3) for a segment with starting sequence seq and length
// segLen, against the connection's current receive sequence space.
func receiveAcceptable(recvNXT uint32, recvWND uint16, seq uint32, segLen uint32) bool {
	wend := recvNXT + uint32(recvWND)
	switch {
	case segLen == 0 && recvWND == 0:
		return seq == recvNXT
	case segLen == 0 && recvWND > 0:
		return seqnum.InOpenInterval(recvNXT-1, seq, wend)
	case segLen > 0 && recvWND == 0:
		return false
	default:
		last := seq + segLen - 1
		return seqnum.InOpenInterval(recvNXT-1, seq, wend) || seqnum.InOpenInterval(recvNXT-1, last, wend)
	}
}

// sendAcceptable implements the ACK-field acceptability check (spec §4.2). In
// SynReceived the accepted range is the closed interval [una, nxt]; in every
// other state it's the half-open interval (una, nxt]. That half-open
// interval is empty once una == nxt (nothing outstanding, e.g. right after a
// FIN has been fully acked) — a duplicate ACK repeating that same number must
// still be accepted rather than spuriously rejected, so that case is handled
// separately.
func sendAcceptable(state State, una, nxt, ackn uint32) bool {
	if state == StateSynReceived {
		return seqnum.InOpenInterval(una-1, ackn, nxt+1)
	}
	if una == nxt {
		return ackn == una
	}
	return seqnum.InOpenInterval(una, ackn, nxt+1)
}
