package tcpcore

import "fmt"

// State is a connection's TCP state. A passive-open connection in this core
// reaches exactly five states; every other state of the full protocol
// (LISTEN, SYN_SENT, CLOSE_WAIT, CLOSING, LAST_ACK) is unreachable here —
// simultaneous open and a peer-initiated close sequence are both non-goals.
type State int

const (
	// StateSynReceived represents waiting for a confirming ACK after having
	// both received and sent a connection request. Entry state for every
	// connection this core creates (passive open only).
	StateSynReceived State = iota

	// StateEstablished represents an open connection; data received can be
	// delivered to the user. This core leaves it on the very first
	// acceptable ACK (open question 2), which immediately starts active
	// close.
	StateEstablished

	// StateFinWait1 represents waiting for an ACK of the FIN this core sent,
	// or for the peer's own FIN.
	StateFinWait1

	// StateFinWait2 represents having the FIN ACKed; now waiting for the
	// peer's FIN.
	StateFinWait2

	// StateTimeWait represents having seen and ACKed the peer's FIN. Terminal
	// for this core: there is no TimeWait timer and no eviction from the
	// demultiplexer's connection map.
	StateTimeWait
)

// String returns the RFC 793 name of the state.
func (s State) String() string {
	switch s {
	case StateSynReceived:
		return "SYN_RECEIVED"
	case StateEstablished:
		return "ESTABLISHED"
	case StateFinWait1:
		return "FIN_WAIT_1"
	case StateFinWait2:
		return "FIN_WAIT_2"
	case StateTimeWait:
		return "TIME_WAIT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}
