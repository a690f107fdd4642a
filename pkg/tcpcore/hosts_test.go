package tcpcore

import (
	"net"
	"testing"

	"github.com/google/gopacket/layers"
)

func TestHostsFromSegmentPreservesInboundOrientation(t *testing.T) {
	h := HostsFromSegment(net.IPv4(10, 0, 0, 2), net.IPv4(10, 0, 0, 1), 40000, 9000)
	want := Hosts{
		RemoteAddr: [4]byte{10, 0, 0, 2},
		RemotePort: 40000,
		LocalAddr:  [4]byte{10, 0, 0, 1},
		LocalPort:  9000,
	}
	if h != want {
		t.Errorf("HostsFromSegment() = %+v, want %+v", h, want)
	}
	if got, want := h.String(), "10.0.0.2:40000->10.0.0.1:9000"; got != want {
		t.Errorf("Hosts.String() = %q, want %q", got, want)
	}
}

func TestSegLen(t *testing.T) {
	tests := []struct {
		name       string
		syn, fin   bool
		payloadLen int
		want       uint32
	}{
		{"empty segment", false, false, 0, 0},
		{"syn only", true, false, 0, 1},
		{"fin only", false, true, 0, 1},
		{"syn and fin", true, true, 0, 2},
		{"payload only", false, false, 10, 10},
		{"payload and fin", false, true, 10, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := &Segment{
				TCP:     &layers.TCP{SYN: tt.syn, FIN: tt.fin},
				Payload: make([]byte, tt.payloadLen),
			}
			if got := seg.SegLen(); got != tt.want {
				t.Errorf("SegLen() = %d, want %d", got, tt.want)
			}
		})
	}
}
