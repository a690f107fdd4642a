// Package seqnum implements 32-bit modular sequence number arithmetic for TCP,
// as used to compare SEQ/ACK values that wrap around 2^32.
package seqnum

// LessThan reports whether a is strictly less than b under 32-bit wraparound
// arithmetic: true iff (a - b) mod 2^32 > 2^31. Never compare sequence numbers
// with the built-in < operator; it breaks the instant either value wraps.
func LessThan(a, b uint32) bool {
	return a-b > 1<<31
}

// InOpenInterval reports whether mid lies strictly between lo and hi on the
// wraparound number line, i.e. LessThan(lo, mid) && LessThan(mid, hi).
func InOpenInterval(lo, mid, hi uint32) bool {
	return LessThan(lo, mid) && LessThan(mid, hi)
}
