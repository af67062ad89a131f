package socket

import (
	"github.com/nodejs-quic/quicsocket/internal/protocol"
	"github.com/nodejs-quic/quicsocket/internal/wire"
)

// packetClass is the accept_initial classification result (spec §4.7.2).
type packetClass int

const (
	classOK packetClass = iota
	classVersion
	classRetry
	classIgnore
)

// classifyHeader sorts a decoded header into the four buckets
// accept_initial dispatches on. A short header never originates a new
// session by itself (it either matches an existing connection ID or a
// stateless-reset token before classification is ever reached), so it
// classifies as IGNORE here. Long-header 0-RTT is treated as requiring a
// RETRY round trip since this core never holds 0-RTT keys to accept it
// directly; a stray Retry or Version-Negotiation packet arriving at a
// server is always meaningless and ignored.
func classifyHeader(hdr *wire.Header) packetClass {
	if !hdr.IsLongHeader {
		return classIgnore
	}
	if hdr.Version == 0 {
		return classIgnore
	}
	if hdr.Version != protocol.Version1 {
		return classVersion
	}
	switch hdr.Type {
	case wire.LongHeaderTypeInitial:
		return classOK
	case wire.LongHeaderTypeZeroRTT:
		return classRetry
	default:
		return classIgnore
	}
}
