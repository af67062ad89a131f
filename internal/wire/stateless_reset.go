package wire

import (
	"crypto/rand"
	"fmt"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// WriteStatelessReset composes a stateless reset packet of exactly
// length bytes (RFC 9000 §10.3): a short-header-shaped first byte, random
// padding, and the 16-byte token as the final bytes. length must be at
// least protocol.MinStatelessResetPacketLen.
func WriteStatelessReset(token [16]byte, length int) ([]byte, error) {
	if length < protocol.MinStatelessResetPacketLen {
		return nil, fmt.Errorf("wire: stateless reset length %d below minimum %d", length, protocol.MinStatelessResetPacketLen)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b[:length-16]); err != nil {
		return nil, err
	}
	// Clear the long-header form bit so the packet cannot be mistaken for
	// a long-header packet; the rest of the leading byte stays random.
	b[0] &^= longHeaderFormBit
	copy(b[length-16:], token[:])
	return b, nil
}
