package wire

import (
	"crypto/rand"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// WriteVersionNegotiation composes a Version Negotiation packet
// (RFC 9000 §17.2.1). dcid/scid are already the swapped pair: dcid should
// be the received packet's source CID, scid the received packet's
// destination CID.
func WriteVersionNegotiation(dcid, scid protocol.ConnectionID, versions []protocol.VersionNumber) ([]byte, error) {
	var firstByte [1]byte
	if _, err := rand.Read(firstByte[:]); err != nil {
		return nil, err
	}
	// The form bit must be set; the rest of the byte is unused and may be
	// random, which helps ossification resistance (RFC 9000 §17.2.1).
	b := []byte{firstByte[0] | longHeaderFormBit}
	b = append(b, 0, 0, 0, 0) // Version = 0 identifies Version Negotiation.
	b = append(b, byte(dcid.Len()))
	b = append(b, dcid.Bytes()...)
	b = append(b, byte(scid.Len()))
	b = append(b, scid.Bytes()...)
	for _, v := range versions {
		b = append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return b, nil
}
