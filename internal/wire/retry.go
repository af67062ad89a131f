package wire

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// retryIntegrityTagLen is the fixed AEAD tag length appended to a Retry
// packet (RFC 9001 §5.8).
const retryIntegrityTagLen = 16

// retryAEADKey/retryAEADNonce are the constant, publicly-known values RFC
// 9001 §5.8 specifies for computing the Retry Integrity Tag. They provide
// no confidentiality; they only let a receiver detect a corrupted or
// forged Retry packet.
var (
	retryAEADKeyV1   = [16]byte{0xbe, 0x0c, 0x69, 0x0b, 0x9f, 0x66, 0x57, 0x5a, 0x1d, 0x76, 0x6b, 0x54, 0xe3, 0x68, 0xc8, 0x4e}
	retryAEADNonceV1 = [12]byte{0x46, 0x15, 0x99, 0xd3, 0x5d, 0x63, 0x2b, 0xf2, 0x23, 0x98, 0x25, 0xbb}
)

// retryIntegrityTag computes the RFC 9001 §5.8 integrity tag over a Retry
// packet's pseudo-header (the original DCID, length-prefixed) followed by
// the Retry packet itself minus the tag.
func retryIntegrityTag(retryPacket []byte, originalDCID protocol.ConnectionID) ([retryIntegrityTagLen]byte, error) {
	var tag [retryIntegrityTagLen]byte
	block, err := aes.NewCipher(retryAEADKeyV1[:])
	if err != nil {
		return tag, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return tag, err
	}
	pseudo := make([]byte, 0, 1+originalDCID.Len()+len(retryPacket))
	pseudo = append(pseudo, byte(originalDCID.Len()))
	pseudo = append(pseudo, originalDCID.Bytes()...)
	pseudo = append(pseudo, retryPacket...)
	sealed := aead.Seal(nil, retryAEADNonceV1[:], nil, pseudo)
	copy(tag[:], sealed)
	return tag, nil
}

// WriteRetry composes a Retry packet (RFC 9000 §17.2.5): a long header
// whose destination CID is the peer's source CID, whose source CID is a
// freshly generated one, carrying token, and terminated with the RFC 9001
// integrity tag computed over originalDCID (the client's original
// destination CID, which the token also authenticates).
func WriteRetry(version protocol.VersionNumber, dcid, scid, originalDCID protocol.ConnectionID, token []byte) ([]byte, error) {
	b := []byte{longHeaderFormBit | fixedBit | byte(LongHeaderTypeRetry)<<4}
	b = append(b, byte(version>>24), byte(version>>16), byte(version>>8), byte(version))
	b = append(b, byte(dcid.Len()))
	b = append(b, dcid.Bytes()...)
	b = append(b, byte(scid.Len()))
	b = append(b, scid.Bytes()...)
	b = append(b, token...)

	tag, err := retryIntegrityTag(b, originalDCID)
	if err != nil {
		return nil, err
	}
	return append(b, tag[:]...), nil
}
