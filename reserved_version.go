package socket

import (
	"encoding/binary"
	"net/netip"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// fnvOffsetBasis and fnvPrime are the 32-bit FNV-1a constants used to fold
// the remote address and received version into a reserved version number
// (spec §4.7.3), grounded on GenerateReservedVersion in
// node_quic_socket.cc.
const (
	fnvOffsetBasis uint32 = 0x811c9dc5
	fnvPrime       uint32 = 0x01000193
)

// GenerateReservedVersion computes the version-negotiation reserved entry
// for remote at the given received version. It always satisfies
// (v & 0x0f0f0f0f) == 0x0a0a0a0a (spec §8 testable property #7), so a
// well-behaved peer recognizes it as a greased, unusable version rather
// than a real one it must speak.
func GenerateReservedVersion(remote netip.AddrPort, version protocol.VersionNumber) protocol.VersionNumber {
	h := fnvOffsetBasis
	addr := remote.Addr().AsSlice()
	for _, b := range addr {
		h ^= uint32(b)
		h *= fnvPrime
	}
	var portBuf [2]byte
	binary.BigEndian.PutUint16(portBuf[:], remote.Port())
	for _, b := range portBuf {
		h ^= uint32(b)
		h *= fnvPrime
	}
	var versionBuf [4]byte
	binary.BigEndian.PutUint32(versionBuf[:], uint32(version))
	for _, b := range versionBuf {
		h ^= uint32(b)
		h *= fnvPrime
	}
	h &= 0xf0f0f0f0
	h |= 0x0a0a0a0a
	return protocol.VersionNumber(h)
}
