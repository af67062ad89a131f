package protocol

// VersionNumber is a QUIC version, carried in the long header.
type VersionNumber uint32

// Version1 is the version this demultiplexer speaks (RFC 9000 / QUIC v1).
// A real deployment negotiating multiple versions would make this a slice;
// the core only needs to know the one version it accepts without a Version
// Negotiation round trip.
const Version1 VersionNumber = 0x00000001

// PacketType separates a client Initial from every other long-header
// packet. The accept_initial classification (socket's classifyHeader)
// works on wire.LongHeaderType instead and does not use this type.
type PacketType int

const (
	// PacketTypeInitial is a client Initial packet.
	PacketTypeInitial PacketType = iota
	// PacketTypeOther is any other long-header type (0-RTT, Handshake,
	// Retry).
	PacketTypeOther
)

// MinStatelessResetPacketLen is the minimum length, in bytes, of a
// stateless reset packet a compliant endpoint may emit (RFC 9000 §10.3).
const MinStatelessResetPacketLen = 41

// StatelessResetTokenLen is the fixed length of a stateless reset token.
const StatelessResetTokenLen = 16

// MaxRetryTokenLen bounds retry tokens produced by this core (spec §3).
const MaxRetryTokenLen = 256

// MaxPacketSize is the largest datagram this core will buffer (C1).
const MaxPacketSize = 1452
