package wire

import (
	"fmt"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// LongHeaderType is the two-bit type field of a long-header packet
// (RFC 9000 §17.2).
type LongHeaderType byte

const (
	LongHeaderTypeInitial   LongHeaderType = 0x0
	LongHeaderTypeZeroRTT   LongHeaderType = 0x1
	LongHeaderTypeHandshake LongHeaderType = 0x2
	LongHeaderTypeRetry     LongHeaderType = 0x3
)

const (
	longHeaderFormBit = 0x80
	fixedBit          = 0x40
)

// Header is the subset of a QUIC packet header the demultiplexer needs to
// route and classify a datagram: the header form, version, connection
// IDs, and (for a long-header Initial packet) the retry token.
type Header struct {
	IsLongHeader bool
	Type         LongHeaderType
	Version      protocol.VersionNumber
	DestConnID   protocol.ConnectionID
	SrcConnID    protocol.ConnectionID
	Token        []byte

	ParsedLen int
}

// ParseHeader decodes the version and connection IDs of a packet.
//
// Short-header packets don't carry their destination connection ID's
// length on the wire; the caller must supply the length this socket's
// sessions were assigned (shortHeaderDCIDLen), exactly as ngtcp2's
// ngtcp2_pkt_decode_version_cid takes an explicit short-header CID length.
func ParseHeader(data []byte, shortHeaderDCIDLen int) (*Header, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("wire: empty packet")
	}
	firstByte := data[0]
	if firstByte&longHeaderFormBit == 0 {
		return parseShortHeader(data, shortHeaderDCIDLen)
	}
	return parseLongHeader(data)
}

func parseShortHeader(data []byte, dcidLen int) (*Header, error) {
	if dcidLen < 0 || dcidLen > protocol.MaxConnectionIDLen {
		return nil, fmt.Errorf("wire: invalid short-header CID length %d", dcidLen)
	}
	if len(data) < 1+dcidLen {
		return nil, fmt.Errorf("wire: short header truncated")
	}
	return &Header{
		IsLongHeader: false,
		DestConnID:   protocol.ConnectionID(append([]byte(nil), data[1:1+dcidLen]...)),
		ParsedLen:    1 + dcidLen,
	}, nil
}

func parseLongHeader(data []byte) (*Header, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("wire: long header truncated")
	}
	firstByte := data[0]
	version := protocol.VersionNumber(uint32(data[1])<<24 | uint32(data[2])<<16 | uint32(data[3])<<8 | uint32(data[4]))
	pos := 5

	dcidLen := int(data[pos])
	pos++
	if len(data) < pos+dcidLen {
		return nil, fmt.Errorf("wire: long header destination CID truncated")
	}
	if dcidLen > protocol.MaxConnectionIDLen {
		return nil, fmt.Errorf("wire: destination CID too long: %d", dcidLen)
	}
	dcid := protocol.ConnectionID(append([]byte(nil), data[pos:pos+dcidLen]...))
	pos += dcidLen

	if len(data) < pos+1 {
		return nil, fmt.Errorf("wire: long header source CID length truncated")
	}
	scidLen := int(data[pos])
	pos++
	if len(data) < pos+scidLen {
		return nil, fmt.Errorf("wire: long header source CID truncated")
	}
	if scidLen > protocol.MaxConnectionIDLen {
		return nil, fmt.Errorf("wire: source CID too long: %d", scidLen)
	}
	scid := protocol.ConnectionID(append([]byte(nil), data[pos:pos+scidLen]...))
	pos += scidLen

	hdr := &Header{
		IsLongHeader: true,
		Version:      version,
		DestConnID:   dcid,
		SrcConnID:    scid,
	}

	// Version 0 identifies a Version Negotiation packet, which carries no
	// further structure we need; the type bits below are undefined for it.
	if version == 0 {
		hdr.ParsedLen = pos
		return hdr, nil
	}

	hdr.Type = LongHeaderType((firstByte >> 4) & 0x3)

	if hdr.Type == LongHeaderTypeInitial {
		tokenLen, n, err := ReadVarint(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("wire: initial token length: %w", err)
		}
		pos += n
		if uint64(len(data)-pos) < tokenLen {
			return nil, fmt.Errorf("wire: initial token truncated")
		}
		hdr.Token = append([]byte(nil), data[pos:pos+int(tokenLen)]...)
		pos += int(tokenLen)
	}

	hdr.ParsedLen = pos
	return hdr, nil
}
