// Package wire holds the wire-format helpers the demultiplexer needs to
// decode inbound headers and compose version-negotiation, retry, and
// stateless-reset packets, modeled on quic-go/quic-go/internal/wire and
// quic-go/quic-go/quicvarint.
package wire

import "fmt"

// ReadVarint reads a QUIC variable-length integer (RFC 9000 §16) from data,
// returning the value and the number of bytes consumed.
func ReadVarint(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("wire: empty varint")
	}
	length := 1 << (data[0] >> 6)
	if len(data) < length {
		return 0, 0, fmt.Errorf("wire: truncated varint")
	}
	v := uint64(data[0] & 0x3f)
	for i := 1; i < length; i++ {
		v = v<<8 | uint64(data[i])
	}
	return v, length, nil
}

// AppendVarint appends v to b in QUIC variable-length integer encoding.
func AppendVarint(b []byte, v uint64) []byte {
	switch {
	case v <= 63:
		return append(b, byte(v))
	case v <= 16383:
		return append(b, byte(v>>8)|0x40, byte(v))
	case v <= 1073741823:
		return append(b, byte(v>>24)|0x80, byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(b, byte(v>>56)|0xc0, byte(v>>48), byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}
