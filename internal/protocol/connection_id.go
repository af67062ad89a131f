// Package protocol holds the wire-level constants and value types shared
// across the demultiplexer: connection IDs and QUIC version numbers.
package protocol

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
)

// MaxConnectionIDLen is the maximum length, in bytes, of a QUIC connection
// ID (RFC 9000 §17.2).
const MaxConnectionIDLen = 20

// ConnectionID is an opaque QUIC connection identifier. Equality and
// hashing (via Key, used as a map key) are over the full byte range,
// including the zero-length CID.
type ConnectionID []byte

// GenerateConnectionID returns a cryptographically random connection ID of
// the given length.
func GenerateConnectionID(length int) (ConnectionID, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return ConnectionID(b), nil
}

// ReadConnectionID reads a connection ID of the given length from r.
func ReadConnectionID(r io.Reader, length int) (ConnectionID, error) {
	if length == 0 {
		return ConnectionID{}, nil
	}
	c := make(ConnectionID, length)
	if _, err := io.ReadFull(r, c); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return c, nil
}

// Equal reports whether c and other hold the same bytes.
func (c ConnectionID) Equal(other ConnectionID) bool {
	return bytes.Equal(c, other)
}

// Len returns the length of the connection ID in bytes.
func (c ConnectionID) Len() int { return len(c) }

// Bytes returns the byte representation of the connection ID.
func (c ConnectionID) Bytes() []byte { return []byte(c) }

// Key returns a value suitable for use as a map key. string(c) copies the
// underlying bytes, which is required since callers frequently reuse the
// receive buffer that c may otherwise still be aliasing.
func (c ConnectionID) Key() string { return string(c) }

func (c ConnectionID) String() string {
	if c.Len() == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("%x", c.Bytes())
}
