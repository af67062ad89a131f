package handshake

import (
	"encoding/asn1"
	"fmt"
	"time"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// retryToken is the ASN.1 payload sealed inside a retry token, grounded on
// the `token` struct in quic-go/quic-go/internal/handshake/token_generator.go.
type retryToken struct {
	RemoteAddr   []byte
	Timestamp    int64
	OriginalDCID []byte
}

// TokenGenerator builds and verifies retry tokens (spec §4.5, C6).
type TokenGenerator struct {
	protector *TokenProtector
}

// NewTokenGenerator builds a generator sealing tokens under key.
func NewTokenGenerator(key TokenProtectorKey) *TokenGenerator {
	return &TokenGenerator{protector: NewTokenProtector(key)}
}

// BuildRetryToken produces an AEAD-authenticated token binding
// (remoteAddr, originalDCID, now). now is passed in explicitly so the
// function stays pure and testable without a wall-clock dependency.
func (g *TokenGenerator) BuildRetryToken(remoteAddr string, originalDCID protocol.ConnectionID, now time.Time) ([]byte, error) {
	data, err := asn1.Marshal(retryToken{
		RemoteAddr:   []byte(remoteAddr),
		Timestamp:    now.UnixNano(),
		OriginalDCID: originalDCID.Bytes(),
	})
	if err != nil {
		return nil, err
	}
	token, err := g.protector.NewToken(data)
	if err != nil {
		return nil, err
	}
	if len(token) > protocol.MaxRetryTokenLen {
		return nil, fmt.Errorf("handshake: retry token exceeds %d bytes", protocol.MaxRetryTokenLen)
	}
	return token, nil
}

// VerifyRetryToken decodes and checks a token produced by BuildRetryToken.
// It fails if the token is malformed, the remote address does not match,
// the token has expired against maxAge, or authentication fails, returning
// the original DCID recovered from the token on success.
func (g *TokenGenerator) VerifyRetryToken(token []byte, remoteAddr string, now time.Time, maxAge time.Duration) (protocol.ConnectionID, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("handshake: empty retry token")
	}
	data, err := g.protector.DecodeToken(token)
	if err != nil {
		return nil, fmt.Errorf("handshake: invalid retry token: %w", err)
	}
	var t retryToken
	rest, err := asn1.Unmarshal(data, &t)
	if err != nil {
		return nil, fmt.Errorf("handshake: malformed retry token: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("handshake: %d trailing bytes in retry token", len(rest))
	}
	if string(t.RemoteAddr) != remoteAddr {
		return nil, fmt.Errorf("handshake: retry token address mismatch")
	}
	sentAt := time.Unix(0, t.Timestamp)
	if now.Sub(sentAt) > maxAge {
		return nil, fmt.Errorf("handshake: retry token expired")
	}
	return protocol.ConnectionID(t.OriginalDCID), nil
}
