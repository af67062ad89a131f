// Package handshake implements the pure cryptographic building blocks of
// the token engine (spec §4.5, C6): an AEAD-sealed token protector used for
// retry tokens, and stateless-reset token derivation. Grounded on
// quic-go/quic-go/internal/handshake/token_protector.go and retry.go.
package handshake

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// TokenProtectorKeyLen is the length of the key backing retry token
// encryption.
const TokenProtectorKeyLen = 32

// TokenProtectorKey seals and opens retry tokens.
type TokenProtectorKey [TokenProtectorKeyLen]byte

// saltSize is the length of the random per-token salt prepended to every
// sealed token; it feeds HKDF alongside the fixed key so that two tokens
// sealed under the same key never reuse a cipher key/nonce pair.
const saltSize = 32

// TokenProtector authenticates and encrypts opaque token payloads. The
// AEAD key and nonce are derived per-token via HKDF-SHA256 over a random
// salt, so the long-lived TokenProtectorKey never touches the cipher
// directly and a salt collision (not a nonce reuse) is the only way two
// seals could ever share cipher state.
type TokenProtector struct {
	key TokenProtectorKey
}

// NewTokenProtector creates a token protector bound to key.
func NewTokenProtector(key TokenProtectorKey) *TokenProtector {
	return &TokenProtector{key: key}
}

const (
	protectorKeyInfo   = "quicsocket token cipher key"
	protectorNonceInfo = "quicsocket token cipher nonce"
)

// NewToken seals data into a self-describing token: a random salt
// followed by the ChaCha20-Poly1305 sealed payload.
func (s *TokenProtector) NewToken(data []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	aead, nonce, err := s.deriveAEAD(salt)
	if err != nil {
		return nil, err
	}
	return append(salt, aead.Seal(nil, nonce, data, nil)...), nil
}

// DecodeToken opens a token sealed by NewToken.
func (s *TokenProtector) DecodeToken(p []byte) ([]byte, error) {
	if len(p) < saltSize {
		return nil, fmt.Errorf("handshake: token too short: %d bytes", len(p))
	}
	salt := p[:saltSize]
	aead, nonce, err := s.deriveAEAD(salt)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, p[saltSize:], nil)
}

// deriveAEAD derives a fresh ChaCha20-Poly1305 instance and nonce for
// salt. Key and nonce material come from two independent HKDF expansions
// of the same pseudorandom key rather than one combined buffer, so a
// change to one derived length never shifts the other.
func (s *TokenProtector) deriveAEAD(salt []byte) (cipher.AEAD, []byte, error) {
	prk := hkdf.Extract(sha256.New, s.key[:], salt)

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte(protectorKeyInfo)), key); err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte(protectorNonceInfo)), nonce); err != nil {
		return nil, nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, err
	}
	return aead, nonce, nil
}

// ResetTokenSecretLen is the required length of a stateless-reset secret.
const ResetTokenSecretLen = 16

// StatelessResetToken is the fixed-size token an endpoint uses to
// convince a peer it once owned a connection ID (RFC 9000 §10.3).
type StatelessResetToken [16]byte

// resetHasher wraps an HMAC so that Derive never mutates the
// caller's secret and callers can share one instance across derivations.
type resetHasher struct {
	mu     sync.Mutex
	hasher hash.Hash
}

// NewResetHasher builds a deterministic (secret, cid) -> token deriver.
func NewResetHasher(secret [ResetTokenSecretLen]byte) *resetHasher {
	return &resetHasher{hasher: hmac.New(sha256.New, secret[:])}
}

// Derive returns the deterministic stateless-reset token for cid.
func (r *resetHasher) Derive(cid []byte) StatelessResetToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hasher.Reset()
	r.hasher.Write(cid)
	var token StatelessResetToken
	copy(token[:], r.hasher.Sum(nil))
	return token
}
