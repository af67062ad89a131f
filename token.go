package socket

import (
	"crypto/rand"
	"net/netip"
	"time"

	"github.com/nodejs-quic/quicsocket/internal/handshake"
	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// tokenEngine bundles the three pure C6 operations (spec §4.5) behind the
// two secrets the socket owns for its lifetime.
type tokenEngine struct {
	generator *handshake.TokenGenerator
	resetter  *resetHasherWrapper
}

// resetHasherWrapper exists only so this file doesn't have to export the
// unexported handshake.resetHasher type.
type resetHasherWrapper struct {
	derive func(cid []byte) handshake.StatelessResetToken
}

func newTokenEngine(tokenSecret handshake.TokenProtectorKey, resetSecret [handshake.ResetTokenSecretLen]byte) *tokenEngine {
	hasher := handshake.NewResetHasher(resetSecret)
	return &tokenEngine{
		generator: handshake.NewTokenGenerator(tokenSecret),
		resetter:  &resetHasherWrapper{derive: hasher.Derive},
	}
}

// buildRetryToken produces an AEAD-authenticated token binding
// (remote, originalDCID, now).
func (e *tokenEngine) buildRetryToken(remote netip.AddrPort, originalDCID protocol.ConnectionID, now time.Time) ([]byte, error) {
	return e.generator.BuildRetryToken(remote.Addr().String(), originalDCID, now)
}

// verifyRetryToken recovers the original DCID from token if it was issued
// for remote and has not expired against maxAge.
func (e *tokenEngine) verifyRetryToken(token []byte, remote netip.AddrPort, now time.Time, maxAge time.Duration) (protocol.ConnectionID, error) {
	return e.generator.VerifyRetryToken(token, remote.Addr().String(), now, maxAge)
}

// deriveResetToken returns the deterministic stateless-reset token for cid.
func (e *tokenEngine) deriveResetToken(cid protocol.ConnectionID) handshake.StatelessResetToken {
	return e.resetter.derive(cid.Bytes())
}

// randomConnectionID is a small helper the retry path uses to mint the
// fresh server-chosen SCID a RETRY packet carries, grounded on quic-go's
// protocol.GenerateConnectionID.
func randomConnectionID(length int) (protocol.ConnectionID, error) {
	return protocol.GenerateConnectionID(length)
}

// randomResetSecret is used by NewSocket when the host does not
// supply SessionResetSecret.
func randomResetSecret() ([handshake.ResetTokenSecretLen]byte, error) {
	var secret [handshake.ResetTokenSecretLen]byte
	_, err := rand.Read(secret[:])
	return secret, err
}
