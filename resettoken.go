package socket

import "github.com/nodejs-quic/quicsocket/internal/handshake"

// resetTokenTable maps a 16-byte stateless-reset token to the session that
// owns it (C3, spec §4.3). Looked up only when the receive path has
// already missed the connection-ID table and the datagram has a short
// header.
type resetTokenTable struct {
	entries map[handshake.StatelessResetToken]Session
}

func newResetTokenTable() *resetTokenTable {
	return &resetTokenTable{entries: make(map[handshake.StatelessResetToken]Session)}
}

func (t *resetTokenTable) lookup(token handshake.StatelessResetToken) (Session, bool) {
	sess, ok := t.entries[token]
	return sess, ok
}

func (t *resetTokenTable) add(token handshake.StatelessResetToken, sess Session) {
	t.entries[token] = sess
}

func (t *resetTokenTable) remove(token handshake.StatelessResetToken) {
	delete(t.entries, token)
}
