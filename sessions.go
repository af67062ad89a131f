package socket

import (
	"net/netip"

	"github.com/nodejs-quic/quicsocket/internal/handshake"
	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// registerSession installs a freshly accepted session into every core
// table (C2 primary map, C3 reset-token map, C4 counters), all under one
// lock acquisition so the tables never observe a partial registration
// (spec §9, "Session membership in multiple tables").
func (s *Socket) registerSession(cid protocol.ConnectionID, remote netip.AddrPort, sess Session) {
	s.cids.addPrimary(cid, sess)
	token := s.tokens.deriveResetToken(cid)
	s.resetTokens.add(token, sess)
	n := s.counters.incrConnections(remote.Addr())
	s.stats.observeConnectionsPerHost(n)
}

// AddConnectionIDAlias registers an additional connection ID a session may
// be addressed by (C2's alias map), for example after a CID rotation the
// session negotiates on its own. primary must already have been
// registered by accept_initial.
func (s *Socket) AddConnectionIDAlias(alias, primary protocol.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cids.addAlias(alias, primary)
}

// RemoveConnectionIDAlias retires a single alias without touching the
// primary CID or the session it points to.
func (s *Socket) RemoveConnectionIDAlias(alias protocol.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cids.removeAlias(alias)
}

// RemoveSession unregisters sess from every core table. Host session
// implementations must call this exactly once, from their own Destroy,
// supplying every alias CID and reset token they were ever assigned
// (spec §3, "a session removes itself from all tables on destruction").
func (s *Socket) RemoveSession(primary protocol.ConnectionID, aliases []protocol.ConnectionID, resetToken handshake.StatelessResetToken, remote netip.AddrPort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cids.removePrimary(primary, aliases)
	s.resetTokens.remove(resetToken)
	s.counters.decrConnections(remote.Addr())
}
