package socket

import (
	"net/netip"

	"github.com/nodejs-quic/quicsocket/internal/handshake"
	"github.com/nodejs-quic/quicsocket/internal/protocol"
	"github.com/nodejs-quic/quicsocket/internal/wire"
)

// onReceive is the receive-path decision tree entry point (spec §4.7.1).
// It runs under s.mu, matching the spec's single-writer table model.
func (s *Socket) onReceive(data []byte, local, remote netip.AddrPort) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rxLoss > 0 && s.rng.Float64() < s.rxLoss {
		// Dropped before header decode. bytes_received is intentionally
		// left untouched here (spec §8 S6 leaves the choice to the
		// implementer; DESIGN.md records this one).
		return
	}
	s.stats.addBytesReceived(len(data))

	hdr, err := wire.ParseHeader(data, s.config.ConnectionIDLength)
	if err != nil {
		s.stats.incrPacketsIgnored()
		return
	}
	if hdr.DestConnID.Len() > protocol.MaxConnectionIDLen || hdr.SrcConnID.Len() > protocol.MaxConnectionIDLen {
		s.stats.incrPacketsIgnored()
		return
	}

	if sess, ok := s.cids.lookup(hdr.DestConnID); ok {
		if sess.Receive(data, local, remote) {
			s.stats.incrPacketsReceived()
		} else {
			s.stats.incrPacketsIgnored()
		}
		return
	}

	shortHeader := !hdr.IsLongHeader
	if shortHeader && len(data) >= 16 {
		var token handshake.StatelessResetToken
		copy(token[:], data[len(data)-16:])
		if sess, ok := s.resetTokens.lookup(token); ok {
			sess.Receive(data, local, remote)
			s.stats.incrPacketsReceived()
			return
		}
	}

	switch classifyHeader(hdr) {
	case classVersion:
		s.sendVersionNegotiation(local, remote, hdr)
		return
	case classRetry:
		s.sendRetry(local, remote, hdr)
		return
	case classIgnore:
		if shortHeader && s.sendStatelessReset(local, remote, hdr, len(data)) {
			return
		}
		s.stats.incrPacketsIgnored()
		return
	}

	sess := s.acceptInitial(hdr, local, remote)
	if sess == nil {
		s.stats.incrPacketsIgnored()
		return
	}

	if sess.Receive(data, local, remote) {
		s.stats.incrPacketsReceived()
	} else {
		s.stats.incrPacketsIgnored()
	}
}
