package socket

import (
	"net/netip"
	"time"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
	"github.com/nodejs-quic/quicsocket/internal/wire"
)

// sendVersionNegotiation implements spec §4.7.3.
func (s *Socket) sendVersionNegotiation(local, remote netip.AddrPort, hdr *wire.Header) {
	reserved := GenerateReservedVersion(remote, hdr.Version)
	versions := []protocol.VersionNumber{reserved, protocol.Version1}
	data, err := wire.WriteVersionNegotiation(hdr.SrcConnID, hdr.DestConnID, versions)
	if err != nil {
		s.logger.Errorf("building version negotiation packet: %v", err)
		return
	}
	pkt := NewPacket("version negotiation", len(data))
	copy(pkt.Bytes(), data)
	s.sendPacket(local, remote, pkt, nil, true)
}

// sendRetry implements spec §4.7.5.
func (s *Socket) sendRetry(local, remote netip.AddrPort, hdr *wire.Header) {
	scid, err := randomConnectionID(s.config.ConnectionIDLength)
	if err != nil {
		s.logger.Errorf("generating retry SCID: %v", err)
		return
	}
	token, err := s.tokens.buildRetryToken(remote, hdr.DestConnID, time.Now())
	if err != nil {
		s.logger.Errorf("building retry token: %v", err)
		return
	}
	data, err := wire.WriteRetry(hdr.Version, hdr.SrcConnID, scid, hdr.DestConnID, token)
	if err != nil {
		s.logger.Errorf("building retry packet: %v", err)
		return
	}
	pkt := NewPacket("retry", len(data))
	copy(pkt.Bytes(), data)
	s.sendPacket(local, remote, pkt, nil, true)
}

// sendStatelessReset implements spec §4.7.4. Returns whether a reset was
// actually emitted.
func (s *Socket) sendStatelessReset(local, remote netip.AddrPort, hdr *wire.Header, triggerLen int) bool {
	if s.config.Options.has(OptDisableStatelessReset) || !s.resetsOn.Load() {
		return false
	}
	// The reset itself must be strictly shorter than the triggering packet
	// and still meet the RFC 9000 §10.3 floor, so guard on the length we're
	// actually about to build rather than the trigger length.
	if triggerLen-1 < protocol.MinStatelessResetPacketLen {
		return false
	}
	ip := remote.Addr()
	if s.counters.resets(ip) >= s.config.MaxStatelessResetPerHost {
		return false
	}

	token := s.tokens.deriveResetToken(hdr.DestConnID)
	data, err := wire.WriteStatelessReset(token, triggerLen-1)
	if err != nil {
		s.logger.Errorf("building stateless reset packet: %v", err)
		return false
	}
	pkt := NewPacket("stateless reset", len(data))
	copy(pkt.Bytes(), data)
	s.sendPacket(local, remote, pkt, nil, true)

	s.counters.incrResets(ip)
	s.stats.incrStatelessResetCount()
	return true
}

// sendPacket implements spec §4.7.6. unsolicited marks a response that
// carries no owning session (version-negotiation, retry, stateless
// reset); those alone are metered by the global response-rate limiter,
// a second, coarser amplification defense layered on top of the
// per-host counters in §4.4/§4.7.4.
func (s *Socket) sendPacket(local, remote netip.AddrPort, pkt *Packet, sess Session, unsolicited bool) {
	if pkt.Len() == 0 {
		pkt.Release()
		return
	}
	if s.txLoss > 0 && s.rng.Float64() < s.txLoss {
		pkt.Release()
		return
	}
	if unsolicited && s.limiter != nil && !s.limiter.Allow() {
		pkt.Release()
		return
	}
	if s.preferred == nil {
		s.logger.Errorf("send_packet: %v", ErrNoPreferredEndpoint)
		pkt.Release()
		return
	}

	ep := s.preferred
	err := ep.Send(pkt.Bytes(), remote, pkt.Label(), func(sendErr error) {
		s.onSendDone(pkt, sess, sendErr)
	})
	if err != nil {
		s.onSendDone(pkt, sess, err)
	}
}

// onSendDone releases the packet buffer and updates statistics. It may be
// invoked either inline (synchronous send failure) or later from the
// endpoint's own goroutine; sess is kept only to extend its lifetime
// until the completion fires, matching the "transfer exclusive ownership
// ... release on completion" design note (spec §9).
func (s *Socket) onSendDone(pkt *Packet, sess Session, err error) {
	defer pkt.Release()
	if err != nil {
		s.logger.Errorf("send failed (%s): %v", pkt.Label(), err)
		return
	}
	s.stats.addBytesSent(pkt.Len())
	s.stats.incrPacketsSent()
	_ = sess
}
