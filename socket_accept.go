package socket

import (
	"net/netip"
	"time"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
	"github.com/nodejs-quic/quicsocket/internal/qerr"
	"github.com/nodejs-quic/quicsocket/internal/wire"
)

// acceptInitial implements spec §4.7.2's admission and construction steps.
// Called with s.mu already held, and only for a header classifyHeader has
// already placed in classOK — version negotiation, 0-RTT retry and ignore
// are dispatched by the caller (onReceive). Of those, only ignored
// headers count toward packets_ignored; a nil return from here (not
// listening, or a retry sent for address validation) also does.
func (s *Socket) acceptInitial(hdr *wire.Header, local, remote netip.AddrPort) Session {
	if s.lifecycleState() != stateListening {
		return nil
	}

	var closeErr *qerr.TransportError
	if s.busy.Load() {
		closeErr = &qerr.TransportError{ErrorCode: qerr.ServerBusy, ErrorMessage: "server is busy"}
	} else if s.counters.connections(remote.Addr()) >= s.config.MaxConnectionsPerHost {
		closeErr = &qerr.TransportError{ErrorCode: qerr.ServerBusy, ErrorMessage: "per-host connection limit reached"}
	}

	var originalDCID protocol.ConnectionID
	if closeErr == nil && s.config.Options.has(OptValidateAddress) {
		ip := remote.Addr()
		validated := s.config.Options.has(OptValidateAddressLRU) && s.addrCache.contains(ip)
		if !validated {
			dcid, err := s.tokens.verifyRetryToken(hdr.Token, remote, time.Now(), s.config.RetryTokenExpiration)
			if err != nil {
				s.sendRetry(local, remote, hdr)
				return nil
			}
			originalDCID = dcid
			s.addrCache.mark(ip)
		}
	}

	sess := s.sessionFactory(NewSessionParams{
		DestConnID:        hdr.DestConnID,
		SrcConnID:         hdr.SrcConnID,
		OriginalDCID:      originalDCID,
		Version:           hdr.Version,
		Local:             local,
		Remote:            remote,
		ALPN:              s.alpn,
		QLogEnabled:       s.config.QLogEnabled,
		InitialCloseError: closeErr,
	})
	if sess == nil {
		return nil
	}

	s.registerSession(hdr.DestConnID, remote, sess)
	s.stats.incrServerSessions()
	s.listeners.onSessionReady(sess)
	return sess
}
