package socket

import (
	"net/netip"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
	"github.com/nodejs-quic/quicsocket/internal/qerr"
)

// Session is the host-supplied, externally-owned per-connection state
// machine the socket core routes datagrams to (spec §3, "Session handle").
// The handshake, stream multiplexing, congestion control, and application
// bindings all live behind this interface, out of this package's scope
// (spec §1).
type Session interface {
	// Receive delivers one datagram to the session. It reports whether the
	// datagram was successfully processed; false increments
	// packets_ignored (spec §4.7.1 step 6).
	Receive(data []byte, local, remote netip.AddrPort) bool

	// Destroy is called once, when the session removes itself from every
	// core table (spec §3, "a session removes itself from all tables on
	// destruction").
	Destroy()
}

// NewSessionParams bundles everything accept_initial (§4.7.2) gathers
// before constructing a new server session.
type NewSessionParams struct {
	DestConnID   protocol.ConnectionID
	SrcConnID    protocol.ConnectionID
	OriginalDCID protocol.ConnectionID // set only when a retry token was verified
	Version      protocol.VersionNumber
	Local        netip.AddrPort
	Remote       netip.AddrPort
	ALPN         string
	QLogEnabled  bool

	// InitialCloseError is non-nil when the session must be constructed
	// only to be immediately closed with this transport error (spec
	// §4.7.2's "AdmissionRejected" policy: still construct a session, but
	// mark it for immediate SERVER_BUSY closure).
	InitialCloseError *qerr.TransportError
}

// SessionFactory constructs a new server-role Session. The Socket never
// constructs sessions itself; the host supplies this factory at
// construction time so the per-connection handshake/stream machinery can
// live entirely outside this package.
type SessionFactory func(params NewSessionParams) Session
