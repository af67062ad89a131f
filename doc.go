// Package socket implements a QUIC server-side socket demultiplexer: a
// single logical endpoint that classifies inbound UDP datagrams as
// belonging to an existing QUIC session or as the first packet of a new
// one, performs address-validation and denial-of-service defenses, and
// dispatches accepted datagrams into per-session state machines supplied
// by the host.
//
// The package does not implement the TLS handshake, QUIC stream
// multiplexing, flow control, or loss recovery; those live in the
// host-supplied Session implementation. This package owns only the
// receive-path decision tree, the connection-ID and reset-token routing
// tables, the per-peer admission counters, and the token engine used for
// retry and stateless-reset defenses.
package socket
