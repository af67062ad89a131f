package socket

import "net/netip"

// Endpoint wraps one bound UDP socket into the core (C7, spec §4.6). A
// Socket may have several; exactly one is preferred and carries every
// outbound datagram the core issues.
type Endpoint interface {
	// Bind wires the endpoint to handler and starts delivering onRecv
	// upcalls. Called exactly once, by Socket.AddEndpoint. The endpoint
	// must call handler.onBind(self) once it is actually receiving.
	Bind(handler EndpointHandler) error

	// LocalAddr reports the address this endpoint is bound to.
	LocalAddr() netip.AddrPort

	// Send transmits buf to remote. label is the packet's diagnostic
	// label (C1), passed through so an endpoint can trace or qlog what
	// it's sending without inspecting the wire bytes. A non-nil return
	// means submission failed synchronously and onDone will never be
	// called for this send. A nil return means the send was accepted;
	// onDone fires exactly once, reporting the eventual outcome.
	Send(buf []byte, remote netip.AddrPort, label string, onDone func(error)) error

	// Drain requests graceful shutdown: no further onRecv upcalls are
	// delivered, and once every Send accepted before Drain was called
	// has invoked its onDone, the endpoint calls handler.onEndpointDone.
	Drain()

	// Close releases OS resources immediately. Safe to call after Drain
	// has already fired onEndpointDone, and safe to call without ever
	// draining (destroy() does this).
	Close() error
}

// EndpointHandler receives the upcalls an Endpoint makes into the core.
// Socket is the only implementation; the interface exists so endpoints
// and their tests don't need to import the concrete Socket type.
type EndpointHandler interface {
	onBind(ep Endpoint)
	onRecv(ep Endpoint, data []byte, local, remote netip.AddrPort)
	onError(ep Endpoint, err error)
	onEndpointDone(ep Endpoint)
}
