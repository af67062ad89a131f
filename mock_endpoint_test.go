package socket

import (
	"net/netip"
	"sync"
)

type sentDatagram struct {
	data   []byte
	remote netip.AddrPort
	label  string
}

// mockEndpoint is an in-memory Endpoint double: Send records the
// datagram instead of touching a real socket and fires its completion
// synchronously with a nil error; a non-nil sendErr instead makes every
// Send fail synchronously. Hand-written for the same reason
// as mockSession: the white-box scenario tests need same-package access
// that a generated mock wouldn't have.
type mockEndpoint struct {
	mu sync.Mutex

	local netip.AddrPort
	sent  []sentDatagram

	sendErr    error // if non-nil, every Send fails synchronously
	draining   bool
	handler    EndpointHandler
	bindCalled bool
}

func newMockEndpoint(local netip.AddrPort) *mockEndpoint {
	return &mockEndpoint{local: local}
}

func (e *mockEndpoint) Bind(handler EndpointHandler) error {
	e.mu.Lock()
	e.handler = handler
	e.bindCalled = true
	e.mu.Unlock()
	handler.onBind(e)
	return nil
}

func (e *mockEndpoint) LocalAddr() netip.AddrPort { return e.local }

func (e *mockEndpoint) Send(buf []byte, remote netip.AddrPort, label string, onDone func(error)) error {
	e.mu.Lock()
	err := e.sendErr
	e.mu.Unlock()
	if err != nil {
		return err
	}
	cp := append([]byte(nil), buf...)
	e.mu.Lock()
	e.sent = append(e.sent, sentDatagram{data: cp, remote: remote, label: label})
	e.mu.Unlock()
	onDone(nil)
	return nil
}

func (e *mockEndpoint) Drain() {
	e.mu.Lock()
	e.draining = true
	handler := e.handler
	e.mu.Unlock()
	handler.onEndpointDone(e)
}

func (e *mockEndpoint) Close() error { return nil }

func (e *mockEndpoint) deliver(data []byte, remote netip.AddrPort) {
	e.mu.Lock()
	handler := e.handler
	local := e.local
	e.mu.Unlock()
	handler.onRecv(e, data, local, remote)
}

func (e *mockEndpoint) sentDatagrams() []sentDatagram {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sentDatagram(nil), e.sent...)
}
