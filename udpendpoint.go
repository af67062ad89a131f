package socket

import (
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
	"golang.org/x/net/ipv4"
)

// UDPEndpoint is the concrete Endpoint (C7) backing a real UDP socket. It
// is grounded on quic-go/quic-go's udp_conn.go/conn_oob.go: a plain
// net.PacketConn for the common case, upgraded to an *ipv4.PacketConn with
// destination-address control messages enabled when the socket is bound
// to a wildcard address, so on_recv can still report the local address a
// datagram actually arrived on (spec §4.6) the way conn_oob.go recovers it
// via raw socket options.
type UDPEndpoint struct {
	conn     net.PacketConn
	ipv4conn *ipv4.PacketConn
	local    netip.AddrPort

	handler EndpointHandler

	mu       sync.Mutex
	pending  int
	draining bool
	notified bool
	closed   bool
}

// NewUDPEndpoint wraps an already-bound net.PacketConn. If conn is bound
// to an unspecified IPv4 address (0.0.0.0), destination-address control
// messages are enabled so inbound datagrams still carry an accurate local
// address.
func NewUDPEndpoint(conn net.PacketConn) (*UDPEndpoint, error) {
	local, err := netip.ParseAddrPort(conn.LocalAddr().String())
	if err != nil {
		return nil, fmt.Errorf("socket: endpoint local address: %w", err)
	}
	ep := &UDPEndpoint{conn: conn, local: local}
	if local.Addr().Is4() && local.Addr().IsUnspecified() {
		p := ipv4.NewPacketConn(conn)
		if err := p.SetControlMessage(ipv4.FlagDst, true); err == nil {
			ep.ipv4conn = p
		}
	}
	return ep, nil
}

func (e *UDPEndpoint) LocalAddr() netip.AddrPort { return e.local }

// Bind starts the receive loop goroutine and reports the endpoint bound.
func (e *UDPEndpoint) Bind(handler EndpointHandler) error {
	e.handler = handler
	go e.readLoop()
	handler.onBind(e)
	return nil
}

func (e *UDPEndpoint) readLoop() {
	buf := make([]byte, protocol.MaxPacketSize)
	for {
		var n int
		var remoteAddr net.Addr
		var local netip.AddrPort = e.local
		var err error

		if e.ipv4conn != nil {
			var cm *ipv4.ControlMessage
			n, cm, remoteAddr, err = e.ipv4conn.ReadFrom(buf)
			if cm != nil && cm.Dst != nil {
				if addr, ok := netip.AddrFromSlice(cm.Dst); ok {
					local = netip.AddrPortFrom(addr.Unmap(), e.local.Port())
				}
			}
		} else {
			n, remoteAddr, err = e.conn.ReadFrom(buf)
		}
		if err != nil {
			e.mu.Lock()
			closed := e.closed
			e.mu.Unlock()
			if closed {
				return
			}
			e.handler.onError(e, err)
			return
		}

		e.mu.Lock()
		draining := e.draining
		e.mu.Unlock()
		if draining {
			continue
		}

		remote, err := netip.ParseAddrPort(remoteAddr.String())
		if err != nil {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		e.handler.onRecv(e, data, local, remote)
	}
}

// Send writes buf to remote synchronously — Go's net.PacketConn.WriteTo is
// a blocking syscall, unlike the libuv async write this core's design is
// modeled on — and reports the outcome through onDone rather than the
// return value, so callers observe the same "submission, then completion"
// shape regardless of which Endpoint implementation they're driving.
func (e *UDPEndpoint) Send(buf []byte, remote netip.AddrPort, label string, onDone func(error)) error {
	e.mu.Lock()
	if e.draining || e.closed {
		e.mu.Unlock()
		return fmt.Errorf("socket: endpoint not accepting sends")
	}
	e.pending++
	e.mu.Unlock()

	_, err := e.conn.WriteTo(buf, net.UDPAddrFromAddrPort(remote))

	e.mu.Lock()
	e.pending--
	shouldNotify := e.draining && !e.notified && e.pending == 0
	if shouldNotify {
		e.notified = true
	}
	e.mu.Unlock()

	onDone(err)

	if shouldNotify {
		e.handler.onEndpointDone(e)
	}
	return nil
}

// Drain stops accepting new sends and requests the receive loop ignore
// further datagrams; handler.onEndpointDone fires once every already
// in-flight Send has called its onDone.
func (e *UDPEndpoint) Drain() {
	e.mu.Lock()
	e.draining = true
	shouldNotify := !e.notified && e.pending == 0
	if shouldNotify {
		e.notified = true
	}
	e.mu.Unlock()

	if shouldNotify {
		e.handler.onEndpointDone(e)
	}
}

// Close releases the underlying socket. Idempotent.
func (e *UDPEndpoint) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	return e.conn.Close()
}
