package socket

import (
	"context"
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nodejs-quic/quicsocket/internal/handshake"
	"github.com/nodejs-quic/quicsocket/internal/protocol"
	"github.com/nodejs-quic/quicsocket/internal/qerr"
	"github.com/nodejs-quic/quicsocket/internal/wire"
)

// buildLongHeader assembles a minimal long-header packet for feeding into
// onRecv. token is only encoded for Initial packets, varint-length
// prefixed exactly as a real Initial packet carries it.
func buildLongHeader(typ wire.LongHeaderType, version uint32, dcid, scid, token []byte) []byte {
	b := []byte{0x80 | 0x40 | byte(typ)<<4}
	b = append(b, byte(version>>24), byte(version>>16), byte(version>>8), byte(version))
	b = append(b, byte(len(dcid)))
	b = append(b, dcid...)
	b = append(b, byte(len(scid)))
	b = append(b, scid...)
	if typ == wire.LongHeaderTypeInitial {
		b = wire.AppendVarint(b, uint64(len(token)))
		b = append(b, token...)
		b = append(b, make([]byte, 32)...) // padding, stands in for the encrypted payload
	}
	return b
}

// buildShortHeader assembles a short-header packet of exactly length
// bytes carrying dcid, padded/randomized to reach length.
func buildShortHeader(dcid []byte, length int) []byte {
	b := []byte{0x40}
	b = append(b, dcid...)
	for len(b) < length {
		b = append(b, byte(len(b)))
	}
	return b[:length]
}

// parseRetryToken extracts the token field from a Retry packet built by
// wire.WriteRetry, which has no length prefix: it occupies every byte
// between the source CID and the trailing 16-byte integrity tag.
func parseRetryToken(pkt []byte) []byte {
	pos := 1 + 4
	dcidLen := int(pkt[pos])
	pos += 1 + dcidLen
	scidLen := int(pkt[pos])
	pos += 1 + scidLen
	return append([]byte(nil), pkt[pos:len(pkt)-16]...)
}

func retrySCID(pkt []byte) []byte {
	pos := 1 + 4
	dcidLen := int(pkt[pos])
	pos += 1 + dcidLen
	scidLen := int(pkt[pos])
	pos++
	return append([]byte(nil), pkt[pos:pos+scidLen]...)
}

func newTestSocket(cfg Config, factory SessionFactory) (*Socket, *mockEndpoint) {
	sock, err := NewSocket(cfg, "h3", factory)
	Expect(err).NotTo(HaveOccurred())
	ep := newMockEndpoint(netip.MustParseAddrPort("127.0.0.1:4433"))
	Expect(sock.AddEndpoint(ep, true)).To(Succeed())
	Expect(sock.Listen("h3")).To(Succeed())
	return sock, ep
}

var _ = Describe("Socket end-to-end scenarios", func() {
	var remote netip.AddrPort

	BeforeEach(func() {
		remote = netip.MustParseAddrPort("203.0.113.7:51000")
	})

	// S1 — unsupported version.
	It("emits version negotiation and creates no session for an unsupported version", func() {
		factory := newMockSessionFactory(true)
		sock, ep := newTestSocket(Config{}, factory.factory())
		defer sock.Destroy(context.Background())

		dcid := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		scid := []byte{0x11, 0x22, 0x33, 0x44}
		pkt := buildLongHeader(wire.LongHeaderTypeHandshake, 0xbabababa, dcid, scid, nil)

		ep.deliver(pkt, remote)

		sent := ep.sentDatagrams()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].label).To(Equal("version negotiation"))
		Expect(factory.count()).To(Equal(0))
		Expect(sock.Stats().PacketsIgnored()).To(Equal(uint64(0)))
		Expect(sock.Stats().BytesSent()).To(BeNumerically(">", 0))
	})

	// S2 — retry required, then accepted on the validated retry.
	It("requires and then accepts a validated retry token", func() {
		factory := newMockSessionFactory(true)
		sock, ep := newTestSocket(Config{Options: OptValidateAddress}, factory.factory())
		defer sock.Destroy(context.Background())

		dcid := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		scid := []byte{0x11, 0x22, 0x33, 0x44}
		first := buildLongHeader(wire.LongHeaderTypeInitial, uint32(protocol.Version1), dcid, scid, nil)
		ep.deliver(first, remote)

		sent := ep.sentDatagrams()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].label).To(Equal("retry"))
		Expect(factory.count()).To(Equal(0))

		token := parseRetryToken(sent[0].data)
		newDCID := retrySCID(sent[0].data)
		second := buildLongHeader(wire.LongHeaderTypeInitial, uint32(protocol.Version1), newDCID, scid, token)
		ep.deliver(second, remote)

		Expect(factory.count()).To(Equal(1))
		_, params := factory.last()
		Expect(params.OriginalDCID).To(Equal(protocol.ConnectionID(dcid)))
		Expect(sock.addrCache.contains(remote.Addr())).To(BeTrue())
	})

	// S3 — stateless reset emission, capped per host.
	It("emits a stateless reset shorter than the trigger, up to the per-host cap", func() {
		factory := newMockSessionFactory(true)
		sock, ep := newTestSocket(Config{MaxStatelessResetPerHost: 1}, factory.factory())
		defer sock.Destroy(context.Background())

		unknown := []byte{9, 9, 9, 9, 9, 9, 9, 9}
		pkt := buildShortHeader(unknown, 1200)

		ep.deliver(pkt, remote)
		sent := ep.sentDatagrams()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].label).To(Equal("stateless reset"))
		Expect(sent[0].data).To(HaveLen(1199))
		Expect(sock.Stats().StatelessResetCount()).To(Equal(uint64(1)))
		Expect(sock.counters.resets(remote.Addr())).To(Equal(uint64(1)))

		ep.deliver(pkt, remote) // second attempt: cap already reached
		Expect(ep.sentDatagrams()).To(HaveLen(1))
	})

	// S4 — stateless reset reception delivers to the owning session.
	It("delivers a packet whose trailing bytes match a registered reset token", func() {
		factory := newMockSessionFactory(true)
		sock, ep := newTestSocket(Config{}, factory.factory())
		defer sock.Destroy(context.Background())

		sess := newMockSession(true)
		var tok handshake.StatelessResetToken
		copy(tok[:], []byte("0123456789abcdef"))
		sock.resetTokens.add(tok, sess)

		unknown := []byte{7, 7, 7, 7, 7, 7, 7, 7}
		pkt := buildShortHeader(unknown, 200-16)
		pkt = append(pkt, tok[:]...)
		Expect(pkt).To(HaveLen(200))

		ep.deliver(pkt, remote)

		Expect(sess.receiveCount()).To(Equal(1))
		Expect(ep.sentDatagrams()).To(BeEmpty())
		Expect(sock.Stats().PacketsReceived()).To(Equal(uint64(1)))
	})

	// S5 — admission cap marks the second session for immediate closure.
	It("flags a session for immediate SERVER_BUSY closure once the per-host cap is hit", func() {
		factory := newMockSessionFactory(true)
		sock, ep := newTestSocket(Config{MaxConnectionsPerHost: 1}, factory.factory())
		defer sock.Destroy(context.Background())
		local := netip.MustParseAddrPort("198.51.100.2:1")
		remote := netip.MustParseAddrPort("198.51.100.2:51000")
		_ = local

		first := buildLongHeader(wire.LongHeaderTypeInitial, uint32(protocol.Version1),
			[]byte{1, 1, 1, 1, 1, 1, 1, 1}, []byte{2, 2, 2, 2}, nil)
		ep.deliver(first, remote)
		Expect(factory.count()).To(Equal(1))
		firstSess, firstParams := factory.last()
		Expect(firstParams.InitialCloseError).To(BeNil())

		second := buildLongHeader(wire.LongHeaderTypeInitial, uint32(protocol.Version1),
			[]byte{2, 1, 1, 1, 1, 1, 1, 1}, []byte{2, 2, 2, 2}, nil)
		ep.deliver(second, remote)
		Expect(factory.count()).To(Equal(2))
		_, secondParams := factory.last()
		Expect(secondParams.InitialCloseError).NotTo(BeNil())
		Expect(secondParams.InitialCloseError.ErrorCode).To(Equal(qerr.ServerBusy))

		Expect(sock.counters.connections(remote.Addr())).To(Equal(uint64(2)))
		_ = firstSess
	})

	// S6 — diagnostic RX loss drops every datagram before header decode.
	It("drops every datagram before decoding when RX loss is 1.0", func() {
		factory := newMockSessionFactory(true)
		sock, ep := newTestSocket(Config{}, factory.factory())
		defer sock.Destroy(context.Background())
		Expect(sock.SetDiagnosticPacketLoss(1.0, 0.0)).To(Succeed())

		pkt := buildLongHeader(wire.LongHeaderTypeInitial, uint32(protocol.Version1),
			[]byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{1, 1, 1, 1}, nil)
		ep.deliver(pkt, remote)

		Expect(sock.Stats().PacketsIgnored()).To(Equal(uint64(0)))
		Expect(sock.Stats().PacketsReceived()).To(Equal(uint64(0)))
		Expect(sock.Stats().BytesReceived()).To(Equal(uint64(0)))
		Expect(factory.count()).To(Equal(0))
	})
})

var _ = Describe("Socket lifecycle", func() {
	It("rejects Listen before an endpoint is added", func() {
		factory := newMockSessionFactory(true)
		sock, err := NewSocket(Config{}, "h3", factory.factory())
		Expect(err).NotTo(HaveOccurred())
		Expect(sock.Listen("h3")).To(HaveOccurred())
	})

	It("rejects a second Listen call", func() {
		factory := newMockSessionFactory(true)
		sock, _ := newTestSocket(Config{}, factory.factory())
		Expect(sock.Listen("h3")).To(MatchError(ErrAlreadyListening))
	})

	It("stops admitting new sessions after StopListening", func() {
		factory := newMockSessionFactory(true)
		sock, ep := newTestSocket(Config{}, factory.factory())
		sock.StopListening()

		pkt := buildLongHeader(wire.LongHeaderTypeInitial, uint32(protocol.Version1),
			[]byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{1, 1, 1, 1}, nil)
		ep.deliver(pkt, netip.MustParseAddrPort("203.0.113.7:51000"))

		Expect(factory.count()).To(Equal(0))
	})

	It("toggles stateless reset and reports the new value", func() {
		factory := newMockSessionFactory(true)
		sock, _ := newTestSocket(Config{}, factory.factory())
		Expect(sock.ToggleStatelessReset()).To(BeFalse())
		Expect(sock.ToggleStatelessReset()).To(BeTrue())
	})

	It("fires OnDestroy on registered listeners", func() {
		factory := newMockSessionFactory(true)
		sock, _ := newTestSocket(Config{}, factory.factory())
		l := &recordingListener{}
		sock.AddListener(l)

		Expect(sock.Destroy(context.Background())).To(Succeed())
		Expect(l.destroy).To(Equal(1))
	})
})
