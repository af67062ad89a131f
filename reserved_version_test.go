package socket

import (
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

var _ = Describe("GenerateReservedVersion", func() {
	remote := netip.MustParseAddrPort("203.0.113.7:51000")

	It("always matches the reserved-version bit pattern", func() {
		for _, v := range []protocol.VersionNumber{0xbabababa, 0x00000001, 0xdeadbeef, 0} {
			got := GenerateReservedVersion(remote, v)
			Expect(uint32(got) & 0x0f0f0f0f).To(Equal(uint32(0x0a0a0a0a)))
		}
	})

	It("never collides with the protocol version it's paired with", func() {
		got := GenerateReservedVersion(remote, protocol.Version1)
		Expect(got).NotTo(Equal(protocol.Version1))
	})

	It("is deterministic for the same inputs", func() {
		a := GenerateReservedVersion(remote, 0xbabababa)
		b := GenerateReservedVersion(remote, 0xbabababa)
		Expect(a).To(Equal(b))
	})

	It("varies with the remote address", func() {
		other := netip.MustParseAddrPort("198.51.100.2:443")
		a := GenerateReservedVersion(remote, 0xbabababa)
		b := GenerateReservedVersion(other, 0xbabababa)
		Expect(a).NotTo(Equal(b))
	})
})
