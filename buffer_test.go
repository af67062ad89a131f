package socket

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

var _ = Describe("Packet", func() {
	It("defaults its label to unspecified", func() {
		p := NewPacket("", 10)
		defer p.Release()
		Expect(p.Label()).To(Equal("unspecified"))
	})

	It("carries the requested label and length", func() {
		p := NewPacket("retry", 42)
		defer p.Release()
		Expect(p.Label()).To(Equal("retry"))
		Expect(p.Len()).To(Equal(42))
		Expect(p.Bytes()).To(HaveLen(42))
	})

	It("rejects lengths above the maximum packet size", func() {
		Expect(func() { NewPacket("oversized", protocol.MaxPacketSize+1) }).To(Panic())
	})

	It("allows shrinking and growing within capacity via SetLen", func() {
		p := NewPacket("unspecified", 100)
		defer p.Release()
		p.SetLen(10)
		Expect(p.Len()).To(Equal(10))
		p.SetLen(100)
		Expect(p.Len()).To(Equal(100))
	})

	It("panics if SetLen exceeds capacity", func() {
		p := NewPacket("unspecified", 10)
		defer p.Release()
		Expect(func() { p.SetLen(protocol.MaxPacketSize + 1) }).To(Panic())
	})

	It("clones into an independent buffer", func() {
		p := NewPacket("clone-me", 4)
		copy(p.Bytes(), []byte{1, 2, 3, 4})
		c := p.Clone()
		defer p.Release()
		defer c.Release()

		Expect(c.Bytes()).To(Equal(p.Bytes()))
		c.Bytes()[0] = 0xff
		Expect(p.Bytes()[0]).To(Equal(byte(1)))
	})
})
