package socket

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nodejs-quic/quicsocket/internal/handshake"
)

var _ = Describe("resetTokenTable", func() {
	var (
		table *resetTokenTable
		tok   handshake.StatelessResetToken
		sess  *mockSession
	)

	BeforeEach(func() {
		table = newResetTokenTable()
		tok = handshake.StatelessResetToken{1, 2, 3}
		sess = newMockSession(true)
	})

	It("misses on an unregistered token", func() {
		_, ok := table.lookup(tok)
		Expect(ok).To(BeFalse())
	})

	It("resolves a registered token to its session", func() {
		table.add(tok, sess)
		got, ok := table.lookup(tok)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(Session(sess)))
	})

	It("forgets a removed token", func() {
		table.add(tok, sess)
		table.remove(tok)
		_, ok := table.lookup(tok)
		Expect(ok).To(BeFalse())
	})
})
