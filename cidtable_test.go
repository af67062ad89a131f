package socket

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

var _ = Describe("cidTable", func() {
	var (
		table   *cidTable
		primary protocol.ConnectionID
		alias   protocol.ConnectionID
		sess    *mockSession
	)

	BeforeEach(func() {
		table = newCIDTable()
		primary = protocol.ConnectionID{1, 2, 3, 4}
		alias = protocol.ConnectionID{5, 6, 7, 8}
		sess = newMockSession(true)
	})

	It("misses on an unregistered CID", func() {
		_, ok := table.lookup(primary)
		Expect(ok).To(BeFalse())
	})

	It("resolves a primary CID directly", func() {
		table.addPrimary(primary, sess)
		got, ok := table.lookup(primary)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(Session(sess)))
	})

	It("resolves an alias through the primary", func() {
		table.addPrimary(primary, sess)
		table.addAlias(alias, primary)
		got, ok := table.lookup(alias)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(Session(sess)))
	})

	It("removes a single alias without touching the primary", func() {
		table.addPrimary(primary, sess)
		table.addAlias(alias, primary)
		table.removeAlias(alias)

		_, ok := table.lookup(alias)
		Expect(ok).To(BeFalse())
		_, ok = table.lookup(primary)
		Expect(ok).To(BeTrue())
	})

	It("removes the primary and every listed alias atomically", func() {
		second := protocol.ConnectionID{9, 9, 9}
		table.addPrimary(primary, sess)
		table.addAlias(alias, primary)
		table.addAlias(second, primary)

		table.removePrimary(primary, []protocol.ConnectionID{alias, second})

		_, ok := table.lookup(primary)
		Expect(ok).To(BeFalse())
		_, ok = table.lookup(alias)
		Expect(ok).To(BeFalse())
		_, ok = table.lookup(second)
		Expect(ok).To(BeFalse())
	})
})
