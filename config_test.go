package socket

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("populateConfig", func() {
	It("fills every default on the zero Config", func() {
		c, err := populateConfig(Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.RetryTokenExpiration).To(Equal(defaultRetryTokenExpiration))
		Expect(c.MaxConnectionsPerHost).To(Equal(uint64(defaultMaxConnectionsPerHost)))
		Expect(c.MaxStatelessResetPerHost).To(Equal(uint64(defaultMaxStatelessResetPerHost)))
		Expect(c.ValidatedAddressCacheSize).To(Equal(256))
		Expect(c.ConnectionIDLength).To(Equal(8))
	})

	It("clamps retry token expiration below the minimum", func() {
		c, err := populateConfig(Config{RetryTokenExpiration: 1 * time.Millisecond})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.RetryTokenExpiration).To(Equal(MinRetryTokenExpiration))
	})

	It("clamps retry token expiration above the maximum", func() {
		c, err := populateConfig(Config{RetryTokenExpiration: 10 * time.Minute})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.RetryTokenExpiration).To(Equal(MaxRetryTokenExpiration))
	})

	It("rejects a reset secret of the wrong length", func() {
		_, err := populateConfig(Config{SessionResetSecret: []byte("too short")})
		Expect(err).To(HaveOccurred())
		Expect(err).To(MatchError(ErrConfiguration))
	})

	It("accepts a reset secret of exactly 16 bytes", func() {
		secret := make([]byte, 16)
		c, err := populateConfig(Config{SessionResetSecret: secret})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.SessionResetSecret).To(HaveLen(16))
	})
})
