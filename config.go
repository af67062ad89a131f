package socket

import (
	"errors"
	"time"

	"github.com/nodejs-quic/quicsocket/internal/handshake"
	"github.com/nodejs-quic/quicsocket/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// Options is a bit-flag set controlling optional demultiplexer behavior
// (spec §6).
type Options uint32

const (
	// OptValidateAddress requires a valid retry token before a new Initial
	// packet is allowed to create a session.
	OptValidateAddress Options = 1 << iota
	// OptValidateAddressLRU short-circuits address validation for remote
	// addresses recently found in the validated-address cache (C5).
	OptValidateAddressLRU
	// OptDisableStatelessReset disables emission of stateless-reset
	// packets entirely.
	OptDisableStatelessReset
)

func (o Options) has(flag Options) bool { return o&flag != 0 }

// Retry token expiration bounds (spec §6).
const (
	MinRetryTokenExpiration = 1 * time.Second
	MaxRetryTokenExpiration = 60 * time.Second

	defaultRetryTokenExpiration     = 10 * time.Second
	defaultMaxConnectionsPerHost    = 100
	defaultMaxStatelessResetPerHost = 10
)

// Config holds the constructor scalars from spec §6. The zero Config is
// valid; NewSocket fills in defaults exactly like quic-go's
// populateServerConfig does for quic.Config.
type Config struct {
	Options Options

	// RetryTokenExpiration is clamped to
	// [MinRetryTokenExpiration, MaxRetryTokenExpiration].
	RetryTokenExpiration time.Duration

	MaxConnectionsPerHost    uint64
	MaxStatelessResetPerHost uint64

	// SessionResetSecret, if non-nil, must be exactly
	// handshake.ResetTokenSecretLen bytes; a random secret is generated
	// otherwise.
	SessionResetSecret []byte

	// QLogEnabled is passed through to sessions created by this socket;
	// the demultiplexer itself does not qlog anything.
	QLogEnabled bool

	// ValidatedAddressCacheSize bounds C5, which is filled whenever
	// OptValidateAddress verifies a retry token and consulted only when
	// OptValidateAddressLRU is also set. Zero selects a sane default.
	ValidatedAddressCacheSize int

	// ResponseRateLimit and ResponseBurst bound the global rate of
	// unsolicited response packets (version-negotiation, retry,
	// stateless-reset) this socket will emit across all peers, in
	// addition to the per-host counters in §4.4/§4.7.4. Zero disables the
	// limiter.
	ResponseRateLimit float64
	ResponseBurst     int

	// ConnectionIDLength is the length, in bytes, this socket uses for
	// server-chosen connection IDs (the SCID it mints on a RETRY, and the
	// assumed DCID length of an inbound short header). Zero selects a
	// sane default.
	ConnectionIDLength int

	// Registerer receives the Prometheus collectors backing Stats, if
	// non-nil. A nil Registerer disables metrics export entirely.
	Registerer prometheus.Registerer

	// Logger receives the core's debug/info/error trace output. Defaults
	// to utils.DefaultLogger.
	Logger utils.Logger
}

// ErrConfiguration is the sentinel wrapped by every configuration error
// returned from NewSocket (spec §7, "ConfigurationError").
var ErrConfiguration = errors.New("socket: invalid configuration")

func configError(msg string) error {
	return errors.Join(ErrConfiguration, errors.New(msg))
}

// populateConfig fills unset fields with defaults and clamps the retry
// token expiration into range, matching quic-go's populateServerConfig.
func populateConfig(c Config) (Config, error) {
	if c.RetryTokenExpiration == 0 {
		c.RetryTokenExpiration = defaultRetryTokenExpiration
	}
	if c.RetryTokenExpiration < MinRetryTokenExpiration {
		c.RetryTokenExpiration = MinRetryTokenExpiration
	}
	if c.RetryTokenExpiration > MaxRetryTokenExpiration {
		c.RetryTokenExpiration = MaxRetryTokenExpiration
	}
	if c.MaxConnectionsPerHost == 0 {
		c.MaxConnectionsPerHost = defaultMaxConnectionsPerHost
	}
	if c.MaxStatelessResetPerHost == 0 {
		c.MaxStatelessResetPerHost = defaultMaxStatelessResetPerHost
	}
	if c.SessionResetSecret != nil && len(c.SessionResetSecret) != handshake.ResetTokenSecretLen {
		return Config{}, configError("SessionResetSecret must be exactly 16 bytes")
	}
	if c.ValidatedAddressCacheSize <= 0 {
		c.ValidatedAddressCacheSize = 256
	}
	if c.ConnectionIDLength <= 0 {
		c.ConnectionIDLength = 8
	}
	if c.Logger == nil {
		c.Logger = utils.DefaultLogger
	}
	return c, nil
}
