package socket

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nodejs-quic/quicsocket/internal/handshake"
	"github.com/nodejs-quic/quicsocket/internal/metrics"
	"github.com/nodejs-quic/quicsocket/internal/qerr"
	"github.com/nodejs-quic/quicsocket/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type lifecycleState int32

const (
	stateInit lifecycleState = iota
	stateListening
	stateStopped
	stateDestroyed
)

// Socket is the demultiplexer (C8, spec §4.7): it owns the connection-ID,
// reset-token, per-peer-counter and validated-address tables (C2–C5),
// drives the receive-path decision tree, issues version-negotiation/
// retry/stateless-reset responses, and tracks statistics.
//
// The spec's concurrency model (§5) is single-threaded cooperative; this
// port instead serializes every core operation behind one mutex, since
// each bound UDPEndpoint delivers onRecv from its own goroutine. That
// satisfies the spec's own escape hatch: "implementations targeting a
// multi-threaded runtime must serialize all core operations onto one
// task/actor."
type Socket struct {
	mu sync.Mutex

	config         Config
	alpn           string
	sessionFactory SessionFactory

	cids        *cidTable
	resetTokens *resetTokenTable
	counters    *peerCounters
	addrCache   *validatedAddressCache
	tokens      *tokenEngine

	stats     *Stats
	listeners *listenerChain

	endpoints []Endpoint
	preferred Endpoint

	state    atomic.Int32
	busy     atomic.Bool
	resetsOn atomic.Bool

	rxLoss, txLoss float64
	rng            *mrand.Rand

	limiter *rate.Limiter

	logger utils.Logger
}

var (
	// ErrNotListening reports that the socket is not in the LISTENING
	// state. No function in this package returns it: a socket that is not
	// listening drops new Initial packets without an error.
	ErrNotListening = errors.New("socket: not listening")
	// ErrAlreadyListening is returned by Listen when called outside the
	// INIT state.
	ErrAlreadyListening = errors.New("socket: already listening")
	// ErrDestroyed is returned by any operation attempted after Destroy.
	ErrDestroyed = errors.New("socket: destroyed")
	// ErrNoPreferredEndpoint is logged when an outbound send is attempted
	// with no endpoint bound; the packet is dropped.
	ErrNoPreferredEndpoint = errors.New("socket: no preferred endpoint bound")
)

// NewSocket constructs a Socket. sessionFactory is called by accept_initial
// (§4.7.2) whenever a new Initial packet is admitted; it must not be nil.
func NewSocket(cfg Config, alpn string, sessionFactory SessionFactory) (*Socket, error) {
	if sessionFactory == nil {
		return nil, configError("sessionFactory must not be nil")
	}
	cfg, err := populateConfig(cfg)
	if err != nil {
		return nil, err
	}

	var resetSecret [16]byte
	if cfg.SessionResetSecret != nil {
		copy(resetSecret[:], cfg.SessionResetSecret)
	} else {
		resetSecret, err = randomResetSecret()
		if err != nil {
			return nil, fmt.Errorf("socket: generating reset secret: %w", err)
		}
	}
	var tokenSecret handshake.TokenProtectorKey
	if _, err := crand.Read(tokenSecret[:]); err != nil {
		return nil, fmt.Errorf("socket: generating token secret: %w", err)
	}

	var collectors *metrics.Collectors
	if cfg.Registerer != nil {
		collectors = metrics.NewCollectors(cfg.Registerer, nil)
	}

	var limiter *rate.Limiter
	if cfg.ResponseRateLimit > 0 {
		burst := cfg.ResponseBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.ResponseRateLimit), burst)
	}

	s := &Socket{
		config:         cfg,
		alpn:           alpn,
		sessionFactory: sessionFactory,
		cids:           newCIDTable(),
		resetTokens:    newResetTokenTable(),
		counters:       newPeerCounters(),
		addrCache:      newValidatedAddressCache(cfg.ValidatedAddressCacheSize),
		tokens:         newTokenEngine(tokenSecret, resetSecret),
		stats:          newStats(collectors),
		limiter:        limiter,
		rng:            mrand.New(mrand.NewSource(time.Now().UnixNano())),
		logger:         cfg.Logger,
	}
	s.listeners = newListenerChain(s)
	s.resetsOn.Store(!cfg.Options.has(OptDisableStatelessReset))
	s.state.Store(int32(stateInit))
	return s, nil
}

func (s *Socket) lifecycleState() lifecycleState { return lifecycleState(s.state.Load()) }

// AddEndpoint binds ep to this socket. The first endpoint added, or any
// endpoint added with preferred=true, becomes the endpoint all outbound
// datagrams are sent through (spec §4.6, §6 "add_endpoint").
func (s *Socket) AddEndpoint(ep Endpoint, preferred bool) error {
	s.mu.Lock()
	if s.lifecycleState() == stateDestroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	first := len(s.endpoints) == 0
	s.endpoints = append(s.endpoints, ep)
	if preferred || first {
		s.preferred = ep
	}
	s.mu.Unlock()

	return ep.Bind(s)
}

// Listen transitions INIT -> LISTENING, records listen_at, and begins
// accepting new sessions on every bound endpoint (spec §4.7.7). alpn is
// the ALPN label threaded into every session this socket constructs.
func (s *Socket) Listen(alpn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lifecycleState() == stateDestroyed {
		return ErrDestroyed
	}
	if s.lifecycleState() != stateInit {
		return ErrAlreadyListening
	}
	if len(s.endpoints) == 0 {
		return errors.New("socket: Listen requires at least one endpoint")
	}
	s.alpn = alpn
	s.state.Store(int32(stateListening))
	s.stats.markListening()
	return nil
}

// StopListening forbids new sessions from being created but leaves
// existing sessions and endpoints running (spec §4.7.7). Idempotent.
func (s *Socket) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lifecycleState() == stateListening {
		s.state.Store(int32(stateStopped))
	}
}

// SetServerBusy toggles the BUSY sub-state. While busy, accept_initial
// still constructs sessions but marks every one of them for immediate
// SERVER_BUSY closure (spec §4.7.2, §4.7.7).
func (s *Socket) SetServerBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy.Store(busy)
	s.listeners.onServerBusy(busy)
}

// ToggleStatelessReset flips whether this socket emits stateless-reset
// packets and returns the new value.
func (s *Socket) ToggleStatelessReset() bool {
	for {
		old := s.resetsOn.Load()
		if s.resetsOn.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetDiagnosticPacketLoss sets synthetic drop probabilities in [0.0, 1.0]
// for received (rx) and sent (tx) datagrams, for fault-injection testing
// (spec §6, §8 scenario S6).
func (s *Socket) SetDiagnosticPacketLoss(rx, tx float64) error {
	if rx < 0 || rx > 1 || tx < 0 || tx > 1 {
		return fmt.Errorf("socket: packet loss probabilities must be within [0.0, 1.0]")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rxLoss, s.txLoss = rx, tx
	return nil
}

// Stats returns the socket's live statistics record.
func (s *Socket) Stats() *Stats { return s.stats }

// DrainEndpoint requests graceful shutdown of one bound endpoint (spec §6,
// "wait_for_pending_callbacks transitions to draining"). Listener
// callbacks must not call this synchronously — the core's lock is held
// for the duration of listener notification, and endpoint draining can
// complete synchronously and re-enter the core.
func (s *Socket) DrainEndpoint(ep Endpoint) { ep.Drain() }

// AddListener pushes l onto the top of the listener chain (C9).
func (s *Socket) AddListener(l Listener) { s.listeners.push(s, l) }

// RemoveListener unlinks l from the listener chain. Panics if l is not
// currently attached (spec §4.8, "must fail loudly").
func (s *Socket) RemoveListener(l Listener) { s.listeners.remove(l) }

// Destroy stops receiving on every endpoint and tears down the listener
// chain (spec §4.7.7). It is the terminal operation; Destroy is safe to
// call more than once. Endpoints are closed concurrently via errgroup,
// mirroring how packetHandlerMap.Close fans shutdown out over every live
// session in the teacher.
func (s *Socket) Destroy(ctx context.Context) error {
	s.mu.Lock()
	if s.lifecycleState() == stateDestroyed {
		s.mu.Unlock()
		return nil
	}
	s.state.Store(int32(stateDestroyed))
	endpoints := append([]Endpoint(nil), s.endpoints...)
	s.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, ep := range endpoints {
		ep := ep
		g.Go(func() error {
			return ep.Close()
		})
	}
	err := g.Wait()

	s.mu.Lock()
	s.listeners.onDestroy()
	s.listeners = newListenerChain(s)
	s.mu.Unlock()
	return err
}

// --- EndpointHandler ---

func (s *Socket) onBind(ep Endpoint) {
	s.stats.markBound()
	s.logger.Debugf("endpoint bound: %s", ep.LocalAddr())
}

func (s *Socket) onRecv(ep Endpoint, data []byte, local, remote netip.AddrPort) {
	s.onReceive(data, local, remote)
}

func (s *Socket) onError(ep Endpoint, err error) {
	s.logger.Errorf("endpoint io error: %v", err)
	s.listeners.onError(int(qerr.InternalError))
}

func (s *Socket) onEndpointDone(ep Endpoint) {
	s.mu.Lock()
	for i, e := range s.endpoints {
		if e == ep {
			s.endpoints = append(s.endpoints[:i], s.endpoints[i+1:]...)
			break
		}
	}
	if s.preferred == ep {
		s.preferred = nil
		if len(s.endpoints) > 0 {
			s.preferred = s.endpoints[0]
		}
	}
	s.mu.Unlock()
	s.listeners.onEndpointDone(ep)
}

