package socket

// Listener observes lifecycle events emitted by a Socket (C9, spec §4.8).
// Implementations that only care about a subset of events should embed
// BaseListener, which forwards everything to the predecessor in the chain
// exactly like the default listener in spec §9's design note.
type Listener interface {
	OnError(code int)
	OnSessionReady(sess Session)
	OnServerBusy(busy bool)
	OnEndpointDone(ep Endpoint)
	OnDestroy()

	setPrevious(prev Listener)
	previous() Listener
	setSocket(s *Socket)
	socket() *Socket
}

// BaseListener forwards every event to the previous listener in the
// chain. Embed it and override only the events you care about.
type BaseListener struct {
	prev Listener
	sock *Socket
}

func (b *BaseListener) OnError(code int) {
	if b.prev != nil {
		b.prev.OnError(code)
	}
}

func (b *BaseListener) OnSessionReady(sess Session) {
	if b.prev != nil {
		b.prev.OnSessionReady(sess)
	}
}

func (b *BaseListener) OnServerBusy(busy bool) {
	if b.prev != nil {
		b.prev.OnServerBusy(busy)
	}
}

func (b *BaseListener) OnEndpointDone(ep Endpoint) {
	if b.prev != nil {
		b.prev.OnEndpointDone(ep)
	}
}

func (b *BaseListener) OnDestroy() {
	if b.prev != nil {
		b.prev.OnDestroy()
	}
}

func (b *BaseListener) setPrevious(prev Listener) { b.prev = prev }
func (b *BaseListener) previous() Listener        { return b.prev }

// setSocket/socket hold only a lookup handle to the owning Socket (spec
// §9: "each listener holds a weak back-reference to the core used only to
// look up the current context, never to keep the core alive"). Go's
// garbage collector makes the strong/weak distinction moot for lifetime
// purposes, but the accessor is kept narrow — read-only context lookup —
// so a listener can never reach in and mutate the core's tables directly.
func (b *BaseListener) setSocket(s *Socket) { b.sock = s }
func (b *BaseListener) socket() *Socket     { return b.sock }

// listenerChain is the stack of Listeners attached to a Socket. Push
// prepends; remove unlinks from anywhere in the chain.
type listenerChain struct {
	top Listener
}

func newListenerChain(sock *Socket) *listenerChain {
	def := &BaseListener{}
	def.setSocket(sock)
	return &listenerChain{top: def}
}

// push installs listener as the new top of the chain.
func (c *listenerChain) push(sock *Socket, l Listener) {
	l.setPrevious(c.top)
	l.setSocket(sock)
	c.top = l
}

// remove unlinks l from anywhere in the chain. Removing a listener that is
// not present is a programming error and panics, matching spec §4.8 ("must
// fail loudly if the listener is not present").
func (c *listenerChain) remove(l Listener) {
	var prev Listener
	for cur := c.top; cur != nil; prev, cur = cur, cur.previous() {
		if cur == l {
			if prev != nil {
				prev.setPrevious(cur.previous())
			} else {
				c.top = cur.previous()
			}
			l.setPrevious(nil)
			l.setSocket(nil)
			return
		}
	}
	panic("socket: RemoveListener called with a listener that is not attached")
}

func (c *listenerChain) onError(code int)              { c.top.OnError(code) }
func (c *listenerChain) onSessionReady(sess Session)    { c.top.OnSessionReady(sess) }
func (c *listenerChain) onServerBusy(busy bool)         { c.top.OnServerBusy(busy) }
func (c *listenerChain) onEndpointDone(ep Endpoint)     { c.top.OnEndpointDone(ep) }
func (c *listenerChain) onDestroy()                     { c.top.OnDestroy() }
