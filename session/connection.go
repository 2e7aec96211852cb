// File: session/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection entity (spec section 3): peer credentials, three
// half-channels, setup-stream fd, receive scratch buffer, reference
// counter and user context pointer. It holds no service back-reference
// and no list position. Grounded on the teacher's
// protocol.WSConnection (one transport + inbox/outbox channels bound to
// a handler) generalized to three half-channels and credential-gated
// setup, per design note "Cyclic references": the service owns an arena
// of connections keyed by a stable ConnHandle; the transport layer holds
// the handle, not a back-pointer (see table.go).

package session

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ipc/api"
)

// Connection is one accepted client: a setup-stream fd plus the three
// half-channels negotiated during handshake.
type Connection struct {
	handle api.ConnHandle

	creds api.Credentials

	setupFD int

	request  api.HalfChannel
	response api.HalfChannel
	event    api.HalfChannel

	maxMsgSize int
	scratch    []byte

	refCount int32 // atomic

	ctxMu sync.RWMutex
	ctx   any // user-opaque context pointer (context_set/get)

	rate api.RateLimit

	closeOnce sync.Once
	closed    int32 // atomic
}

// NewConnection builds a Connection with an initial reference count of 1
// (spec section 3, "allocated on accept, reference = 1").
func NewConnection(handle api.ConnHandle, setupFD int, creds api.Credentials, maxMsgSize int) *Connection {
	return &Connection{
		handle:     handle,
		setupFD:    setupFD,
		creds:      creds,
		maxMsgSize: maxMsgSize,
		scratch:    make([]byte, maxMsgSize),
		refCount:   1,
		rate:       api.RateNormal,
	}
}

// Handle returns this connection's stable table key.
func (c *Connection) Handle() api.ConnHandle { return c.handle }

// Credentials returns the peer's (uid, gid, pid) extracted at accept.
func (c *Connection) Credentials() api.Credentials { return c.creds }

// SetupFD returns the stream fd used for wakeups and HUP detection.
func (c *Connection) SetupFD() int { return c.setupFD }

// BindChannels attaches the request/response/event half-channels
// negotiated during AUTHENTICATE.
func (c *Connection) BindChannels(request, response, event api.HalfChannel) {
	c.request = request
	c.response = response
	c.event = event
}

func (c *Connection) Request() api.HalfChannel  { return c.request }
func (c *Connection) Response() api.HalfChannel { return c.response }
func (c *Connection) Event() api.HalfChannel    { return c.event }

// Scratch returns the receive scratch buffer sized to the negotiated
// max message size (spec section 3).
func (c *Connection) Scratch() []byte { return c.scratch }

// RefInc takes a reference (spec section 4.4: "every entry from the poll
// loop into a connection takes a reference").
func (c *Connection) RefInc() int32 { return atomic.AddInt32(&c.refCount, 1) }

// RefDec drops a reference, returning the remaining count. Destruction
// is the caller's responsibility once it reaches zero.
func (c *Connection) RefDec() int32 { return atomic.AddInt32(&c.refCount, -1) }

// RefCount reports the current reference count.
func (c *Connection) RefCount() int32 { return atomic.LoadInt32(&c.refCount) }

// ContextSet stores a user-opaque pointer on the connection.
func (c *Connection) ContextSet(ptr any) {
	c.ctxMu.Lock()
	c.ctx = ptr
	c.ctxMu.Unlock()
}

// ContextGet retrieves the user-opaque pointer.
func (c *Connection) ContextGet() any {
	c.ctxMu.RLock()
	defer c.ctxMu.RUnlock()
	return c.ctx
}

// RateLimit returns the connection's current admission rate.
func (c *Connection) RateLimit() api.RateLimit { return c.rate }

// SetRateLimit updates the connection's admission rate (server-side
// request_rate_limit targets every active connection).
func (c *Connection) SetRateLimit(r api.RateLimit) { c.rate = r }

// IsClosed reports whether Close has already run.
func (c *Connection) IsClosed() bool { return atomic.LoadInt32(&c.closed) != 0 }

// Close tears down every half-channel and the setup stream exactly once.
// Callers invoke this once RefCount reaches zero (spec section 4.4:
// "connection_destroyed fires, the transport is closed, and resources
// are freed").
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		atomic.StoreInt32(&c.closed, 1)
		for _, ch := range []api.HalfChannel{c.request, c.response, c.event} {
			if ch == nil {
				continue
			}
			if e := ch.Close(); e != nil && err == nil {
				err = e
			}
		}
		if e := unix.Close(c.setupFD); e != nil && err == nil {
			err = e
		}
	})
	return err
}
