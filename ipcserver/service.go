// File: ipcserver/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Service is the local IPC engine's server half (spec sections 4.4, 6):
// accepts setup-stream connections, runs the single-round-trip
// AUTHENTICATE handshake that binds all three half-channels at once,
// negotiates a transport kind per connection, and dispatches
// steady-state requests through the injected poll loop. Grounded on the
// teacher's server/server.go shape (functional-option construction, a
// Run/Destroy pair, a poll-driven accept callback) generalized from a
// WebSocket upgrade handshake to the AUTHENTICATE exchange.

package ipcserver

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ipc/adapters"
	"github.com/momentics/hioload-ipc/api"
	"github.com/momentics/hioload-ipc/session"
	"github.com/momentics/hioload-ipc/transport"
	"github.com/momentics/hioload-ipc/wire"
)

// Service is one named local IPC endpoint.
type Service struct {
	cfg      *Config
	handlers ServiceHandlers

	poll       api.PollHandlers
	negotiator *transport.Negotiator
	listener   *transport.Listener
	table      *session.Table
	control    api.Control
	affinity   api.Affinity

	rate int32 // atomic api.RateLimit

	pausedMu sync.Mutex
	paused   *queue.Queue // *session.Connection, deregistered from poll while RateOff

	dispatched uint64 // atomic frame counter
	rejected   uint64 // atomic accept-rejection counter

	mu      sync.Mutex
	running bool
}

// NewService constructs a Service ready to Run. A poll-handlers
// collaborator must be supplied via WithPollHandlers before Run, per
// spec section 1's "injected poll-handler interface" boundary.
func NewService(cfg *Config, handlers ServiceHandlers, opts ...ServiceOption) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Service{
		cfg:      cfg,
		handlers: handlers,
		table:    session.NewTable(cfg.ShardCount),
		control:  adapters.NewControlAdapter(),
		affinity: adapters.NewAffinityAdapter(),
		rate:     int32(api.RateNormal),
		paused:   queue.New(),
	}
	s.negotiator = &transport.Negotiator{
		Preference: []api.TransportKind{api.TransportShm, api.TransportPosixMQ, api.TransportSysvMQ},
		BaseDir:    cfg.BaseDir,
		MaxMsgSize: cfg.MaxMsgSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run creates the listening setup-stream socket and registers it, and
// every subsequently accepted connection, with the injected poll
// handlers. Run returns once the listener is registered; actual
// dispatch happens on the caller's poll loop thread(s) (spec section 1:
// "the engine does not run its own event loop").
func (s *Service) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.poll == nil {
		return api.ErrInvalid
	}
	if s.cfg.NUMANode >= 0 {
		_ = s.affinity.Pin(-1, s.cfg.NUMANode)
	}
	l, err := transport.Listen(s.cfg.Name)
	if err != nil {
		return err
	}
	s.listener = l
	if err := s.poll.Add(l.FD(), api.PollIn, s.onAcceptReady); err != nil {
		l.Close()
		return err
	}
	s.running = true
	return nil
}

// Destroy stops accepting new connections and tears down every live
// connection (spec section 4.4's shutdown path).
func (s *Service) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	if s.listener != nil {
		s.poll.Delete(s.listener.FD())
		s.listener.Close()
	}
	s.table.Range(func(c *session.Connection) {
		s.poll.Delete(c.SetupFD())
		s.destroyConnection(c)
	})
	return nil
}

// ServiceStats reports live counters through api.Control, mirroring the
// teacher's server.Stats() surface.
func (s *Service) ServiceStats() map[string]any {
	stats := s.control.Stats()
	stats["ipc.connections"] = s.table.Len()
	stats["ipc.rate"] = api.RateLimit(atomic.LoadInt32(&s.rate)).String()
	stats["ipc.dispatched"] = atomic.LoadUint64(&s.dispatched)
	stats["ipc.rejected"] = atomic.LoadUint64(&s.rejected)
	return stats
}

// RequestRateLimit fans a new admission rate out to every live
// connection. The rate is recorded per connection and on the service;
// under FAST each wakeup drains up to FastDrainRetry frames, under SLOW
// and NORMAL up to PollBatchSize, and no rate changes a poll priority.
// OFF additionally deregisters every connection's setup stream from the
// poll loop, queues the connection on the flow-control pause list, and
// calls FlowControlSet(false) on the service's own handle of its request
// half-channel; that flag is held by this handle only, so the client's
// handle on the same channel is not refused with -EAGAIN. Any other
// value drains the pause list, re-registering each stream and
// re-enabling flow on its half-channel, rather than re-scanning the
// whole table.
func (s *Service) RequestRateLimit(rate api.RateLimit) {
	atomic.StoreInt32(&s.rate, int32(rate))
	if rate == api.RateOff {
		s.table.Range(func(c *session.Connection) {
			if c.RateLimit() == api.RateOff {
				return
			}
			c.SetRateLimit(rate)
			s.poll.Delete(c.SetupFD())
			if req := c.Request(); req != nil {
				req.FlowControlSet(false)
			}
			s.pausedMu.Lock()
			s.paused.Add(c)
			s.pausedMu.Unlock()
		})
		return
	}
	s.pausedMu.Lock()
	for s.paused.Length() > 0 {
		c := s.paused.Peek().(*session.Connection)
		s.paused.Remove()
		s.pausedMu.Unlock()
		if !c.IsClosed() {
			c.SetRateLimit(rate)
			if req := c.Request(); req != nil {
				req.FlowControlSet(true)
			}
			s.poll.Add(c.SetupFD(), api.PollIn, s.connCallback(c))
		}
		s.pausedMu.Lock()
	}
	s.pausedMu.Unlock()
	s.table.Range(func(c *session.Connection) {
		if c.RateLimit() != api.RateOff {
			c.SetRateLimit(rate)
		}
	})
}

// connCallback binds onConnReady to a specific connection, for both the
// initial registration done during handshake and re-registration after
// a pause/resume cycle driven by RequestRateLimit(OFF) / non-OFF.
func (s *Service) connCallback(conn *session.Connection) func(int, api.PollEvents) {
	return func(_ int, events api.PollEvents) { s.onConnReady(conn, events) }
}

// onAcceptReady drains pending connections off the listener, performing
// the handshake synchronously on the calling poll-loop thread, matching
// the teacher's single accept-callback pattern.
func (s *Service) onAcceptReady(_ int, _ api.PollEvents) {
	for {
		fd, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.handshake(fd)
	}
}

// handshake runs the single AUTHENTICATE exchange on a freshly accepted
// setup-stream fd: it validates credentials, negotiates a transport
// kind and max message size, and binds all three half-channels
// (request/response/event) before the first response frame goes out,
// per spec section 4.3's client/server exchange.
func (s *Service) handshake(fd int) {
	hdr, payload, err := wire.RecvFrame(fd, s.cfg.MaxMsgSize)
	if err != nil || hdr.ID != wire.IDAuthenticate {
		wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoInvalid, nil)
		unix.Close(fd)
		return
	}
	req, err := wire.DecodeAuthenticateRequest(payload)
	if err != nil {
		wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoInvalid, nil)
		unix.Close(fd)
		return
	}
	creds, err := wire.PeerCredentialsOf(fd)
	if err != nil {
		wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoInvalid, nil)
		unix.Close(fd)
		return
	}
	if s.handlers.ConnectionAccept != nil {
		if err := s.handlers.ConnectionAccept(creds); err != nil {
			atomic.AddUint64(&s.rejected, 1)
			wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoAccess, nil)
			unix.Close(fd)
			return
		}
	}

	maxSize := s.cfg.MaxMsgSize
	if int(req.MaxMsgSize) > 0 && int(req.MaxMsgSize) < maxSize {
		maxSize = int(req.MaxMsgSize)
	}

	handle := s.table.AllocHandle()
	name := channelName(s.cfg.Name, handle)

	request, kind, err := s.negotiator.CreateChannel(name + ".req")
	if err != nil {
		wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoNoMem, nil)
		unix.Close(fd)
		return
	}
	response, err := s.namedChannel(kind, name+".resp")
	if err != nil {
		request.Close()
		wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoNoMem, nil)
		unix.Close(fd)
		return
	}
	event, err := s.namedChannel(kind, name+".evt")
	if err != nil {
		request.Close()
		response.Close()
		wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoNoMem, nil)
		unix.Close(fd)
		return
	}

	conn := session.NewConnection(handle, fd, creds, maxSize)
	conn.BindChannels(request, response, event)
	s.table.Insert(conn)

	resp := wire.AuthenticateResponse{ConnHandle: handle, TransportKind: kind, NegotiatedMaxSize: int32(maxSize)}
	if err := wire.SendResponseFrame(fd, wire.IDAuthenticate, api.ErrnoOK, wire.EncodeAuthenticateResponse(resp)); err != nil {
		s.table.Remove(handle)
		conn.Close()
		return
	}

	if s.handlers.ConnectionCreated != nil {
		s.handlers.ConnectionCreated(conn)
	}

	if api.RateLimit(atomic.LoadInt32(&s.rate)) == api.RateOff {
		conn.SetRateLimit(api.RateOff)
		if req := conn.Request(); req != nil {
			req.FlowControlSet(false)
		}
		s.pausedMu.Lock()
		s.paused.Add(conn)
		s.pausedMu.Unlock()
		return
	}

	s.poll.Add(fd, api.PollIn, s.connCallback(conn))
}

// namedChannel creates a same-kind sibling half-channel (used for the
// response and event channels once the request channel has settled on a
// transport kind during negotiation).
func (s *Service) namedChannel(kind api.TransportKind, name string) (api.HalfChannel, error) {
	switch kind {
	case api.TransportShm:
		return transport.NewShmChannelCreate(name, s.cfg.MaxMsgSize*4, s.cfg.BaseDir)
	case api.TransportPosixMQ:
		return transport.NewPosixMQChannelCreate(name, s.cfg.MaxMsgSize)
	case api.TransportSysvMQ:
		return transport.NewSysvMQChannelCreate(name, s.cfg.MaxMsgSize)
	default:
		return nil, api.ErrInvalid
	}
}

// onConnReady is the steady-state dispatch callback (spec section 4.4):
// it drains wakeup bytes, checks for the stream's own HUP/DISCONNECT,
// and pulls frames off the request half-channel up to the configured
// batch size (or FastDrainRetry under FAST admission). It does not take
// its own RefInc/RefDec around dispatch: the current poll loop runs one
// callback at a time per connection, so the reference taken at accept
// and dropped at teardown already spans every call here. A dispatch
// model that hands callbacks to multiple worker threads would need a
// RefInc before enqueueing work and a RefDec after, using the same
// counter.
func (s *Service) onConnReady(conn *session.Connection, events api.PollEvents) {
	if events&(api.PollHup|api.PollErr) != 0 {
		s.teardown(conn)
		return
	}

	limit := s.cfg.PollBatchSize
	if api.RateLimit(atomic.LoadInt32(&s.rate)) == api.RateFast {
		limit = s.cfg.FastDrainRetry
	}

	// Drain up to limit wakeup bytes without blocking; the setup stream's
	// non-blocking fd makes a short read a no-op once it runs dry (spec
	// section 4.4: "drain n wakeup bytes equal to the number of processed
	// frames").
	wire.DrainWakeups(conn.SetupFD(), limit)

	scratch := conn.Scratch()
	for i := 0; i < limit; i++ {
		req := conn.Request()
		if req == nil {
			return
		}
		n, err := req.Recv(scratch, 0)
		if err == api.ErrTimedOut || err == api.ErrAgain {
			return
		}
		if err == api.ErrShutDown {
			s.teardown(conn)
			return
		}
		if err != nil {
			return
		}
		h, err := wire.DecodeRequestHeader(scratch[:n])
		if err != nil {
			continue
		}
		if h.ID == wire.IDDisconnect {
			s.teardown(conn)
			return
		}
		payload, err := h.Payload(scratch[:n])
		if err != nil {
			continue
		}
		atomic.AddUint64(&s.dispatched, 1)
		if s.handlers.MsgProcess != nil {
			if err := s.handlers.MsgProcess(conn, h.ID, payload); err != nil {
				ResponseSend(conn, h.ID, api.ErrnoNoBufs, nil)
			}
		}
	}
}

// teardown drops the final reference and destroys conn once its
// reference count reaches zero.
func (s *Service) teardown(conn *session.Connection) {
	if conn.RefDec() > 0 {
		return
	}
	s.destroyConnection(conn)
}

func (s *Service) destroyConnection(conn *session.Connection) {
	s.poll.Delete(conn.SetupFD())
	s.table.Remove(conn.Handle())
	if s.handlers.ConnectionDestroyed != nil {
		s.handlers.ConnectionDestroyed(conn)
	}
	conn.Close()
}

func channelName(service string, handle api.ConnHandle) string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 0, len(service)+17)
	b = append(b, service...)
	b = append(b, '-')
	for i := 60; i >= 0; i -= 4 {
		b = append(b, hexDigits[(uint64(handle)>>uint(i))&0xf])
	}
	return string(b)
}
