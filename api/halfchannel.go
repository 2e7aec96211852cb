// File: api/halfchannel.go
// Author: momentics <momentics@gmail.com>
//
// HalfChannel is the capability interface every transport adapter
// implements (spec section 4.2 / design note "Callback vtable"): a
// one-way byte pipe with optional zero-copy peek/reclaim and flow
// control. Three concrete variants exist in package transport: shared
// memory (ring buffer pair), POSIX message queue, System V message
// queue — variant dispatch replaces the original's function-pointer
// table.

package api

import "time"

// HalfChannel is a one-way byte stream with its own flow-control and
// ordering domain (the glossary's "half-channel"). A connection owns
// three: request, response, event.
type HalfChannel interface {
	// Send writes bytes as a single framed unit.
	Send(p []byte) (n int, err error)

	// SendV writes multiple buffers as a single framed unit (scatter).
	SendV(bufs [][]byte) (n int, err error)

	// Recv blocks up to timeout (0 = no wait, <0 = infinite) for the next
	// framed unit and copies it into buf.
	Recv(buf []byte, timeout time.Duration) (n int, err error)

	// Peek borrows the next framed unit. The shared-memory adapter returns
	// a zero-copy view without advancing the read position; the POSIX and
	// SysV message-queue adapters receive the message into a fresh buffer,
	// which removes it from the queue, and their Reclaim does nothing.
	Peek(timeout time.Duration) (data []byte, err error)

	// Reclaim releases the chunk last returned by Peek, advancing the
	// read position.
	Reclaim() error

	// FlowControlSet toggles admission of further sends on this channel.
	FlowControlSet(on bool)

	// QLengthGet returns the number of framed units currently queued; the
	// message-queue adapters always report 0.
	QLengthGet() int

	// Kind reports which transport variant backs this channel.
	Kind() TransportKind

	// Close releases the channel's resources (ring buffer detach, mq
	// close, etc).
	Close() error
}

// PollHandlers is the injected poll-multiplexer collaborator (spec
// sections 4.4/6 and the out-of-scope "generic event loop" collaborator):
// add/modify/delete of a file descriptor's readiness registration. The
// concrete implementation lives in package reactor.
type PollHandlers interface {
	Add(fd int, events PollEvents, cb func(fd int, events PollEvents)) error
	Modify(fd int, events PollEvents) error
	Delete(fd int) error
}

// PollEvents is a bitmask of readiness conditions, matching epoll's
// EPOLLIN/EPOLLOUT/EPOLLHUP shape closely enough to map directly.
type PollEvents uint32

const (
	PollIn  PollEvents = 1 << iota
	PollOut
	PollHup
	PollErr
)
