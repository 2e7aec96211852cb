// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake api.HalfChannel for ipcserver/client unit tests: an in-process
// FIFO of frames with no real shared memory or message queue behind it,
// replacing the teacher's fake.Transport ([][]byte send/recv buffers)
// generalized to the framed-chunk HalfChannel contract.

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-ipc/api"
)

// HalfChannel is a deterministic, in-memory api.HalfChannel double.
type HalfChannel struct {
	mu       sync.Mutex
	queue    [][]byte
	peeked   []byte
	flowOn   bool
	kind     api.TransportKind
	closed   bool
	sendErr  error
	recvErr  error
}

// NewHalfChannel constructs an open fake half-channel.
func NewHalfChannel(kind api.TransportKind) *HalfChannel {
	return &HalfChannel{flowOn: true, kind: kind}
}

func (c *HalfChannel) Send(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, api.ErrShutDown
	}
	if !c.flowOn {
		return 0, api.ErrAgain
	}
	if c.sendErr != nil {
		return 0, c.sendErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	c.queue = append(c.queue, cp)
	return len(p), nil
}

func (c *HalfChannel) SendV(bufs [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	joined := make([]byte, 0, total)
	for _, b := range bufs {
		joined = append(joined, b...)
	}
	return c.Send(joined)
}

func (c *HalfChannel) Recv(buf []byte, _ time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recvErr != nil {
		return 0, c.recvErr
	}
	if len(c.queue) == 0 {
		if c.closed {
			return 0, api.ErrShutDown
		}
		return 0, api.ErrTimedOut
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	n := copy(buf, next)
	return n, nil
}

func (c *HalfChannel) Peek(_ time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil, api.ErrTimedOut
	}
	c.peeked = c.queue[0]
	return c.peeked, nil
}

func (c *HalfChannel) Reclaim() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return api.ErrInvalid
	}
	c.queue = c.queue[1:]
	return nil
}

func (c *HalfChannel) FlowControlSet(on bool) {
	c.mu.Lock()
	c.flowOn = on
	c.mu.Unlock()
}

func (c *HalfChannel) QLengthGet() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *HalfChannel) Kind() api.TransportKind { return c.kind }

func (c *HalfChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// SetSendError configures Send to fail with err.
func (c *HalfChannel) SetSendError(err error) { c.mu.Lock(); c.sendErr = err; c.mu.Unlock() }

// SetRecvError configures Recv to fail with err.
func (c *HalfChannel) SetRecvError(err error) { c.mu.Lock(); c.recvErr = err; c.mu.Unlock() }

var _ api.HalfChannel = (*HalfChannel)(nil)
