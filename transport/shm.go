// File: transport/shm.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared-memory transport adapter (spec section 4.2): each half-channel
// is one ring buffer. Send enqueues the request/response header plus
// payload as one chunk; recv blocks on the ring's signalling semaphore.
// Zero-copy is available via Peek/Reclaim. Grounded on the teacher's
// api.Transport shape (send/recv/close over a pluggable backend), now
// implementing api.HalfChannel instead.

package transport

import (
	"time"

	"github.com/momentics/hioload-ipc/api"
	"github.com/momentics/hioload-ipc/ringbuf"
)

// ShmChannel is a ring-buffer-backed half-channel.
type ShmChannel struct {
	rb       *ringbuf.RingBuffer
	flowOn   bool
	qlenHint int
}

// NewShmChannelCreate allocates a fresh ring buffer of the given
// capacity under name and wraps it as a half-channel (creating side).
func NewShmChannelCreate(name string, capacity int, baseDir string) (*ShmChannel, error) {
	rb, err := ringbuf.Create(name, capacity, baseDir)
	if err != nil {
		return nil, err
	}
	return &ShmChannel{rb: rb, flowOn: true}, nil
}

// NewShmChannelOpen attaches to an existing ring buffer (attaching side).
func NewShmChannelOpen(name string, baseDir string) (*ShmChannel, error) {
	rb, err := ringbuf.Open(name, baseDir)
	if err != nil {
		return nil, err
	}
	return &ShmChannel{rb: rb, flowOn: true}, nil
}

func (c *ShmChannel) Kind() api.TransportKind { return api.TransportShm }

func (c *ShmChannel) Send(p []byte) (int, error) {
	if !c.flowOn {
		return 0, api.ErrAgain
	}
	if err := c.rb.ChunkWrite(p); err != nil {
		return 0, err
	}
	c.qlenHint++
	return len(p), nil
}

func (c *ShmChannel) SendV(bufs [][]byte) (int, error) {
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

func (c *ShmChannel) Recv(buf []byte, timeout time.Duration) (int, error) {
	n, err := c.rb.ChunkRead(buf, timeoutMsFromDuration(timeout))
	if err == nil && c.qlenHint > 0 {
		c.qlenHint--
	}
	return n, err
}

func (c *ShmChannel) Peek(timeout time.Duration) ([]byte, error) {
	return c.rb.ChunkPeek(timeoutMsFromDuration(timeout))
}

func (c *ShmChannel) Reclaim() error {
	if c.qlenHint > 0 {
		c.qlenHint--
	}
	return c.rb.ChunkReclaim()
}

func (c *ShmChannel) FlowControlSet(on bool) { c.flowOn = on }

func (c *ShmChannel) QLengthGet() int { return int(c.rb.Stats().Count) }

func (c *ShmChannel) Close() error { return c.rb.Close() }

// timeoutMsFromDuration maps a time.Duration to the ring buffer's
// millisecond timeout convention (-1 = infinite, matching spec 4.1).
func timeoutMsFromDuration(d time.Duration) int {
	if d < 0 {
		return -1
	}
	return int(d / time.Millisecond)
}
