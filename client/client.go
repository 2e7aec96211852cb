// File: client/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Client-side half of the local IPC engine (spec sections 4.3, 6):
// dials a service's setup stream, runs AUTHENTICATE, and attaches the
// negotiated half-channels. Grounded on original_source/lib/ipc_us.c's
// qb_ipcc_connect (connect, send AUTHENTICATE, map the returned
// transport) expressed in the teacher's small-constructor-plus-methods
// client idiom.

package client

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ipc/api"
	"github.com/momentics/hioload-ipc/transport"
	"github.com/momentics/hioload-ipc/wire"
)

// Conn is one client-side connection to a named service.
type Conn struct {
	Handle     api.ConnHandle
	setupFD    int
	request    api.HalfChannel
	response   api.HalfChannel
	event      api.HalfChannel
	maxMsgSize int
}

// Connect dials name's setup stream, authenticates, and attaches the
// negotiated request/response/event half-channels.
func Connect(name string, maxMsgSize int) (*Conn, error) {
	fd, err := transport.Dial(name)
	if err != nil {
		return nil, err
	}

	if err := wire.SendFrame(fd, wire.IDAuthenticate, wire.EncodeAuthenticateRequest(wire.AuthenticateRequest{MaxMsgSize: int32(maxMsgSize)})); err != nil {
		unix.Close(fd)
		return nil, err
	}
	hdr, payload, err := wire.RecvResponseFrame(fd, maxMsgSize)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if hdr.Error != int32(api.ErrnoOK) {
		unix.Close(fd)
		return nil, api.ErrnoToError(api.IPCErrno(hdr.Error))
	}
	resp, err := wire.DecodeAuthenticateResponse(payload)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	neg := transport.DefaultNegotiator(int(resp.NegotiatedMaxSize))
	name2 := channelName(name, resp.ConnHandle)
	request, err := neg.OpenChannel(resp.TransportKind, name2+".req")
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	response, err := neg.OpenChannel(resp.TransportKind, name2+".resp")
	if err != nil {
		request.Close()
		unix.Close(fd)
		return nil, err
	}
	event, err := neg.OpenChannel(resp.TransportKind, name2+".evt")
	if err != nil {
		request.Close()
		response.Close()
		unix.Close(fd)
		return nil, err
	}

	return &Conn{
		Handle:     resp.ConnHandle,
		setupFD:    fd,
		request:    request,
		response:   response,
		event:      event,
		maxMsgSize: int(resp.NegotiatedMaxSize),
	}, nil
}

// ConnectRetry retries Connect with a fixed backoff, absorbing the
// transient ECONNREFUSED window between a service's bind/listen and a
// racing client's first dial (grounded on original_source/lib/ipc_us.c's
// retry loop around connect(2)).
func ConnectRetry(name string, maxMsgSize, attempts int, backoff time.Duration) (*Conn, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		c, err := Connect(name, maxMsgSize)
		if err == nil {
			return c, nil
		}
		lastErr = err
		time.Sleep(backoff)
	}
	return nil, lastErr
}

// Send writes payload as one request frame and wakes the service's poll
// loop (spec section 4.4: every send on a non-pollable transport also
// writes a wakeup byte on the setup stream).
func (c *Conn) Send(id int32, payload []byte) (int, error) {
	n, err := c.request.Send(wire.EncodeRequest(id, payload))
	if err != nil {
		return n, err
	}
	if err := wire.SendWakeup(c.setupFD); err != nil {
		return n, err
	}
	return n, nil
}

// Recv reads the next response frame's payload into buf.
func (c *Conn) Recv(buf []byte, timeout time.Duration) (api.IPCErrno, int, error) {
	scratch := make([]byte, c.maxMsgSize)
	n, err := c.response.Recv(scratch, timeout)
	if err != nil {
		return 0, 0, err
	}
	h, err := wire.DecodeResponseHeader(scratch[:n])
	if err != nil {
		return 0, 0, err
	}
	payload, err := h.Payload(scratch[:n])
	if err != nil {
		return api.IPCErrno(h.Error), 0, err
	}
	copied := copy(buf, payload)
	return api.IPCErrno(h.Error), copied, nil
}

// EventRecv blocks up to timeout for the next event frame.
func (c *Conn) EventRecv(buf []byte, timeout time.Duration) (int32, int, error) {
	scratch := make([]byte, c.maxMsgSize)
	n, err := c.event.Recv(scratch, timeout)
	if err != nil {
		return 0, 0, err
	}
	h, err := wire.DecodeRequestHeader(scratch[:n])
	if err != nil {
		return 0, 0, err
	}
	payload, err := h.Payload(scratch[:n])
	if err != nil {
		return h.ID, 0, err
	}
	copied := copy(buf, payload)
	return h.ID, copied, nil
}

// FDGet returns the setup-stream descriptor, for registration with an
// external poll loop that waits for event wakeups (spec section 6).
func (c *Conn) FDGet() int { return c.setupFD }

// Disconnect sends a DISCONNECT control frame and closes every local
// resource (spec section 4.3's closing exchange).
func (c *Conn) Disconnect() error {
	if c.request != nil {
		_, _ = c.Send(wire.IDDisconnect, nil)
	}
	var err error
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
	return err
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
