// File: wire/assembly.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Message assembly over a raw stream fd (spec section 4.5): frames are
// delimited by their declared size field, not a delimiter byte. Readers
// loop until the full frame is in hand; writers loop until every byte is
// delivered. EINTR is retried transparently; EPIPE/ECONNRESET become
// ErrShutDown. Sends use MSG_NOSIGNAL so a peer that has hung up does not
// raise SIGPIPE in this process.

package wire

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ipc/api"
)

// waitFD blocks until fd is readable or writable (per events),
// absorbing the EAGAIN/EWOULDBLOCK a non-blocking accepted socket
// returns when a control frame's bytes have not all arrived yet.
func waitFD(fd int, events int16) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	for {
		_, err := unix.Poll(fds, -1)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

// SendAll writes buf to fd in full, retrying on EINTR/EAGAIN and
// translating broken-pipe conditions to ErrShutDown.
func SendAll(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Send(fd, buf, unix.MSG_NOSIGNAL)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				if werr := waitFD(fd, unix.POLLOUT); werr != nil {
					return werr
				}
				continue
			}
			if errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ECONNRESET) {
				return api.ErrShutDown
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// RecvAll reads exactly len(buf) bytes from fd, retrying on EINTR/EAGAIN
// (waiting for readiness on a non-blocking fd) and translating EOF /
// connection reset to ErrShutDown.
func RecvAll(fd int, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := unix.Read(fd, buf[read:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				if werr := waitFD(fd, unix.POLLIN); werr != nil {
					return werr
				}
				continue
			}
			if errors.Is(err, unix.ECONNRESET) {
				return api.ErrShutDown
			}
			return err
		}
		if n == 0 {
			return api.ErrShutDown
		}
		read += n
	}
	return nil
}

// RecvFrame reads a full request frame (header + declared payload) from
// fd, enforcing maxMsgSize as an upper bound on Size.
func RecvFrame(fd int, maxMsgSize int) (RequestHeader, []byte, error) {
	hdr := make([]byte, RequestHeaderSize)
	if err := RecvAll(fd, hdr); err != nil {
		return RequestHeader{}, nil, err
	}
	h, err := DecodeRequestHeader(hdr)
	if err != nil {
		return h, nil, err
	}
	if int(h.Size) > maxMsgSize+RequestHeaderSize {
		return h, nil, api.ErrInvalid
	}
	payload := make([]byte, int(h.Size)-RequestHeaderSize)
	if err := RecvAll(fd, payload); err != nil {
		return h, nil, err
	}
	return h, payload, nil
}

// SendFrame writes a complete request frame to fd.
func SendFrame(fd int, id int32, payload []byte) error {
	return SendAll(fd, EncodeRequest(id, payload))
}

// RecvResponseFrame reads a full response frame from fd.
func RecvResponseFrame(fd int, maxMsgSize int) (ResponseHeader, []byte, error) {
	hdr := make([]byte, ResponseHeaderSize)
	if err := RecvAll(fd, hdr); err != nil {
		return ResponseHeader{}, nil, err
	}
	h, err := DecodeResponseHeader(hdr)
	if err != nil {
		return h, nil, err
	}
	if int(h.Size) > maxMsgSize+ResponseHeaderSize {
		return h, nil, api.ErrInvalid
	}
	payload := make([]byte, int(h.Size)-ResponseHeaderSize)
	if err := RecvAll(fd, payload); err != nil {
		return h, nil, err
	}
	return h, payload, nil
}

// SendResponseFrame writes a complete response frame to fd.
func SendResponseFrame(fd int, id int32, errno api.IPCErrno, payload []byte) error {
	return SendAll(fd, EncodeResponse(id, errno, payload))
}

// WakeupByte is written on a connection's paired stream after an event is
// enqueued, to wake a poll-based peer (glossary: "wakeup byte").
const WakeupByte = 0x01

// SendWakeup writes a single wakeup byte on fd, ignoring would-block.
func SendWakeup(fd int) error {
	_, err := unix.Write(fd, []byte{WakeupByte})
	if err != nil && errors.Is(err, unix.EAGAIN) {
		return nil
	}
	return err
}

// DrainWakeups reads up to n wakeup bytes from fd without blocking,
// matching the dispatch loop's "drain n wakeup bytes equal to the number
// of processed frames" rule (spec section 4.4).
func DrainWakeups(fd int, n int) {
	buf := make([]byte, n)
	for n > 0 {
		k, err := unix.Read(fd, buf[:n])
		if err != nil || k <= 0 {
			return
		}
		n -= k
	}
}
