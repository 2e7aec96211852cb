// File: transport/posixmq_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// POSIX message queue half-channel (spec section 4.2): one mqd_t per
// half-channel; send maps to mq_send, recv to mq_timedreceive. POSIX
// message queues have no stable binding in golang.org/x/sys/unix, so
// this adapter is grounded on the same raw-syscall idiom used
// throughout this package and in the teacher's internal/transport —
// locally-defined syscall numbers via syscall.Syscall6 (see DESIGN.md).

//go:build linux

package transport

import (
	"syscall"
	"time"
	"unsafe"

	"github.com/momentics/hioload-ipc/api"
)

const (
	posixOCreat   = 0o100
	posixORdwr    = 0o2
	posixONonblock = 0o4000
)

type mqAttr struct {
	flags   int64
	maxmsg  int64
	msgsize int64
	curmsgs int64
}

type posixTimespec struct {
	sec  int64
	nsec int64
}

// PosixMQChannel is a POSIX message-queue-backed half-channel.
type PosixMQChannel struct {
	fd      int
	name    string
	flowOn  bool
	maxSize int
}

func mqOpenCreate(name string, maxSize int) (int, error) {
	path, err := syscall.BytePtrFromString(name)
	if err != nil {
		return -1, err
	}
	attr := mqAttr{maxmsg: 64, msgsize: int64(maxSize)}
	fd, _, errno := syscall.Syscall6(
		sysMqOpen,
		uintptr(unsafe.Pointer(path)),
		uintptr(posixOCreat|posixORdwr),
		uintptr(0o666),
		uintptr(unsafe.Pointer(&attr)),
		0, 0,
	)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

func mqOpenExisting(name string) (int, error) {
	path, err := syscall.BytePtrFromString(name)
	if err != nil {
		return -1, err
	}
	fd, _, errno := syscall.Syscall6(sysMqOpen, uintptr(unsafe.Pointer(path)), uintptr(posixORdwr), 0, 0, 0, 0)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

func mqUnlink(name string) error {
	path, err := syscall.BytePtrFromString(name)
	if err != nil {
		return err
	}
	_, _, errno := syscall.Syscall(sysMqUnlink, uintptr(unsafe.Pointer(path)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func mqTimedsend(fd int, data []byte, timeout *posixTimespec) error {
	var tsPtr uintptr
	if timeout != nil {
		tsPtr = uintptr(unsafe.Pointer(timeout))
	}
	_, _, errno := syscall.Syscall6(
		sysMqTimedsend,
		uintptr(fd),
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		0,
		tsPtr,
		0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}

func mqTimedreceive(fd int, buf []byte, timeout *posixTimespec) (int, error) {
	var tsPtr uintptr
	if timeout != nil {
		tsPtr = uintptr(unsafe.Pointer(timeout))
	}
	n, _, errno := syscall.Syscall6(
		sysMqTimedreceive,
		uintptr(fd),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		0,
		tsPtr,
		0,
	)
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// NewPosixMQChannelCreate creates (or reuses) a POSIX message queue.
func NewPosixMQChannelCreate(name string, maxMsgSize int) (*PosixMQChannel, error) {
	fd, err := mqOpenCreate(name, maxMsgSize)
	if err != nil {
		return nil, err
	}
	return &PosixMQChannel{fd: fd, name: name, flowOn: true, maxSize: maxMsgSize}, nil
}

// NewPosixMQChannelOpen attaches to an existing named queue.
func NewPosixMQChannelOpen(name string, maxMsgSize int) (*PosixMQChannel, error) {
	fd, err := mqOpenExisting(name)
	if err != nil {
		return nil, err
	}
	return &PosixMQChannel{fd: fd, name: name, flowOn: true, maxSize: maxMsgSize}, nil
}

func (c *PosixMQChannel) Kind() api.TransportKind { return api.TransportPosixMQ }

func (c *PosixMQChannel) Send(p []byte) (int, error) {
	if !c.flowOn {
		return 0, api.ErrAgain
	}
	if len(p) == 0 {
		p = []byte{0}
	}
	if err := mqTimedsend(c.fd, p, nil); err != nil {
		if err == syscall.EAGAIN {
			return 0, api.ErrNoSpace
		}
		return 0, err
	}
	return len(p), nil
}

func (c *PosixMQChannel) SendV(bufs [][]byte) (int, error) {
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

func (c *PosixMQChannel) Recv(buf []byte, timeout time.Duration) (int, error) {
	var ts *posixTimespec
	if timeout >= 0 {
		deadline := time.Now().Add(timeout)
		ts = &posixTimespec{sec: deadline.Unix(), nsec: int64(deadline.Nanosecond())}
	}
	n, err := mqTimedreceive(c.fd, buf, ts)
	if err != nil {
		if err == syscall.ETIMEDOUT {
			return 0, api.ErrTimedOut
		}
		return 0, err
	}
	return n, nil
}

func (c *PosixMQChannel) Peek(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, c.maxSize)
	n, err := c.Recv(buf, timeout)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *PosixMQChannel) Reclaim() error { return nil }

func (c *PosixMQChannel) FlowControlSet(on bool) { c.flowOn = on }

func (c *PosixMQChannel) QLengthGet() int { return 0 }

func (c *PosixMQChannel) Close() error {
	return syscall.Close(c.fd)
}

// Unlink removes the named queue from the filesystem (called once by
// whichever side created it, on service teardown).
func (c *PosixMQChannel) Unlink() error { return mqUnlink(c.name) }
