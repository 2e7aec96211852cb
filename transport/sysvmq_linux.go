// File: transport/sysvmq_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// System V message queue half-channel (spec section 4.2): one key+id
// per half-channel, framing via msgsnd/msgrcv. Needs a companion stream
// fd for poll readiness since SysV queues are not pollable — see the
// wakeup bytes of wire.SendWakeup/wire.DrainWakeups, used by packages
// client and ipcserver.

//go:build linux

package transport

import (
	"hash/fnv"
	"syscall"
	"time"
	"unsafe"

	"github.com/momentics/hioload-ipc/api"
)

// sysv message type used for all frames; the queue is dedicated to one
// half-channel so a single mtype suffices (unlike general-purpose SysV
// queues that multiplex mtypes per reader).
const sysvMsgType = 1

// SysvMQChannel is a System V message-queue-backed half-channel.
type SysvMQChannel struct {
	id       int
	name     string
	flowOn   bool
	maxSize  int
}

func sysvKey(name string) int {
	h := fnv.New32a()
	h.Write([]byte(name))
	return int(h.Sum32() & 0x3fffffff)
}

func msgget(key, flags int) (int, error) {
	id, _, errno := syscall.Syscall(sysMsgget, uintptr(key), 0, uintptr(flags))
	if errno != 0 {
		return -1, errno
	}
	return int(id), nil
}

func msgsnd(id int, mtype int64, data []byte, flags int) error {
	buf := make([]byte, 8+len(data))
	*(*int64)(unsafe.Pointer(&buf[0])) = mtype
	copy(buf[8:], data)
	_, _, errno := syscall.Syscall6(sysMsgsnd, uintptr(id), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(data)), uintptr(flags), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func msgrcv(id int, buf []byte, mtype int64, flags int) (int, error) {
	full := make([]byte, 8+len(buf))
	n, _, errno := syscall.Syscall6(sysMsgrcv, uintptr(id), uintptr(unsafe.Pointer(&full[0])), uintptr(len(buf)), uintptr(mtype), uintptr(flags), 0)
	if errno != 0 {
		return 0, errno
	}
	copy(buf, full[8:8+int(n)])
	return int(n), nil
}

func msgctlRmid(id int) error {
	_, _, errno := syscall.Syscall6(sysMsgctl, uintptr(id), ipcRmid, 0, 0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// NewSysvMQChannelCreate creates a new SysV message queue for name.
func NewSysvMQChannelCreate(name string, maxMsgSize int) (*SysvMQChannel, error) {
	key := sysvKey(name)
	id, err := msgget(key, ipcCreat|ipcExcl|0o666)
	if err == syscall.EEXIST {
		id, err = msgget(key, 0o666)
	}
	if err != nil {
		return nil, err
	}
	return &SysvMQChannel{id: id, name: name, flowOn: true, maxSize: maxMsgSize}, nil
}

// NewSysvMQChannelOpen attaches to an existing queue by name.
func NewSysvMQChannelOpen(name string, maxMsgSize int) (*SysvMQChannel, error) {
	key := sysvKey(name)
	id, err := msgget(key, 0o666)
	if err != nil {
		return nil, err
	}
	return &SysvMQChannel{id: id, name: name, flowOn: true, maxSize: maxMsgSize}, nil
}

func (c *SysvMQChannel) Kind() api.TransportKind { return api.TransportSysvMQ }

func (c *SysvMQChannel) Send(p []byte) (int, error) {
	if !c.flowOn {
		return 0, api.ErrAgain
	}
	if err := msgsnd(c.id, sysvMsgType, p, 0); err != nil {
		if err == syscall.ENOSPC {
			return 0, api.ErrNoSpace
		}
		return 0, err
	}
	return len(p), nil
}

func (c *SysvMQChannel) SendV(bufs [][]byte) (int, error) {
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

func (c *SysvMQChannel) Recv(buf []byte, timeout time.Duration) (int, error) {
	// msgrcv has no portable timeout in the classic API; non-blocking
	// polling loop approximates the spec's millisecond-timeout contract.
	deadline := time.Now().Add(timeout)
	for {
		n, err := msgrcv(c.id, buf, sysvMsgType, unix_IPC_NOWAIT)
		if err == nil {
			return n, nil
		}
		if err != syscall.ENOMSG {
			return 0, err
		}
		if timeout >= 0 && time.Now().After(deadline) {
			return 0, api.ErrTimedOut
		}
		time.Sleep(time.Millisecond)
	}
}

func (c *SysvMQChannel) Peek(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, c.maxSize)
	n, err := c.Recv(buf, timeout)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *SysvMQChannel) Reclaim() error { return nil } // SysV mq has no borrow/reclaim step

func (c *SysvMQChannel) FlowControlSet(on bool) { c.flowOn = on }

func (c *SysvMQChannel) QLengthGet() int { return 0 } // msgctl IPC_STAT omitted; not exercised by the core

func (c *SysvMQChannel) Close() error { return msgctlRmid(c.id) }

const unix_IPC_NOWAIT = 0o4000
