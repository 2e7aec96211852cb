// File: transport/mq_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-Linux stand-ins for the message-queue adapters: POSIX and System V
// message queues are Linux/POSIX-specific and have no portable Go
// binding, so other platforms get a constructor that fails fast with
// api.ErrNotSupported rather than a partial emulation.

//go:build !linux

package transport

import (
	"time"

	"github.com/momentics/hioload-ipc/api"
)

type PosixMQChannel struct{}

func NewPosixMQChannelCreate(name string, maxMsgSize int) (*PosixMQChannel, error) {
	return nil, api.ErrNotSupported
}
func NewPosixMQChannelOpen(name string, maxMsgSize int) (*PosixMQChannel, error) {
	return nil, api.ErrNotSupported
}
func (c *PosixMQChannel) Kind() api.TransportKind               { return api.TransportPosixMQ }
func (c *PosixMQChannel) Send(p []byte) (int, error)            { return 0, api.ErrNotSupported }
func (c *PosixMQChannel) SendV(b [][]byte) (int, error)         { return 0, api.ErrNotSupported }
func (c *PosixMQChannel) Recv(b []byte, t time.Duration) (int, error) { return 0, api.ErrNotSupported }
func (c *PosixMQChannel) Peek(t time.Duration) ([]byte, error)  { return nil, api.ErrNotSupported }
func (c *PosixMQChannel) Reclaim() error                        { return api.ErrNotSupported }
func (c *PosixMQChannel) FlowControlSet(on bool)                 {}
func (c *PosixMQChannel) QLengthGet() int                        { return 0 }
func (c *PosixMQChannel) Close() error                           { return nil }
func (c *PosixMQChannel) Unlink() error                          { return nil }

type SysvMQChannel struct{}

func NewSysvMQChannelCreate(name string, maxMsgSize int) (*SysvMQChannel, error) {
	return nil, api.ErrNotSupported
}
func NewSysvMQChannelOpen(name string, maxMsgSize int) (*SysvMQChannel, error) {
	return nil, api.ErrNotSupported
}
func (c *SysvMQChannel) Kind() api.TransportKind               { return api.TransportSysvMQ }
func (c *SysvMQChannel) Send(p []byte) (int, error)            { return 0, api.ErrNotSupported }
func (c *SysvMQChannel) SendV(b [][]byte) (int, error)         { return 0, api.ErrNotSupported }
func (c *SysvMQChannel) Recv(b []byte, t time.Duration) (int, error) { return 0, api.ErrNotSupported }
func (c *SysvMQChannel) Peek(t time.Duration) ([]byte, error)  { return nil, api.ErrNotSupported }
func (c *SysvMQChannel) Reclaim() error                        { return api.ErrNotSupported }
func (c *SysvMQChannel) FlowControlSet(on bool)                 {}
func (c *SysvMQChannel) QLengthGet() int                        { return 0 }
func (c *SysvMQChannel) Close() error                           { return nil }
