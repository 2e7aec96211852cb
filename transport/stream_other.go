// File: transport/stream_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-Linux fallback for the setup-stream listener: no abstract
// namespace and no SO_PASSCRED, so this uses a plain filesystem-path
// Unix socket via net.Listen and exposes raw fds through SyscallConn for
// API parity with the Linux implementation. Credential extraction is
// unavailable here (wire.PeerCredentialsOf relies on the Linux-only
// SO_PEERCRED).

//go:build !linux

package transport

import (
	"net"
	"os"
)

type Listener struct {
	ln   net.Listener
	name string
}

func Listen(name string) (*Listener, error) {
	path := DefaultSocketDir + "/" + name
	os.MkdirAll(DefaultSocketDir, 0o777)
	os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln, name: name}, nil
}

func (l *Listener) FD() int { return -1 }

func (l *Listener) Accept() (int, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return -1, err
	}
	uc := conn.(*net.UnixConn)
	rc, err := uc.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	rc.Control(func(f uintptr) { fd = int(f) })
	return fd, nil
}

func (l *Listener) Close() error {
	err := l.ln.Close()
	os.Remove(DefaultSocketDir + "/" + l.name)
	return err
}

func Dial(name string) (int, error) {
	conn, err := net.Dial("unix", DefaultSocketDir+"/"+name)
	if err != nil {
		return -1, err
	}
	uc := conn.(*net.UnixConn)
	rc, err := uc.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	rc.Control(func(f uintptr) { fd = int(f) })
	return fd, nil
}

const DefaultSocketDir = "/tmp/hioload-ipc"
