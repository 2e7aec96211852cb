// File: transport/stream_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Setup-stream listener/dialer (spec sections 4.4, 6): a Unix domain
// stream socket in the abstract namespace on Linux (`@name`) or under a
// well-known filesystem directory elsewhere, accepting with CLOEXEC and
// non-blocking per the accept-loop contract. This is also the wakeup /
// HUP-detection channel each Connection keeps alongside its data
// half-channel. Grounded on the teacher's internal/transport raw-socket
// setup (transport_linux.go) generalized from TCP to AF_UNIX.

package transport

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// DefaultSocketDir is used when the platform has no abstract namespace.
const DefaultSocketDir = "/tmp/hioload-ipc"

// socketAddrFor returns the sockaddr for name: abstract-namespace on
// Linux, filesystem path elsewhere.
func socketAddrFor(name string) *unix.SockaddrUnix {
	if runtime.GOOS == "linux" {
		return &unix.SockaddrUnix{Name: "@" + name}
	}
	return &unix.SockaddrUnix{Name: DefaultSocketDir + "/" + name}
}

// Listener is the service's listening setup-stream endpoint.
type Listener struct {
	fd   int
	name string
}

// Listen creates and binds a new setup-stream listener for name.
func Listen(name string) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	// Allow SO_PEERCRED-based credential checks on accept.
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PASSCRED, 1)
	if err := unix.Bind(fd, socketAddrFor(name)); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Listener{fd: fd, name: name}, nil
}

// FD returns the listening socket's descriptor, for registration with
// the injected poll handlers.
func (l *Listener) FD() int { return l.fd }

// Accept accepts one pending connection with CLOEXEC/NONBLOCK set on the
// accepted socket, per spec section 4.4's accept-loop contract.
func (l *Listener) Accept() (int, error) {
	nfd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, err
	}
	return nfd, nil
}

// Close closes the listening socket. Filesystem-namespace sockets are
// also unlinked; abstract-namespace sockets need no unlink.
func (l *Listener) Close() error {
	err := unix.Close(l.fd)
	if runtime.GOOS != "linux" {
		_ = unix.Unlink(DefaultSocketDir + "/" + l.name)
	}
	return err
}

// Dial opens a new setup stream to a listener named name (client side).
func Dial(name string) (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.Connect(fd, socketAddrFor(name)); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}
