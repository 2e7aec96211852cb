// File: ipcserver/handlers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// User-supplied service callbacks, mirroring
// original_source/include/qb/qbipcs.h's qb_ipcs_service_handlers: accept
// (credential decision), created, msg_process (the core request
// callback), and destroyed.

package ipcserver

import "github.com/momentics/hioload-ipc/api"

// ConnectionAcceptFunc is invoked with the peer's (uid, gid) during
// AUTHENTICATE; returning an error rejects the connection with -EACCES.
type ConnectionAcceptFunc func(creds api.Credentials) error

// ConnectionCreatedFunc fires once a connection's transport artifacts
// have been set up and the handshake completed.
type ConnectionCreatedFunc func(conn *ConnRef)

// MsgProcessFunc is the per-request callback (spec section 4.3's steady
// state: "every request is processed by the user's msg_process
// callback, which may synchronously send zero or more responses"). A
// negative/error return is translated to -ENOBUFS (backpressure).
type MsgProcessFunc func(conn *ConnRef, id int32, payload []byte) error

// ConnectionDestroyedFunc fires once a connection's reference count
// reaches zero.
type ConnectionDestroyedFunc func(conn *ConnRef)

// ServiceHandlers bundles the four user callbacks a Service is created
// with.
type ServiceHandlers struct {
	ConnectionAccept    ConnectionAcceptFunc
	ConnectionCreated   ConnectionCreatedFunc
	MsgProcess          MsgProcessFunc
	ConnectionDestroyed ConnectionDestroyedFunc
}
