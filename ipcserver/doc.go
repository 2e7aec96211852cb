// File: ipcserver/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package ipcserver implements the service (server) half of the local
// IPC engine: accept, handshake, steady-state dispatch, flow control,
// and reference-counted connection teardown, driven by a caller-supplied
// poll loop rather than one of its own.
package ipcserver
