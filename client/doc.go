// File: client/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package client implements the client side of the local IPC engine:
// dial, AUTHENTICATE, and the request/response/event verbs a connected
// peer uses against a running ipcserver.Service.
package client
