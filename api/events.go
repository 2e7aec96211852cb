// File: api/events.go
// Package api defines core event types for hioload-ipc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"context"
)

// OpenEvent is emitted when a new IPC connection is accepted.
type OpenEvent struct {
	Conn any             // underlying connection object, e.g. *session.Connection
	Ctx  context.Context // context carrying per-connection values
}

// CloseEvent is emitted when an IPC connection is destroyed.
type CloseEvent struct {
	Conn any
	Ctx  context.Context
}
