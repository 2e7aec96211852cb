// File: transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Three IPC transport adapters (shared-memory ring buffer, POSIX message
// queue, System V message queue) behind the single api.HalfChannel
// capability interface, plus the Unix-domain setup-stream listener/dialer
// used for the connection handshake and wakeup/HUP detection.

package transport
