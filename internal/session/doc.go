// File: internal/session/doc.go
// Package session
// Author: momentics <momentics@gmail.com>
//
// Context storage for hioload-ipc: a thread-safe, mutex-guarded key/value
// store implementing api.Context, with per-key TTLs and propagation flags.
package session
