// File: reactor/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared reactor types: the out-of-scope "generic event loop" collaborator
// the spec names (section 1) is injected via api.PollHandlers; EventReactor
// is the concrete, platform-specific implementation this package provides
// for the bundled tests and default service wiring (epoll on Linux).

package reactor

// FDEventType is a bitmask of readiness conditions a reactor reports.
type FDEventType int

const (
	EventRead FDEventType = 1 << iota
	EventWrite
	EventError
)

// FDCallback is invoked with the fd and the readiness bitmask that fired.
type FDCallback func(fd uintptr, events FDEventType)

// EventReactor is the platform-specific poll-multiplexer this package
// implements; poll_handlers.go adapts it to api.PollHandlers.
type EventReactor interface {
	Register(fd uintptr, events FDEventType, cb FDCallback) error
	Unregister(fd uintptr) error
	Poll(timeoutMs int) error
	Close() error
}
