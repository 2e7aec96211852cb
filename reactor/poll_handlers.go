// File: reactor/poll_handlers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Adapts an EventReactor to api.PollHandlers — the
// dispatch_add/dispatch_mod/dispatch_del vtable the spec's service
// registers with the caller's poll loop (sections 4.4, 6). EventReactor
// exposes no native EPOLL_CTL_MOD step, so Modify only unregisters the
// fd; changing interest takes a fresh Add.

package reactor

import (
	"github.com/momentics/hioload-ipc/api"
)

// PollHandlersAdapter implements api.PollHandlers over an EventReactor.
type PollHandlersAdapter struct {
	r EventReactor
}

// NewPollHandlersAdapter wraps r as an api.PollHandlers.
func NewPollHandlersAdapter(r EventReactor) *PollHandlersAdapter {
	return &PollHandlersAdapter{r: r}
}

func toFDEvents(ev api.PollEvents) FDEventType {
	var out FDEventType
	if ev&api.PollIn != 0 {
		out |= EventRead
	}
	if ev&api.PollOut != 0 {
		out |= EventWrite
	}
	if ev&(api.PollHup|api.PollErr) != 0 {
		out |= EventError
	}
	return out
}

func toPollEvents(ev FDEventType) api.PollEvents {
	var out api.PollEvents
	if ev&EventRead != 0 {
		out |= api.PollIn
	}
	if ev&EventWrite != 0 {
		out |= api.PollOut
	}
	if ev&EventError != 0 {
		out |= api.PollHup
	}
	return out
}

func (a *PollHandlersAdapter) Add(fd int, events api.PollEvents, cb func(fd int, events api.PollEvents)) error {
	return a.r.Register(uintptr(fd), toFDEvents(events), func(fd uintptr, ev FDEventType) {
		cb(int(fd), toPollEvents(ev))
	})
}

func (a *PollHandlersAdapter) Modify(fd int, events api.PollEvents) error {
	// No native modify step; callers that need to change interest must
	// re-Add with a fresh callback, matching the flow-control pause/
	// resume pattern (delete on pause, add on resume) the spec describes
	// for request_rate_limit(OFF).
	return a.r.Unregister(uintptr(fd))
}

func (a *PollHandlersAdapter) Delete(fd int) error {
	return a.r.Unregister(uintptr(fd))
}

// Poll drives the underlying reactor once; the caller that owns the poll
// loop calls this on every iteration (the service runs no loop of its own).
func (a *PollHandlersAdapter) Poll(timeoutMs int) error { return a.r.Poll(timeoutMs) }

// Close releases the underlying reactor's resources.
func (a *PollHandlersAdapter) Close() error { return a.r.Close() }

var _ api.PollHandlers = (*PollHandlersAdapter)(nil)
