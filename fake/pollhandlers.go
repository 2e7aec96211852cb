// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake api.PollHandlers: a synchronous registry driven by explicit Fire
// calls instead of real epoll readiness, so ipcserver tests can exercise
// the accept/dispatch callbacks deterministically without a kernel.
// Replaces the teacher's fake.FakeReactor (a context-driven no-op) with
// one that actually records and invokes registered callbacks.

package fake

import "github.com/momentics/hioload-ipc/api"

// PollHandlers is a deterministic api.PollHandlers double.
type PollHandlers struct {
	cbs map[int]func(int, api.PollEvents)
}

// NewPollHandlers constructs an empty registry.
func NewPollHandlers() *PollHandlers {
	return &PollHandlers{cbs: make(map[int]func(int, api.PollEvents))}
}

func (p *PollHandlers) Add(fd int, _ api.PollEvents, cb func(int, api.PollEvents)) error {
	p.cbs[fd] = cb
	return nil
}

func (p *PollHandlers) Modify(fd int, _ api.PollEvents) error {
	if _, ok := p.cbs[fd]; !ok {
		return api.ErrInvalid
	}
	return nil
}

func (p *PollHandlers) Delete(fd int) error {
	delete(p.cbs, fd)
	return nil
}

// Fire invokes fd's registered callback with events, as if the poll
// loop observed readiness, letting tests drive the accept/dispatch path
// deterministically.
func (p *PollHandlers) Fire(fd int, events api.PollEvents) {
	if cb, ok := p.cbs[fd]; ok {
		cb(fd, events)
	}
}

// Registered reports whether fd currently has a callback.
func (p *PollHandlers) Registered(fd int) bool {
	_, ok := p.cbs[fd]
	return ok
}

var _ api.PollHandlers = (*PollHandlers)(nil)
