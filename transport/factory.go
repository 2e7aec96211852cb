// File: transport/factory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TransportKind negotiation (NEW in SPEC_FULL): unlike the original,
// which picks a transport per-service at creation time, a service here
// may be configured with a preference list and fall back to the next
// kind when, e.g., SysV message-queue identifiers are exhausted
// (ENOSPC from msgget).

package transport

import (
	"github.com/momentics/hioload-ipc/api"
)

// Negotiator tries transport kinds in order and returns a half-channel
// of the first kind it can create; callers create the sibling channels
// of the same kind themselves.
type Negotiator struct {
	Preference []api.TransportKind
	BaseDir    string
	MaxMsgSize int
}

// DefaultNegotiator prefers shared memory, then POSIX mq, then SysV mq —
// the spec's listed order, fastest transport first.
func DefaultNegotiator(maxMsgSize int) *Negotiator {
	return &Negotiator{
		Preference: []api.TransportKind{api.TransportShm, api.TransportPosixMQ, api.TransportSysvMQ},
		MaxMsgSize: maxMsgSize,
	}
}

// CreateChannel allocates a new half-channel named name using the first
// preferred kind that succeeds.
func (n *Negotiator) CreateChannel(name string) (api.HalfChannel, api.TransportKind, error) {
	var lastErr error
	for _, kind := range n.Preference {
		ch, err := n.create(kind, name)
		if err == nil {
			return ch, kind, nil
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

// OpenChannel attaches to an existing half-channel of the given kind.
func (n *Negotiator) OpenChannel(kind api.TransportKind, name string) (api.HalfChannel, error) {
	switch kind {
	case api.TransportShm:
		return NewShmChannelOpen(name, n.BaseDir)
	case api.TransportPosixMQ:
		return NewPosixMQChannelOpen(name, n.MaxMsgSize)
	case api.TransportSysvMQ:
		return NewSysvMQChannelOpen(name, n.MaxMsgSize)
	default:
		return nil, api.ErrInvalid
	}
}

func (n *Negotiator) create(kind api.TransportKind, name string) (api.HalfChannel, error) {
	switch kind {
	case api.TransportShm:
		return NewShmChannelCreate(name, n.MaxMsgSize*4, n.BaseDir)
	case api.TransportPosixMQ:
		return NewPosixMQChannelCreate(name, n.MaxMsgSize)
	case api.TransportSysvMQ:
		return NewSysvMQChannelCreate(name, n.MaxMsgSize)
	default:
		return nil, api.ErrInvalid
	}
}
