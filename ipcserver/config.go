// File: ipcserver/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Config and functional options for the IPC service, mirroring the
// teacher's server/types.go + server/options.go shape.

package ipcserver

import (
	"time"

	"github.com/momentics/hioload-ipc/api"
)

// Config holds all service parameters for the local IPC engine.
type Config struct {
	Name            string        // well-known listening name (spec section 6)
	ServiceID       int32         // numeric service id
	MaxMsgSize      int           // negotiated max message size ceiling
	NUMANode        int           // preferred NUMA node (-1 = auto)
	AffinityScope   api.AffinityScope
	PollBatchSize   int           // frames drained per dispatch wakeup in NORMAL mode
	FastDrainRetry  int           // retries per wakeup in FAST priority mode (spec 4.4: up to 5)
	ShutdownTimeout time.Duration
	BaseDir         string // backing-file directory override for ring buffers
	ShardCount      int    // connection table shard count
}

// DefaultConfig returns spec-conformant defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxMsgSize:      128 * 1024,
		NUMANode:        -1,
		AffinityScope:   api.ScopeThread,
		PollBatchSize:   1,
		FastDrainRetry:  5,
		ShutdownTimeout: 10 * time.Second,
		ShardCount:      16,
	}
}

// ServiceOption customizes service initialization.
type ServiceOption func(*Service)

// WithPollHandlers injects the poll-multiplexer collaborator (spec
// section 1's "generic event loop... consumed via an injected
// poll-handler interface").
func WithPollHandlers(p api.PollHandlers) ServiceOption {
	return func(s *Service) { s.poll = p }
}

// WithAffinity sets CPU/NUMA binding scope for the dispatch loop.
func WithAffinity(scope api.AffinityScope) ServiceOption {
	return func(s *Service) { s.cfg.AffinityScope = scope }
}
