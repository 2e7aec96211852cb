// File: session/table.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Service-owned connection table, replacing the original's cyclic
// service<->connection back-pointers with the "owner and index"
// re-architecture design note 9 calls for: an arena of connections keyed
// by a stable ConnHandle. Sharded like the teacher's
// internal/session.sessionManager, generalized from string session ids
// to uint64 handles, which pick their shard by their low bits (no hash).

package session

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-ipc/api"
)

// Table is the service's live-connection arena.
type Table struct {
	shards []*tableShard
	mask   uint64
	next   uint64 // atomic handle allocator
}

type tableShard struct {
	mu    sync.RWMutex
	conns map[api.ConnHandle]*Connection
}

// NewTable constructs a sharded table with shardCount shards (rounded up
// to a power of two, as the teacher's session store does).
func NewTable(shardCount int) *Table {
	if shardCount <= 0 {
		shardCount = 16
	}
	n := nextPowerOfTwo(uint64(shardCount))
	shards := make([]*tableShard, n)
	for i := range shards {
		shards[i] = &tableShard{conns: make(map[api.ConnHandle]*Connection)}
	}
	return &Table{shards: shards, mask: n - 1}
}

// AllocHandle mints the next stable handle. Handles are process-unique
// for the table's lifetime and never reused, so a stale handle from a
// destroyed connection can never alias a live one.
func (t *Table) AllocHandle() api.ConnHandle {
	return api.ConnHandle(atomic.AddUint64(&t.next, 1))
}

func (t *Table) shard(h api.ConnHandle) *tableShard {
	return t.shards[uint64(h)&t.mask]
}

// Insert registers a new connection under its own handle.
func (t *Table) Insert(c *Connection) {
	sh := t.shard(c.handle)
	sh.mu.Lock()
	sh.conns[c.handle] = c
	sh.mu.Unlock()
}

// Get looks up a connection by handle.
func (t *Table) Get(h api.ConnHandle) (*Connection, bool) {
	sh := t.shard(h)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	c, ok := sh.conns[h]
	return c, ok
}

// Remove deletes a connection from the table (called once its reference
// count has reached zero).
func (t *Table) Remove(h api.ConnHandle) {
	sh := t.shard(h)
	sh.mu.Lock()
	delete(sh.conns, h)
	sh.mu.Unlock()
}

// Range applies fn to every live connection, e.g. for request_rate_limit
// fan-out or shutdown teardown. Connections are snapshotted per shard
// before fn runs, so fn is free to call back into the table (Remove,
// Get, another Range) without deadlocking on a held shard lock.
func (t *Table) Range(fn func(*Connection)) {
	for _, sh := range t.shards {
		sh.mu.RLock()
		snapshot := make([]*Connection, 0, len(sh.conns))
		for _, c := range sh.conns {
			snapshot = append(snapshot, c)
		}
		sh.mu.RUnlock()
		for _, c := range snapshot {
			fn(c)
		}
	}
}

// Len returns the number of live connections across all shards.
func (t *Table) Len() int {
	n := 0
	for _, sh := range t.shards {
		sh.mu.RLock()
		n += len(sh.conns)
		sh.mu.RUnlock()
	}
	return n
}

func nextPowerOfTwo(v uint64) uint64 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}
