// +build linux

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Linux-specific NUMA-aware, zero-copy buffer pool implementation.

package pool

import (
	"sync"

	"github.com/momentics/hioload-ipc/api"
)

// linuxBufferPool is a sync.Pool-backed allocator for a single NUMA node.
// It implements api.BufferPool and api.Releaser so buffers handed out by
// Get can be returned via either Pool.Put or the buffer's own Release.
type linuxBufferPool struct {
	raw    sync.Pool
	numaId int
	mu     sync.Mutex
	stats  api.BufferPoolStats
}

// Get returns a Buffer of at least size bytes, preferring a block already
// sized correctly from the pool before allocating a fresh one.
func (bp *linuxBufferPool) Get(size int, numaPreferred int) api.Buffer {
	var data []byte
	if v := bp.raw.Get(); v != nil {
		data = v.([]byte)
		if cap(data) < size {
			data = make([]byte, size)
		} else {
			data = data[:size]
		}
	} else {
		data = make([]byte, size)
	}

	bp.mu.Lock()
	bp.stats.TotalAlloc++
	bp.stats.InUse++
	bp.mu.Unlock()

	return api.Buffer{
		Data: data,
		NUMA: bp.numaId,
		Pool: bp,
	}
}

// Put returns a Buffer's backing slice to the pool for reuse.
func (bp *linuxBufferPool) Put(b api.Buffer) {
	if b.Data == nil {
		return
	}
	bp.raw.Put(b.Data[:0])

	bp.mu.Lock()
	bp.stats.TotalFree++
	bp.stats.InUse--
	bp.mu.Unlock()
}

func (bp *linuxBufferPool) Stats() api.BufferPoolStats {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.stats
}

// newBufferPool (Linux) creates a buffer pool for the specified NUMA node.
// TODO: hugepage/mmap/memfd-backed allocation for ultra-low-latency blocks.
func newBufferPool(numaNode int) api.BufferPool {
	return &linuxBufferPool{numaId: numaNode}
}
