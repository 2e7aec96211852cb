// File: pool/doc.go
// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer pooling, batching, and ring buffer layer for hioload-ipc.
// The NUMA-aware buffer pool implementation (newBufferPool) exists for Linux only.
// All core methods are thread-safe or explicitly document the concurrency contract.
package pool
