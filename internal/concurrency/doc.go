// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// NUMA-aware CPU affinity primitives for hioload-ipc: pinning the calling
// OS thread to a CPU core and NUMA node, with a pure-Go fallback when
// cgo is unavailable.
package concurrency
