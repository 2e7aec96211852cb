//go:build linux && !cgo
// +build linux,!cgo

// File: internal/concurrency/affinity_linux_nocgo.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pure-Go fallback for Linux when cgo is disabled: pinning and NUMA
// queries degrade to no-ops since libnuma/pthread affinity calls are
// unavailable without cgo.

package concurrency

import "runtime"

func platformPreferredCPUID(numaNode int) int { return 0 }
func platformCurrentNUMANodeID() int          { return -1 }
func platformNUMANodes() int                  { return 1 }

func platformPinCurrentThread(numaNode, cpuID int) error {
	runtime.LockOSThread()
	return nil
}

func platformUnpinCurrentThread() error {
	runtime.UnlockOSThread()
	return nil
}
