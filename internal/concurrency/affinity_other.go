//go:build !linux
// +build !linux

// File: internal/concurrency/affinity_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback affinity implementation for non-Linux platforms: no NUMA
// topology is queried and pinning is a no-op.

package concurrency

func platformPreferredCPUID(numaNode int) int { return 0 }
func platformCurrentNUMANodeID() int          { return -1 }
func platformNUMANodes() int                  { return 1 }

func platformPinCurrentThread(numaNode, cpuID int) error { return nil }
func platformUnpinCurrentThread() error                  { return nil }
