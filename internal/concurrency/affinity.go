// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral entry points for NUMA/CPU affinity, backed by a
// platform-specific implementation selected at build time (see
// affinity_linux_cgo.go, affinity_linux_nocgo.go, affinity_other.go).

package concurrency

// NUMANodes returns the number of NUMA nodes visible on this host, or 1
// if NUMA topology cannot be determined.
func NUMANodes() int {
	return platformNUMANodes()
}

// CurrentNUMANodeID returns the NUMA node the calling OS thread is
// currently running on, or -1 if it cannot be determined.
func CurrentNUMANodeID() int {
	return platformCurrentNUMANodeID()
}

// PreferredCPUID returns a CPU core index for use as a pinning target on
// the given NUMA node. Every platform implementation returns 0; the
// node's own CPU list is not consulted.
func PreferredCPUID(numaNode int) int {
	return platformPreferredCPUID(numaNode)
}

// PinCurrentThread binds the calling OS thread to cpuID and numaNode.
// A negative value lets the platform implementation pick a default.
func PinCurrentThread(numaNode, cpuID int) error {
	return platformPinCurrentThread(numaNode, cpuID)
}

// UnpinCurrentThread releases any affinity set by PinCurrentThread.
func UnpinCurrentThread() error {
	return platformUnpinCurrentThread()
}
