//go:build linux && cgo
// +build linux,cgo

// File: internal/concurrency/affinity_linux_cgo.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux CPU/NUMA affinity via libnuma and pthread_setaffinity_np.

package concurrency

// #cgo LDFLAGS: -pthread -lnuma
// #include <sched.h>
// #include <pthread.h>
// #include <numa.h>
import "C"
import (
	"fmt"
	"runtime"
)

func platformPreferredCPUID(numaNode int) int {
	if numaNode < 0 || C.numa_available() < 0 {
		return 0
	}
	return 0
}

func platformCurrentNUMANodeID() int {
	if C.numa_available() < 0 {
		return -1
	}
	return int(C.numa_node_of_cpu(C.sched_getcpu()))
}

func platformNUMANodes() int {
	if C.numa_available() < 0 {
		return 1
	}
	return int(C.numa_max_node()) + 1
}

func platformPinCurrentThread(numaNode, cpuID int) error {
	runtime.LockOSThread()
	var mask C.cpu_set_t
	C.CPU_ZERO(&mask)
	if cpuID < 0 {
		cpuID = 0
	}
	C.CPU_SET(C.int(cpuID), &mask)
	if rc := C.pthread_setaffinity_np(C.pthread_self(), C.sizeof_cpu_set_t, &mask); rc != 0 {
		return fmt.Errorf("pthread_setaffinity_np: errno %d", int(rc))
	}
	if numaNode >= 0 && C.numa_available() >= 0 {
		C.numa_run_on_node(C.int(numaNode))
	}
	return nil
}

func platformUnpinCurrentThread() error {
	var mask C.cpu_set_t
	C.CPU_ZERO(&mask)
	nCPU := runtime.NumCPU()
	for i := 0; i < nCPU; i++ {
		C.CPU_SET(C.int(i), &mask)
	}
	if rc := C.pthread_setaffinity_np(C.pthread_self(), C.sizeof_cpu_set_t, &mask); rc != 0 {
		return fmt.Errorf("pthread_setaffinity_np: errno %d", int(rc))
	}
	runtime.UnlockOSThread()
	return nil
}
