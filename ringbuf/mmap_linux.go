// File: ringbuf/mmap_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Double-mapping (spec section 4.1 / glossary "double-mapping"): the
// data file is `size` bytes, but the producer/consumer view is a single
// contiguous `2*size`-byte region where both halves map the same file.
// golang.org/x/sys/unix.Mmap has no MAP_FIXED-at-explicit-address form,
// so the second mapping uses a raw mmap(2) syscall with MAP_FIXED,
// anchored at the address the first (regular, relocatable) mapping
// returned — the same trick as the original's mmap_file via
// ringbuffer_helper.c, and the same raw-syscall idiom the teacher uses
// in internal/transport for operations x/sys/unix doesn't expose
// directly.

//go:build linux

package ringbuf

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// doubleMap maps fd (size bytes) twice back-to-back, returning a
// `2*size`-byte slice whose first and second halves alias the same file
// bytes.
func doubleMap(fd int, size int) ([]byte, error) {
	// First mapping: let the kernel pick the base address for a region
	// large enough to hold both halves; the second, MAP_FIXED mapping
	// below then replaces its tail in place.
	base, err := unix.Mmap(fd, 0, size*2, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	baseAddr := uintptr(unsafe.Pointer(&base[0]))

	// Re-map the second half onto the same file at offset 0, forcing it
	// onto the tail of the region we just reserved.
	secondAddr := baseAddr + uintptr(size)
	_, _, errno := syscall.Syscall6(
		sysMmap,
		secondAddr,
		uintptr(size),
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_SHARED|unix.MAP_FIXED),
		uintptr(fd),
		0,
	)
	if errno != 0 {
		unix.Munmap(base)
		return nil, errno
	}
	return base, nil
}

func unmapDouble(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b[:cap(b)])
}
