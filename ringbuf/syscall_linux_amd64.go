// File: ringbuf/syscall_linux_amd64.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw syscall numbers for operations with no stable, clearly-specified
// binding in golang.org/x/sys/unix at the time this was written (SysV
// semaphores/message queues, POSIX message queues, and mmap with
// MAP_FIXED at an explicit address for the double-mapping trick).
// Invoked via the standard library's syscall.Syscall/Syscall6, mirroring
// the teacher's internal/transport raw-syscall idiom for operations
// outside the high-level x/sys/unix wrappers.

//go:build linux && amd64

package ringbuf

const (
	sysMmap          = 9
	sysMunmap        = 11
	sysSemget        = 64
	sysSemop         = 65
	sysSemctl        = 66
	sysMsgget        = 68
	sysMsgsnd        = 69
	sysMsgrcv        = 70
	sysMsgctl        = 71
	sysSemtimedop    = 220
	sysMqOpen        = 240
	sysMqUnlink      = 241
	sysMqTimedsend   = 242
	sysMqTimedreceive = 243
)
