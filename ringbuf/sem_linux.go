// File: ringbuf/sem_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SysV semaphore-backed mutex and counting semaphore. The spec asks for
// "a process-shared spinlock where the platform supports
// PTHREAD_PROCESS_SHARED spinlocks; otherwise a SysV semaphore configured
// as a mutex" for the lock, and "a counting semaphore (POSIX
// process-shared where available, else SysV)" for signalling. Go has no
// pthread spinlock binding and no stable POSIX named-semaphore binding in
// golang.org/x/sys/unix, so both primitives here use the SysV path
// uniformly — grounded on original_source/lib/ringbuffer_helper.c, which
// implements exactly this SysV fallback (ftok/semget/semop/semtimedop).

//go:build linux

package ringbuf

import (
	"syscall"
	"time"
	"unsafe"
)

type sembuf struct {
	num int16
	op  int16
	flg int16
}

const (
	ipcCreat  = 0o1000
	ipcExcl   = 0o2000
	ipcRmid   = 0
	semUndo   = 0o10000
	semGetVal = 12
	semSetVal = 16
)

// sysvSem is a single SysV semaphore identified by its IPC id, used both
// as the embedded mutex (semval starts at 1, P/V pair) and as the
// embedded counting semaphore (semval starts at 0, posted on commit).
type sysvSem struct {
	id int
}

func semget(key, nsems, flags int) (int, error) {
	id, _, errno := syscall.Syscall(sysSemget, uintptr(key), uintptr(nsems), uintptr(flags))
	if errno != 0 {
		return -1, errno
	}
	return int(id), nil
}

func semop(id int, ops []sembuf) error {
	if len(ops) == 0 {
		return nil
	}
	_, _, errno := syscall.Syscall(sysSemop, uintptr(id), uintptr(unsafe.Pointer(&ops[0])), uintptr(len(ops)))
	if errno != 0 {
		return errno
	}
	return nil
}

type timespec struct {
	sec  int64
	nsec int64
}

func semtimedop(id int, ops []sembuf, timeout *timespec) error {
	if len(ops) == 0 {
		return nil
	}
	_, _, errno := syscall.Syscall6(sysSemtimedop, uintptr(id), uintptr(unsafe.Pointer(&ops[0])), uintptr(len(ops)), uintptr(unsafe.Pointer(timeout)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func semctlSetVal(id int, val int) error {
	_, _, errno := syscall.Syscall6(sysSemctl, uintptr(id), 0, semSetVal, uintptr(val), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func semctlRmid(id int) error {
	_, _, errno := syscall.Syscall6(sysSemctl, uintptr(id), 0, ipcRmid, 0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func newSysvSem(key int, initial int, create bool) (*sysvSem, error) {
	flags := 0o666
	if create {
		flags |= ipcCreat | ipcExcl
	}
	id, err := semget(key, 1, flags)
	if create && err != nil {
		// Racing creator, or stale semaphore left by a crashed peer:
		// fall through to opening the existing one.
		id, err = semget(key, 1, 0o666)
	}
	if err != nil {
		return nil, err
	}
	if create {
		if err := semctlSetVal(id, initial); err != nil {
			return nil, err
		}
	}
	return &sysvSem{id: id}, nil
}

func (s *sysvSem) post() error {
	return semop(s.id, []sembuf{{num: 0, op: 1, flg: 0}})
}

func (s *sysvSem) wait(timeoutMs int) (bool, error) {
	ops := []sembuf{{num: 0, op: -1, flg: 0}}
	if timeoutMs < 0 {
		if err := semop(s.id, ops); err != nil {
			if err == syscall.EINTR {
				return s.wait(timeoutMs)
			}
			return false, err
		}
		return true, nil
	}
	ts := timespec{
		sec:  int64(timeoutMs) / 1000,
		nsec: (int64(timeoutMs) % 1000) * int64(time.Millisecond),
	}
	if err := semtimedop(s.id, ops, &ts); err != nil {
		if err == syscall.EAGAIN {
			return false, nil
		}
		if err == syscall.EINTR {
			return s.wait(timeoutMs)
		}
		return false, err
	}
	return true, nil
}

func (s *sysvSem) destroy() error {
	return semctlRmid(s.id)
}

// mutex is the ring buffer's embedded lock primitive.
type mutex struct{ sem *sysvSem }

func newMutex(key int, create bool) (mutex, error) {
	s, err := newSysvSem(key, 1, create)
	if err != nil {
		return mutex{}, err
	}
	return mutex{sem: s}, nil
}

func (m mutex) lock() error          { _, err := m.sem.wait(-1); return err }
func (m mutex) unlock() error        { return m.sem.post() }
func (m mutex) close() error         { return nil }
func (m mutex) destroy() error       { return m.sem.destroy() }

// semaphore is the ring buffer's embedded signalling primitive.
type semaphore struct{ sem *sysvSem }

func newSemaphore(key int, create bool) (semaphore, error) {
	s, err := newSysvSem(key, 0, create)
	if err != nil {
		return semaphore{}, err
	}
	return semaphore{sem: s}, nil
}

func (s semaphore) post() error                      { return s.sem.post() }
func (s semaphore) wait(timeoutMs int) (bool, error) { return s.sem.wait(timeoutMs) }
func (s semaphore) close() error                     { return nil }
func (s semaphore) destroy() error                   { return s.sem.destroy() }
