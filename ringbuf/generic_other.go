// File: ringbuf/generic_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-Linux fallback: the spec's double-mapped shared memory and SysV
// semaphores are POSIX/Linux concepts with no portable Go binding, so on
// other platforms Create/Open hand out heap-backed rings registered in an
// in-process table keyed by name. This preserves the API and the single-
// process unit-test suite; it does not provide cross-process sharing.

//go:build !linux

package ringbuf

import (
	"fmt"
	"sync"
	"time"
)

type mutex struct{ mu *sync.Mutex }

func newMutex(key int, create bool) (mutex, error) { return mutex{mu: &sync.Mutex{}}, nil }
func (m mutex) lock() error                        { m.mu.Lock(); return nil }
func (m mutex) unlock() error                       { m.mu.Unlock(); return nil }
func (m mutex) close() error                        { return nil }
func (m mutex) destroy() error                      { return nil }

type semaphore struct{ ch chan struct{} }

func newSemaphore(key int, create bool) (semaphore, error) {
	return semaphore{ch: make(chan struct{}, 1<<20)}, nil
}
func (s semaphore) post() error {
	select {
	case s.ch <- struct{}{}:
	default:
	}
	return nil
}
func (s semaphore) wait(timeoutMs int) (bool, error) {
	if timeoutMs < 0 {
		<-s.ch
		return true, nil
	}
	select {
	case <-s.ch:
		return true, nil
	case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
		return false, nil
	}
}
func (s semaphore) close() error   { return nil }
func (s semaphore) destroy() error { return nil }

var (
	registryMu sync.Mutex
	registry   = map[string]*RingBuffer{}
)

// Create allocates a new heap-backed ring registered under name.
func Create(name string, size int, baseDir string) (*RingBuffer, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return nil, fmt.Errorf("ringbuf: %q already exists", name)
	}
	hdrMap := make([]byte, headerBytesLen)
	setHeaderInitial(hdrMap, size)
	data := make([]byte, size*2)
	lk, _ := newMutex(0, true)
	sg, _ := newSemaphore(0, true)
	r := &RingBuffer{name: name, hdrMap: hdrMap, data: data, lock: lk, signal: sg}
	lk.lock()
	r.setRefCount(1)
	lk.unlock()
	registry[name] = r
	return r, nil
}

// Open attaches to an in-process ring previously created with Create.
func Open(name string, baseDir string) (*RingBuffer, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	r, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("ringbuf: %q not found", name)
	}
	r.lock.lock()
	r.setRefCount(r.refCount() + 1)
	r.lock.unlock()
	return r, nil
}

func setHeaderInitial(hdrMap []byte, size int) {
	setU32 := func(off int, v uint32) {
		hdrMap[off] = byte(v)
		hdrMap[off+1] = byte(v >> 8)
		hdrMap[off+2] = byte(v >> 16)
		hdrMap[off+3] = byte(v >> 24)
	}
	setU32(offWritePt, 0)
	setU32(offReadPt, 0)
	setU32(offSize, uint32(size))
	setU32(offCount, 0)
	setU32(offRefCount, 0)
}

func (r *RingBuffer) unmapAll() error { return nil }

func (r *RingBuffer) unlinkFiles() error {
	registryMu.Lock()
	delete(registry, r.name)
	registryMu.Unlock()
	return nil
}
