// File: ringbuf/create_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Create/Open/file-path plumbing for the shared-memory ring buffer
// (spec sections 3, 4.1, 6). Backing files live under the given base
// directory when one is passed and under /dev/shm otherwise, named
// <name>-header and <name>-data; no other directory is tried when
// /dev/shm is unavailable. SysV IPC keys for the embedded lock and
// signalling semaphore are derived from an FNV-1a hash of the ring's
// name, standing in for the original's ftok(3).

//go:build linux

package ringbuf

import (
	"hash/fnv"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const defaultBaseDir = "/dev/shm"

func pathsFor(baseDir, name string) (headerPath, dataPath string) {
	if baseDir == "" {
		baseDir = defaultBaseDir
	}
	return filepath.Join(baseDir, name+"-header"), filepath.Join(baseDir, name+"-data")
}

// ipcKey derives a pair of distinct SysV IPC keys (lock, signal) from a
// ring's name.
func ipcKey(name string) (lockKey, sigKey int) {
	h := fnv.New32a()
	h.Write([]byte(name))
	base := int(h.Sum32() & 0x3fffffff)
	return base*2 + 1, base*2 + 2
}

func openOrCreateFile(path string, size int, create bool) (*os.File, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o666)
	if create && os.IsExist(err) {
		// A stale file from a previous run with the same name: truncate
		// and reuse rather than fail outright.
		f, err = os.OpenFile(path, os.O_RDWR, 0o666)
	}
	if err != nil {
		return nil, err
	}
	if create {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Create allocates a new ring buffer: header file, data file (mapped
// twice contiguously), and the embedded lock/semaphore, per spec
// section 4.1 create(name, size, flags).
func Create(name string, size int, baseDir string) (*RingBuffer, error) {
	return open(name, size, baseDir, true)
}

// Open attaches to an existing ring buffer, incrementing RefCount, per
// spec section 4.1 open(name, flags).
func Open(name string, baseDir string) (*RingBuffer, error) {
	return open(name, 0, baseDir, false)
}

func open(name string, size int, baseDir string, create bool) (*RingBuffer, error) {
	headerPath, dataPath := pathsFor(baseDir, name)

	hf, err := openOrCreateFile(headerPath, headerBytesLen, create)
	if err != nil {
		return nil, err
	}
	defer hf.Close()
	hdrMap, err := unix.Mmap(int(hf.Fd()), 0, headerBytesLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	if create {
		setHeaderInitial(hdrMap, size)
	} else {
		size = int(getSizeField(hdrMap))
	}

	df, err := openOrCreateFile(dataPath, size, create)
	if err != nil {
		unix.Munmap(hdrMap)
		return nil, err
	}
	defer df.Close()
	data, err := doubleMap(int(df.Fd()), size)
	if err != nil {
		unix.Munmap(hdrMap)
		return nil, err
	}

	lockKey, sigKey := ipcKey(name)
	lk, err := newMutex(lockKey, create)
	if err != nil {
		unix.Munmap(hdrMap)
		unmapDouble(data)
		return nil, err
	}
	sg, err := newSemaphore(sigKey, create)
	if err != nil {
		unix.Munmap(hdrMap)
		unmapDouble(data)
		return nil, err
	}

	r := &RingBuffer{
		name:       name,
		headerPath: headerPath,
		dataPath:   dataPath,
		hdrMap:     hdrMap,
		data:       data,
		lock:       lk,
		signal:     sg,
	}

	lk.lock()
	r.setRefCount(r.refCount() + 1)
	lk.unlock()

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

func getSizeField(hdrMap []byte) uint32 {
	return uint32(hdrMap[offSize]) | uint32(hdrMap[offSize+1])<<8 | uint32(hdrMap[offSize+2])<<16 | uint32(hdrMap[offSize+3])<<24
}

func (r *RingBuffer) unmapAll() error {
	var err error
	if e := unix.Munmap(r.hdrMap); e != nil {
		err = e
	}
	if e := unmapDouble(r.data); e != nil && err == nil {
		err = e
	}
	return err
}

func (r *RingBuffer) unlinkFiles() error {
	var err error
	if e := os.Remove(r.headerPath); e != nil && !os.IsNotExist(e) {
		err = e
	}
	if e := os.Remove(r.dataPath); e != nil && !os.IsNotExist(e) && err == nil {
		err = e
	}
	return err
}
