// File: ringbuf/ringbuf.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-producer/single-consumer shared-memory ring buffer (spec
// section 4.1). The data file is mapped twice back-to-back so any chunk
// is addressable as a flat slice without wrap handling (glossary:
// "double-mapping"). Mutual exclusion is an embedded lock (SysV
// semaphore configured as a mutex); readiness is an embedded counting
// semaphore the writer posts on commit and the reader waits on before
// peek. The header — write/read offsets, capacity, pending-chunk count,
// attachment refcount — lives in its own small shared mapping (spec
// section 3) so every attacher observes the same values; all
// multi-word mutations to it happen under the embedded lock (spec
// section 5).
//
// Grounded on the teacher's core/concurrency ring (CAS-based MPMC) for
// the general shape of a chunked ring, generalized here to the strictly
// SPSC, cross-process contract the spec requires — the teacher's
// multi-producer CAS-retry logic is deliberately not carried over (see
// DESIGN.md).

package ringbuf

import (
	"encoding/binary"

	"github.com/momentics/hioload-ipc/api"
)

// chunkHeaderSize is the length word's width: one 32-bit word, the same
// unit as the wire package's frame-size field.
const chunkHeaderSize = 4

// Header field byte offsets inside the shared header mapping.
const (
	offWritePt  = 0
	offReadPt   = 4
	offSize     = 8
	offCount    = 12
	offRefCount = 16
	headerBytesLen = 20
)

// Stats is a point-in-time snapshot of a ring buffer's header fields,
// suited to an api.Control debug probe; nothing in this module registers
// one, and ShmChannel.QLengthGet reads its Count (NEW in SPEC_FULL — the
// original only logs these fields via qb_util_log on every lock/sem
// operation; we surface them structurally instead).
type Stats struct {
	WritePt  uint32
	ReadPt   uint32
	Count    uint32
	RefCount uint32
	Capacity uint32
}

// CreateFlag selects create-vs-open semantics, matching the spec's
// create(..., flags) / open(..., flags) contract.
type CreateFlag int

const (
	FlagCreate CreateFlag = iota
	FlagOpen
)

// RingBuffer is the producer-or-consumer-side handle to one ring. Each
// half-channel owns exactly one: the shared-memory transport adapter
// pairs two of these (one per direction) per connection.
type RingBuffer struct {
	name       string
	headerPath string
	dataPath   string

	hdrMap  []byte // shared header region
	data    []byte // double-sized data mapping; data[:size] is the logical view

	lock   mutex
	signal semaphore

	peeked  bool
	peekLen uint32
	peekAt  uint32

	closed bool
}

// Name returns the ring's well-known name, used to derive backing-file
// paths (spec section 6: /dev/shm/<name>-header, /dev/shm/<name>-data).
func (r *RingBuffer) Name() string { return r.name }

func (r *RingBuffer) size() uint32     { return binary.LittleEndian.Uint32(r.hdrMap[offSize:]) }
func (r *RingBuffer) writePt() uint32  { return binary.LittleEndian.Uint32(r.hdrMap[offWritePt:]) }
func (r *RingBuffer) readPt() uint32   { return binary.LittleEndian.Uint32(r.hdrMap[offReadPt:]) }
func (r *RingBuffer) count() uint32    { return binary.LittleEndian.Uint32(r.hdrMap[offCount:]) }
func (r *RingBuffer) refCount() uint32 { return binary.LittleEndian.Uint32(r.hdrMap[offRefCount:]) }

func (r *RingBuffer) setWritePt(v uint32)  { binary.LittleEndian.PutUint32(r.hdrMap[offWritePt:], v) }
func (r *RingBuffer) setReadPt(v uint32)   { binary.LittleEndian.PutUint32(r.hdrMap[offReadPt:], v) }
func (r *RingBuffer) setCount(v uint32)    { binary.LittleEndian.PutUint32(r.hdrMap[offCount:], v) }
func (r *RingBuffer) setRefCount(v uint32) { binary.LittleEndian.PutUint32(r.hdrMap[offRefCount:], v) }

// ChunkAlloc reserves a contiguous writable slice of `length` bytes. It
// never blocks: capacity exhaustion returns api.ErrNoSpace immediately so
// the caller can decide whether to wait (spec section 5, "does not
// block").
func (r *RingBuffer) ChunkAlloc(length int) ([]byte, error) {
	if err := r.lock.lock(); err != nil {
		return nil, err
	}
	defer r.lock.unlock()

	need := uint32(chunkHeaderSize + length)
	size := r.size()
	wp, rp := r.writePt(), r.readPt()
	used := wp - rp // unsigned arithmetic, wraps correctly
	if used > size {
		return nil, api.NewError(api.ErrCodeInternal, "ringbuf: corrupt offsets").WithContext("ring", r.name)
	}
	free := size - used

	offset := wp % size
	tail := size - offset
	if tail < need {
		// Not enough contiguous tail space for header+payload: spec's
		// wrap marker. Room must also cover the marker itself.
		if free < tail+need {
			return nil, api.ErrNoSpace
		}
		r.writeWrapMarker(offset)
		wp += tail
		r.setWritePt(wp)
		offset = 0
		used = wp - rp
		free = size - used
	}
	if free < need {
		return nil, api.ErrNoSpace
	}

	binary.LittleEndian.PutUint32(r.data[offset:offset+chunkHeaderSize], uint32(length))
	return r.data[offset+chunkHeaderSize : offset+chunkHeaderSize+uint32(length)], nil
}

// writeWrapMarker writes a zero-length chunk header at offset, the
// spec's "end of data at this offset, wrap to base" signal. Caller must
// hold the lock.
func (r *RingBuffer) writeWrapMarker(offset uint32) {
	binary.LittleEndian.PutUint32(r.data[offset:offset+chunkHeaderSize], 0)
}

// ChunkCommit publishes the chunk last returned by ChunkAlloc: advances
// WritePt past it, increments Count, and posts the signalling semaphore
// once so a blocked reader wakes.
func (r *RingBuffer) ChunkCommit(length int) error {
	if err := r.lock.lock(); err != nil {
		return err
	}
	r.setWritePt(r.writePt() + uint32(chunkHeaderSize+length))
	r.setCount(r.count() + 1)
	r.lock.unlock()
	return r.signal.post()
}

// ChunkWrite is alloc + copy + commit.
func (r *RingBuffer) ChunkWrite(p []byte) error {
	slot, err := r.ChunkAlloc(len(p))
	if err != nil {
		return err
	}
	copy(slot, p)
	return r.ChunkCommit(len(p))
}

// ChunkPeek blocks on the signalling semaphore up to timeoutMs
// (-1 = infinite) and then returns a borrowed slice of the next chunk
// without advancing ReadPt.
func (r *RingBuffer) ChunkPeek(timeoutMs int) ([]byte, error) {
	if r.peeked {
		return r.currentPeek(), nil
	}
	ok, err := r.signal.wait(timeoutMs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, api.ErrTimedOut
	}

	if err := r.lock.lock(); err != nil {
		return nil, err
	}
	size := r.size()
	offset := r.readPt() % size
	length := binary.LittleEndian.Uint32(r.data[offset : offset+chunkHeaderSize])
	if length == 0 {
		// Wrap marker: consume it and re-read at base, per spec 4.1.
		tail := size - offset
		r.setReadPt(r.readPt() + tail)
		offset = 0
		length = binary.LittleEndian.Uint32(r.data[offset : offset+chunkHeaderSize])
	}
	r.lock.unlock()

	r.peeked = true
	r.peekAt = offset
	r.peekLen = length
	return r.currentPeek(), nil
}

func (r *RingBuffer) currentPeek() []byte {
	return r.data[r.peekAt+chunkHeaderSize : r.peekAt+chunkHeaderSize+r.peekLen]
}

// ChunkReclaim advances ReadPt past the chunk last peeked and decrements
// Count. Calling it without a pending peek is a no-op.
func (r *RingBuffer) ChunkReclaim() error {
	if !r.peeked {
		return nil
	}
	if err := r.lock.lock(); err != nil {
		return err
	}
	r.setReadPt(r.readPt() + uint32(chunkHeaderSize+r.peekLen))
	r.setCount(r.count() - 1)
	r.lock.unlock()
	r.peeked = false
	return nil
}

// ChunkRead is peek + copy + reclaim.
func (r *RingBuffer) ChunkRead(buf []byte, timeoutMs int) (int, error) {
	data, err := r.ChunkPeek(timeoutMs)
	if err != nil {
		return 0, err
	}
	n := copy(buf, data)
	return n, r.ChunkReclaim()
}

// Stats returns a point-in-time snapshot for debug probes.
func (r *RingBuffer) Stats() Stats {
	r.lock.lock()
	defer r.lock.unlock()
	return Stats{
		WritePt:  r.writePt(),
		ReadPt:   r.readPt(),
		Count:    r.count(),
		RefCount: r.refCount(),
		Capacity: r.size(),
	}
}

// Close decrements RefCount; at zero it destroys the lock and semaphore
// and unmaps/unlinks the backing files (spec section 3, ref_count
// lifecycle).
func (r *RingBuffer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	r.lock.lock()
	r.setRefCount(r.refCount() - 1)
	last := r.refCount() == 0
	r.lock.unlock()

	var err error
	if e := r.unmapAll(); e != nil && err == nil {
		err = e
	}
	if last {
		if e := r.unlinkFiles(); e != nil && err == nil {
			err = e
		}
		if e := r.lock.destroy(); e != nil && err == nil {
			err = e
		}
		if e := r.signal.destroy(); e != nil && err == nil {
			err = e
		}
	} else {
		r.lock.close()
		r.signal.close()
	}
	return err
}
