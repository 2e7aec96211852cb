// File: wire/wire.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wire framing for the local IPC engine (spec section 4.3). Every frame
// begins with an 8-byte-aligned header: RequestHeader{Size,ID} on the
// way in, ResponseHeader{Size,ID,Error} on the way out. Size covers the
// whole frame including the header.

package wire

import (
	"encoding/binary"
	"errors"

	"github.com/momentics/hioload-ipc/api"
)

// Control ids reserved by the core; application ids start at USER_START.
const (
	IDAuthenticate int32 = 1
	IDDisconnect   int32 = 3
	USERStart      int32 = 16
)

// IsUserID reports whether id belongs to the application id space.
func IsUserID(id int32) bool { return id >= USERStart }

// UserID builds an application-space id from a small offset, mirroring
// the original's USER_START+n convention.
func UserID(n int32) int32 { return USERStart + n }

const headerAlign = 8

// RequestHeaderSize is the wire size of RequestHeader.
const RequestHeaderSize = 8

// ResponseHeaderSize is the wire size of ResponseHeader.
const ResponseHeaderSize = 12

var (
	ErrFrameTooShort = errors.New("wire: frame shorter than header")
	ErrSizeMismatch  = errors.New("wire: declared size exceeds buffer")
)

// RequestHeader is the client->server / server->client control header.
type RequestHeader struct {
	Size int32 // whole frame, including header
	ID   int32
}

// ResponseHeader additionally carries a negative-errno-like error code.
type ResponseHeader struct {
	Size  int32
	ID    int32
	Error int32
}

// EncodeRequest writes header + payload into a single buffer.
func EncodeRequest(id int32, payload []byte) []byte {
	total := RequestHeaderSize + len(payload)
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(total))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(id))
	copy(buf[RequestHeaderSize:], payload)
	return buf
}

// DecodeRequestHeader parses the fixed header from buf's front.
func DecodeRequestHeader(buf []byte) (RequestHeader, error) {
	if len(buf) < RequestHeaderSize {
		return RequestHeader{}, ErrFrameTooShort
	}
	h := RequestHeader{
		Size: int32(binary.LittleEndian.Uint32(buf[0:4])),
		ID:   int32(binary.LittleEndian.Uint32(buf[4:8])),
	}
	if int(h.Size) < RequestHeaderSize {
		return h, api.ErrInvalid
	}
	return h, nil
}

// EncodeResponse writes header + payload into a single buffer.
func EncodeResponse(id int32, errno api.IPCErrno, payload []byte) []byte {
	total := ResponseHeaderSize + len(payload)
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(total))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(id))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(errno)))
	copy(buf[ResponseHeaderSize:], payload)
	return buf
}

// DecodeResponseHeader parses the fixed header from buf's front.
func DecodeResponseHeader(buf []byte) (ResponseHeader, error) {
	if len(buf) < ResponseHeaderSize {
		return ResponseHeader{}, ErrFrameTooShort
	}
	h := ResponseHeader{
		Size:  int32(binary.LittleEndian.Uint32(buf[0:4])),
		ID:    int32(binary.LittleEndian.Uint32(buf[4:8])),
		Error: int32(binary.LittleEndian.Uint32(buf[8:12])),
	}
	return h, nil
}

// Payload returns the bytes following a request header, validating that
// buf is at least as long as the header's declared Size.
func (h RequestHeader) Payload(buf []byte) ([]byte, error) {
	if int(h.Size) > len(buf) {
		return nil, ErrSizeMismatch
	}
	return buf[RequestHeaderSize:h.Size], nil
}

// Payload returns the bytes following a response header.
func (h ResponseHeader) Payload(buf []byte) ([]byte, error) {
	if int(h.Size) > len(buf) {
		return nil, ErrSizeMismatch
	}
	return buf[ResponseHeaderSize:h.Size], nil
}

// Align rounds n up to the 8-byte wire alignment used by control frames.
func Align(n int) int {
	if n%headerAlign == 0 {
		return n
	}
	return n + (headerAlign - n%headerAlign)
}
