// File: wire/handshake.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Client/server handshake payloads (spec section 4.3) and peer-credential
// extraction. Mirrors the teacher's protocol/handshake.go shape (a pure
// function reading a header + validating a known exchange) but replaces
// RFC6455 with the single AUTHENTICATE exchange that binds all three
// half-channels (request/response/event) atomically in one round trip.

package wire

import (
	"encoding/binary"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ipc/api"
)

// AuthenticateRequest is the payload of an AUTHENTICATE frame.
type AuthenticateRequest struct {
	MaxMsgSize int32
}

// AuthenticateResponse is returned on successful AUTHENTICATE.
type AuthenticateResponse struct {
	ConnHandle        api.ConnHandle
	TransportKind     api.TransportKind
	NegotiatedMaxSize int32
}

const (
	authReqSize  = 4
	authRespSize = 8 + 4 + 4
)

// EncodeAuthenticateRequest serializes an AUTHENTICATE payload.
func EncodeAuthenticateRequest(r AuthenticateRequest) []byte {
	b := make([]byte, authReqSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(r.MaxMsgSize))
	return b
}

// DecodeAuthenticateRequest parses an AUTHENTICATE payload.
func DecodeAuthenticateRequest(b []byte) (AuthenticateRequest, error) {
	if len(b) < authReqSize {
		return AuthenticateRequest{}, ErrFrameTooShort
	}
	return AuthenticateRequest{MaxMsgSize: int32(binary.LittleEndian.Uint32(b[0:4]))}, nil
}

// EncodeAuthenticateResponse serializes the success payload of AUTHENTICATE.
func EncodeAuthenticateResponse(r AuthenticateResponse) []byte {
	b := make([]byte, authRespSize)
	binary.LittleEndian.PutUint64(b[0:8], uint64(r.ConnHandle))
	binary.LittleEndian.PutUint32(b[8:12], uint32(r.TransportKind))
	binary.LittleEndian.PutUint32(b[12:16], uint32(r.NegotiatedMaxSize))
	return b
}

// DecodeAuthenticateResponse parses the success payload of AUTHENTICATE.
func DecodeAuthenticateResponse(b []byte) (AuthenticateResponse, error) {
	if len(b) < authRespSize {
		return AuthenticateResponse{}, ErrFrameTooShort
	}
	return AuthenticateResponse{
		ConnHandle:        api.ConnHandle(binary.LittleEndian.Uint64(b[0:8])),
		TransportKind:     api.TransportKind(binary.LittleEndian.Uint32(b[8:12])),
		NegotiatedMaxSize: int32(binary.LittleEndian.Uint32(b[12:16])),
	}, nil
}

// PeerCredentialsOf extracts the (uid, gid, pid) triple of the peer on an
// AF_UNIX stream socket fd via SO_PEERCRED, the Linux analog of the
// original's getpeerucred/getpeereid/SO_PASSCRED+SCM_CREDENTIALS paths.
func PeerCredentialsOf(fd int) (api.Credentials, error) {
	ucred, err := unix.GetsockoptUcred(fd, unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{UID: ucred.Uid, GID: ucred.Gid, PID: ucred.Pid}, nil
}
