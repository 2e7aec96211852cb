// File: api/ipctypes.go
// Author: momentics <momentics@gmail.com>
//
// Shared domain types for the local IPC engine: peer credentials, the
// connection handle used by the owner-and-index connection table (spec
// section 9, replacing the original's cyclic back-pointers), and the
// flow-control rate enum.

package api

// Credentials is the (uid, gid, pid) triple of the opposite end of a
// stream, obtained from the kernel (SO_PEERCRED on Linux) without trust
// in the peer's claims.
type Credentials struct {
	UID uint32
	GID uint32
	PID int32
}

// ConnHandle is an opaque, stable token identifying a connection inside a
// service's connection table. Transports and half-channels hold a
// ConnHandle rather than a back-pointer to the owning connection.
type ConnHandle uint64

// RateLimit is the server-side request admission rate, set via
// request_rate_limit in the spec's server API.
type RateLimit int

const (
	RateFast RateLimit = iota
	RateNormal
	RateSlow
	RateOff
)

func (r RateLimit) String() string {
	switch r {
	case RateFast:
		return "FAST"
	case RateNormal:
		return "NORMAL"
	case RateSlow:
		return "SLOW"
	case RateOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// TransportKind identifies which of the three transport adapters backs a
// half-channel.
type TransportKind int

const (
	TransportShm TransportKind = iota
	TransportPosixMQ
	TransportSysvMQ
)

func (k TransportKind) String() string {
	switch k {
	case TransportShm:
		return "shm"
	case TransportPosixMQ:
		return "posixmq"
	case TransportSysvMQ:
		return "sysvmq"
	default:
		return "unknown"
	}
}
