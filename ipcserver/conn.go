// File: ipcserver/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ipcserver

import (
	"github.com/momentics/hioload-ipc/api"
	"github.com/momentics/hioload-ipc/session"
	"github.com/momentics/hioload-ipc/wire"
)

// ConnRef is the handle-bearing connection type user callbacks and the
// server API (response_send, event_send, connection_ref_inc/dec,
// context_set/get) operate on.
type ConnRef = session.Connection

// ResponseSend writes a response frame on conn's response half-channel
// (spec section 6: response_send(conn, bytes, len)).
func ResponseSend(conn *ConnRef, id int32, errno api.IPCErrno, payload []byte) error {
	ch := conn.Response()
	if ch == nil {
		return api.ErrInvalid
	}
	_, err := ch.Send(wire.EncodeResponse(id, errno, payload))
	return err
}

// EventSend writes a single event frame on conn's event half-channel and
// writes a wakeup byte on its setup stream (spec section 4.3: "after
// each event the server writes one byte on the paired stream to wake a
// poll-based client").
func EventSend(conn *ConnRef, id int32, payload []byte) error {
	ch := conn.Event()
	if ch == nil {
		return api.ErrInvalid
	}
	if _, err := ch.Send(wire.EncodeRequest(id, payload)); err != nil {
		return err
	}
	return wire.SendWakeup(conn.SetupFD())
}

// EventSendV scatters bufs as a single event frame's payload.
func EventSendV(conn *ConnRef, id int32, bufs [][]byte) error {
	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	joined := make([]byte, 0, total)
	for _, b := range bufs {
		joined = append(joined, b...)
	}
	return EventSend(conn, id, joined)
}
