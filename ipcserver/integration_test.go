//go:build linux

// File: ipcserver/integration_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ipcserver_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/momentics/hioload-ipc/api"
	"github.com/momentics/hioload-ipc/client"
	"github.com/momentics/hioload-ipc/ipcserver"
	"github.com/momentics/hioload-ipc/reactor"
	"github.com/momentics/hioload-ipc/wire"
)

func newTestService(t *testing.T, name string, handlers ipcserver.ServiceHandlers) (*ipcserver.Service, *reactor.PollHandlersAdapter) {
	t.Helper()
	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("new reactor: %v", err)
	}
	poll := reactor.NewPollHandlersAdapter(r)

	cfg := ipcserver.DefaultConfig()
	cfg.Name = name
	cfg.MaxMsgSize = 4096
	svc := ipcserver.NewService(cfg, handlers, ipcserver.WithPollHandlers(poll))
	if err := svc.Run(); err != nil {
		t.Fatalf("service run: %v", err)
	}
	return svc, poll
}

func TestAuthenticateAndRoundTrip(t *testing.T) {
	name := fmt.Sprintf("hioload-ipc-test-%d", time.Now().UnixNano())

	received := make(chan string, 1)
	handlers := ipcserver.ServiceHandlers{
		MsgProcess: func(conn *ipcserver.ConnRef, id int32, payload []byte) error {
			received <- string(payload)
			return ipcserver.ResponseSend(conn, id, api.ErrnoOK, []byte("ack"))
		},
	}
	svc, poll := newTestService(t, name, handlers)
	defer svc.Destroy()

	// The AUTHENTICATE reply is only sent from a poll callback, so drive
	// the poll loop while the client waits for it.
	stop, done := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				poll.Poll(10)
			}
		}
	}()
	c, err := client.ConnectRetry(name, 4096, 5, 20*time.Millisecond)
	close(stop)
	<-done
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Disconnect()

	if _, err := c.Send(wire.UserID(1), []byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		poll.Poll(10)
		select {
		case got := <-received:
			if got != "hello" {
				t.Fatalf("unexpected payload: %q", got)
			}
			return
		default:
		}
	}
	t.Fatal("server never processed the request")
}
