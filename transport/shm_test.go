// File: transport/shm_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"testing"
	"time"
)

func TestShmChannelSendRecv(t *testing.T) {
	ch, err := NewShmChannelCreate("transport-test-shm", 4096, "")
	if err != nil {
		t.Fatalf("NewShmChannelCreate: %v", err)
	}
	defer ch.Close()

	msg := []byte("request frame")
	if _, err := ch.Send(msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, len(msg))
	n, err := ch.Recv(buf, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if string(buf[:n]) != string(msg) {
		t.Fatalf("got %q want %q", buf[:n], msg)
	}
}

func TestShmChannelFlowControl(t *testing.T) {
	ch, err := NewShmChannelCreate("transport-test-flow", 4096, "")
	if err != nil {
		t.Fatalf("NewShmChannelCreate: %v", err)
	}
	defer ch.Close()

	ch.FlowControlSet(false)
	if _, err := ch.Send([]byte("x")); err == nil {
		t.Fatalf("expected flow-controlled Send to fail")
	}
}
