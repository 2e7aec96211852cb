// File: session/table_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package session

import (
	"testing"

	"github.com/momentics/hioload-ipc/api"
)

func TestTableInsertGetRemove(t *testing.T) {
	tbl := NewTable(4)
	h := tbl.AllocHandle()
	c := NewConnection(h, -1, api.Credentials{UID: 1000, GID: 1000, PID: 42}, 4096)
	tbl.Insert(c)

	got, ok := tbl.Get(h)
	if !ok || got != c {
		t.Fatalf("Get after Insert failed")
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}

	tbl.Remove(h)
	if _, ok := tbl.Get(h); ok {
		t.Fatalf("connection still present after Remove")
	}
}

func TestConnectionRefCounting(t *testing.T) {
	c := NewConnection(1, -1, api.Credentials{}, 1024)
	if c.RefCount() != 1 {
		t.Fatalf("initial RefCount = %d, want 1", c.RefCount())
	}
	c.RefInc()
	if c.RefCount() != 2 {
		t.Fatalf("RefCount after RefInc = %d, want 2", c.RefCount())
	}
	if c.RefDec(); c.RefCount() != 1 {
		t.Fatalf("RefCount after RefDec = %d, want 1", c.RefCount())
	}
}
