package syscalltable

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/criyle/go-dettrace/state"
)

func TestDispatchKnownSyscalls(t *testing.T) {
	d := New()
	tests := []struct {
		number int
		name   string
	}{
		{unix.SYS_GETPID, "getpid"},
		{unix.SYS_EXIT_GROUP, "exit_group"},
		{unix.SYS_CLOCK_GETTIME, "clock_gettime"},
		{unix.SYS_CLONE, "clone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := d.Dispatch(tt.number)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h == nil {
				t.Fatal("expected a non-nil handler")
			}
			if name, ok := d.Name(tt.number); !ok || name != tt.name {
				t.Fatalf("expected name %q, got %q (ok=%v)", tt.name, name, ok)
			}
		})
	}
}

func TestDispatchUnknownSyscallErrors(t *testing.T) {
	d := New()
	const unregistered = 999999
	if _, err := d.Dispatch(unregistered); err == nil {
		t.Fatal("expected an error dispatching an unregistered syscall number")
	}
}

func TestGetpidHandlerRequestsPostHook(t *testing.T) {
	var h Handler = newGetpidHandler()
	s := state.New(4242)
	if post := h.PreHook(s, nil); !post {
		t.Fatal("expected getpid handler to request a post-hook")
	}
}

func TestPassthroughHandlerRequestsNoPostHook(t *testing.T) {
	h := newPassthroughHandler()
	s := state.New(1)
	if post := h.PreHook(s, nil); post {
		t.Fatal("expected passthrough handler to request no post-hook")
	}
}
