package supervisor

import (
	"testing"

	"golang.org/x/sys/unix"
)

// exitedStatus builds the WaitStatus bit pattern wait4 reports for a
// process that called _exit(code).
func exitedStatus(code int) unix.WaitStatus {
	return unix.WaitStatus(code << 8)
}

// killedStatus builds the WaitStatus bit pattern for a process terminated
// by signal sig, uncored.
func killedStatus(sig unix.Signal) unix.WaitStatus {
	return unix.WaitStatus(sig)
}

// eventStopStatus builds the WaitStatus bit pattern for a ptrace-event
// stop: SIGTRAP, stopped (0x7F in the low byte), with trapCause shifted
// into the high word the way the kernel encodes PTRACE_EVENT_* stops.
func eventStopStatus(trapCause int) unix.WaitStatus {
	return unix.WaitStatus(0x7F | (int(unix.SIGTRAP) << 8) | (trapCause << 16))
}

// signalStopStatus builds the WaitStatus bit pattern for an ordinary
// signal-delivery-stop carrying sig.
func signalStopStatus(sig unix.Signal) unix.WaitStatus {
	return unix.WaitStatus(0x7F | (int(sig) << 8))
}

// syscallTrapStopStatus builds the WaitStatus bit pattern for a
// syscall-entry/exit stop once PTRACE_O_TRACESYSGOOD tags SIGTRAP with the
// 0x80 high bit (mirrors tracer's unexported sysgoodSyscallTrap constant).
func syscallTrapStopStatus() unix.WaitStatus {
	return signalStopStatus(unix.Signal(int(unix.SIGTRAP) | 0x80))
}

func TestClassifyExitedAndKilled(t *testing.T) {
	if got := classify(exitedStatus(7)); got != EventExited {
		t.Fatalf("expected EventExited, got %v", got)
	}
	if got := classify(killedStatus(unix.SIGUSR1)); got != EventKilledBySignal {
		t.Fatalf("expected EventKilledBySignal, got %v", got)
	}
}

func TestClassifyPtraceEventStops(t *testing.T) {
	tests := []struct {
		name       string
		trapCause  int
		want       EventTag
	}{
		{"exec", unix.PTRACE_EVENT_EXEC, EventExec},
		{"clone", unix.PTRACE_EVENT_CLONE, EventClone},
		{"vfork", unix.PTRACE_EVENT_VFORK, EventVfork},
		{"fork", unix.PTRACE_EVENT_FORK, EventFork},
		{"exit-event-is-fatal", unix.PTRACE_EVENT_EXIT, eventFatal},
		{"generic-stop-is-fatal", unix.PTRACE_EVENT_STOP, eventFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(eventStopStatus(tt.trapCause))
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClassifySeccompBeforeGenericSyscallTrap(t *testing.T) {
	// A seccomp event-stop must never be misread as a plain signal-stop:
	// both carry SIGTRAP, and the event bits are in the high word that a
	// naive StopSignal()-only check would ignore.
	if got := classify(eventStopStatus(unix.PTRACE_EVENT_SECCOMP)); got != EventSeccompPreHook {
		t.Fatalf("expected EventSeccompPreHook, got %v", got)
	}
}

func TestClassifySyscallTrapStop(t *testing.T) {
	if got := classify(syscallTrapStopStatus()); got != EventSyscallStop {
		t.Fatalf("expected EventSyscallStop, got %v", got)
	}
}

func TestClassifyOrdinarySignalStop(t *testing.T) {
	if got := classify(signalStopStatus(unix.SIGUSR1)); got != EventSignalStop {
		t.Fatalf("expected EventSignalStop, got %v", got)
	}
}

func TestEventTagString(t *testing.T) {
	tests := map[EventTag]string{
		EventSeccompPreHook: "seccomp-pre-hook",
		EventSyscallStop:    "syscall-stop",
		EventFork:           "fork",
		EventExited:         "exited",
		eventFatal:          "fatal-kernel-stop",
		eventInvalid:        "invalid",
	}
	for tag, want := range tests {
		if got := tag.String(); got != want {
			t.Fatalf("tag %d: expected %q, got %q", tag, want, got)
		}
	}
}

type noopHandler struct{}

func (noopHandler) Debug(v ...interface{}) {}

func TestHandleExitDrainsRegistryAndAncestorStack(t *testing.T) {
	sv := New(noopHandler{}, nil, 0)
	sv.registry.Insert(100) // root
	sv.registry.Insert(200) // child
	sv.registry.PushAncestor(100)

	next, terminal := sv.handleExit(200)
	if terminal {
		t.Fatal("expected the run to continue: root is still waiting")
	}
	if next != 100 {
		t.Fatalf("expected next resume target 100, got %d", next)
	}
	if _, ok := sv.registry.Get(200); ok {
		t.Fatal("expected 200 to be removed from the registry")
	}
	if sv.registry.AncestorDepth() != 0 {
		t.Fatalf("expected ancestor stack empty, got depth %d", sv.registry.AncestorDepth())
	}

	_, terminal = sv.handleExit(100)
	if !terminal {
		t.Fatal("expected the run to terminate: no ancestors left")
	}
}
