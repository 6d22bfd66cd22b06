package syscalltable

import (
	"golang.org/x/sys/unix"

	"github.com/criyle/go-dettrace/state"
	"github.com/criyle/go-dettrace/tracer"
)

// Handler is state.Handler, aliased locally so this package's exported
// surface reads as its own vocabulary.
type Handler = state.Handler

func registerDefaults(d *Dispatcher) {
	d.Register(unix.SYS_EXIT, "exit", newPassthroughHandler)
	d.Register(unix.SYS_EXIT_GROUP, "exit_group", newPassthroughHandler)
	d.Register(unix.SYS_FORK, "fork", newPassthroughHandler)
	d.Register(unix.SYS_VFORK, "vfork", newPassthroughHandler)
	d.Register(unix.SYS_CLONE, "clone", newPassthroughHandler)
	d.Register(unix.SYS_EXECVE, "execve", newPassthroughHandler)
	d.Register(unix.SYS_GETPID, "getpid", newGetpidHandler)
	d.Register(unix.SYS_CLOCK_GETTIME, "clock_gettime", newLogicalClockHandler)
}

// passthroughHandler requests no post-hook and makes no changes: the
// supervisor observes the syscall but never touches the tracee's
// registers. fork/vfork/clone/exec are registered with this handler
// because the fork-family syscalls are intercepted by the supervisor's
// own reconciler, not by syscall-specific policy, and exit/exit_group need
// no handling beyond the demultiplexer's own exit-event path.
type passthroughHandler struct{}

func newPassthroughHandler() Handler { return passthroughHandler{} }

func (passthroughHandler) PreHook(s *state.State, t *tracer.Tracer) bool { return false }
func (passthroughHandler) PostHook(s *state.State, t *tracer.Tracer)    {}

// getpidHandler rewrites getpid's return value with the pid recorded in
// the tracee's State (State.ID, its real pid). No pid virtualization is
// done: the value is not stable across re-executions of a run.
type getpidHandler struct {
	virtualPid int64
}

func newGetpidHandler() Handler { return &getpidHandler{} }

func (h *getpidHandler) PreHook(s *state.State, t *tracer.Tracer) bool {
	h.virtualPid = int64(s.ID)
	return true
}

func (h *getpidHandler) PostHook(s *state.State, t *tracer.Tracer) {
	regs, err := t.ReadRegisters(s.ID)
	if err != nil {
		return
	}
	tracer.SetReturnValue(regs, h.virtualPid)
	_ = t.WriteRegisters(s.ID, regs)
}

// logicalClockHandler intercepts clock_gettime, the canonical example
// spec.md's Design Notes give for why per-tracee logical time exists at
// all. Its post-hook only forces the return value to 0; the timespec the
// kernel wrote is left as is, so the tracee still reads the wall clock and
// no logical-time value is written.
type logicalClockHandler struct{}

func newLogicalClockHandler() Handler { return logicalClockHandler{} }

func (logicalClockHandler) PreHook(s *state.State, t *tracer.Tracer) bool { return true }

func (logicalClockHandler) PostHook(s *state.State, t *tracer.Tracer) {
	// A complete handler would write a logical-time-derived timespec into
	// the tracee's struct timespec* argument via process_vm_writev; that
	// determinism policy is out of scope here. Forcing a zero return code
	// at least makes the call itself deterministic.
	regs, err := t.ReadRegisters(s.ID)
	if err != nil {
		return
	}
	tracer.SetReturnValue(regs, 0)
	_ = t.WriteRegisters(s.ID, regs)
}
