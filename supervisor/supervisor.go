// Package supervisor implements the single-threaded loop that drives a
// tree of traced processes forward: it demultiplexes kernel stop events,
// dispatches syscall pre/post hooks through syscalltable, resolves the
// fork/vfork/clone race against the kernel, and forwards pending signals.
// Grounded primarily on original_source/src/execution.cpp's runProgram/
// getNextEvent/handlePreSystemCall/handleFork/handleExit, cross-checked
// against the Go idiom in ptracer/tracer_track_linux.go and
// tracer/tracer_track.go for wait4/WaitStatus usage.
package supervisor

import "github.com/criyle/go-dettrace/types"

// AlwaysPostHookDebugLevel is the debug verbosity at and above which the
// supervisor always arms a post-hook stop, regardless of what a handler's
// PreHook requested — so every syscall's return value can be observed and
// logged. Matches the original's `debugLevel >= 4` branch exactly.
const AlwaysPostHookDebugLevel = 4

// seccompNoRule is the PTRACE_GETEVENTMSG payload a seccomp trap action
// reports when no filter rule matched the syscall (INT16_MAX). Observing
// it is always a configuration bug in the filter, never a runtime
// condition the supervisor can recover from.
const seccompNoRule = 0x7fff

// EventTag is the closed enumeration of kernel stop classifications the
// demultiplexer produces.
type EventTag int

const (
	eventInvalid EventTag = iota
	EventSeccompPreHook
	EventSyscallStop
	EventFork
	EventVfork
	EventClone
	EventExec
	EventSignalStop
	EventExited
	EventKilledBySignal
	eventFatal // PTRACE_EVENT_EXIT/PTRACE_EVENT_STOP, or anything unclassified
)

func (t EventTag) String() string {
	switch t {
	case EventSeccompPreHook:
		return "seccomp-pre-hook"
	case EventSyscallStop:
		return "syscall-stop"
	case EventFork:
		return "fork"
	case EventVfork:
		return "vfork"
	case EventClone:
		return "clone"
	case EventExec:
		return "exec"
	case EventSignalStop:
		return "signal-stop"
	case EventExited:
		return "exited"
	case EventKilledBySignal:
		return "killed-by-signal"
	case eventFatal:
		return "fatal-kernel-stop"
	default:
		return "invalid"
	}
}

// Handler is the debug sink the supervisor logs through. No structured
// logging library is grounded anywhere in the corpus for the hot
// per-syscall path, so this mirrors the teacher's own Debug(v
// ...interface{}) contract.
type Handler interface {
	Debug(v ...interface{})
}

// Runner starts the root tracee and returns its pid. The tracee requests
// PTRACE_TRACEME and stops itself before its first exec; Start does not
// wait for that stop, Supervisor.Run does.
type Runner interface {
	Start() (int, error)
}

// Result reports how a Run call ended, in terms of types.Status.
type Result = types.Result
