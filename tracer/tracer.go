// Package tracer wraps the raw ptrace primitives the supervisor needs to
// drive a tracee forward: resuming it, reading and writing its registers,
// fetching the PTRACE_GETEVENTMSG payload, and testing a wait status for
// the ptrace-event-stops and syscall-trap stops the supervisor's classify
// builds its event tag from. Everything above a
// single tracee — the registry, the fork protocol, the dispatch loop —
// lives in the state and supervisor packages; this package only speaks to
// the kernel.
package tracer

// Mode selects how a stopped tracee is resumed.
type Mode int

const (
	// ModeContinue resumes the tracee with PTRACE_CONT: it runs until the
	// next ptrace-event-stop (seccomp, fork, vfork, clone, exec),
	// signal-delivery-stop or group-stop, not on every syscall.
	ModeContinue Mode = iota
	// ModeSyscallTrap resumes the tracee with PTRACE_SYSCALL: it stops
	// again at the next syscall-entry or syscall-exit boundary.
	ModeSyscallTrap
)

// EventKind names the architecture-independent ptrace events the
// supervisor cares about (PTRACE_EVENT_FORK and friends).
type EventKind int

const (
	EventFork EventKind = iota
	EventVfork
	EventClone
	EventExec
	EventSeccomp
	EventExit
	EventStop
)
