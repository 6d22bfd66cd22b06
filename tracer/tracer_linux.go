package tracer

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// traceOptions is the full option set the supervisor requires: trace every
// fork family member, kill tracees when the tracer dies, and tag
// syscall-trap stops with the high bit so they can't be confused with a
// plain SIGTRAP delivery.
const traceOptions = unix.PTRACE_O_TRACESECCOMP |
	unix.PTRACE_O_EXITKILL |
	unix.PTRACE_O_TRACEFORK |
	unix.PTRACE_O_TRACECLONE |
	unix.PTRACE_O_TRACEVFORK |
	unix.PTRACE_O_TRACEEXEC |
	unix.PTRACE_O_TRACESYSGOOD

// sysgoodSyscallTrap is WSTOPSIG(status) for a syscall-entry or
// syscall-exit stop once PTRACE_O_TRACESYSGOOD is set: SIGTRAP with the
// 0x80 bit set so it can never collide with a genuine SIGTRAP delivery.
const sysgoodSyscallTrap = int(unix.SIGTRAP) | 0x80

// Tracer drives a single architecture's ptrace calling convention. The
// amd64 implementation here is the only one SPEC_FULL asks for; other
// architectures are a mechanical extension of Regs/SyscallNumber/
// ReturnValue.
type Tracer struct{}

// New returns a Tracer. It carries no state of its own: every method takes
// the tracee's tid explicitly, matching how ptrace(2) itself is stateless
// across calls.
func New() *Tracer {
	return &Tracer{}
}

// Resume lets a stopped tracee run again, forwarding signal if nonzero.
func (*Tracer) Resume(tid int, mode Mode, signal int) error {
	if mode == ModeSyscallTrap {
		return unix.PtraceSyscall(tid, signal)
	}
	return unix.PtraceCont(tid, signal)
}

// ReadRegisters fetches the tracee's general-purpose registers.
func (*Tracer) ReadRegisters(tid int) (*Regs, error) {
	var regs syscall.PtraceRegs
	if err := syscall.PtraceGetRegs(tid, &regs); err != nil {
		return nil, err
	}
	return &regs, nil
}

// WriteRegisters stores a (possibly modified) register snapshot back into
// the tracee, e.g. after a handler calls SetReturnValue or skips a syscall.
func (*Tracer) WriteRegisters(tid int, regs *Regs) error {
	return syscall.PtraceSetRegs(tid, regs)
}

// GetEventMessage fetches the PTRACE_GETEVENTMSG payload: the new child's
// pid for a fork/vfork/clone event, or the seccomp filter's return code for
// a seccomp event.
func (*Tracer) GetEventMessage(tid int) (uint64, error) {
	msg, err := unix.PtraceGetEventMsg(tid)
	return uint64(msg), err
}

// SetTraceOptions arms every option the supervisor relies on. Called once
// per tracee, immediately after its first observed stop.
func (*Tracer) SetTraceOptions(tid int) error {
	return unix.PtraceSetOptions(tid, traceOptions)
}

// SyscallNumber reads the syscall number a register snapshot was stopped
// at (amd64: orig_rax, since rax is clobbered with the return value by the
// time of the post-hook stop).
func SyscallNumber(regs *Regs) int {
	return int(regs.Orig_rax)
}

// ReturnValue reads the syscall's return value from a post-hook snapshot.
func ReturnValue(regs *Regs) int64 {
	return int64(regs.Rax)
}

// SetReturnValue overwrites the return value a tracee will observe.
func SetReturnValue(regs *Regs, value int64) {
	regs.Rax = uint64(value)
}

// SkipSyscall marks the syscall as already handled: the kernel will not
// actually execute it, and the post-hook stop (if any) sees only the
// register state this function left behind.
func SkipSyscall(regs *Regs) {
	regs.Orig_rax = ^uint64(0) // -1: no syscall numbers are negative
}

// eventKindToPtrace maps the architecture-independent EventKind enum onto
// the raw PTRACE_EVENT_* constant TrapCause() returns.
var eventKindToPtrace = map[EventKind]int{
	EventFork:    unix.PTRACE_EVENT_FORK,
	EventVfork:   unix.PTRACE_EVENT_VFORK,
	EventClone:   unix.PTRACE_EVENT_CLONE,
	EventExec:    unix.PTRACE_EVENT_EXEC,
	EventSeccomp: unix.PTRACE_EVENT_SECCOMP,
	EventExit:    unix.PTRACE_EVENT_EXIT,
}

// IsPtraceEventStop reports whether status is a SIGTRAP ptrace-event-stop
// whose TrapCause matches kind.
func IsPtraceEventStop(status unix.WaitStatus, kind EventKind) bool {
	if !status.Stopped() || status.StopSignal() != unix.SIGTRAP {
		return false
	}
	want, ok := eventKindToPtrace[kind]
	return ok && status.TrapCause() == want
}

// IsSyscallTrapStop reports whether status is a syscall-entry or
// syscall-exit stop (SIGTRAP with the sysgood high bit set).
func IsSyscallTrapStop(status unix.WaitStatus) bool {
	return status.Stopped() && int(status.StopSignal()) == sysgoodSyscallTrap
}
