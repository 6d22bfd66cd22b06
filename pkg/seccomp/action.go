package seccomp

// Action is the basic outcome a seccomp-BPF filter rule assigns to a
// syscall, packed together with a 16-bit return code the kernel hands
// back in SECCOMP_RET_DATA — the payload the supervisor's
// PTRACE_GETEVENTMSG reads off a seccomp-prehook stop (spec.md section 6,
// "getEventMessage") to tell a routed syscall apart from the 0x7fff
// no-rule-matched sentinel.
type Action uint32

// Action defines seccomp action to the syscall
// default value 0 is invalid
const (
	// ActionAllow lets the syscall run without ever stopping the tracee:
	// the cheap path the glossary's "Seccomp event" entry describes —
	// uninteresting syscalls never reach the supervisor at all.
	ActionAllow Action = iota + 1
	// ActionErrno fails the syscall in-kernel with the packed return
	// code, again without stopping the tracee.
	ActionErrno
	// ActionTrace produces the seccomp-prehook stop the demultiplexer
	// classifies first in its priority order (spec.md section 4.1) and
	// routes to handlePreSyscall.
	ActionTrace
	// ActionKill terminates the tracee immediately; the supervisor
	// observes this as an ordinary killed-by-signal event.
	ActionKill
)

// MsgDisallow and MsgHandle are SECCOMP_RET_DATA payload values.
// libseccomp.Builder packs MsgHandle onto every trace rule; MsgDisallow is
// not packed by any filter in this module. The supervisor's
// seccomp-prehook handling compares the payload only against the 0x7fff
// no-rule-matched sentinel, not against these values.
const (
	MsgDisallow int16 = iota + 1
	MsgHandle
)

// WithReturnCode packs code into the action's SECCOMP_RET_DATA bits,
// leaving the basic action untouched.
func (a Action) WithReturnCode(code int16) Action {
	return a.Action() | Action(code)<<16
}

// ReturnCode unpacks the SECCOMP_RET_DATA bits a seccomp-prehook's
// PTRACE_GETEVENTMSG reports.
func (a Action) ReturnCode() int16 {
	return int16(a >> 16)
}

// Action strips the packed return code, leaving the basic action alone.
func (a Action) Action() Action {
	return Action(a & 0xffff)
}
