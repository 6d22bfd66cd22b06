package tracer

import "syscall"

// Regs is the amd64 general-purpose register snapshot ptrace(2) exchanges
// with a tracee.
type Regs = syscall.PtraceRegs
