//go:build !linux
// +build !linux

package tracer

import "errors"

var errUnsupported = errors.New("tracer: ptrace is only supported on linux")

// Tracer is a no-op stand-in on non-linux platforms so the rest of the
// module still builds and its unit tests that don't need a live tracee
// still run.
type Tracer struct{}

func New() *Tracer {
	return &Tracer{}
}

func (*Tracer) Resume(tid int, mode Mode, signal int) error           { return errUnsupported }
func (*Tracer) ReadRegisters(tid int) (*Regs, error)                  { return nil, errUnsupported }
func (*Tracer) WriteRegisters(tid int, regs *Regs) error              { return errUnsupported }
func (*Tracer) GetEventMessage(tid int) (uint64, error)               { return 0, errUnsupported }
func (*Tracer) SetTraceOptions(tid int) error                         { return errUnsupported }

func SyscallNumber(regs *Regs) int                   { return -1 }
func ReturnValue(regs *Regs) int64                   { return 0 }
func SetReturnValue(regs *Regs, value int64)         {}
func SkipSyscall(regs *Regs)                         {}
