//go:build !linux
// +build !linux

package tracer

// Regs is an opaque stand-in on non-linux platforms; ptrace register
// layout is architecture- and OS-specific and only implemented for linux.
type Regs struct{}
