// +build linux

// Package seccomp is the BPF-program vocabulary bootstrap.Runner installs
// in the child before its exec: the out-of-scope "seccomp-BPF filter
// installation" collaborator spec.md section 1 names, consumed only
// through bootstrap.Runner's *syscall.SockFprog field.
package seccomp

import (
	"syscall"
	"unsafe"
)

// Filter is a compiled BPF program, exported from a libseccomp filter by
// pkg/seccomp/libseccomp.Builder and handed to the kernel by
// bootstrap.Runner via seccomp(2) SECCOMP_SET_MODE_FILTER, just before
// execve.
type Filter []byte

// SockFprog adapts Filter to the struct sock_fprog layout the
// SECCOMP_SET_MODE_FILTER and seccomp(2) syscalls expect.
func (f Filter) SockFprog() *syscall.SockFprog {
	b := []byte(f)
	return &syscall.SockFprog{
		Len:    uint16(len(b) / 8),
		Filter: (*syscall.SockFilter)(unsafe.Pointer(&b[0])),
	}
}
