// +build linux

package libseccomp

import (
	libseccomp "github.com/seccomp/libseccomp-golang"
)

// ToSyscallName resolves a raw syscall number to its libseccomp-known
// name, the inverse of what Builder.Allow/Builder.Trace take as input —
// useful for turning the numeric id a seccomp-prehook or
// configuration-failure error reports (spec.md scenario E) back into
// something a human reading cmd/dettrace's debug log recognizes.
func ToSyscallName(sysno uint) (string, error) {
	return libseccomp.ScmpSyscall(sysno).GetName()
}
