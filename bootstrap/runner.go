// Package bootstrap launches the root tracee the supervisor will drive:
// fork, apply resource limits, remap file descriptors, request
// PTRACE_TRACEME, load a seccomp-BPF filter, and exec. Grounded on
// tracee/tracee_fork.go and tracee/tracee.go — the teacher's simplest
// fork+exec path, free of the mount/namespace machinery pkg/forkexec
// entangles with it (namespace/mount isolation is out of scope per
// spec.md, "does not sandbox filesystem/network access").
package bootstrap

import "syscall"

// Runner holds everything needed to fork, configure, and exec the root
// tracee. It implements supervisor.Runner.
type Runner struct {
	// Args is argv, Args[0] is the program to exec.
	Args []string
	// Env is the child's environment.
	Env []string
	// WorkDir is the child's current working directory; empty keeps the
	// parent's.
	WorkDir string
	// Files maps the child's fd 0..len(Files)-1 onto these parent fds.
	Files []uintptr
	// RLimits are applied to the child before exec.
	RLimits []RLimit
	// Filter is the seccomp-BPF program installed just before exec. A nil
	// Filter execs untraced by seccomp (ptrace tracing still applies).
	Filter *syscall.SockFprog
}

// RLimit is one setrlimit(2) call to make in the child.
type RLimit struct {
	Res  int
	Rlim syscall.Rlimit
}

// New returns an empty Runner ready to have its fields populated.
func New() Runner {
	return Runner{}
}
