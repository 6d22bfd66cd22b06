package bootstrap

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// These three hooks are the same ones the standard library's own
// syscall.forkExec uses to keep the runtime's thread and signal state
// consistent across a raw fork. Linked in exactly as
// tracee/tracee_fork.go does.
//
//go:linkname runtimeBeforeFork syscall.runtime_BeforeFork
func runtimeBeforeFork()

//go:linkname runtimeAfterFork syscall.runtime_AfterFork
func runtimeAfterFork()

//go:linkname runtimeAfterForkInChild syscall.runtime_AfterForkInChild
func runtimeAfterForkInChild()

// Start forks, configures, and execs the tracee. It returns the child's
// pid right after the fork, without waiting: the child calls
// PTRACE_TRACEME and then stops itself with SIGSTOP before loading the
// seccomp filter, so the caller's next step is always to wait for that
// stop and arm trace options before resuming it.
func (r *Runner) Start() (int, error) {
	argv0, err := syscallStringSlicePtr(append([]string{r.Args[0]}, r.Args[1:]...))
	if err != nil {
		return 0, err
	}
	envv, err := syscallStringSlicePtr(r.Env)
	if err != nil {
		return 0, err
	}
	path, err := resolvePath(r.Args[0])
	if err != nil {
		return 0, err
	}
	pathPtr, err := syscall.BytePtrFromString(path)
	if err != nil {
		return 0, err
	}

	var workDirPtr *byte
	if r.WorkDir != "" {
		workDirPtr, err = syscall.BytePtrFromString(r.WorkDir)
		if err != nil {
			return 0, err
		}
	}

	rlimits := make([]syscallRLimit, len(r.RLimits))
	for i, rl := range r.RLimits {
		rlimits[i] = syscallRLimit{res: rl.Res, lim: rl.Rlim}
	}

	files := make([]uintptr, len(r.Files))
	copy(files, r.Files)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	syscall.ForkLock.Lock()
	defer syscall.ForkLock.Unlock()

	runtimeBeforeFork()
	pid, _, errno := syscall.RawSyscall6(syscall.SYS_CLONE, uintptr(syscall.SIGCHLD), 0, 0, 0, 0, 0)
	if errno != 0 {
		runtimeAfterFork()
		return 0, errno
	}
	if pid == 0 {
		// Child: from this point on, no Go runtime call other than the
		// raw syscalls below and runtimeAfterForkInChild is safe — the
		// child shares its parent's heap/goroutines in a frozen,
		// single-threaded state.
		runtimeAfterForkInChild()
		childSetupAndExec(pathPtr, argv0, envv, workDirPtr, files, rlimits, r.Filter)
		// Unreachable: childSetupAndExec always exits or execs.
		panic("unreachable")
	}

	runtimeAfterFork()
	return int(pid), nil
}

// syscallRLimit is childSetupAndExec's raw-syscall-safe mirror of
// bootstrap.RLimit, used so the child never needs to touch the exported
// API's types through an interface call.
type syscallRLimit struct {
	res int
	lim syscall.Rlimit
}

// childSetupAndExec runs entirely after fork, before exec. It must not
// allocate on the Go heap in any way that could deadlock on another
// thread's held lock (the fork only cloned the calling thread), so every
// step here is a direct syscall, matching tracee/tracee_fork.go's
// childerror-label structure: on any failure it exits with the errno
// instead of returning.
func childSetupAndExec(path *byte, argv, envv []*byte, workDir *byte, files []uintptr, rlimits []syscallRLimit, filter *syscall.SockFprog) {
	for _, rl := range rlimits {
		_, _, errno := syscall.RawSyscall6(syscall.SYS_PRLIMIT64, 0, uintptr(rl.res), uintptr(unsafe.Pointer(&rl.lim)), 0, 0, 0)
		if errno != 0 {
			childExit(errno)
		}
	}

	if workDir != nil {
		_, _, errno := syscall.RawSyscall(syscall.SYS_CHDIR, uintptr(unsafe.Pointer(workDir)), 0, 0)
		if errno != 0 {
			childExit(errno)
		}
	}

	for i, fd := range files {
		if int(fd) == i {
			continue
		}
		_, _, errno := syscall.RawSyscall(syscall.SYS_DUP3, fd, uintptr(i), 0)
		if errno != 0 {
			childExit(errno)
		}
	}
	for i := range files {
		syscall.RawSyscall(syscall.SYS_FCNTL, uintptr(i), syscall.F_SETFD, 0)
	}

	if _, _, errno := syscall.RawSyscall(syscall.SYS_PTRACE, syscall.PTRACE_TRACEME, 0, 0); errno != 0 {
		childExit(errno)
	}

	// PR_SET_NO_NEW_PRIVS: required by the kernel before an unprivileged
	// process may install a seccomp filter.
	const prSetNoNewPrivs = 38
	if _, _, errno := syscall.RawSyscall6(syscall.SYS_PRCTL, prSetNoNewPrivs, 1, 0, 0, 0, 0); errno != 0 {
		childExit(errno)
	}

	// Stop so the parent can attach and arm its trace options before the
	// seccomp filter (which traps on the very next syscall) is live.
	pid, _, _ := syscall.RawSyscall(syscall.SYS_GETPID, 0, 0, 0)
	syscall.RawSyscall(syscall.SYS_KILL, pid, uintptr(syscall.SIGSTOP), 0)

	if filter != nil {
		const seccompSetModeFilter = 1
		const seccompFilterFlagTsync = 1
		_, _, errno := syscall.RawSyscall(unix.SYS_SECCOMP, seccompSetModeFilter, seccompFilterFlagTsync, uintptr(unsafe.Pointer(filter)))
		if errno != 0 {
			childExit(errno)
		}
	}

	_, _, errno := syscall.RawSyscall6(syscall.SYS_EXECVE,
		uintptr(unsafe.Pointer(path)),
		uintptr(unsafe.Pointer(&argv[0])),
		uintptr(unsafe.Pointer(&envv[0])),
		0, 0, 0)
	// execve only returns on error.
	childExit(errno)
}

func childExit(errno syscall.Errno) {
	syscall.RawSyscall(syscall.SYS_EXIT, uintptr(errno), 0, 0)
}

func syscallStringSlicePtr(in []string) ([]*byte, error) {
	out := make([]*byte, len(in)+1)
	for i, s := range in {
		p, err := syscall.BytePtrFromString(s)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
