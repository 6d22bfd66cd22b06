package libseccomp

import (
	"testing"

	"github.com/criyle/go-dettrace/pkg/seccomp"
	libseccomp "github.com/seccomp/libseccomp-golang"
)

// representativeAllows/representativeTraces approximate the allow/trace
// split a real cmd/dettrace policy file would set: a broad list that runs
// straight through (ActionAllow; it includes time-reading calls such as
// clock_gettime and gettimeofday), and a smaller file/exec set routed to
// the supervisor instead (ActionTrace). Kept local to this test rather than
// exported, since the actual catalog is cmd/dettrace config's job, not
// this package's.
var (
	representativeAllows = []string{
		"read", "write", "readv", "writev", "close", "fstat", "lseek", "dup", "dup2", "dup3", "ioctl", "fcntl", "fadvise64",
		"mmap", "mprotect", "munmap", "brk", "mremap", "msync", "mincore", "madvise",
		"rt_sigaction", "rt_sigprocmask", "rt_sigreturn", "rt_sigpending", "sigaltstack",
		"getcwd", "exit", "exit_group", "arch_prctl",
		"gettimeofday", "getrlimit", "getrusage", "times", "time", "clock_gettime", "restart_syscall",
	}

	representativeTraces = []string{
		"execve", "open", "openat", "unlink", "unlinkat", "readlink", "readlinkat", "lstat", "stat", "access", "faccessat",
	}
)

func TestBuildFilter(t *testing.T) {
	defaultAction := libseccomp.ActKill
	_, err := buildRepresentativeFilter(defaultAction)
	if err != nil {
		t.Errorf("Build failed: %v", err)
	}
}

// BenchmarkBuildDefaultFilter is about 0.2ms/op
func BenchmarkBuildDefaultFilter(b *testing.B) {
	for i := 0; i < b.N; i++ {
		builder := Builder{
			Allow:   representativeAllows,
			Trace:   representativeTraces,
			Default: seccomp.ActionTrace,
		}
		builder.Build()
	}
}

// buildRepresentativeFilter exercises Builder.Build with a small
// allow/trace pair. d is accepted to mirror the Default-action knob a
// cmd/dettrace policy file would vary, even though this test always
// builds with seccomp.ActionTrace.
func buildRepresentativeFilter(d libseccomp.ScmpAction) (seccomp.Filter, error) {
	b := Builder{
		Allow:   []string{"fork"},
		Trace:   []string{"execve"},
		Default: seccomp.ActionTrace,
	}
	return b.Build()
}
