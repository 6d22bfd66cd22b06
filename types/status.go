package types

// Status classifies how a supervised run ended.
type Status int

// Terminal statuses for a supervised run.
const (
	StatusInvalid Status = iota // 0 not initialized

	// StatusExited means the root tracee called exit/exit_group and the
	// ancestor stack drained normally.
	StatusExited // 1

	// StatusKilledBySignal means the root tracee was terminated by a signal.
	StatusKilledBySignal // 2

	// StatusConfigurationFailure means the runner could not be started:
	// the program could not be resolved, or the child exited before its
	// initial stop (e.g. an rlimit was rejected). A failed seccomp load or
	// exec comes after that stop and is reported as an ordinary exit whose
	// code is the errno.
	StatusConfigurationFailure // 3

	// StatusKernelInvariantViolation means the demultiplexer observed a
	// kernel stop sequence the supervisor has no response for: an
	// unexpected PTRACE_EVENT_EXIT/PTRACE_EVENT_STOP, a seccomp event with
	// no matching filter rule, or a fork/vfork race that resolved to
	// neither branch the protocol allows.
	StatusKernelInvariantViolation // 4

	// StatusWaitFailure means wait4 itself returned an error.
	StatusWaitFailure // 5

	// StatusRunnerError is a catch-all for errors raised outside the
	// kernel-event protocol, such as a failed PTRACE_SETOPTIONS.
	StatusRunnerError // 6
)

var statusString = []string{
	"Invalid",
	"Exited",
	"Killed By Signal",
	"Configuration Failure",
	"Kernel Invariant Violation",
	"Wait Failure",
	"Runner Error",
}

func (t Status) String() string {
	i := int(t)
	if i >= 0 && i < len(statusString) {
		return statusString[i]
	}
	return statusString[0]
}

func (t Status) Error() string {
	return t.String()
}
