package supervisor

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sys/unix"

	"github.com/criyle/go-dettrace/state"
	"github.com/criyle/go-dettrace/syscalltable"
	"github.com/criyle/go-dettrace/tracer"
	"github.com/criyle/go-dettrace/types"
)

// Supervisor owns the registry, the tracer primitive, and the syscall
// dispatcher for one run.
type Supervisor struct {
	handler      Handler
	tr           *tracer.Tracer
	dispatcher   *syscalltable.Dispatcher
	registry     *state.Registry
	legacyKernel bool
	debugLevel   int
}

// New constructs a Supervisor. legacyKernel is computed once here via
// uname(2), not passed in, so callers never have to special-case the
// kernel-version gate themselves.
func New(handler Handler, dispatcher *syscalltable.Dispatcher, debugLevel int) *Supervisor {
	return &Supervisor{
		handler:      handler,
		tr:           tracer.New(),
		dispatcher:   dispatcher,
		registry:     state.NewRegistry(),
		legacyKernel: detectLegacyKernel(),
		debugLevel:   debugLevel,
	}
}

// classify turns a wait4 status into the event tag the main loop
// dispatches on, in the priority order spec.md section 4.1 requires:
// process exit and signal death are unambiguous and checked first; then
// the ptrace-event-stops fork/vfork/clone/exec/seccomp are distinguished
// by TrapCause; PTRACE_EVENT_EXIT/PTRACE_EVENT_STOP are kernel invariant
// violations this core refuses to paper over; a syscall-trap stop is
// recognized by the PTRACE_O_TRACESYSGOOD high bit; anything else stopped
// is an ordinary signal-delivery-stop.
func classify(status unix.WaitStatus) EventTag {
	switch {
	case status.Exited():
		return EventExited
	case status.Signaled():
		return EventKilledBySignal
	case tracer.IsPtraceEventStop(status, tracer.EventExec):
		return EventExec
	case tracer.IsPtraceEventStop(status, tracer.EventClone):
		return EventClone
	case tracer.IsPtraceEventStop(status, tracer.EventVfork):
		return EventVfork
	case tracer.IsPtraceEventStop(status, tracer.EventFork):
		return EventFork
	case tracer.IsPtraceEventStop(status, tracer.EventExit):
		return eventFatal
	case status.Stopped() && status.StopSignal() == unix.SIGTRAP && status.TrapCause() == unix.PTRACE_EVENT_STOP:
		return eventFatal
	case status.Stopped() && status.StopSignal() == unix.SIGTRAP && status.TrapCause() == unix.PTRACE_EVENT_SECCOMP:
		return EventSeccompPreHook
	case tracer.IsSyscallTrapStop(status):
		return EventSyscallStop
	case status.Stopped():
		return EventSignalStop
	default:
		return eventFatal
	}
}

// waitAny blocks for the next stop from any child tracee (wait4 with pid
// -1), without resuming anyone first.
func (sv *Supervisor) waitAny() (int, unix.WaitStatus, EventTag, error) {
	var status unix.WaitStatus
	pid, err := unix.Wait4(-1, &status, 0, nil)
	if err != nil {
		return 0, 0, eventInvalid, err
	}
	return pid, status, classify(status), nil
}

// waitPid blocks for the next stop from exactly one tracee, without
// resuming anyone first.
func (sv *Supervisor) waitPid(pid int) (unix.WaitStatus, EventTag, error) {
	var status unix.WaitStatus
	_, err := unix.Wait4(pid, &status, 0, nil)
	if err != nil {
		return 0, eventInvalid, err
	}
	return status, classify(status), nil
}

// nextEvent is the event demultiplexer (spec.md 4.1): it delivers any
// pending signal for resumeTarget, resumes it in the requested mode, then
// blocks for the next stop from any tracee.
func (sv *Supervisor) nextEvent(resumeTarget int, wantPostHook bool) (int, unix.WaitStatus, EventTag, error) {
	signal := 0
	if st, ok := sv.registry.Get(resumeTarget); ok {
		signal = st.SignalToDeliver
		st.SignalToDeliver = 0
	}
	mode := tracer.ModeContinue
	if wantPostHook {
		mode = tracer.ModeSyscallTrap
	}
	if err := sv.tr.Resume(resumeTarget, mode, signal); err != nil {
		return 0, 0, eventInvalid, fmt.Errorf("resume tracee %d: %w", resumeTarget, err)
	}
	var status unix.WaitStatus
	pid, err := unix.Wait4(-1, &status, 0, nil)
	if err != nil {
		return 0, 0, eventInvalid, err
	}
	return pid, status, classify(status), nil
}

// Run starts runner, attaches full trace options, and drives the
// supervisor loop until the root tracee's ancestor stack drains (spec.md
// 4.2, 4.5) or a fatal error is observed. Run has no internal concurrency
// and no cancellation path of its own (spec.md section 5: "no internal
// parallelism... Cancellation and timeouts: none internally"); a caller
// that wants to abort a run does so the way spec.md section 5 says
// external termination works, by delivering a fatal signal to the root
// tracee directly (e.g. unix.Kill(pid, unix.SIGKILL)), which this loop
// then observes as an ordinary exit event.
func (sv *Supervisor) Run(runner Runner) (result types.Result, err error) {
	sTime := time.Now()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	pid, err := runner.Start()
	if err != nil {
		return types.Result{Status: types.StatusConfigurationFailure, Error: err.Error(), SetUpTime: time.Since(sTime)}, err
	}
	sv.registry.Insert(pid)
	if _, tag, werr := sv.waitPid(pid); werr != nil {
		return types.Result{Status: types.StatusWaitFailure, Error: werr.Error(), SetUpTime: time.Since(sTime)}, werr
	} else if tag != EventSignalStop {
		err := fmt.Errorf("root tracee %d did not reach its initial stop, got %v", pid, tag)
		return types.Result{Status: types.StatusConfigurationFailure, Error: err.Error(), SetUpTime: time.Since(sTime)}, err
	}
	if err := sv.tr.SetTraceOptions(pid); err != nil {
		return types.Result{Status: types.StatusRunnerError, SetUpTime: time.Since(sTime)}, fmt.Errorf("set trace options on root tracee %d: %w", pid, err)
	}

	// fTime marks the end of setup (fork+exec+trace-attach) and the start
	// of the supervisor loop proper, matching the teacher's sTime/fTime
	// split in ptracer/tracer_track_linux.go's TraceRun.
	fTime := time.Now()
	defer func() {
		result.SetUpTime = fTime.Sub(sTime)
		result.RunningTime = time.Since(fTime)
	}()

	resumeTarget := pid
	wantPostHook := false

	for {
		stopped, status, tag, werr := sv.nextEvent(resumeTarget, wantPostHook)
		if werr != nil {
			return types.Result{Status: types.StatusWaitFailure, Error: werr.Error()}, werr
		}

		switch tag {
		case EventExited, EventKilledBySignal:
			parent, terminal := sv.handleExit(stopped)
			if terminal {
				return exitResult(status, tag), nil
			}
			resumeTarget = parent
			wantPostHook = false
			continue
		}

		st, ok := sv.registry.Get(stopped)
		if !ok {
			err := fmt.Errorf("kernel invariant violation: observed %v from untracked tracee %d", tag, stopped)
			return types.Result{Status: types.StatusKernelInvariantViolation, Error: err.Error()}, err
		}

		switch tag {
		case EventSeccompPreHook:
			msg, merr := sv.tr.GetEventMessage(stopped)
			if merr != nil {
				err := fmt.Errorf("get seccomp event message for tracee %d: %w", stopped, merr)
				return types.Result{Status: types.StatusKernelInvariantViolation, Error: err.Error()}, err
			}
			if int16(msg) == seccompNoRule {
				err := fmt.Errorf("no seccomp filter rule matched a syscall in tracee %d", stopped)
				return types.Result{Status: types.StatusKernelInvariantViolation, Error: err.Error()}, err
			}
			regs, rerr := sv.tr.ReadRegisters(stopped)
			if rerr != nil {
				err := fmt.Errorf("read registers for tracee %d: %w", stopped, rerr)
				return types.Result{Status: types.StatusRunnerError, Error: err.Error()}, err
			}
			forkChild, callPostHook, herr := sv.handlePreSyscall(st, regs)
			if herr != nil {
				return types.Result{Status: types.StatusKernelInvariantViolation, Error: herr.Error()}, herr
			}
			if forkChild != 0 {
				resumeTarget = forkChild
				wantPostHook = false
			} else {
				resumeTarget = stopped
				wantPostHook = callPostHook
			}

		case EventSyscallStop:
			if sv.legacyKernel && st.IsPreExit {
				st.IsPreExit = false
				resumeTarget = stopped
				wantPostHook = true
				continue
			}
			regs, rerr := sv.tr.ReadRegisters(stopped)
			if rerr != nil {
				err := fmt.Errorf("read registers for tracee %d: %w", stopped, rerr)
				return types.Result{Status: types.StatusRunnerError, Error: err.Error()}, err
			}
			sv.handlePostSyscall(st, regs)
			resumeTarget = stopped
			wantPostHook = false

		case EventClone, EventExec:
			sv.handler.Debug("observed", tag, "for tracee", stopped)
			resumeTarget = stopped
			wantPostHook = false

		case EventFork, EventVfork:
			// Reaching the main loop with a bare fork/vfork tag (outside
			// the reconciler) means a fork-family syscall's pre-hook was
			// never dispatched through handlePreSyscall — a kernel
			// invariant violation, not a recoverable case.
			err := fmt.Errorf("kernel invariant violation: unreconciled %v event for tracee %d", tag, stopped)
			return types.Result{Status: types.StatusKernelInvariantViolation, Error: err.Error()}, err

		case EventSignalStop:
			st.SignalToDeliver = int(status.StopSignal())
			resumeTarget = stopped
			wantPostHook = false

		default:
			err := fmt.Errorf("kernel invariant violation: unexpected stop %v for tracee %d", tag, stopped)
			return types.Result{Status: types.StatusKernelInvariantViolation, Error: err.Error()}, err
		}
	}
}

func exitResult(status unix.WaitStatus, tag EventTag) types.Result {
	if tag == EventKilledBySignal {
		return types.Result{Status: types.StatusKilledBySignal, TerminatingSignal: int(status.Signal())}
	}
	return types.Result{Status: types.StatusExited, ExitCode: status.ExitStatus()}
}

// handlePreSyscall is spec.md 4.3: dispatch the handler, tick logical
// time, run PreHook, special-case the fork family through the reconciler,
// and decide whether a post-hook stop should be armed.
func (sv *Supervisor) handlePreSyscall(st *state.State, regs *tracer.Regs) (forkChild int, wantPostHook bool, err error) {
	number := tracer.SyscallNumber(regs)
	handler, derr := sv.dispatcher.Dispatch(number)
	if derr != nil {
		return 0, false, fmt.Errorf("tracee %d: %w", st.ID, derr)
	}
	st.CurrentSyscall = handler
	st.Tick()

	callPostHook := handler.PreHook(st, sv.tr)

	if sv.legacyKernel {
		st.IsPreExit = true
	}

	if name, _ := sv.dispatcher.Name(number); name == "fork" || name == "vfork" || name == "clone" {
		child, rerr := sv.reconcileFork(st)
		if rerr != nil {
			return 0, false, rerr
		}
		return child, false, nil
	}

	if sv.legacyKernel {
		return 0, true, nil
	}
	if sv.debugLevel >= AlwaysPostHookDebugLevel {
		return 0, true, nil
	}
	return 0, callPostHook, nil
}

// handlePostSyscall is spec.md 4.3's counterpart at syscall-exit.
func (sv *Supervisor) handlePostSyscall(st *state.State, regs *tracer.Regs) {
	if st.CurrentSyscall == nil {
		return
	}
	st.CurrentSyscall.PostHook(st, sv.tr)
	st.CurrentSyscall = nil
}

// reconcileFork is spec.md 4.4: resolve the race between the parent's
// fork/vfork ptrace-event-stop and the new child's own signal-stop, then
// register the child and hand scheduling to it.
func (sv *Supervisor) reconcileFork(parent *state.State) (childPid int, err error) {
	if sv.legacyKernel {
		if err := sv.tr.Resume(parent.ID, tracer.ModeSyscallTrap, 0); err != nil {
			return 0, fmt.Errorf("drain entry-stop for tracee %d: %w", parent.ID, err)
		}
		_, tag, werr := sv.waitPid(parent.ID)
		if werr != nil {
			return 0, fmt.Errorf("await entry-drain stop for tracee %d: %w", parent.ID, werr)
		}
		if tag != EventSyscallStop {
			return 0, fmt.Errorf("expected entry-drain syscall-stop for tracee %d after fork/vfork/clone pre-hook, got %v", parent.ID, tag)
		}
		parent.IsPreExit = false
	}

	if err := sv.tr.Resume(parent.ID, tracer.ModeContinue, 0); err != nil {
		return 0, fmt.Errorf("resume tracee %d toward its fork/vfork event: %w", parent.ID, err)
	}
	stoppedPid, _, tag, werr := sv.waitAny()
	if werr != nil {
		return 0, fmt.Errorf("await fork/vfork event or child signal-stop for tracee %d: %w", parent.ID, werr)
	}

	switch tag {
	case EventFork, EventVfork:
		msg, merr := sv.tr.GetEventMessage(stoppedPid)
		if merr != nil {
			return 0, fmt.Errorf("get fork event message for tracee %d: %w", stoppedPid, merr)
		}
		childPid = int(msg)
		sv.registry.PushAncestor(parent.ID)
		sv.registry.Insert(childPid)
		if _, ctag, cerr := sv.waitPid(childPid); cerr != nil {
			return 0, fmt.Errorf("await new child %d reaching traced state: %w", childPid, cerr)
		} else if ctag != EventSignalStop {
			return 0, fmt.Errorf("expected signal-stop from new child %d, got %v", childPid, ctag)
		}

	case EventSignalStop:
		childPid = stoppedPid
		parentEventPid, _, ptag, perr := sv.waitAny()
		if perr != nil {
			return 0, fmt.Errorf("await fork/vfork event for tracee %d: %w", parent.ID, perr)
		}
		if ptag != EventFork && ptag != EventVfork {
			return 0, fmt.Errorf("expected fork or vfork event for tracee %d after child %d signal-stop, got %v", parent.ID, childPid, ptag)
		}
		msg, merr := sv.tr.GetEventMessage(parentEventPid)
		if merr != nil {
			return 0, fmt.Errorf("get fork event message for tracee %d: %w", parentEventPid, merr)
		}
		if int(msg) != childPid {
			return 0, fmt.Errorf("fork event child id %d does not match observed signal-stop child id %d", int(msg), childPid)
		}
		sv.registry.PushAncestor(parent.ID)
		sv.registry.Insert(childPid)

	default:
		return 0, fmt.Errorf("kernel invariant violation: expected fork/vfork event or signal-stop after tracee %d's fork/vfork/clone pre-hook, got %v", parent.ID, tag)
	}

	if err := sv.tr.SetTraceOptions(childPid); err != nil {
		return 0, fmt.Errorf("set trace options on new child %d: %w", childPid, err)
	}
	return childPid, nil
}

// handleExit is spec.md 4.5: drop the exited tracee, pop the ancestor
// stack, and report whether the run is now over.
func (sv *Supervisor) handleExit(pid int) (nextResumeTarget int, terminal bool) {
	sv.registry.Remove(pid)
	parent, ok := sv.registry.PopAncestor()
	if !ok {
		return 0, true
	}
	return parent, false
}
