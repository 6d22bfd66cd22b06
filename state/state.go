// Package state holds the per-tracee bookkeeping the supervisor needs
// across a run: logical time, the single pending-signal slot, the
// pre-exit drain flag legacy kernels need, and the registry of live
// tracees plus the ancestor stack the fork protocol maintains. Grounded on
// original_source/src/execution.cpp's state struct, states map, and
// processHier stack — the richest multi-tracee model in the retrieved
// corpus.
package state

import "github.com/criyle/go-dettrace/tracer"

// Handler is the opaque per-syscall contract the supervisor calls into. It
// is the module boundary spec.md calls out as "referenced only by
// interface" — the ~40 concrete handlers that implement determinism policy
// live outside this core.
type Handler interface {
	// PreHook runs at syscall-entry. It reports whether the supervisor
	// should also arm a post-hook stop for this syscall.
	PreHook(s *State, t *tracer.Tracer) bool
	// PostHook runs at syscall-exit whenever the supervisor armed a
	// post-hook stop: when PreHook returned true, and also on legacy
	// kernels or at AlwaysPostHookDebugLevel and above, whatever PreHook
	// returned.
	PostHook(s *State, t *tracer.Tracer)
}

// State is the per-tracee record the supervisor threads through every
// event it handles for one tid.
type State struct {
	// ID is the tracee's pid/tid, stable for its lifetime.
	ID int

	// LogicalTime counts intercepted syscalls for this tracee. Handlers
	// that need to make time-returning syscalls deterministic (e.g.
	// clock_gettime) derive their answer from this counter instead of the
	// wall clock.
	LogicalTime uint64

	// SignalToDeliver is the single-slot pending signal: at most one
	// signal is remembered between successive resumes. A second signal
	// arriving before the first is delivered overwrites it — the
	// supervisor never queues.
	SignalToDeliver int

	// IsPreExit marks a tracee whose next syscall-trap stop is the extra
	// drain stop pre-4.8 kernels insert between a seccomp pre-hook and the
	// real syscall-exit stop. Set at pre-hook time; cleared once that drain
	// stop is consumed.
	IsPreExit bool

	// CurrentSyscall is the handler dispatched for the syscall currently
	// in flight for this tracee, set at pre-hook time and consulted again
	// at post-hook time.
	CurrentSyscall Handler
}

// New creates a State for a newly observed tracee.
func New(id int) *State {
	return &State{ID: id}
}

// Tick advances logical time by one and returns the new value.
func (s *State) Tick() uint64 {
	s.LogicalTime++
	return s.LogicalTime
}
