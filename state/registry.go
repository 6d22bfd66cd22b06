package state

import "fmt"

// Registry tracks every live tracee's State and the ancestor stack the
// fork reconciler and handleExit use to decide which tracee runs next.
// Grounded on execution.cpp's states map<pid_t, state> and its
// processHier stack<pid_t>.
type Registry struct {
	states    map[int]*State
	ancestors []int // LIFO: last-pushed parent runs next when its child exits
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[int]*State)}
}

// Insert creates and stores a new State for id, overwriting any previous
// entry (a pid can only be reused by the kernel after the prior tracee
// with that pid has been Removed).
func (r *Registry) Insert(id int) *State {
	s := New(id)
	r.states[id] = s
	return s
}

// Get looks up the State for id.
func (r *Registry) Get(id int) (*State, bool) {
	s, ok := r.states[id]
	return s, ok
}

// Remove drops id's State. Called once a tracee has been reaped.
func (r *Registry) Remove(id int) {
	delete(r.states, id)
}

// Len reports how many tracees are currently registered.
func (r *Registry) Len() int {
	return len(r.states)
}

// PushAncestor records parent as waiting for a child it just spawned to
// run to completion first.
func (r *Registry) PushAncestor(parent int) {
	r.ancestors = append(r.ancestors, parent)
}

// PopAncestor removes and returns the most recently pushed ancestor. The
// second return value is false when the stack is empty, meaning the run
// is over: the tracee that just exited had no parent left to resume.
func (r *Registry) PopAncestor() (int, bool) {
	if len(r.ancestors) == 0 {
		return 0, false
	}
	last := len(r.ancestors) - 1
	parent := r.ancestors[last]
	r.ancestors = r.ancestors[:last]
	return parent, true
}

// AncestorDepth reports how many ancestors are currently waiting. Used by
// tests asserting the scenarios in spec.md section 8.
func (r *Registry) AncestorDepth() int {
	return len(r.ancestors)
}

func (r *Registry) String() string {
	return fmt.Sprintf("Registry{tracees=%d, ancestors=%d}", len(r.states), len(r.ancestors))
}
