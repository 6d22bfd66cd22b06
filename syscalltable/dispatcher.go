// Package syscalltable maps a syscall number to the state.Handler that
// runs its pre/post hooks. Grounded on ptracer/tracer.go's Handler
// interface shape and on execution.cpp's getSystemCall switch — which
// spec.md confirms is out of scope to reimplement in full ("referenced
// only by interface"). The handlers registered here are illustrative: a
// handful of syscalls that exercise the dispatcher contract and the
// logical-time idiom spec.md's Design Notes describe, not the ~40-entry
// determinism catalog.
package syscalltable

import "fmt"

// NewHandlerFunc constructs a fresh handler instance for one syscall
// number/name pair. A fresh instance per pre-hook call keeps handlers free
// of cross-call state leaking between unrelated tracees.
type NewHandlerFunc func() Handler

// Dispatcher looks up the handler constructor registered for a syscall
// number.
type Dispatcher struct {
	ctor map[int]NewHandlerFunc
	name map[int]string
}

// New returns a Dispatcher pre-populated with the module's illustrative
// handler set.
func New() *Dispatcher {
	d := &Dispatcher{
		ctor: make(map[int]NewHandlerFunc),
		name: make(map[int]string),
	}
	registerDefaults(d)
	return d
}

// Register adds or replaces the handler constructor for a syscall number.
func (d *Dispatcher) Register(number int, name string, ctor NewHandlerFunc) {
	d.ctor[number] = ctor
	d.name[number] = name
}

// Dispatch constructs the handler for number. It is the only error the
// syscall dispatcher contract defines: an unregistered syscall number is
// always a dispatch failure, never a silent default.
func (d *Dispatcher) Dispatch(number int) (Handler, error) {
	ctor, ok := d.ctor[number]
	if !ok {
		return nil, fmt.Errorf("no handler registered for syscall %d", number)
	}
	return ctor(), nil
}

// Name returns the human-readable name registered for number, if any.
func (d *Dispatcher) Name(number int) (string, bool) {
	n, ok := d.name[number]
	return n, ok
}
