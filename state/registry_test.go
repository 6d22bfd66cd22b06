package state

import "testing"

func TestRegistryInsertGetRemove(t *testing.T) {
	r := NewRegistry()
	s := r.Insert(100)
	if s.ID != 100 {
		t.Fatalf("expected ID 100, got %d", s.ID)
	}
	got, ok := r.Get(100)
	if !ok || got != s {
		t.Fatalf("expected to get back the same State for 100")
	}
	if r.Len() != 1 {
		t.Fatalf("expected Len 1, got %d", r.Len())
	}
	r.Remove(100)
	if _, ok := r.Get(100); ok {
		t.Fatal("expected 100 to be gone after Remove")
	}
	if r.Len() != 0 {
		t.Fatalf("expected Len 0, got %d", r.Len())
	}
}

func TestRegistryAncestorStackLIFO(t *testing.T) {
	r := NewRegistry()
	r.PushAncestor(1)
	r.PushAncestor(2)
	r.PushAncestor(3)
	if r.AncestorDepth() != 3 {
		t.Fatalf("expected depth 3, got %d", r.AncestorDepth())
	}

	for _, want := range []int{3, 2, 1} {
		got, ok := r.PopAncestor()
		if !ok {
			t.Fatalf("expected an ancestor, stack was empty")
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	if _, ok := r.PopAncestor(); ok {
		t.Fatal("expected PopAncestor on empty stack to report false")
	}
}

func TestStateTick(t *testing.T) {
	s := New(42)
	for i := uint64(1); i <= 3; i++ {
		if got := s.Tick(); got != i {
			t.Fatalf("expected logical time %d, got %d", i, got)
		}
	}
	if s.LogicalTime != 3 {
		t.Fatalf("expected LogicalTime 3, got %d", s.LogicalTime)
	}
}

func TestStateSignalSlotOverwrite(t *testing.T) {
	s := New(1)
	s.SignalToDeliver = 2 // SIGINT
	s.SignalToDeliver = 15 // SIGTERM overwrites, no queueing
	if s.SignalToDeliver != 15 {
		t.Fatalf("expected overwritten signal 15, got %d", s.SignalToDeliver)
	}
}
