package shape

import (
	"testing"

	"jscore/internal/rtlog"
	"jscore/pkg/heap"
	"jscore/pkg/value"
)

func newTestHeap() *heap.Heap { return heap.New(nil, 100000) }
func noopLog() *rtlog.Logger  { return nil }

func dataAttrs() PropertyAttributes {
	return PropertyAttributes{Writable: true, Enumerable: true, Configurable: true}
}

func TestRootShapeHasNoProperties(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	if root.PropertyCount() != 0 {
		t.Errorf("PropertyCount() = %d, want 0", root.PropertyCount())
	}
	if !root.Prototype().IsNull() {
		t.Errorf("expected root prototype to be Null")
	}
}

func TestTransitionAddsProperty(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())
	if s1 == root {
		t.Errorf("expected a new shape after first property, got the same shape")
	}
	if s1.PropertyCount() != 1 {
		t.Errorf("PropertyCount() = %d, want 1", s1.PropertyCount())
	}
}

func TestTransitionIsMemoized(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())
	s2 := root.Transition(h, noopLog(), "a", dataAttrs())
	if s1 != s2 {
		t.Errorf("expected identical shape for the same transition, got different shapes")
	}
}

func TestDifferentPropertiesDiverge(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	sa := root.Transition(h, noopLog(), "a", dataAttrs())
	sb := root.Transition(h, noopLog(), "b", dataAttrs())
	if sa == sb {
		t.Errorf("expected distinct shapes for distinct properties")
	}
}

func TestPropertyTableReflectsChain(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())
	s2 := s1.Transition(h, noopLog(), "b", dataAttrs())

	table := s2.EnsurePropertyTable(h)
	if len(table) != 2 {
		t.Fatalf("len(table) = %d, want 2", len(table))
	}
	a, ok := table["a"]
	if !ok || a.Offset != 0 {
		t.Errorf("table[a] = %+v, want offset 0", a)
	}
	b, ok := table["b"]
	if !ok || b.Offset != 1 {
		t.Errorf("table[b] = %+v, want offset 1", b)
	}
}

func TestDeleteTailPropertyReusesParentShape(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())
	s2 := s1.Transition(h, noopLog(), "b", dataAttrs())

	back := s2.Delete(h, noopLog(), "b")
	if back != s1 {
		t.Errorf("expected deleting the tail property to return to the parent shape")
	}
}

func TestDeleteNonTailPropertyEscapesToUnique(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())
	s2 := s1.Transition(h, noopLog(), "b", dataAttrs())

	unique := s2.Delete(h, noopLog(), "a")
	if !unique.IsUnique() {
		t.Errorf("expected deleting a non-tail property to produce a unique shape")
	}
	table := unique.EnsurePropertyTable(h)
	if _, ok := table["a"]; ok {
		t.Errorf("expected 'a' to be absent after delete")
	}
	if _, ok := table["b"]; !ok {
		t.Errorf("expected 'b' to survive the delete")
	}
}

func TestDeleteCompactsLaterOffsets(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "x", dataAttrs())
	s2 := s1.Transition(h, noopLog(), "y", dataAttrs())
	s3 := s2.Transition(h, noopLog(), "z", dataAttrs())

	unique := s3.Delete(h, noopLog(), "x")
	table := unique.EnsurePropertyTable(h)
	y, ok := table["y"]
	if !ok || y.Offset != 0 {
		t.Errorf("table[y] = %+v, want offset 0 after deleting x", y)
	}
	z, ok := table["z"]
	if !ok || z.Offset != 1 {
		t.Errorf("table[z] = %+v, want offset 1 after deleting x", z)
	}
	if unique.NextSlot() != 2 {
		t.Errorf("NextSlot() = %d, want 2 after deleting one of three properties", unique.NextSlot())
	}
}

func TestUniqueShapeMutationsNeverRejoinTree(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())
	s2 := s1.Transition(h, noopLog(), "b", dataAttrs())
	unique := s2.Delete(h, noopLog(), "a")

	further := unique.Transition(h, noopLog(), "c", dataAttrs())
	if !further.IsUnique() {
		t.Errorf("expected a transition from a unique shape to remain unique")
	}

	// A fresh, non-unique path through the ordinary tree for the same names
	// must not collide with the unique branch.
	ordinary := root.Transition(h, noopLog(), "a", dataAttrs()).Transition(h, noopLog(), "b", dataAttrs())
	if ordinary == unique {
		t.Errorf("unique shape must not be reachable through ordinary transitions")
	}
}

func TestReconfigurePreservesOffset(t *testing.T) {
	h := newTestHeap()
	root := New(h, value.Null)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())
	readOnly := PropertyAttributes{Writable: false, Enumerable: true, Configurable: true}
	s2 := s1.Reconfigure(h, noopLog(), "a", readOnly)

	table := s2.EnsurePropertyTable(h)
	meta, ok := table["a"]
	if !ok {
		t.Fatalf("expected 'a' to still be present after reconfigure")
	}
	if meta.Offset != 0 {
		t.Errorf("Offset = %d, want 0 (unchanged by reconfigure)", meta.Offset)
	}
	if meta.Attributes.Writable {
		t.Errorf("expected reconfigured property to be non-writable")
	}
}

func TestWithPrototypeChangesPrototypeOnly(t *testing.T) {
	h := newTestHeap()
	proto1 := value.String("proto1")
	proto2 := value.String("proto2")
	root := New(h, proto1)
	s1 := root.Transition(h, noopLog(), "a", dataAttrs())

	s2 := s1.WithPrototype(h, proto2)
	if !s2.Prototype().StrictlyEquals(proto2) {
		t.Errorf("expected new prototype to take effect")
	}
	if s2.PropertyCount() != s1.PropertyCount() {
		t.Errorf("expected property count unchanged by a prototype transition")
	}
}
