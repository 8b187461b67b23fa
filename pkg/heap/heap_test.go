package heap

import (
	"testing"
	"unsafe"

	"jscore/pkg/value"
)

// testCell is a minimal Cell for exercising the collector without pulling in
// pkg/object.
type testCell struct {
	Header
	children []*testCell
}

func (c *testCell) VisitChildren(v Visitor) {
	for _, child := range c.children {
		v.VisitCell(child)
	}
}

type testRoot struct {
	cells []*testCell
}

func (r *testRoot) VisitRoots(v Visitor) {
	for _, c := range r.cells {
		v.VisitCell(c)
	}
}

func newTestCell(h *Heap) *testCell {
	c := &testCell{}
	h.Track(c)
	return c
}

func TestTrackIncrementsLiveCount(t *testing.T) {
	h := New(nil, 1000)
	newTestCell(h)
	newTestCell(h)
	if h.LiveCount() != 2 {
		t.Errorf("LiveCount() = %d, want 2", h.LiveCount())
	}
}

func TestCollectSweepsUnreachableCells(t *testing.T) {
	h := New(nil, 1000)
	root := &testRoot{}
	h.AddRoot(root)

	kept := newTestCell(h)
	root.cells = append(root.cells, kept)
	_ = newTestCell(h) // unreachable, should be swept

	h.Collect()

	if h.LiveCount() != 1 {
		t.Errorf("LiveCount() after collect = %d, want 1", h.LiveCount())
	}
}

func TestCollectKeepsReachableChain(t *testing.T) {
	h := New(nil, 1000)
	root := &testRoot{}
	h.AddRoot(root)

	grandchild := newTestCell(h)
	child := newTestCell(h)
	child.children = []*testCell{grandchild}
	root.cells = append(root.cells, child)

	h.Collect()

	if h.LiveCount() != 2 {
		t.Errorf("LiveCount() after collect = %d, want 2 (child + grandchild)", h.LiveCount())
	}
}

func TestCollectIsRepeatable(t *testing.T) {
	h := New(nil, 1000)
	root := &testRoot{}
	h.AddRoot(root)

	kept := newTestCell(h)
	root.cells = append(root.cells, kept)

	h.Collect()
	h.Collect()

	if h.LiveCount() != 1 {
		t.Errorf("LiveCount() after second collect = %d, want 1", h.LiveCount())
	}
}

func TestDeferGCSuppressesAutomaticCollection(t *testing.T) {
	h := New(nil, 2)
	root := &testRoot{}
	h.AddRoot(root)

	release := h.DeferGC()
	newTestCell(h)
	newTestCell(h)
	newTestCell(h) // would normally trigger Collect at threshold 2

	if h.LiveCount() != 3 {
		t.Errorf("LiveCount() while deferred = %d, want 3 (no automatic collect)", h.LiveCount())
	}

	release()
	h.Collect()
	if h.LiveCount() != 0 {
		t.Errorf("LiveCount() after release+collect = %d, want 0 (nothing rooted)", h.LiveCount())
	}
}

func TestDeferGCNestsSafely(t *testing.T) {
	h := New(nil, 1000)
	release1 := h.DeferGC()
	release2 := h.DeferGC()
	release1()
	h.Collect() // still deferred, should be a no-op
	release2()
	h.Collect() // now live
}

func TestAutomaticCollectionAtThreshold(t *testing.T) {
	h := New(nil, 3)
	root := &testRoot{}
	h.AddRoot(root)

	for i := 0; i < 5; i++ {
		newTestCell(h) // none rooted; the 3rd Track reaches the threshold and sweeps the first 3
	}

	if h.LiveCount() != 2 {
		t.Errorf("LiveCount() = %d, want 2 (cells 4 and 5 arrive after the automatic collection)", h.LiveCount())
	}
}

func TestNewDefaultsThreshold(t *testing.T) {
	h := New(nil, 0)
	if h.threshold != defaultThreshold {
		t.Errorf("threshold = %d, want default %d", h.threshold, defaultThreshold)
	}
}

func TestMarkVisitorIgnoresNonObjectValues(t *testing.T) {
	h := New(nil, 1000)
	root := &testRoot{}
	h.AddRoot(root)

	// VisitValue only unwraps TypeObject values into cells; numbers, strings
	// and undefined carry no heap.Cell and must be skipped without unwrapping.
	marker := &markVisitor{}
	marker.VisitValue(value.Number(42))
	marker.VisitValue(value.String("x"))
	marker.VisitValue(value.Undefined)
	// no panic, no crash: non-object values are simply ignored
}

func TestRegisterObjectUnwrapperRoundTrip(t *testing.T) {
	h := New(nil, 1000)
	root := &testRoot{}
	h.AddRoot(root)

	wrapped := newTestCell(h)
	v := value.FromObjectPtr(unsafe.Pointer(wrapped))

	prevUnwrapper := objectFromValue
	defer func() { objectFromValue = prevUnwrapper }()
	RegisterObjectUnwrapper(func(val value.Value) (Cell, bool) {
		if val.Type() != value.TypeObject {
			return nil, false
		}
		return (*testCell)(val.ObjPtr()), true
	})

	marker := &markVisitor{}
	marker.VisitValue(v)
	if !wrapped.header().marked {
		t.Errorf("expected cell reached through a Value to be marked")
	}
}
