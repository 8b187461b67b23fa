// Package heap implements a tracing mark-sweep garbage collector for the
// runtime's cells (objects, shapes and environments), tracked via an
// intrusive live-cell list and an explicit root-set protocol rather than
// relying on Go's own collector to model JS object lifetime. Strings,
// bigints and symbols are not cells: pkg/value allocates them as plain Go
// structs, and Go's collector reclaims them.
package heap

import (
	"jscore/internal/rtlog"
	"jscore/pkg/value"
)

// Cell is implemented by every heap-tracked type: object.Object,
// shape.Shape and interpreter.Environment. VisitChildren must report
// every Value and every other Cell this cell strongly references, so the
// collector can trace reachability from the root set.
type Cell interface {
	VisitChildren(v Visitor)
	header() *cellHeader
}

// Visitor is passed to VisitChildren; implementations mark or otherwise
// process whatever is reported.
type Visitor interface {
	VisitValue(value.Value)
	VisitCell(Cell)
}

// cellHeader is embedded in every concrete Cell implementation. It carries
// the intrusive doubly-linked-list pointers the Heap uses to enumerate and
// unlink live cells in O(1) during sweep, plus the mark bit.
type cellHeader struct {
	next, prev Cell
	marked     bool
}

// Header returns the embeddable header. Concrete cell types embed
// heap.Header and forward header() to it, satisfying the Cell interface's
// unexported method (which keeps Cell from being implementable outside this
// module's own packages by accident).
type Header struct {
	cellHeader
}

func (h *Header) header() *cellHeader { return &h.cellHeader }

// Root is implemented by anything the interpreter wants scanned as a GC
// root: the global object, the call-frame stack, pinned temporaries.
type Root interface {
	VisitRoots(v Visitor)
}

// Heap owns every live cell via an intrusive doubly-linked list anchored at
// head. Allocation appends; sweep walks the whole list once, unlinking dead
// cells without needing a separate index.
type Heap struct {
	head      Cell
	tail      Cell
	count     int
	allocated int
	threshold int
	roots     []Root
	deferGC   int
	log       *rtlog.Logger
}

const defaultThreshold = 4096

// New creates an empty heap. threshold, if non-zero, overrides the default
// allocation-count trigger for collection (see JSCORE_GC_THRESHOLD).
func New(log *rtlog.Logger, threshold int) *Heap {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Heap{threshold: threshold, log: log}
}

// AddRoot registers a root scanner. Typically called once, at startup, by
// the interpreter with itself and the global object.
func (h *Heap) AddRoot(r Root) {
	h.roots = append(h.roots, r)
}

// SetThreshold overrides the allocation-count trigger for collection after
// construction -- used by the CLI's -g/--gc-on-every-allocation flag, which
// sets it to 1 so every Track call sweeps.
func (h *Heap) SetThreshold(n int) {
	if n <= 0 {
		n = defaultThreshold
	}
	h.threshold = n
}

// Track registers a freshly allocated cell with the heap, appending it to
// the live list. Every constructor in pkg/object/pkg/shape/pkg/value that
// allocates a heap cell must call this immediately.
func (h *Heap) Track(c Cell) {
	hdr := c.header()
	hdr.prev = h.tail
	hdr.next = nil
	if h.tail != nil {
		h.tail.header().next = c
	} else {
		h.head = c
	}
	h.tail = c
	h.count++
	h.allocated++
	if h.allocated >= h.threshold {
		h.Collect()
	}
}

// DeferGC returns a function that, when called, re-enables collection. While
// deferred, Track never triggers an automatic Collect -- used by Shape's
// property-table materialisation, which walks a chain of shapes and must not
// have any of them swept out from under it mid-walk.
func (h *Heap) DeferGC() func() {
	h.deferGC++
	return func() {
		if h.deferGC > 0 {
			h.deferGC--
		}
	}
}

// Collect runs a full stop-the-world mark-sweep cycle. It is a no-op while
// GC is deferred.
func (h *Heap) Collect() {
	if h.deferGC > 0 {
		return
	}
	marker := &markVisitor{}
	for _, r := range h.roots {
		r.VisitRoots(marker)
	}
	swept := h.sweep()
	if h.log != nil {
		h.log.Debug().Int("swept", swept).Int("live", h.count).Log("gc cycle complete")
	}
	h.allocated = 0
}

type markVisitor struct{}

func (m *markVisitor) VisitValue(v value.Value) {
	if v.Type() != value.TypeObject {
		return
	}
	if c, ok := objectFromValue(v); ok {
		m.VisitCell(c)
	}
}

func (m *markVisitor) VisitCell(c Cell) {
	if c == nil {
		return
	}
	hdr := c.header()
	if hdr.marked {
		return
	}
	hdr.marked = true
	c.VisitChildren(m)
}

// objectFromValue is filled in by pkg/object via RegisterObjectUnwrapper, so
// that this package can mark through object Values without importing
// pkg/object (which itself imports pkg/heap).
var objectFromValue = func(value.Value) (Cell, bool) { return nil, false }

// RegisterObjectUnwrapper lets pkg/object install the unsafe-pointer cast
// back from a value.Value to the Cell it wraps, once, at package init.
func RegisterObjectUnwrapper(f func(value.Value) (Cell, bool)) {
	objectFromValue = f
}

func (h *Heap) sweep() int {
	swept := 0
	cur := h.head
	for cur != nil {
		hdr := cur.header()
		next := hdr.next
		if !hdr.marked {
			h.unlink(cur)
			swept++
		} else {
			hdr.marked = false
		}
		cur = next
	}
	return swept
}

func (h *Heap) unlink(c Cell) {
	hdr := c.header()
	if hdr.prev != nil {
		hdr.prev.header().next = hdr.next
	} else {
		h.head = hdr.next
	}
	if hdr.next != nil {
		hdr.next.header().prev = hdr.prev
	} else {
		h.tail = hdr.prev
	}
	h.count--
}

// LiveCount returns the number of cells currently tracked by the heap.
func (h *Heap) LiveCount() int { return h.count }
