// Package shape implements the hidden-class transition tree that gives
// objects O(1) property access: a DAG of Shape nodes, each naming one
// additional property relative to its parent, with lazy materialisation of
// the full name->offset table and a unique-shape escape hatch for mutations
// that can't be expressed as a forward transition (deleting a non-tail
// property, reconfiguring attributes).
package shape

import (
	"sync"

	"jscore/internal/rtlog"
	"jscore/pkg/heap"
	"jscore/pkg/value"
)

// TransitionType distinguishes the kind of structural change a child Shape
// represents relative to its parent: a property addition, an attribute
// change, a prototype swap, or a deletion.
type TransitionType uint8

const (
	TransitionPut TransitionType = iota
	TransitionConfigure
	TransitionPrototype
	TransitionDelete
)

// PropertyAttributes are the standard ECMAScript property flags, plus
// IsAccessor to distinguish data properties from accessor pairs.
type PropertyAttributes struct {
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

// PropertyMetadata is what the lazily-built property table maps a name to:
// where it lives in the owning Object's slot vector, and under what
// attributes.
type PropertyMetadata struct {
	Offset     int
	Attributes PropertyAttributes
}

type transitionKey struct {
	name           string
	transitionType TransitionType
	attributes     PropertyAttributes
}

// Shape is a node in the transition DAG. Each Shape (other than a root)
// names exactly one additional property relative to its previous Shape;
// property tables are derived by replaying the chain from root to leaf, and
// cached lazily since most shapes are never queried for their full table,
// only walked for a single property append.
type Shape struct {
	heap.Header

	previous       *Shape
	propertyName   string
	attributes     PropertyAttributes
	prototype      value.Value
	transitionType TransitionType
	unique         bool

	mu                 sync.RWMutex
	forwardTransitions map[transitionKey]*Shape

	tableMu       sync.Mutex
	propertyTable map[string]PropertyMetadata
	propertyCount int
	slotCount     int
}

// New creates a root shape with no own properties, for objects whose
// prototype is proto (which may be value.Null for Object.prototype itself).
func New(h *heap.Heap, proto value.Value) *Shape {
	s := &Shape{prototype: proto}
	h.Track(s)
	return s
}

// VisitChildren reports the prototype value and the parent shape, so the
// whole chain a live object's shape participates in stays reachable.
func (s *Shape) VisitChildren(v heap.Visitor) {
	v.VisitValue(s.prototype)
	if s.previous != nil {
		v.VisitCell(s.previous)
	}
}

// Prototype returns the prototype Value every object of this shape inherits
// from, absent an own override.
func (s *Shape) Prototype() value.Value { return s.prototype }

// IsUnique reports whether this shape escaped the transition tree: further
// mutations from a unique shape always allocate a fresh unique shape rather
// than registering into any shared forwardTransitions map.
func (s *Shape) IsUnique() bool { return s.unique }

// PropertyCount returns the number of own properties this shape describes.
func (s *Shape) PropertyCount() int { return s.propertyCount }

// NextSlot returns the slot index an Object carrying this shape must append
// to when transitioning to a new property. It tracks PropertyCount exactly
// once a shape has gone unique: deleting a property compacts both the
// table's offsets and the owning Object's slot vector, so there are never
// holes to skip over.
func (s *Shape) NextSlot() int { return s.slotCount }

// ChainLength walks to the root, for diagnostics only.
func (s *Shape) ChainLength() int {
	n := 0
	for cur := s; cur != nil; cur = cur.previous {
		n++
	}
	return n
}

// Transition returns the child shape representing the addition of the named
// property with the given attributes, creating and registering it if this
// is the first time that exact transition has been requested from s. This
// is the hot path: repeated construction of objects via the same sequence
// of property assignments collapses onto the same shape chain.
func (s *Shape) Transition(h *heap.Heap, log *rtlog.Logger, name string, attrs PropertyAttributes) *Shape {
	if s.unique {
		return s.appendUnique(h, name, attrs)
	}

	key := transitionKey{name: name, transitionType: TransitionPut, attributes: attrs}

	s.mu.RLock()
	if s.forwardTransitions != nil {
		if next, ok := s.forwardTransitions[key]; ok {
			s.mu.RUnlock()
			log.Trace().Str("property", name).Log("shape transition cache hit")
			return next
		}
	}
	s.mu.RUnlock()

	next := &Shape{
		previous:       s,
		propertyName:   name,
		attributes:     attrs,
		prototype:      s.prototype,
		transitionType: TransitionPut,
		propertyCount:  s.propertyCount + 1,
		slotCount:      s.slotCount + 1,
	}

	s.mu.Lock()
	if s.forwardTransitions == nil {
		s.forwardTransitions = make(map[transitionKey]*Shape)
	}
	if existing, ok := s.forwardTransitions[key]; ok {
		s.mu.Unlock()
		return existing
	}
	s.forwardTransitions[key] = next
	s.mu.Unlock()

	h.Track(next)
	log.Trace().Str("property", name).Int("chain", next.ChainLength()).Log("shape transition created")
	return next
}

// Reconfigure returns a child shape with the attributes of an existing
// property changed (writable/enumerable/configurable, or converting to/from
// an accessor), via a Configure transition. The property's offset is
// unaffected -- only flags change.
func (s *Shape) Reconfigure(h *heap.Heap, log *rtlog.Logger, name string, attrs PropertyAttributes) *Shape {
	if s.unique {
		return s.reconfigureUnique(h, name, attrs)
	}

	key := transitionKey{name: name, transitionType: TransitionConfigure, attributes: attrs}
	s.mu.RLock()
	if s.forwardTransitions != nil {
		if next, ok := s.forwardTransitions[key]; ok {
			s.mu.RUnlock()
			return next
		}
	}
	s.mu.RUnlock()

	next := &Shape{
		previous:       s,
		propertyName:   name,
		attributes:     attrs,
		prototype:      s.prototype,
		transitionType: TransitionConfigure,
		propertyCount:  s.propertyCount,
		slotCount:      s.slotCount,
	}
	s.mu.Lock()
	if s.forwardTransitions == nil {
		s.forwardTransitions = make(map[transitionKey]*Shape)
	}
	if existing, ok := s.forwardTransitions[key]; ok {
		s.mu.Unlock()
		return existing
	}
	s.forwardTransitions[key] = next
	s.mu.Unlock()

	h.Track(next)
	log.Trace().Str("property", name).Log("shape reconfigure transition created")
	return next
}

// WithPrototype returns a child shape identical to s except for its
// prototype, via a Prototype transition. Rare in practice (setting
// __proto__ or Object.setPrototypeOf after construction), so it is not
// registered in forwardTransitions -- a fresh node is allocated every time
// rather than memoized.
func (s *Shape) WithPrototype(h *heap.Heap, proto value.Value) *Shape {
	next := &Shape{
		previous:       s,
		prototype:      proto,
		transitionType: TransitionPrototype,
		propertyCount:  s.propertyCount,
		slotCount:      s.slotCount,
		unique:         s.unique,
	}
	h.Track(next)
	return next
}

// Delete returns a shape with the named property removed. If name is the
// property most recently added (the tail of the chain), this is another
// forward transition -- the result is the parent shape, the one the
// property was added to, and can be shared. Deleting
// anything else escapes to a unique shape, since a transition DAG can't
// express "remove a property in the middle" as a reusable transition: every
// object with a hole at a different offset is, by definition, a different
// hidden class.
func (s *Shape) Delete(h *heap.Heap, log *rtlog.Logger, name string) *Shape {
	if s.unique {
		return s.deleteUnique(h, name)
	}
	if s.propertyName == name && s.previous != nil && s.transitionType == TransitionPut {
		log.Trace().Str("property", name).Log("shape delete via tail transition")
		return s.previous
	}
	log.Debug().Str("property", name).Log("shape delete escapes to unique shape")
	return s.makeUnique(h).Delete(h, log, name)
}

// EnsurePropertyTable returns the full name->offset/attributes table for
// this shape, building it on first use by replaying the chain from root to
// leaf. Building must happen under a GC-safety guard (DeferGC), since the
// walk follows raw *Shape pointers up the chain and a GC mid-walk could
// otherwise collect a shape only reachable from this call stack.
func (s *Shape) EnsurePropertyTable(h *heap.Heap) map[string]PropertyMetadata {
	s.tableMu.Lock()
	defer s.tableMu.Unlock()
	if s.propertyTable != nil {
		return s.propertyTable
	}

	release := h.DeferGC()
	defer release()

	chain := make([]*Shape, 0, s.ChainLength())
	for cur := s; cur != nil; cur = cur.previous {
		chain = append(chain, cur)
	}

	table := make(map[string]PropertyMetadata, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		node := chain[i]
		if node.previous == nil {
			continue // root carries no property of its own
		}
		switch node.transitionType {
		case TransitionPut:
			table[node.propertyName] = PropertyMetadata{
				Offset:     node.slotCount - 1,
				Attributes: node.attributes,
			}
		case TransitionConfigure:
			if existing, ok := table[node.propertyName]; ok {
				table[node.propertyName] = PropertyMetadata{Offset: existing.Offset, Attributes: node.attributes}
			}
		case TransitionDelete:
			delete(table, node.propertyName)
		}
	}
	s.propertyTable = table
	return table
}

func (s *Shape) appendUnique(h *heap.Heap, name string, attrs PropertyAttributes) *Shape {
	table := s.EnsurePropertyTable(h)
	next := &Shape{
		previous:       s,
		propertyName:   name,
		attributes:     attrs,
		prototype:      s.prototype,
		transitionType: TransitionPut,
		unique:         true,
		propertyCount:  s.propertyCount + 1,
		slotCount:      s.slotCount + 1,
	}
	newTable := make(map[string]PropertyMetadata, len(table)+1)
	for k, v := range table {
		newTable[k] = v
	}
	newTable[name] = PropertyMetadata{Offset: s.slotCount, Attributes: attrs}
	next.propertyTable = newTable
	h.Track(next)
	return next
}

func (s *Shape) reconfigureUnique(h *heap.Heap, name string, attrs PropertyAttributes) *Shape {
	table := s.EnsurePropertyTable(h)
	existing, ok := table[name]
	offset := s.slotCount
	if ok {
		// Preserve the property's existing slot; only attributes change.
		offset = existing.Offset
	}
	next := &Shape{
		previous:       s,
		propertyName:   name,
		attributes:     attrs,
		prototype:      s.prototype,
		transitionType: TransitionConfigure,
		unique:         true,
		propertyCount:  s.propertyCount,
		slotCount:      s.slotCount,
	}
	newTable := make(map[string]PropertyMetadata, len(table))
	for k, v := range table {
		newTable[k] = v
	}
	newTable[name] = PropertyMetadata{Offset: offset, Attributes: attrs}
	next.propertyTable = newTable
	h.Track(next)
	return next
}

// deleteUnique removes name from a unique shape's table and, per the
// delete-compaction invariant, decrements the offset of every remaining
// property that sat above the removed one -- the companion Object is
// expected to compact its slot vector the same way (removing the one slot
// at the deleted offset), so the two stay in lockstep without a separate
// "old offset -> new offset" map being threaded through the call.
func (s *Shape) deleteUnique(h *heap.Heap, name string) *Shape {
	table := s.EnsurePropertyTable(h)
	removed, ok := table[name]
	next := &Shape{
		previous:       s,
		propertyName:   name,
		prototype:      s.prototype,
		transitionType: TransitionDelete,
		unique:         true,
		propertyCount:  s.propertyCount - 1,
		slotCount:      s.slotCount,
	}
	if ok {
		next.slotCount = s.slotCount - 1
	}
	newTable := make(map[string]PropertyMetadata, len(table))
	for k, v := range table {
		if k == name {
			continue
		}
		if ok && v.Offset > removed.Offset {
			v.Offset--
		}
		newTable[k] = v
	}
	next.propertyTable = newTable
	h.Track(next)
	return next
}

// makeUnique escapes s into an equivalent unique shape: same properties,
// same offsets, but no longer registered in any parent's forwardTransitions,
// so future mutations from here never collide with siblings that took the
// ordinary transition path.
func (s *Shape) makeUnique(h *heap.Heap) *Shape {
	table := s.EnsurePropertyTable(h)
	next := &Shape{
		previous:       s.previous,
		propertyName:   s.propertyName,
		attributes:     s.attributes,
		prototype:      s.prototype,
		transitionType: s.transitionType,
		unique:         true,
		propertyCount:  s.propertyCount,
		slotCount:      s.slotCount,
	}
	newTable := make(map[string]PropertyMetadata, len(table))
	for k, v := range table {
		newTable[k] = v
	}
	next.propertyTable = newTable
	h.Track(next)
	return next
}
