// Package object implements the runtime Object: a Shape plus a slot vector,
// an indexed-property side table for array-like access, and a kind tag used
// for polymorphic dispatch across the built-in subkinds (Array, Function,
// Error, Date, RegExp, wrapper objects, Proxy, and the Global object).
package object

import (
	"sort"
	"unsafe"

	"jscore/internal/rtlog"
	"jscore/pkg/heap"
	"jscore/pkg/parser"
	"jscore/pkg/shape"
	"jscore/pkg/value"
)

// Kind enumerates the built-in object subkinds this runtime supports.
type Kind uint8

const (
	KindPlain Kind = iota
	KindArray
	KindFunction
	KindNativeFunction
	KindBoundFunction
	KindError
	KindDate
	KindRegExp
	KindStringWrapper
	KindNumberWrapper
	KindBigIntWrapper
	KindBooleanWrapper
	KindSymbolWrapper
	KindProxy
	KindGlobal
	KindConsole
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "Object"
	case KindArray:
		return "Array"
	case KindFunction:
		return "Function"
	case KindNativeFunction:
		return "NativeFunction"
	case KindBoundFunction:
		return "BoundFunction"
	case KindError:
		return "Error"
	case KindDate:
		return "Date"
	case KindRegExp:
		return "RegExp"
	case KindStringWrapper:
		return "String"
	case KindNumberWrapper:
		return "Number"
	case KindBigIntWrapper:
		return "BigInt"
	case KindBooleanWrapper:
		return "Boolean"
	case KindSymbolWrapper:
		return "Symbol"
	case KindProxy:
		return "Proxy"
	case KindGlobal:
		return "global"
	case KindConsole:
		return "console"
	default:
		return "Object"
	}
}

// Context is the capability surface a native function needs from its host:
// heap access for allocation, the current call's "this"/arguments, and the
// ability to throw or to invoke another callable. pkg/object declares it
// rather than importing pkg/interpreter (which itself imports pkg/object)
// so that the Interpreter can satisfy it implicitly -- the same
// accept-an-interface pattern BoundTo/Closure already use to reference the
// interpreter's types without creating a package cycle.
type Context interface {
	Heap() *heap.Heap
	Argument(i int) value.Value
	ArgumentCount() int
	This() value.Value
	Global() *Object
	Throw(kind, message string) error
	Call(fn value.Value, this value.Value, args []value.Value) (value.Value, error)
	Construct(fn value.Value, args []value.Value) (value.Value, error)
}

// NativeFunc is the Go implementation behind a KindNativeFunction object. It
// mirrors the spec's "(Interpreter&) -> Value" native callable signature,
// with the Go idiom of an explicit error return standing in for the sticky
// exception register: a non-nil error means ctx's exception is set and the
// returned Value should be ignored by the caller.
type NativeFunc func(ctx Context, this value.Value, args []value.Value) (value.Value, error)

// Object is a heap-allocated, shape-described property bag. Every JS object
// this runtime produces -- plain objects, arrays, functions, wrappers,
// errors -- is an *Object distinguished by its Kind and whatever kind-
// specific fields are populated alongside the common shape/slots pair.
type Object struct {
	heap.Header

	kind       Kind
	shape      *shape.Shape
	slots      []value.Value
	extensible bool

	// Accessor pairs, keyed by property name. Populated lazily.
	getters map[string]value.Value
	setters map[string]value.Value

	// Dense integer-indexed storage for array-likes, kept separate from the
	// named-property slot vector so index writes never trigger a shape
	// transition.
	indexed    map[uint32]value.Value
	arrayLen   uint32
	isArrayish bool

	// Populated only for the Kind it names.
	Native     NativeFunc
	BoundThis  value.Value
	BoundArgs  []value.Value
	BoundTo    *Object
	Primitive  value.Value // String/Number/BigInt/Boolean/Symbol wrapper payload
	ErrorKind  string      // "TypeError", "RangeError", ...
	RegexSrc   string
	RegexFlags string

	// KindFunction only: the parsed body this function runs when called, and
	// the lexical environment it closes over. Closure is declared as a bare
	// heap.Cell, not a concrete interpreter type, so pkg/object never needs
	// to import pkg/interpreter -- the interpreter's Environment type just
	// has to satisfy heap.Cell, the same way BoundTo lets a bound function
	// reference another Object without this package knowing call semantics.
	FuncName   string
	FuncParams []string
	FuncBody   *parser.BlockStatement
	FuncExpr   parser.Expression // concise-body arrow function, mutually exclusive with FuncBody
	IsArrow    bool
	Closure    heap.Cell
}

// New allocates an object of the given kind with the given shape (typically a root shape
// carrying the correct prototype) and tracks it on h.
func New(h *heap.Heap, s *shape.Shape, kind Kind) *Object {
	o := &Object{kind: kind, shape: s, extensible: true}
	h.Track(o)
	return o
}

func init() {
	heap.RegisterObjectUnwrapper(func(v value.Value) (heap.Cell, bool) {
		if v.Type() != value.TypeObject {
			return nil, false
		}
		return (*Object)(v.ObjPtr()), true
	})
}

// ToValue boxes o as a value.Value.
func (o *Object) ToValue() value.Value { return value.FromObjectPtr(unsafe.Pointer(o)) }

// FromValue unwraps an object Value back to its concrete *Object.
func FromValue(v value.Value) (*Object, bool) {
	if v.Type() != value.TypeObject {
		return nil, false
	}
	return (*Object)(v.ObjPtr()), true
}

// VisitChildren reports the shape, every named-property slot, every indexed
// value, and any accessor pairs.
func (o *Object) VisitChildren(v heap.Visitor) {
	v.VisitCell(o.shape)
	for _, slot := range o.slots {
		v.VisitValue(slot)
	}
	for _, val := range o.indexed {
		v.VisitValue(val)
	}
	for _, g := range o.getters {
		v.VisitValue(g)
	}
	for _, s := range o.setters {
		v.VisitValue(s)
	}
	v.VisitValue(o.BoundThis)
	for _, a := range o.BoundArgs {
		v.VisitValue(a)
	}
	if o.BoundTo != nil {
		v.VisitCell(o.BoundTo)
	}
	if o.Closure != nil {
		v.VisitCell(o.Closure)
	}
	v.VisitValue(o.Primitive)
}

// Kind returns the object's built-in subkind.
func (o *Object) Kind() Kind { return o.kind }

// Shape returns the object's current hidden class.
func (o *Object) Shape() *shape.Shape { return o.shape }

// Prototype returns the prototype Value this object inherits from.
func (o *Object) Prototype() value.Value { return o.shape.Prototype() }

// SetPrototype transitions the object's shape to point at a new prototype.
func (o *Object) SetPrototype(h *heap.Heap, proto value.Value) {
	o.shape = o.shape.WithPrototype(h, proto)
}

// IsExtensible reports whether new own properties may be added.
func (o *Object) IsExtensible() bool { return o.extensible }

// PreventExtensions marks the object as no longer accepting new properties.
func (o *Object) PreventExtensions() { o.extensible = false }

// GetOwn looks up a named own property, walking no prototype chain.
func (o *Object) GetOwn(h *heap.Heap, name string) (value.Value, bool) {
	meta, ok := o.shape.EnsurePropertyTable(h)[name]
	if !ok {
		return value.Undefined, false
	}
	if meta.Attributes.IsAccessor {
		return value.Undefined, true
	}
	if meta.Offset >= len(o.slots) {
		return value.Undefined, true
	}
	return o.slots[meta.Offset], true
}

// OwnPropertyOffset returns the slot offset of name (and ok=true) if it is
// an own data property, backing the interpreter's property-access inline
// cache: a call site that has already resolved name against this object's
// current Shape can skip straight to GetOwnAtOffset next time, as long as
// the object's Shape hasn't changed since.
func (o *Object) OwnPropertyOffset(h *heap.Heap, name string) (offset int, ok bool) {
	meta, found := o.shape.EnsurePropertyTable(h)[name]
	if !found || meta.Attributes.IsAccessor {
		return 0, false
	}
	return meta.Offset, true
}

// GetOwnAtOffset reads slots[offset] directly, bypassing the property-table
// lookup -- the inline cache's fast path once a cached Shape match confirms
// offset is still where the property lives.
func (o *Object) GetOwnAtOffset(offset int) (value.Value, bool) {
	if offset < 0 || offset >= len(o.slots) {
		return value.Undefined, false
	}
	return o.slots[offset], true
}

// SetOwnAtOffset writes slots[offset] directly, the inline cache's fast
// path for a write whose Shape and writability were already confirmed by
// the caller (OwnPropertyOffset does not report writability; callers that
// cache a write site must separately confirm via IsOwnNonWritable once per
// Shape change).
func (o *Object) SetOwnAtOffset(offset int, v value.Value) bool {
	if offset < 0 || offset >= len(o.slots) {
		return false
	}
	o.slots[offset] = v
	return true
}

// OwnWritablePropertyOffset is OwnPropertyOffset restricted to writable data
// properties, used by the interpreter's write-side inline cache: caching a
// write site for a read-only property would skip the strict-mode throw (or
// sloppy-mode no-op) that a direct SetOwnAtOffset would bypass.
func (o *Object) OwnWritablePropertyOffset(h *heap.Heap, name string) (offset int, ok bool) {
	meta, found := o.shape.EnsurePropertyTable(h)[name]
	if !found || meta.Attributes.IsAccessor || !meta.Attributes.Writable {
		return 0, false
	}
	return meta.Offset, true
}

// OwnPropertyAttributes returns the current attributes of an own property,
// used by Object.defineProperty to inherit whatever a partial descriptor
// leaves unspecified rather than defaulting those fields to false/absent.
func (o *Object) OwnPropertyAttributes(h *heap.Heap, name string) (shape.PropertyAttributes, bool) {
	meta, found := o.shape.EnsurePropertyTable(h)[name]
	if !found {
		return shape.PropertyAttributes{}, false
	}
	return meta.Attributes, true
}

// HasOwn reports whether name is an own property (data or accessor).
func (o *Object) HasOwn(h *heap.Heap, name string) bool {
	_, ok := o.shape.EnsurePropertyTable(h)[name]
	return ok
}

// IsOwnNonWritable reports whether name names an own data property with
// Writable: false -- used by the interpreter to decide whether a strict-mode
// assignment must throw rather than silently no-op (spec.md §8 scenario S5).
func (o *Object) IsOwnNonWritable(h *heap.Heap, name string) bool {
	meta, ok := o.shape.EnsurePropertyTable(h)[name]
	return ok && !meta.Attributes.IsAccessor && !meta.Attributes.Writable
}

// GetOwnAccessor returns the getter/setter pair for an own accessor
// property, if name names one.
func (o *Object) GetOwnAccessor(h *heap.Heap, name string) (getter, setter value.Value, ok bool) {
	meta, exists := o.shape.EnsurePropertyTable(h)[name]
	if !exists || !meta.Attributes.IsAccessor {
		return value.Undefined, value.Undefined, false
	}
	g := value.Undefined
	if o.getters != nil {
		if v, has := o.getters[name]; has {
			g = v
		}
	}
	s := value.Undefined
	if o.setters != nil {
		if v, has := o.setters[name]; has {
			s = v
		}
	}
	return g, s, true
}

// SetOwn assigns or defines a named own property with default "assignment"
// attributes (writable/enumerable/configurable all true for new properties;
// existing non-writable properties are left untouched).
func (o *Object) SetOwn(h *heap.Heap, log *rtlog.Logger, name string, v value.Value) {
	table := o.shape.EnsurePropertyTable(h)
	if meta, ok := table[name]; ok {
		if meta.Attributes.IsAccessor || !meta.Attributes.Writable {
			return
		}
		o.slots[meta.Offset] = v
		return
	}
	if !o.extensible {
		return
	}
	attrs := shape.PropertyAttributes{Writable: true, Enumerable: true, Configurable: true}
	o.shape = o.shape.Transition(h, log, name, attrs)
	o.slots = append(o.slots, v)
}

// SetOwnNonEnumerable is SetOwn with Enumerable: false, used for built-in
// method/accessor installation where properties shouldn't show up in
// for-in/Object.keys enumeration.
func (o *Object) SetOwnNonEnumerable(h *heap.Heap, log *rtlog.Logger, name string, v value.Value) {
	table := o.shape.EnsurePropertyTable(h)
	if meta, ok := table[name]; ok {
		if meta.Attributes.IsAccessor || !meta.Attributes.Writable {
			return
		}
		o.slots[meta.Offset] = v
		return
	}
	if !o.extensible {
		return
	}
	attrs := shape.PropertyAttributes{Writable: true, Enumerable: false, Configurable: true}
	o.shape = o.shape.Transition(h, log, name, attrs)
	o.slots = append(o.slots, v)
}

// DefineOwnProperty defines or redefines a data property with explicit
// attributes, honoring non-configurable restrictions.
func (o *Object) DefineOwnProperty(h *heap.Heap, log *rtlog.Logger, name string, v value.Value, attrs shape.PropertyAttributes) bool {
	table := o.shape.EnsurePropertyTable(h)
	if meta, ok := table[name]; ok {
		if !meta.Attributes.Configurable {
			if attrs.Configurable || attrs.Enumerable != meta.Attributes.Enumerable {
				return false
			}
			if !meta.Attributes.Writable && attrs.Writable {
				return false
			}
		}
		o.shape = o.shape.Reconfigure(h, log, name, attrs)
		if meta.Offset < len(o.slots) {
			o.slots[meta.Offset] = v
		}
		return true
	}
	if !o.extensible {
		return false
	}
	o.shape = o.shape.Transition(h, log, name, attrs)
	o.slots = append(o.slots, v)
	return true
}

// DefineAccessorProperty installs or updates an accessor property.
func (o *Object) DefineAccessorProperty(h *heap.Heap, log *rtlog.Logger, name string, getter, setter value.Value, hasGetter, hasSetter bool, enumerable, configurable bool) bool {
	table := o.shape.EnsurePropertyTable(h)
	attrs := shape.PropertyAttributes{IsAccessor: true, Enumerable: enumerable, Configurable: configurable}
	if meta, ok := table[name]; ok {
		if !meta.Attributes.Configurable {
			return false
		}
		o.shape = o.shape.Reconfigure(h, log, name, attrs)
	} else {
		if !o.extensible {
			return false
		}
		o.shape = o.shape.Transition(h, log, name, attrs)
		o.slots = append(o.slots, value.Undefined)
	}
	if hasGetter {
		if o.getters == nil {
			o.getters = make(map[string]value.Value)
		}
		o.getters[name] = getter
	}
	if hasSetter {
		if o.setters == nil {
			o.setters = make(map[string]value.Value)
		}
		o.setters[name] = setter
	}
	return true
}

// DeleteOwn removes a named own property if present and configurable.
// Deleting an absent property returns true, matching the ECMAScript delete
// operator's semantics for non-existent keys. Per the delete-compaction
// invariant, every remaining property previously at a higher offset moves
// down by one -- removing the single slot at the deleted offset from the
// slot vector achieves exactly that shift for free, since Shape.Delete
// decrements those properties' table offsets by the same amount.
func (o *Object) DeleteOwn(h *heap.Heap, log *rtlog.Logger, name string) bool {
	table := o.shape.EnsurePropertyTable(h)
	meta, ok := table[name]
	if !ok {
		return true
	}
	if !meta.Attributes.Configurable {
		return false
	}
	o.shape = o.shape.Delete(h, log, name)
	delete(o.getters, name)
	delete(o.setters, name)
	if meta.Offset < len(o.slots) {
		o.slots = append(o.slots[:meta.Offset], o.slots[meta.Offset+1:]...)
	}
	return true
}

// OwnKeys returns own string-named enumerable property keys, in the order
// they were first defined (insertion order, as required for for-in/
// Object.keys over non-integer keys).
func (o *Object) OwnKeys(h *heap.Heap) []string {
	table := o.shape.EnsurePropertyTable(h)
	type pair struct {
		name   string
		offset int
	}
	pairs := make([]pair, 0, len(table))
	for name, meta := range table {
		if !meta.Attributes.Enumerable {
			continue
		}
		pairs = append(pairs, pair{name, meta.Offset})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].offset < pairs[j].offset })
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.name
	}
	return keys
}

// -- Indexed (array-index) property storage --

// GetIndex looks up a dense integer-indexed own property.
func (o *Object) GetIndex(i uint32) (value.Value, bool) {
	v, ok := o.indexed[i]
	return v, ok
}

// SetIndex assigns an integer-indexed own property, growing arrayLen if
// this kind tracks a length (Array).
func (o *Object) SetIndex(i uint32, v value.Value) {
	if o.indexed == nil {
		o.indexed = make(map[uint32]value.Value)
	}
	o.indexed[i] = v
	if o.isArrayish && i >= o.arrayLen {
		o.arrayLen = i + 1
	}
}

// DeleteIndex removes an integer-indexed own property.
func (o *Object) DeleteIndex(i uint32) bool {
	if _, ok := o.indexed[i]; !ok {
		return true
	}
	delete(o.indexed, i)
	return true
}

// IndexKeys returns the currently populated integer indices in ascending
// order.
func (o *Object) IndexKeys() []uint32 {
	keys := make([]uint32, 0, len(o.indexed))
	for k := range o.indexed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// EnableArrayLength marks this object as tracking an Array-style length
// counter driven by the highest index ever written via SetIndex.
func (o *Object) EnableArrayLength() { o.isArrayish = true }

// ArrayLength returns the tracked length for an array-like object.
func (o *Object) ArrayLength() uint32 { return o.arrayLen }

// SetArrayLength truncates or extends the tracked length directly (used by
// explicit assignment to the "length" property).
func (o *Object) SetArrayLength(n uint32) {
	if n < o.arrayLen {
		for i := n; i < o.arrayLen; i++ {
			delete(o.indexed, i)
		}
	}
	o.arrayLen = n
}
