package interpreter

import (
	"jscore/pkg/heap"
	"jscore/pkg/value"
)

// binding is a single variable slot: its current value, and whether it may
// be reassigned (false for const).
type binding struct {
	val      value.Value
	mutable  bool
	declared bool // true once a var/let/const has actually initialized this name
}

// Environment is a lexical scope: a map of bindings plus a link to the
// enclosing scope. It satisfies heap.Cell so that a function Object's
// Closure field keeps every Environment it closes over reachable from the
// root set for as long as the function itself is reachable.
type Environment struct {
	heap.Header

	parent *Environment
	vars   map[string]*binding
}

// NewEnvironment allocates a child scope of parent (nil for the global
// scope) and tracks it on h.
func NewEnvironment(h *heap.Heap, parent *Environment) *Environment {
	e := &Environment{parent: parent, vars: make(map[string]*binding)}
	h.Track(e)
	return e
}

// VisitChildren reports every bound value and the parent scope, so the
// whole lexical chain a live closure depends on stays reachable.
func (e *Environment) VisitChildren(v heap.Visitor) {
	for _, b := range e.vars {
		v.VisitValue(b.val)
	}
	if e.parent != nil {
		v.VisitCell(e.parent)
	}
}

// Declare introduces a new binding in this scope, shadowing any outer
// binding of the same name.
func (e *Environment) Declare(name string, val value.Value, mutable bool) {
	e.vars[name] = &binding{val: val, mutable: mutable, declared: true}
}

// Lookup searches this scope and its ancestors for name.
func (e *Environment) Lookup(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.val, true
		}
	}
	return value.Undefined, false
}

// Assign updates the nearest existing binding of name. Returns ok=false if
// no such binding exists (a ReferenceError, in sloppy-mode callers leniently
// declare onto global instead -- see Interpreter.assignTo), and ok=true,
// mutable=false without assigning if the binding is a const (a TypeError at
// the call site).
func (e *Environment) Assign(name string, val value.Value) (ok, mutable bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, found := cur.vars[name]; found {
			if !b.mutable {
				return true, false
			}
			b.val = val
			return true, true
		}
	}
	return false, false
}
