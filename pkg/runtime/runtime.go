// Package runtime installs the global object and its built-in
// constructors/prototypes onto an *interpreter.Interpreter, the way the
// original's GlobalObject::initialize() wires up Object/Function/Array/...
// in two phases (prototype, then constructor) before registering each pair
// as both a named field and an enumerable global property.
//
// This package imports pkg/interpreter and pkg/object one-directionally,
// mirroring the teacher's own builtins -> vm dependency direction: neither
// pkg/interpreter nor pkg/object ever imports pkg/runtime.
package runtime

import (
	"math"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

// Initialize builds the full set of built-ins on interp's global object:
// Object, Function, Array, String, Number, Boolean, BigInt, Symbol, the
// Error hierarchy, Math, Reflect, RegExp, Date, and console -- plus the
// free functions parseFloat/parseInt/isNaN/isFinite.
func Initialize(interp *interpreter.Interpreter) {
	global := interp.Global()

	objectProto := interp.NewPlainObject()
	interp.SetObjectPrototype(objectProto)

	functionProto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), objectProto.ToValue()), object.KindFunction)
	interp.SetFunctionPrototype(functionProto)

	installObject(interp, global, objectProto)
	installFunction(interp, global, functionProto)
	installArray(interp, global)
	installString(interp, global)
	installNumber(interp, global)
	installBoolean(interp, global)
	installBigInt(interp, global)
	installSymbol(interp, global)
	installErrors(interp, global)
	installMath(interp, global)
	installReflect(interp, global)
	installRegExp(interp, global)
	installDate(interp, global)
	installConsole(interp, global)
	installGlobalFunctions(interp, global)

	global.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "globalThis", global.ToValue())
	global.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "undefined", value.Undefined)
	global.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "NaN", value.Number(math.NaN()))
	global.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "Infinity", value.Number(math.Inf(1)))
}

// defineMethod installs a native method on proto/ctor under name, not
// enumerable -- matching how built-in prototype methods behave under
// for-in/Object.keys (they don't show up).
func defineMethod(interp *interpreter.Interpreter, owner *object.Object, name string, length int, fn object.NativeFunc) {
	interp.DefineNativeFunction(owner, name, fn, length, false)
}

// defineGlobalConstructor registers a constructor/prototype pair as both a
// named field (via the interp setters) and an enumerable global property,
// reproducing GlobalObject::initialize()'s two registrations per built-in.
func defineGlobalConstructor(interp *interpreter.Interpreter, global *object.Object, name string, ctor, proto *object.Object) {
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "prototype", proto.ToValue())
	proto.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "constructor", ctor.ToValue())
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "name", value.String(name))
	global.SetOwn(interp.Heap(), interp.Log(), name, ctor.ToValue())
}

func newConstructor(interp *interpreter.Interpreter, fn object.NativeFunc, length int) *object.Object {
	c := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.FunctionPrototype().ToValue()), object.KindNativeFunction)
	c.Native = fn
	c.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "length", value.Number(float64(length)))
	return c
}

func argOr(args []value.Value, i int, def value.Value) value.Value {
	if i < len(args) {
		return args[i]
	}
	return def
}
