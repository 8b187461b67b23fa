package runtime

import (
	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

func installFunction(interp *interpreter.Interpreter, global *object.Object, proto *object.Object) {
	defineMethod(interp, proto, "call", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		newThis := argOr(args, 0, value.Undefined)
		var rest []value.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return ctx.Call(this, newThis, rest)
	})
	defineMethod(interp, proto, "apply", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		newThis := argOr(args, 0, value.Undefined)
		var rest []value.Value
		if arr, ok := object.FromValue(argOr(args, 1, value.Undefined)); ok {
			n := arr.ArrayLength()
			rest = make([]value.Value, n)
			for i := uint32(0); i < n; i++ {
				v, _ := arr.GetIndex(i)
				rest[i] = v
			}
		}
		return ctx.Call(this, newThis, rest)
	})
	defineMethod(interp, proto, "bind", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		callee, ok := object.FromValue(this)
		if !ok {
			return value.Empty, ctx.Throw("TypeError", "Bind must be called on a function")
		}
		bound := object.New(ctx.Heap(), interp.EmptyObjectShape().WithPrototype(ctx.Heap(), interp.FunctionPrototype().ToValue()), object.KindBoundFunction)
		bound.BoundTo = callee
		bound.BoundThis = argOr(args, 0, value.Undefined)
		if len(args) > 1 {
			bound.BoundArgs = append([]value.Value{}, args[1:]...)
		}
		bound.FuncName = "bound " + callee.FuncName
		bound.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "name", value.String(bound.FuncName))
		return bound.ToValue(), nil
	})
	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if fn, ok := object.FromValue(this); ok {
			name := fn.FuncName
			if fn.Kind() == object.KindNativeFunction {
				return value.String("function " + name + "() { [native code] }"), nil
			}
			return value.String("function " + name + "() { ... }"), nil
		}
		return value.String("function () {}"), nil
	})

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Empty, ctx.Throw("TypeError", "Function constructor from a source string is not supported")
	}, 1)
	defineGlobalConstructor(interp, global, "Function", ctor, proto)
}
