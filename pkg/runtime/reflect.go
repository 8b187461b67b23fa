package runtime

import (
	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

// installReflect builds the Reflect namespace object, supplemented from
// original_source's ReflectObject: a thin wrapper over the same
// object-model primitives Object's statics use, exposed under a separate
// namespace per the ECMAScript split between Object (convenience) and
// Reflect (direct meta-operations that always return rather than throw).
func installReflect(interp *interpreter.Interpreter, global *object.Object) {
	r := interp.NewPlainObject()

	defineMethod(interp, r, "get", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.Undefined, nil
		}
		name := argOr(args, 1, value.Undefined).ToStringValue()
		v, _ := obj.GetOwn(ctx.Heap(), name)
		return v, nil
	})
	defineMethod(interp, r, "set", 3, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.False, nil
		}
		name := argOr(args, 1, value.Undefined).ToStringValue()
		obj.SetOwn(ctx.Heap(), interp.Log(), name, argOr(args, 2, value.Undefined))
		return value.True, nil
	})
	defineMethod(interp, r, "has", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.False, nil
		}
		name := argOr(args, 1, value.Undefined).ToStringValue()
		return value.Boolean(obj.HasOwn(ctx.Heap(), name)), nil
	})
	defineMethod(interp, r, "deleteProperty", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.False, nil
		}
		name := argOr(args, 1, value.Undefined).ToStringValue()
		obj.DeleteOwn(ctx.Heap(), interp.Log(), name)
		return value.True, nil
	})
	defineMethod(interp, r, "ownKeys", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return interp.NewArray().ToValue(), nil
		}
		keys := obj.OwnKeys(ctx.Heap())
		elems := make([]value.Value, len(keys))
		for i, k := range keys {
			elems[i] = value.String(k)
		}
		return interp.NewArray(elems...).ToValue(), nil
	})
	defineMethod(interp, r, "getPrototypeOf", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.Null, nil
		}
		return obj.Prototype(), nil
	})
	defineMethod(interp, r, "setPrototypeOf", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.False, nil
		}
		obj.SetPrototype(ctx.Heap(), argOr(args, 1, value.Null))
		return value.True, nil
	})
	defineMethod(interp, r, "isExtensible", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.False, nil
		}
		return value.Boolean(obj.IsExtensible()), nil
	})
	defineMethod(interp, r, "preventExtensions", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.False, nil
		}
		obj.PreventExtensions()
		return value.True, nil
	})
	defineMethod(interp, r, "apply", 3, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		target := argOr(args, 0, value.Undefined)
		newThis := argOr(args, 1, value.Undefined)
		var rest []value.Value
		if arr, ok := object.FromValue(argOr(args, 2, value.Undefined)); ok {
			rest = toArrayElements(ctx, arr.ToValue())
		}
		return ctx.Call(target, newThis, rest)
	})
	defineMethod(interp, r, "construct", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		target := argOr(args, 0, value.Undefined)
		var rest []value.Value
		if arr, ok := object.FromValue(argOr(args, 1, value.Undefined)); ok {
			rest = toArrayElements(ctx, arr.ToValue())
		}
		return ctx.Construct(target, rest)
	})

	global.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "Reflect", r.ToValue())
}
