package runtime

import (
	"jscore/pkg/heap"
	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

func installObject(interp *interpreter.Interpreter, global *object.Object, proto *object.Object) {
	defineMethod(interp, proto, "hasOwnProperty", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(this)
		if !ok {
			return value.False, nil
		}
		name := argOr(args, 0, value.Undefined).ToStringValue()
		return value.Boolean(obj.HasOwn(ctx.Heap(), name)), nil
	})
	defineMethod(interp, proto, "isPrototypeOf", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		target, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.False, nil
		}
		self, ok := object.FromValue(this)
		if !ok {
			return value.False, nil
		}
		for cur := target.Prototype(); cur.IsObject(); {
			if cur.StrictlyEquals(self.ToValue()) {
				return value.True, nil
			}
			next, _ := object.FromValue(cur)
			cur = next.Prototype()
		}
		return value.False, nil
	})
	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if obj, ok := object.FromValue(this); ok {
			return value.String("[object " + obj.Kind().String() + "]"), nil
		}
		return value.String("[object Object]"), nil
	})
	defineMethod(interp, proto, "valueOf", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) > 0 && args[0].IsObject() {
			return args[0], nil
		}
		return interp.NewPlainObject().ToValue(), nil
	}, 1)

	defineMethod(interp, ctor, "keys", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return interp.NewArray().ToValue(), nil
		}
		keys := ownEnumerableKeyValues(ctx.Heap(), obj)
		elems := make([]value.Value, len(keys))
		for i, k := range keys {
			elems[i] = value.String(k)
		}
		return interp.NewArray(elems...).ToValue(), nil
	})
	defineMethod(interp, ctor, "values", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return interp.NewArray().ToValue(), nil
		}
		var elems []value.Value
		for _, idx := range obj.IndexKeys() {
			v, _ := obj.GetIndex(idx)
			elems = append(elems, v)
		}
		for _, k := range obj.OwnKeys(ctx.Heap()) {
			v, _ := obj.GetOwn(ctx.Heap(), k)
			elems = append(elems, v)
		}
		return interp.NewArray(elems...).ToValue(), nil
	})
	defineMethod(interp, ctor, "entries", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return interp.NewArray().ToValue(), nil
		}
		var elems []value.Value
		for _, idx := range obj.IndexKeys() {
			v, _ := obj.GetIndex(idx)
			elems = append(elems, interp.NewArray(value.String(uintToString(idx)), v).ToValue())
		}
		for _, k := range obj.OwnKeys(ctx.Heap()) {
			v, _ := obj.GetOwn(ctx.Heap(), k)
			elems = append(elems, interp.NewArray(value.String(k), v).ToValue())
		}
		return interp.NewArray(elems...).ToValue(), nil
	})
	defineMethod(interp, ctor, "assign", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		target, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.Empty, ctx.Throw("TypeError", "Object.assign target must be an object")
		}
		for _, src := range args[1:] {
			source, ok := object.FromValue(src)
			if !ok {
				continue
			}
			for _, k := range source.OwnKeys(ctx.Heap()) {
				v, _ := source.GetOwn(ctx.Heap(), k)
				target.SetOwn(ctx.Heap(), interp.Log(), k, v)
			}
		}
		return target.ToValue(), nil
	})
	defineMethod(interp, ctor, "freeze", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if ok {
			obj.PreventExtensions()
			for _, k := range obj.OwnKeys(ctx.Heap()) {
				v, _ := obj.GetOwn(ctx.Heap(), k)
				attrs, _ := obj.OwnPropertyAttributes(ctx.Heap(), k)
				attrs.Writable = false
				attrs.Configurable = false
				obj.DefineOwnProperty(ctx.Heap(), interp.Log(), k, v, attrs)
			}
		}
		return argOr(args, 0, value.Undefined), nil
	})
	defineMethod(interp, ctor, "isFrozen", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.True, nil
		}
		return value.Boolean(!obj.IsExtensible()), nil
	})
	defineMethod(interp, ctor, "getPrototypeOf", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.Null, nil
		}
		return obj.Prototype(), nil
	})
	defineMethod(interp, ctor, "setPrototypeOf", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if ok {
			obj.SetPrototype(ctx.Heap(), argOr(args, 1, value.Null))
		}
		return argOr(args, 0, value.Undefined), nil
	})
	defineMethod(interp, ctor, "create", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		proto := argOr(args, 0, value.Null)
		s := interp.EmptyObjectShape().WithPrototype(ctx.Heap(), proto)
		obj := object.New(ctx.Heap(), s, object.KindPlain)
		if len(args) > 1 {
			if props, ok := object.FromValue(args[1]); ok {
				for _, k := range props.OwnKeys(ctx.Heap()) {
					descVal, _ := props.GetOwn(ctx.Heap(), k)
					applyPropertyDescriptor(ctx, interp, obj, k, descVal)
				}
			}
		}
		return obj.ToValue(), nil
	})
	defineMethod(interp, ctor, "defineProperty", 3, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		if !ok {
			return value.Empty, ctx.Throw("TypeError", "Object.defineProperty called on non-object")
		}
		name := argOr(args, 1, value.Undefined).ToStringValue()
		applyPropertyDescriptor(ctx, interp, obj, name, argOr(args, 2, value.Undefined))
		return obj.ToValue(), nil
	})

	defineGlobalConstructor(interp, global, "Object", ctor, proto)
}

// applyPropertyDescriptor implements the shared core of Object.create's
// property-list argument and Object.defineProperty: a descriptor that omits
// a field must inherit it from the property already there (ECMA's "partial
// descriptor" rule), not silently default it to undefined/false and
// overwrite whatever was there before.
func applyPropertyDescriptor(ctx object.Context, interp *interpreter.Interpreter, obj *object.Object, name string, descVal value.Value) {
	desc, ok := object.FromValue(descVal)
	if !ok {
		return
	}
	h := ctx.Heap()
	attrs, hadOwn := obj.OwnPropertyAttributes(h, name)
	if desc.HasOwn(h, "enumerable") {
		attrs.Enumerable = boolOf(desc, h, "enumerable")
	}
	if desc.HasOwn(h, "configurable") {
		attrs.Configurable = boolOf(desc, h, "configurable")
	}

	getVal, hasGet := desc.GetOwn(h, "get")
	setVal, hasSet := desc.GetOwn(h, "set")
	if hasGet || hasSet {
		obj.DefineAccessorProperty(h, interp.Log(), name, getVal, setVal, hasGet, hasSet, attrs.Enumerable, attrs.Configurable)
		return
	}

	v := value.Undefined
	if hadOwn && !attrs.IsAccessor {
		v, _ = obj.GetOwn(h, name)
	}
	if desc.HasOwn(h, "value") {
		v, _ = desc.GetOwn(h, "value")
	}
	if desc.HasOwn(h, "writable") {
		attrs.Writable = boolOf(desc, h, "writable")
	}
	attrs.IsAccessor = false
	obj.DefineOwnProperty(h, interp.Log(), name, v, attrs)
}

func boolOf(desc *object.Object, h *heap.Heap, name string) bool {
	v, ok := desc.GetOwn(h, name)
	return ok && v.IsTruthy()
}

func ownEnumerableKeyValues(h *heap.Heap, obj *object.Object) []string {
	keys := make([]string, 0)
	for _, idx := range obj.IndexKeys() {
		keys = append(keys, uintToString(idx))
	}
	keys = append(keys, obj.OwnKeys(h)...)
	return keys
}

func uintToString(i uint32) string {
	if i == 0 {
		return "0"
	}
	digits := [10]byte{}
	n := len(digits)
	for i > 0 {
		n--
		digits[n] = byte('0' + i%10)
		i /= 10
	}
	return string(digits[n:])
}
