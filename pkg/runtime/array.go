package runtime

import (
	"strings"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

func toArrayElements(ctx object.Context, v value.Value) []value.Value {
	arr, ok := object.FromValue(v)
	if !ok || arr.Kind() != object.KindArray {
		return nil
	}
	n := arr.ArrayLength()
	out := make([]value.Value, n)
	for i := uint32(0); i < n; i++ {
		val, _ := arr.GetIndex(i)
		out[i] = val
	}
	return out
}

func installArray(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindArray)
	proto.EnableArrayLength()
	interp.SetArrayPrototype(proto)

	defineMethod(interp, proto, "push", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		arr, ok := object.FromValue(this)
		if !ok {
			return value.Empty, ctx.Throw("TypeError", "Array.prototype.push called on non-array")
		}
		n := arr.ArrayLength()
		for _, a := range args {
			arr.SetIndex(n, a)
			n++
		}
		return value.Number(float64(n)), nil
	})
	defineMethod(interp, proto, "pop", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		arr, ok := object.FromValue(this)
		if !ok || arr.ArrayLength() == 0 {
			return value.Undefined, nil
		}
		n := arr.ArrayLength() - 1
		v, _ := arr.GetIndex(n)
		arr.DeleteIndex(n)
		arr.SetArrayLength(n)
		return v, nil
	})
	defineMethod(interp, proto, "shift", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		arr, ok := object.FromValue(this)
		if !ok || arr.ArrayLength() == 0 {
			return value.Undefined, nil
		}
		first, _ := arr.GetIndex(0)
		n := arr.ArrayLength()
		for i := uint32(1); i < n; i++ {
			v, _ := arr.GetIndex(i)
			arr.SetIndex(i-1, v)
		}
		arr.DeleteIndex(n - 1)
		arr.SetArrayLength(n - 1)
		return first, nil
	})
	defineMethod(interp, proto, "unshift", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		arr, ok := object.FromValue(this)
		if !ok {
			return value.Empty, ctx.Throw("TypeError", "Array.prototype.unshift called on non-array")
		}
		n := arr.ArrayLength()
		shiftBy := uint32(len(args))
		for i := n; i > 0; i-- {
			v, _ := arr.GetIndex(i - 1)
			arr.SetIndex(i-1+shiftBy, v)
		}
		for i, a := range args {
			arr.SetIndex(uint32(i), a)
		}
		arr.SetArrayLength(n + shiftBy)
		return value.Number(float64(n + shiftBy)), nil
	})
	defineMethod(interp, proto, "slice", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		elems := toArrayElements(ctx, this)
		start, end := sliceBounds(len(elems), args)
		return interp.NewArray(elems[start:end]...).ToValue(), nil
	})
	defineMethod(interp, proto, "splice", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		arr, ok := object.FromValue(this)
		if !ok {
			return interp.NewArray().ToValue(), nil
		}
		elems := toArrayElements(ctx, this)
		n := len(elems)
		start := clampIndex(int(argOr(args, 0, value.Number(0)).ToNumber()), n)
		deleteCount := n - start
		if len(args) > 1 {
			dc := int(args[1].ToNumber())
			if dc < 0 {
				dc = 0
			}
			if dc < deleteCount {
				deleteCount = dc
			}
		}
		removed := append([]value.Value{}, elems[start:start+deleteCount]...)
		var inserted []value.Value
		if len(args) > 2 {
			inserted = args[2:]
		}
		result := append([]value.Value{}, elems[:start]...)
		result = append(result, inserted...)
		result = append(result, elems[start+deleteCount:]...)
		for i := uint32(0); i < arr.ArrayLength(); i++ {
			arr.DeleteIndex(i)
		}
		for i, v := range result {
			arr.SetIndex(uint32(i), v)
		}
		arr.SetArrayLength(uint32(len(result)))
		return interp.NewArray(removed...).ToValue(), nil
	})
	defineMethod(interp, proto, "concat", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		elems := toArrayElements(ctx, this)
		for _, a := range args {
			if obj, ok := object.FromValue(a); ok && obj.Kind() == object.KindArray {
				elems = append(elems, toArrayElements(ctx, a)...)
			} else {
				elems = append(elems, a)
			}
		}
		return interp.NewArray(elems...).ToValue(), nil
	})
	defineMethod(interp, proto, "join", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			sep = args[0].ToStringValue()
		}
		elems := toArrayElements(ctx, this)
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e.IsNullish() {
				parts[i] = ""
			} else {
				parts[i] = e.ToStringValue()
			}
		}
		return value.String(strings.Join(parts, sep)), nil
	})
	defineMethod(interp, proto, "reverse", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		arr, ok := object.FromValue(this)
		if !ok {
			return this, nil
		}
		elems := toArrayElements(ctx, this)
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		for i, v := range elems {
			arr.SetIndex(uint32(i), v)
		}
		return this, nil
	})
	defineMethod(interp, proto, "indexOf", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		target := argOr(args, 0, value.Undefined)
		for i, e := range toArrayElements(ctx, this) {
			if e.StrictlyEquals(target) {
				return value.Number(float64(i)), nil
			}
		}
		return value.Number(-1), nil
	})
	defineMethod(interp, proto, "includes", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		target := argOr(args, 0, value.Undefined)
		for _, e := range toArrayElements(ctx, this) {
			if e.SameValueZero(target) {
				return value.True, nil
			}
		}
		return value.False, nil
	})
	defineMethod(interp, proto, "forEach", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		cb := argOr(args, 0, value.Undefined)
		for i, e := range toArrayElements(ctx, this) {
			if _, err := ctx.Call(cb, value.Undefined, []value.Value{e, value.Number(float64(i)), this}); err != nil {
				return value.Empty, err
			}
		}
		return value.Undefined, nil
	})
	defineMethod(interp, proto, "map", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		cb := argOr(args, 0, value.Undefined)
		elems := toArrayElements(ctx, this)
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			v, err := ctx.Call(cb, value.Undefined, []value.Value{e, value.Number(float64(i)), this})
			if err != nil {
				return value.Empty, err
			}
			out[i] = v
		}
		return interp.NewArray(out...).ToValue(), nil
	})
	defineMethod(interp, proto, "filter", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		cb := argOr(args, 0, value.Undefined)
		var out []value.Value
		for i, e := range toArrayElements(ctx, this) {
			v, err := ctx.Call(cb, value.Undefined, []value.Value{e, value.Number(float64(i)), this})
			if err != nil {
				return value.Empty, err
			}
			if v.IsTruthy() {
				out = append(out, e)
			}
		}
		return interp.NewArray(out...).ToValue(), nil
	})
	defineMethod(interp, proto, "reduce", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		cb := argOr(args, 0, value.Undefined)
		elems := toArrayElements(ctx, this)
		i := 0
		var acc value.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(elems) == 0 {
				return value.Empty, ctx.Throw("TypeError", "Reduce of empty array with no initial value")
			}
			acc = elems[0]
			i = 1
		}
		for ; i < len(elems); i++ {
			v, err := ctx.Call(cb, value.Undefined, []value.Value{acc, elems[i], value.Number(float64(i)), this})
			if err != nil {
				return value.Empty, err
			}
			acc = v
		}
		return acc, nil
	})
	defineMethod(interp, proto, "find", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		cb := argOr(args, 0, value.Undefined)
		for i, e := range toArrayElements(ctx, this) {
			v, err := ctx.Call(cb, value.Undefined, []value.Value{e, value.Number(float64(i)), this})
			if err != nil {
				return value.Empty, err
			}
			if v.IsTruthy() {
				return e, nil
			}
		}
		return value.Undefined, nil
	})
	defineMethod(interp, proto, "some", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		cb := argOr(args, 0, value.Undefined)
		for i, e := range toArrayElements(ctx, this) {
			v, err := ctx.Call(cb, value.Undefined, []value.Value{e, value.Number(float64(i)), this})
			if err != nil {
				return value.Empty, err
			}
			if v.IsTruthy() {
				return value.True, nil
			}
		}
		return value.False, nil
	})
	defineMethod(interp, proto, "every", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		cb := argOr(args, 0, value.Undefined)
		for i, e := range toArrayElements(ctx, this) {
			v, err := ctx.Call(cb, value.Undefined, []value.Value{e, value.Number(float64(i)), this})
			if err != nil {
				return value.Empty, err
			}
			if !v.IsTruthy() {
				return value.False, nil
			}
		}
		return value.True, nil
	})
	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		elems := toArrayElements(ctx, this)
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e.IsNullish() {
				parts[i] = ""
			} else {
				parts[i] = e.ToStringValue()
			}
		}
		return value.String(strings.Join(parts, ",")), nil
	})

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			arr := interp.NewArray()
			arr.SetArrayLength(uint32(args[0].AsNumber()))
			return arr.ToValue(), nil
		}
		return interp.NewArray(args...).ToValue(), nil
	}, 1)
	defineMethod(interp, ctor, "isArray", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(argOr(args, 0, value.Undefined))
		return value.Boolean(ok && obj.Kind() == object.KindArray), nil
	})
	defineMethod(interp, ctor, "from", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		src := argOr(args, 0, value.Undefined)
		if src.IsString() {
			runes := []rune(src.AsString())
			elems := make([]value.Value, len(runes))
			for i, r := range runes {
				elems[i] = value.String(string(r))
			}
			return interp.NewArray(elems...).ToValue(), nil
		}
		return interp.NewArray(toArrayElements(ctx, src)...).ToValue(), nil
	})
	defineMethod(interp, ctor, "of", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return interp.NewArray(args...).ToValue(), nil
	})

	defineGlobalConstructor(interp, global, "Array", ctor, proto)
}

func sliceBounds(n int, args []value.Value) (int, int) {
	start, end := 0, n
	if len(args) > 0 && !args[0].IsUndefined() {
		start = clampIndex(int(args[0].ToNumber()), n)
	}
	if len(args) > 1 && !args[1].IsUndefined() {
		end = clampIndex(int(args[1].ToNumber()), n)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
