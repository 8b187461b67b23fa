package runtime

import (
	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

func installSymbol(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindSymbolWrapper)
	interp.SetSymbolPrototype(proto)

	thisSymbol := func(this value.Value) value.Value {
		if this.IsSymbol() {
			return this
		}
		if obj, ok := object.FromValue(this); ok {
			return obj.Primitive
		}
		return value.Undefined
	}

	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(thisSymbol(this).ToStringValue()), nil
	})
	defineMethod(interp, proto, "valueOf", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return thisSymbol(this), nil
	})

	registry := map[string]value.Value{}

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		desc := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			desc = args[0].ToStringValue()
		}
		return value.Symbol(desc), nil
	}, 0)
	defineMethod(interp, ctor, "for", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		key := argOr(args, 0, value.Undefined).ToStringValue()
		if v, ok := registry[key]; ok {
			return v, nil
		}
		v := value.Symbol(key)
		registry[key] = v
		return v, nil
	})
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "iterator", value.Symbol("Symbol.iterator"))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "asyncIterator", value.Symbol("Symbol.asyncIterator"))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "toPrimitive", value.Symbol("Symbol.toPrimitive"))

	defineGlobalConstructor(interp, global, "Symbol", ctor, proto)
}
