package runtime

import (
	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

var errorSubtypes = []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "URIError", "EvalError"}

// installErrors builds the Error constructor plus the subtype hierarchy
// (TypeError, RangeError, ...), each subtype prototype chained to
// Error.prototype per ECMA-262 19.5. Interpreter.Throw builds its error
// objects directly off the flat errorProto slot (see interpreter.go's
// newErrorObject) tagged with ErrorKind; the constructors installed here
// give user code a matching, instanceof-able object to construct and catch.
func installErrors(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindError)
	interp.SetErrorPrototype(proto)

	proto.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "name", value.String("Error"))
	proto.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "message", value.String(""))

	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := object.FromValue(this)
		if !ok {
			return value.String("Error"), nil
		}
		name := "Error"
		if v, found := obj.GetOwn(ctx.Heap(), "name"); found {
			name = v.ToStringValue()
		}
		msg := ""
		if v, found := obj.GetOwn(ctx.Heap(), "message"); found {
			msg = v.ToStringValue()
		}
		if msg == "" {
			return value.String(name), nil
		}
		return value.String(name + ": " + msg), nil
	})

	makeErrorCtor := func(name string, proto *object.Object) *object.Object {
		return newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
			errObj := object.New(ctx.Heap(), interp.EmptyObjectShape().WithPrototype(ctx.Heap(), proto.ToValue()), object.KindError)
			errObj.ErrorKind = name
			if name == "Error" {
				errObj.ErrorKind = ""
			}
			msg := ""
			if len(args) > 0 && !args[0].IsUndefined() {
				msg = args[0].ToStringValue()
			}
			errObj.SetOwn(ctx.Heap(), interp.Log(), "message", value.String(msg))
			errObj.SetOwn(ctx.Heap(), interp.Log(), "stack", value.String(name+": "+msg))
			return errObj.ToValue(), nil
		}, 1)
	}

	errorCtor := makeErrorCtor("Error", proto)
	defineGlobalConstructor(interp, global, "Error", errorCtor, proto)

	for _, name := range errorSubtypes {
		subProto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), proto.ToValue()), object.KindError)
		subProto.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "name", value.String(name))
		subProto.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "message", value.String(""))
		subCtor := makeErrorCtor(name, subProto)
		subCtor.SetPrototype(interp.Heap(), errorCtor.ToValue())
		defineGlobalConstructor(interp, global, name, subCtor, subProto)
	}
}
