package runtime

import (
	"math"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

// installGlobalFunctions adds the free functions ECMAScript hangs directly
// off the global object rather than a namespace -- parseInt/parseFloat
// predate Number.parseInt/parseFloat and isNaN/isFinite predate
// Number.isNaN/isFinite, so both forms are kept (mirrors original_source's
// GlobalObject wiring both). parseInt/parseFloat share their implementation
// with the Number statics; the global isNaN/isFinite coerce their argument
// with ToNumber, while Number.isNaN/isFinite return false for non-numbers.
func installGlobalFunctions(interp *interpreter.Interpreter, global *object.Object) {
	defineMethod(interp, global, "parseInt", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(parseIntLeading(argOr(args, 0, value.Undefined).ToStringValue(), args)), nil
	})
	defineMethod(interp, global, "parseFloat", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(parseFloatLeading(argOr(args, 0, value.Undefined).ToStringValue())), nil
	})
	defineMethod(interp, global, "isNaN", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(math.IsNaN(argOr(args, 0, value.Undefined).ToNumber())), nil
	})
	defineMethod(interp, global, "isFinite", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		n := argOr(args, 0, value.Undefined).ToNumber()
		return value.Boolean(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})
}
