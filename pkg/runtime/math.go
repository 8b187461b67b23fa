package runtime

import (
	"math"
	"math/rand"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

// installMath builds the Math namespace object. Supplemented beyond the
// distilled spec per original_source's MathObject, which exposes the full
// set of single/double-argument transcendental functions rather than a
// handful -- none of it needs a third-party library, math.* covers it.
func installMath(interp *interpreter.Interpreter, global *object.Object) {
	m := interp.NewPlainObject()

	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "PI", value.Number(math.Pi))
	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "E", value.Number(math.E))
	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "LN2", value.Number(math.Ln2))
	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "LN10", value.Number(math.Log(10)))
	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "LOG2E", value.Number(1/math.Ln2))
	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "LOG10E", value.Number(1/math.Log(10)))
	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "SQRT2", value.Number(math.Sqrt2))
	m.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "SQRT1_2", value.Number(math.Sqrt(0.5)))

	unary := func(name string, f func(float64) float64) {
		defineMethod(interp, m, name, 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
			return value.Number(f(argOr(args, 0, value.Number(math.NaN())).ToNumber())), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f):
			return math.NaN()
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	unary("exp", math.Exp)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("round", func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.Floor(f + 0.5)
	})

	defineMethod(interp, m, "pow", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(math.Pow(argOr(args, 0, value.Undefined).ToNumber(), argOr(args, 1, value.Undefined).ToNumber())), nil
	})
	defineMethod(interp, m, "atan2", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(math.Atan2(argOr(args, 0, value.Undefined).ToNumber(), argOr(args, 1, value.Undefined).ToNumber())), nil
	})
	defineMethod(interp, m, "hypot", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		sum := 0.0
		for _, a := range args {
			v := a.ToNumber()
			sum += v * v
		}
		return value.Number(math.Sqrt(sum)), nil
	})
	defineMethod(interp, m, "max", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		best := math.Inf(-1)
		for _, a := range args {
			v := a.ToNumber()
			if math.IsNaN(v) {
				return value.Number(math.NaN()), nil
			}
			if v > best {
				best = v
			}
		}
		return value.Number(best), nil
	})
	defineMethod(interp, m, "min", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		best := math.Inf(1)
		for _, a := range args {
			v := a.ToNumber()
			if math.IsNaN(v) {
				return value.Number(math.NaN()), nil
			}
			if v < best {
				best = v
			}
		}
		return value.Number(best), nil
	})
	defineMethod(interp, m, "random", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(rand.Float64()), nil
	})

	global.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "Math", m.ToValue())
}
