package runtime

import (
	"math"
	"strconv"
	"strings"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

// Constants grounded in original_source's NumberConstructor.cpp macros
// (EPSILON, MAX_SAFE_INTEGER, MIN_SAFE_INTEGER) -- see SPEC_FULL.md §7.5.
const (
	numberEpsilon        = 2.220446049250313e-16
	numberMaxSafeInteger = 9007199254740991
	numberMinSafeInteger = -9007199254740991
)

func installNumber(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindNumberWrapper)
	interp.SetNumberPrototype(proto)

	thisNumber := func(this value.Value) float64 {
		if this.IsNumber() {
			return this.AsNumber()
		}
		if obj, ok := object.FromValue(this); ok {
			return obj.Primitive.ToNumber()
		}
		return this.ToNumber()
	}

	defineMethod(interp, proto, "toFixed", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		digits := int(argOr(args, 0, value.Number(0)).ToNumber())
		return value.String(strconv.FormatFloat(thisNumber(this), 'f', digits, 64)), nil
	})
	defineMethod(interp, proto, "toPrecision", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 || args[0].IsUndefined() {
			return value.String(value.Number(thisNumber(this)).ToStringValue()), nil
		}
		prec := int(args[0].ToNumber())
		return value.String(strconv.FormatFloat(thisNumber(this), 'g', prec, 64)), nil
	})
	defineMethod(interp, proto, "toString", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		n := thisNumber(this)
		radix := 10
		if len(args) > 0 && !args[0].IsUndefined() {
			radix = int(args[0].ToNumber())
		}
		if radix == 10 {
			return value.String(value.Number(n).ToStringValue()), nil
		}
		if n == math.Trunc(n) {
			return value.String(strconv.FormatInt(int64(n), radix)), nil
		}
		return value.String(value.Number(n).ToStringValue()), nil
	})
	defineMethod(interp, proto, "valueOf", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(thisNumber(this)), nil
	})

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(0), nil
		}
		return value.Number(args[0].ToNumber()), nil
	}, 1)
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "EPSILON", value.Number(numberEpsilon))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "MAX_SAFE_INTEGER", value.Number(numberMaxSafeInteger))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "MIN_SAFE_INTEGER", value.Number(numberMinSafeInteger))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "MAX_VALUE", value.Number(math.MaxFloat64))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "MIN_VALUE", value.Number(5e-324))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "POSITIVE_INFINITY", value.Number(math.Inf(1)))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "NEGATIVE_INFINITY", value.Number(math.Inf(-1)))
	ctor.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "NaN", value.Number(math.NaN()))

	defineMethod(interp, ctor, "isInteger", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		v := argOr(args, 0, value.Undefined)
		if !v.IsNumber() {
			return value.False, nil
		}
		n := v.AsNumber()
		return value.Boolean(!math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n)), nil
	})
	// isSafeInteger: scenario S3, grounded on NumberConstructor.cpp's macro
	// constants (see numberMaxSafeInteger/numberMinSafeInteger above).
	defineMethod(interp, ctor, "isSafeInteger", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		v := argOr(args, 0, value.Undefined)
		if !v.IsNumber() {
			return value.False, nil
		}
		n := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return value.False, nil
		}
		return value.Boolean(n >= numberMinSafeInteger && n <= numberMaxSafeInteger), nil
	})
	defineMethod(interp, ctor, "isFinite", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		v := argOr(args, 0, value.Undefined)
		if !v.IsNumber() {
			return value.False, nil
		}
		n := v.AsNumber()
		return value.Boolean(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})
	defineMethod(interp, ctor, "isNaN", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		v := argOr(args, 0, value.Undefined)
		return value.Boolean(v.IsNumber() && math.IsNaN(v.AsNumber())), nil
	})
	defineMethod(interp, ctor, "parseFloat", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(parseFloatLeading(argOr(args, 0, value.Undefined).ToStringValue())), nil
	})
	defineMethod(interp, ctor, "parseInt", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(parseIntLeading(argOr(args, 0, value.Undefined).ToStringValue(), args)), nil
	})

	defineGlobalConstructor(interp, global, "Number", ctor, proto)
}

func installBoolean(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindBooleanWrapper)
	interp.SetBooleanPrototype(proto)

	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(this.ToStringValue()), nil
	})
	defineMethod(interp, proto, "valueOf", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if this.IsBoolean() {
			return this, nil
		}
		if obj, ok := object.FromValue(this); ok {
			return obj.Primitive, nil
		}
		return value.Boolean(this.IsTruthy()), nil
	})

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(argOr(args, 0, value.Undefined).IsTruthy()), nil
	}, 1)
	defineGlobalConstructor(interp, global, "Boolean", ctor, proto)
}

// parseFloatLeading implements the global parseFloat: consume the longest
// valid leading numeric prefix, ignoring leading whitespace, and returning
// NaN if no digit was found. Scenario S4.
func parseFloatLeading(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	i := 0
	n := len(s)
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	sawDigitsBeforeDot := false
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
		sawDigitsBeforeDot = true
	}
	if i < n && s[i] == '.' {
		i++
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i == start || (!sawDigitsBeforeDot && i == start+1) {
		if strings.HasPrefix(s[start:], "Infinity") {
			if start > 0 && s[0] == '-' {
				return math.Inf(-1)
			}
			return math.Inf(1)
		}
		return math.NaN()
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < n && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseIntLeading(s string, args []value.Value) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	radix := 0
	if len(args) > 1 && !args[1].IsUndefined() {
		r := int(args[1].ToNumber())
		if r != 0 {
			radix = r
		}
	}
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if (radix == 16 || radix == 0) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
		radix = 16
	}
	if radix == 0 {
		radix = 10
	}
	i := 0
	for i < len(s) && isDigitInRadix(s[i], radix) {
		i++
	}
	if i == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[:i], radix, 64)
	if err != nil {
		return math.NaN()
	}
	if neg {
		n = -n
	}
	return float64(n)
}

func isDigitInRadix(c byte, radix int) bool {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'z':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = int(c-'A') + 10
	default:
		return false
	}
	return v < radix
}
