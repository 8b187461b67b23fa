package runtime

import (
	"math"
	"strings"
	"unicode"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

func installString(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindStringWrapper)
	interp.SetStringPrototype(proto)

	thisString := func(this value.Value) string {
		if this.IsString() {
			return this.AsString()
		}
		if obj, ok := object.FromValue(this); ok {
			return obj.Primitive.ToStringValue()
		}
		return this.ToStringValue()
	}

	defineMethod(interp, proto, "charAt", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		i := int(argOr(args, 0, value.Number(0)).ToNumber())
		if i < 0 || i >= len(runes) {
			return value.String(""), nil
		}
		return value.String(string(runes[i])), nil
	})
	defineMethod(interp, proto, "charCodeAt", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		i := int(argOr(args, 0, value.Number(0)).ToNumber())
		if i < 0 || i >= len(runes) {
			return value.Number(math.NaN()), nil
		}
		return value.Number(float64(runes[i])), nil
	})
	defineMethod(interp, proto, "slice", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		start, end := sliceBounds(len(runes), args)
		return value.String(string(runes[start:end])), nil
	})
	defineMethod(interp, proto, "substring", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		n := len(runes)
		start := clampNonNegative(int(argOr(args, 0, value.Number(0)).ToNumber()), n)
		end := n
		if len(args) > 1 && !args[1].IsUndefined() {
			end = clampNonNegative(int(args[1].ToNumber()), n)
		}
		if start > end {
			start, end = end, start
		}
		return value.String(string(runes[start:end])), nil
	})
	defineMethod(interp, proto, "indexOf", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		needle := argOr(args, 0, value.Undefined).ToStringValue()
		idx := strings.Index(s, needle)
		if idx < 0 {
			return value.Number(-1), nil
		}
		return value.Number(float64(len([]rune(s[:idx])))), nil
	})
	defineMethod(interp, proto, "lastIndexOf", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		needle := argOr(args, 0, value.Undefined).ToStringValue()
		idx := strings.LastIndex(s, needle)
		if idx < 0 {
			return value.Number(-1), nil
		}
		return value.Number(float64(len([]rune(s[:idx])))), nil
	})
	defineMethod(interp, proto, "includes", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(strings.Contains(thisString(this), argOr(args, 0, value.Undefined).ToStringValue())), nil
	})
	defineMethod(interp, proto, "startsWith", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(strings.HasPrefix(thisString(this), argOr(args, 0, value.Undefined).ToStringValue())), nil
	})
	defineMethod(interp, proto, "endsWith", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(strings.HasSuffix(thisString(this), argOr(args, 0, value.Undefined).ToStringValue())), nil
	})
	defineMethod(interp, proto, "toUpperCase", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(strings.ToUpper(thisString(this))), nil
	})
	defineMethod(interp, proto, "toLowerCase", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(strings.ToLower(thisString(this))), nil
	})
	defineMethod(interp, proto, "trim", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(strings.TrimSpace(thisString(this))), nil
	})
	defineMethod(interp, proto, "trimStart", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(strings.TrimLeftFunc(thisString(this), unicode.IsSpace)), nil
	})
	defineMethod(interp, proto, "trimEnd", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(strings.TrimRightFunc(thisString(this), unicode.IsSpace)), nil
	})
	defineMethod(interp, proto, "split", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		if len(args) == 0 || args[0].IsUndefined() {
			return interp.NewArray(value.String(s)).ToValue(), nil
		}
		sep := args[0].ToStringValue()
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.String(p)
		}
		return interp.NewArray(elems...).ToValue(), nil
	})
	defineMethod(interp, proto, "replace", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		search := argOr(args, 0, value.Undefined).ToStringValue()
		replacement := argOr(args, 1, value.Undefined).ToStringValue()
		return value.String(strings.Replace(s, search, replacement, 1)), nil
	})
	defineMethod(interp, proto, "replaceAll", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		search := argOr(args, 0, value.Undefined).ToStringValue()
		replacement := argOr(args, 1, value.Undefined).ToStringValue()
		return value.String(strings.ReplaceAll(s, search, replacement)), nil
	})
	defineMethod(interp, proto, "repeat", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		n := int(argOr(args, 0, value.Number(0)).ToNumber())
		if n < 0 {
			return value.Empty, ctx.Throw("RangeError", "Invalid count value")
		}
		return value.String(strings.Repeat(thisString(this), n)), nil
	})
	defineMethod(interp, proto, "padStart", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(pad(thisString(this), args, true)), nil
	})
	defineMethod(interp, proto, "padEnd", 2, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(pad(thisString(this), args, false)), nil
	})
	defineMethod(interp, proto, "concat", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		var b strings.Builder
		b.WriteString(thisString(this))
		for _, a := range args {
			b.WriteString(a.ToStringValue())
		}
		return value.String(b.String()), nil
	})
	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(thisString(this)), nil
	})
	defineMethod(interp, proto, "valueOf", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(thisString(this)), nil
	})

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		s := ""
		if len(args) > 0 {
			s = args[0].ToStringValue()
		}
		return value.String(s), nil
	}, 1)
	defineMethod(interp, ctor, "fromCharCode", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		runes := make([]rune, len(args))
		for i, a := range args {
			runes[i] = rune(int(a.ToNumber()))
		}
		return value.String(string(runes)), nil
	})

	defineGlobalConstructor(interp, global, "String", ctor, proto)
}

func pad(s string, args []value.Value, start bool) string {
	targetLen := int(argOr(args, 0, value.Number(0)).ToNumber())
	padStr := " "
	if len(args) > 1 && !args[1].IsUndefined() {
		padStr = args[1].ToStringValue()
	}
	runes := []rune(s)
	if targetLen <= len(runes) || padStr == "" {
		return s
	}
	need := targetLen - len(runes)
	padRunes := []rune(padStr)
	built := make([]rune, 0, need)
	for len(built) < need {
		built = append(built, padRunes...)
	}
	built = built[:need]
	if start {
		return string(built) + s
	}
	return s + string(built)
}

func clampNonNegative(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
