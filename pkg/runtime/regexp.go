package runtime

import (
	"strings"

	"github.com/dlclark/regexp2"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

func compileRegex(src, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.None
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	return regexp2.Compile(src, opts)
}

// installRegExp wires the RegExp constructor to dlclark/regexp2 -- the
// teacher's corpus carries no grounding for this since paserati itself has
// no regex support, so test/exec semantics follow SPEC_FULL.md §7.6's
// description of the standard ECMAScript RegExp surface directly.
func installRegExp(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindRegExp)
	interp.SetRegExpPrototype(proto)

	thisRegex := func(this value.Value) (*object.Object, bool) {
		obj, ok := object.FromValue(this)
		if !ok || obj.Kind() != object.KindRegExp {
			return nil, false
		}
		return obj, true
	}

	defineMethod(interp, proto, "test", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := thisRegex(this)
		if !ok {
			return value.Empty, ctx.Throw("TypeError", "RegExp.prototype.test called on incompatible receiver")
		}
		re, err := compileRegex(obj.RegexSrc, obj.RegexFlags)
		if err != nil {
			return value.Empty, ctx.Throw("SyntaxError", err.Error())
		}
		s := argOr(args, 0, value.Undefined).ToStringValue()
		m, err := re.FindStringMatch(s)
		if err != nil {
			return value.Empty, ctx.Throw("SyntaxError", err.Error())
		}
		return value.Boolean(m != nil), nil
	})
	defineMethod(interp, proto, "exec", 1, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := thisRegex(this)
		if !ok {
			return value.Empty, ctx.Throw("TypeError", "RegExp.prototype.exec called on incompatible receiver")
		}
		re, err := compileRegex(obj.RegexSrc, obj.RegexFlags)
		if err != nil {
			return value.Empty, ctx.Throw("SyntaxError", err.Error())
		}
		s := argOr(args, 0, value.Undefined).ToStringValue()
		isGlobal := strings.Contains(obj.RegexFlags, "g")
		startAt := 0
		if isGlobal {
			if v, found := obj.GetOwn(ctx.Heap(), "lastIndex"); found {
				startAt = int(v.ToNumber())
			}
		}
		if startAt < 0 || startAt > len(s) {
			if isGlobal {
				obj.SetOwn(ctx.Heap(), interp.Log(), "lastIndex", value.Number(0))
			}
			return value.Null, nil
		}
		m, err := re.FindStringMatchStartingAt(s, startAt)
		if err != nil {
			return value.Empty, ctx.Throw("SyntaxError", err.Error())
		}
		if m == nil {
			if isGlobal {
				obj.SetOwn(ctx.Heap(), interp.Log(), "lastIndex", value.Number(0))
			}
			return value.Null, nil
		}
		if isGlobal {
			obj.SetOwn(ctx.Heap(), interp.Log(), "lastIndex", value.Number(float64(m.Index+m.Length)))
		}
		groups := m.Groups()
		elems := make([]value.Value, len(groups))
		for i, g := range groups {
			if len(g.Captures) == 0 {
				elems[i] = value.Undefined
				continue
			}
			elems[i] = value.String(g.String())
		}
		result := interp.NewArray(elems...)
		result.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "index", value.Number(float64(m.Index)))
		result.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "input", value.String(s))
		return result.ToValue(), nil
	})
	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := thisRegex(this)
		if !ok {
			return value.String("/(?:)/"), nil
		}
		return value.String("/" + obj.RegexSrc + "/" + obj.RegexFlags), nil
	})

	newRegExpObject := func(ctx object.Context, src, flags string) (*object.Object, error) {
		if _, err := compileRegex(src, flags); err != nil {
			return nil, ctx.Throw("SyntaxError", err.Error())
		}
		obj := object.New(ctx.Heap(), interp.EmptyObjectShape().WithPrototype(ctx.Heap(), proto.ToValue()), object.KindRegExp)
		obj.RegexSrc = src
		obj.RegexFlags = flags
		obj.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "source", value.String(src))
		obj.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "flags", value.String(flags))
		obj.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "global", value.Boolean(strings.Contains(flags, "g")))
		obj.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "ignoreCase", value.Boolean(strings.Contains(flags, "i")))
		obj.SetOwnNonEnumerable(ctx.Heap(), interp.Log(), "multiline", value.Boolean(strings.Contains(flags, "m")))
		obj.SetOwn(ctx.Heap(), interp.Log(), "lastIndex", value.Number(0))
		return obj, nil
	}

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		patternArg := argOr(args, 0, value.Undefined)
		if existing, ok := thisRegex(patternArg); ok {
			flags := existing.RegexFlags
			if len(args) > 1 && !args[1].IsUndefined() {
				flags = args[1].ToStringValue()
			}
			obj, err := newRegExpObject(ctx, existing.RegexSrc, flags)
			if err != nil {
				return value.Empty, err
			}
			return obj.ToValue(), nil
		}
		src := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			src = patternArg.ToStringValue()
		}
		flags := ""
		if len(args) > 1 && !args[1].IsUndefined() {
			flags = args[1].ToStringValue()
		}
		obj, err := newRegExpObject(ctx, src, flags)
		if err != nil {
			return value.Empty, err
		}
		return obj.ToValue(), nil
	}, 2)

	defineGlobalConstructor(interp, global, "RegExp", ctor, proto)
}
