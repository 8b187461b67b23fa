package runtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jscore/pkg/heap"
	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

// installConsole ports the teacher's console sink (pkg/builtins/console.go:
// groupLevel indentation, a label->count map for count/countReset, a
// label->timestamp map for time/timeEnd, printConsoleMessage's prefix +
// space-joined-Inspect formatting) onto this runtime's object model. The
// recursive Inspect-equivalent here additionally cycle-guards with a
// map[*Object]bool, since this object model allows arbitrary prototype and
// property graphs a naive formatter could loop on.
func installConsole(interp *interpreter.Interpreter, global *object.Object) {
	console := interp.NewPlainObject()
	groupLevel := 0
	counters := make(map[string]int)
	timers := make(map[string]time.Time)

	indent := func() string { return strings.Repeat("  ", groupLevel) }

	printMessage := func(ctx object.Context, args []value.Value, prefix string) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = inspect(ctx.Heap(), a, map[*object.Object]bool{})
		}
		fmt.Print(indent() + prefix + strings.Join(parts, " "))
		fmt.Println()
	}

	logMethod := func(name, prefix string) {
		defineMethod(interp, console, name, 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
			printMessage(ctx, args, prefix)
			return value.Undefined, nil
		})
	}
	logMethod("log", "")
	logMethod("info", "")
	logMethod("debug", "")
	logMethod("warn", "WARN: ")
	logMethod("error", "ERROR: ")
	logMethod("trace", "TRACE: ")

	defineMethod(interp, console, "clear", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		fmt.Print("\033[2J\033[H")
		return value.Undefined, nil
	})
	defineMethod(interp, console, "count", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label = args[0].ToStringValue()
		}
		counters[label]++
		fmt.Printf("%s: %d\n", label, counters[label])
		return value.Undefined, nil
	})
	defineMethod(interp, console, "countReset", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label = args[0].ToStringValue()
		}
		delete(counters, label)
		return value.Undefined, nil
	})
	defineMethod(interp, console, "time", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label = args[0].ToStringValue()
		}
		timers[label] = time.Now()
		return value.Undefined, nil
	})
	defineMethod(interp, console, "timeEnd", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label = args[0].ToStringValue()
		}
		start, ok := timers[label]
		if !ok {
			fmt.Printf("Timer '%s' does not exist\n", label)
			return value.Undefined, nil
		}
		fmt.Printf("%s: %.3fms\n", label, float64(time.Since(start).Nanoseconds())/1e6)
		delete(timers, label)
		return value.Undefined, nil
	})
	defineMethod(interp, console, "group", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) > 0 {
			printMessage(ctx, args, "")
		}
		groupLevel++
		return value.Undefined, nil
	})
	defineMethod(interp, console, "groupCollapsed", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) > 0 {
			printMessage(ctx, args, "")
		}
		groupLevel++
		return value.Undefined, nil
	})
	defineMethod(interp, console, "groupEnd", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		if groupLevel > 0 {
			groupLevel--
		}
		return value.Undefined, nil
	})

	global.SetOwnNonEnumerable(interp.Heap(), interp.Log(), "console", console.ToValue())
}

// Inspect renders v the way the REPL prints a "last expression" result,
// reusing the same formatting console.log uses for its arguments.
func Inspect(h *heap.Heap, v value.Value) string {
	return inspect(h, v, map[*object.Object]bool{})
}

// inspect renders a Value the way a REPL or console.log would: primitives
// as their literal forms, strings quoted, objects as `{ "k": v, ... }`,
// arrays as "[ v, v ]", functions as "[Function: name]". seen guards
// against a prototype or property cycle looping forever.
func inspect(h *heap.Heap, v value.Value, seen map[*object.Object]bool) string {
	switch v.Type() {
	case value.TypeString:
		return fmt.Sprintf("%q", v.AsString())
	case value.TypeUndefined:
		return "undefined"
	case value.TypeNull:
		return "null"
	case value.TypeObject:
		obj, ok := object.FromValue(v)
		if !ok {
			return "[object]"
		}
		return inspectObject(h, obj, seen)
	default:
		return v.ToStringValue()
	}
}

func inspectObject(h *heap.Heap, obj *object.Object, seen map[*object.Object]bool) string {
	if seen[obj] {
		return "<already printed Object>"
	}
	switch obj.Kind() {
	case object.KindFunction, object.KindNativeFunction, object.KindBoundFunction:
		name := obj.FuncName
		if name == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + name + "]"
	case object.KindArray:
		seen[obj] = true
		defer delete(seen, obj)
		n := obj.ArrayLength()
		parts := make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			v, ok := obj.GetIndex(i)
			if !ok {
				v = value.Undefined
			}
			parts = append(parts, inspect(h, v, seen))
		}
		if len(parts) == 0 {
			return "[]"
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	case object.KindError:
		msg, _ := obj.GetOwn(h, "message")
		name, _ := obj.GetOwn(h, "name")
		return name.ToStringValue() + ": " + msg.ToStringValue()
	default:
		seen[obj] = true
		defer delete(seen, obj)
		parts := make([]string, 0)
		for _, idx := range obj.IndexKeys() {
			v, _ := obj.GetIndex(idx)
			parts = append(parts, fmt.Sprintf("%q: %s", strconv.FormatUint(uint64(idx), 10), inspect(h, v, seen)))
		}
		for _, k := range obj.OwnKeys(h) {
			v, _ := obj.GetOwn(h, k)
			parts = append(parts, fmt.Sprintf("%q: %s", k, inspect(h, v, seen)))
		}
		if len(parts) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
}
