package runtime

import (
	"math"
	"time"

	"jscore/pkg/interpreter"
	"jscore/pkg/object"
	"jscore/pkg/value"
)

// installDate supplements the distilled spec with a minimal Date, grounded
// on original_source's DateObject: millisecond-since-epoch storage plus the
// handful of getters a scripting surface needs (scenario coverage does not
// require full ISO-8601 parsing, per spec.md's Non-goals on time zones).
func installDate(interp *interpreter.Interpreter, global *object.Object) {
	proto := object.New(interp.Heap(), interp.EmptyObjectShape().WithPrototype(interp.Heap(), interp.ObjectPrototype().ToValue()), object.KindDate)
	interp.SetDatePrototype(proto)

	thisTime := func(this value.Value) time.Time {
		obj, ok := object.FromValue(this)
		if !ok {
			return time.Unix(0, 0).UTC()
		}
		ms := obj.Primitive.ToNumber()
		return time.UnixMilli(int64(ms)).UTC()
	}

	defineMethod(interp, proto, "getTime", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, _ := object.FromValue(this)
		return value.Number(obj.Primitive.ToNumber()), nil
	})
	defineMethod(interp, proto, "valueOf", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		obj, _ := object.FromValue(this)
		return value.Number(obj.Primitive.ToNumber()), nil
	})
	defineMethod(interp, proto, "getFullYear", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Year())), nil
	})
	defineMethod(interp, proto, "getMonth", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Month() - 1)), nil
	})
	defineMethod(interp, proto, "getDate", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Day())), nil
	})
	defineMethod(interp, proto, "getDay", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Weekday())), nil
	})
	defineMethod(interp, proto, "getHours", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Hour())), nil
	})
	defineMethod(interp, proto, "getMinutes", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Minute())), nil
	})
	defineMethod(interp, proto, "getSeconds", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Second())), nil
	})
	defineMethod(interp, proto, "getMilliseconds", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(thisTime(this).Nanosecond() / 1e6)), nil
	})
	defineMethod(interp, proto, "toISOString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(thisTime(this).Format("2006-01-02T15:04:05.000Z")), nil
	})
	defineMethod(interp, proto, "toString", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(thisTime(this).Format("Mon Jan 02 2006 15:04:05 GMT+0000")), nil
	})
	defineMethod(interp, proto, "toJSON", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.String(thisTime(this).Format("2006-01-02T15:04:05.000Z")), nil
	})

	newDateObject := func(ctx object.Context, ms float64) *object.Object {
		obj := object.New(ctx.Heap(), interp.EmptyObjectShape().WithPrototype(ctx.Heap(), proto.ToValue()), object.KindDate)
		obj.Primitive = value.Number(ms)
		return obj
	}

	ctor := newConstructor(interp, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		switch len(args) {
		case 0:
			return newDateObject(ctx, float64(time.Now().UnixMilli())).ToValue(), nil
		case 1:
			if args[0].IsString() {
				t, err := time.Parse(time.RFC3339, args[0].AsString())
				if err != nil {
					return newDateObject(ctx, math.NaN()).ToValue(), nil
				}
				return newDateObject(ctx, float64(t.UnixMilli())).ToValue(), nil
			}
			return newDateObject(ctx, args[0].ToNumber()).ToValue(), nil
		default:
			year := int(args[0].ToNumber())
			month := int(argOr(args, 1, value.Number(0)).ToNumber())
			day := int(argOr(args, 2, value.Number(1)).ToNumber())
			hour := int(argOr(args, 3, value.Number(0)).ToNumber())
			minute := int(argOr(args, 4, value.Number(0)).ToNumber())
			sec := int(argOr(args, 5, value.Number(0)).ToNumber())
			ms := int(argOr(args, 6, value.Number(0)).ToNumber())
			t := time.Date(year, time.Month(month+1), day, hour, minute, sec, ms*1e6, time.UTC)
			return newDateObject(ctx, float64(t.UnixMilli())).ToValue(), nil
		}
	}, 7)
	defineMethod(interp, ctor, "now", 0, func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(float64(time.Now().UnixMilli())), nil
	})

	defineGlobalConstructor(interp, global, "Date", ctor, proto)
}
