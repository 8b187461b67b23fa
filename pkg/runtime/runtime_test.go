package runtime

import (
	"strings"
	"testing"

	"jscore/pkg/interpreter"
	"jscore/pkg/lexer"
	"jscore/pkg/parser"
	"jscore/pkg/source"
	"jscore/pkg/value"
)

// newRuntime builds a fully built-in-equipped Interpreter, the way
// cmd/jscore and pkg/repl do: New() then Initialize().
func newRuntime(t *testing.T) *interpreter.Interpreter {
	t.Helper()
	in := interpreter.New(nil)
	Initialize(in)
	return in
}

func eval(t *testing.T, in *interpreter.Interpreter, src string) value.Value {
	t.Helper()
	sf := source.NewEvalSource(src)
	l := lexer.NewLexer(src)
	p := parser.New(l, sf)
	program, diags := p.ParseProgram()
	if len(diags) > 0 {
		t.Fatalf("parse error for %q: %v", src, diags)
	}
	result, err := in.Run(program)
	if err != nil {
		if in.HasException() {
			t.Fatalf("uncaught exception running %q: %s", src, Inspect(in.Heap(), in.Exception()))
		}
		t.Fatalf("Run(%q) returned error: %v", src, err)
	}
	return result
}

func TestNumberIsSafeInteger(t *testing.T) {
	in := newRuntime(t)
	if v := eval(t, in, "Number.isSafeInteger(Math.pow(2, 53) - 1);"); !v.AsBoolean() {
		t.Errorf("expected 2^53-1 to be a safe integer")
	}
	if v := eval(t, in, "Number.isSafeInteger(Math.pow(2, 53));"); v.AsBoolean() {
		t.Errorf("expected 2^53 to not be a safe integer")
	}
}

func TestParseFloatLeadingNumericPrefix(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `parseFloat("12.5abc");`)
	if v.AsNumber() != 12.5 {
		t.Errorf("got %v, want 12.5", v.AsNumber())
	}
}

func TestParseIntRadix(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `parseInt("ff", 16);`)
	if v.AsNumber() != 255 {
		t.Errorf("got %v, want 255", v.AsNumber())
	}
	v2 := eval(t, in, `parseInt("0x1A");`)
	if v2.AsNumber() != 26 {
		t.Errorf("got %v, want 26", v2.AsNumber())
	}
}

func TestMathMaxPropagatesNaN(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `Math.max(1, NaN, 3);`)
	if f := v.AsNumber(); f == f {
		t.Errorf("expected NaN, got %v", f)
	}
}

func TestBigIntAsUintN(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `BigInt.asUintN(8, BigInt(-1)).toString();`)
	if v.AsString() != "255" {
		t.Errorf("got %q, want %q", v.AsString(), "255")
	}
}

// Regex literal syntax (/pattern/flags) is not a parsed expression form in
// this evaluator -- SPEC_FULL.md only requires the new RegExp(pattern,
// flags) constructor form, which these tests use.
func TestRegExpTestAndExec(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `new RegExp("\\d+").test("abc123");`)
	if !v.AsBoolean() {
		t.Errorf("expected /\\d+/ to match \"abc123\"")
	}
	v2 := eval(t, in, `var m = new RegExp("(\\d+)").exec("abc123"); m[1];`)
	if v2.AsString() != "123" {
		t.Errorf("got %q, want %q", v2.AsString(), "123")
	}
}

func TestDateGetFullYear(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `new Date(2024, 0, 15).getFullYear();`)
	if v.AsNumber() != 2024 {
		t.Errorf("got %v, want 2024", v.AsNumber())
	}
}

func TestReflectGetDelegatesToObject(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `var o = { a: 42 }; Reflect.get(o, "a");`)
	if v.AsNumber() != 42 {
		t.Errorf("got %v, want 42", v.AsNumber())
	}
}

// TestInspectGuardsAgainstSelfCycles exercises scenario S8: a self-referencing
// object must print without recursing forever, using the placeholder text
// the printer reserves for an already-visited object.
func TestInspectGuardsAgainstSelfCycles(t *testing.T) {
	in := newRuntime(t)
	eval(t, in, `var x = {}; x.self = x;`)
	xv, ok := in.GlobalEnv().Lookup("x")
	if !ok {
		t.Fatalf("expected global x to be declared")
	}
	out := Inspect(in.Heap(), xv)
	if !strings.Contains(out, "<already printed Object>") {
		t.Errorf("Inspect(x) = %q, want it to contain the cycle placeholder", out)
	}
}

// TestInspectQuotesKeysInInsertionOrder covers spec scenario S6's required
// `{ "a": 1 }` rendering: keys are double-quoted and appear in the order
// they were first assigned, not alphabetically.
func TestInspectQuotesKeysInInsertionOrder(t *testing.T) {
	in := newRuntime(t)
	eval(t, in, `var x = {}; x.b = 1; x.a = 2;`)
	xv, ok := in.GlobalEnv().Lookup("x")
	if !ok {
		t.Fatalf("expected global x to be declared")
	}
	out := Inspect(in.Heap(), xv)
	if out != `{ "b": 1, "a": 2 }` {
		t.Errorf("Inspect(x) = %q, want %q", out, `{ "b": 1, "a": 2 }`)
	}
}

// TestInspectOrdersIndexedKeysBeforeNamed covers §6.3's enumeration order
// for a plain object carrying both array-index and named properties.
func TestInspectOrdersIndexedKeysBeforeNamed(t *testing.T) {
	in := newRuntime(t)
	eval(t, in, `var x = {}; x.name = "n"; x[1] = "y"; x[0] = "x";`)
	xv, ok := in.GlobalEnv().Lookup("x")
	if !ok {
		t.Fatalf("expected global x to be declared")
	}
	out := Inspect(in.Heap(), xv)
	if out != `{ "0": "x", "1": "y", "name": "n" }` {
		t.Errorf("Inspect(x) = %q, want %q", out, `{ "0": "x", "1": "y", "name": "n" }`)
	}
}

// TestRelationalComparisonWithNaNIsAlwaysFalse covers the Abstract
// Relational Comparison's undefined result: every one of <, >, <=, >= must
// be false when either operand coerces to NaN, not just the two the
// evaluator computes directly.
func TestRelationalComparisonWithNaNIsAlwaysFalse(t *testing.T) {
	in := newRuntime(t)
	cases := []string{
		`1 < NaN`,
		`NaN < 1`,
		`1 > NaN`,
		`NaN > 1`,
		`1 <= NaN`,
		`NaN <= 1`,
		`1 >= NaN`,
		`NaN >= 1`,
	}
	for _, src := range cases {
		if v := eval(t, in, src); v.AsBoolean() {
			t.Errorf("%s = true, want false", src)
		}
	}
}

// TestDefinePropertyPartialDescriptorPreservesExistingFields covers spec
// scenario S5: redefining just "writable" on an existing data property must
// not wipe out its value or flip its enumerability to false.
func TestDefinePropertyPartialDescriptorPreservesExistingFields(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `
		var o = { a: 1 };
		Object.defineProperty(o, "a", { writable: false });
		o.a;
	`)
	if got := v.AsNumber(); got != 1 {
		t.Errorf("o.a = %v, want 1", got)
	}
	enumerable := eval(t, in, `
		var p = { a: 1 };
		Object.defineProperty(p, "a", { writable: false });
		var keys = [];
		for (var k in p) { keys.push(k); }
		keys.length;
	`)
	if got := enumerable.AsNumber(); got != 1 {
		t.Errorf("expected \"a\" to remain enumerable after a writable-only redefinition, for-in yielded %v keys", got)
	}
}

// TestDefinePropertyOnNewPropertyDefaultsUnspecifiedFields covers the
// complementary case: a descriptor for a property that doesn't exist yet
// still defaults omitted fields to false/undefined per ECMA's defaults.
func TestDefinePropertyOnNewPropertyDefaultsUnspecifiedFields(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `
		var o = {};
		Object.defineProperty(o, "a", { value: 5 });
		o.a = 9;
		o.a;
	`)
	if got := v.AsNumber(); got != 5 {
		t.Errorf("o.a = %v, want 5 (non-writable by default)", got)
	}
}

// TestObjectKeysIncludesIndexedProperties matches Object.values/entries:
// indexed keys come first (ascending), then named keys in insertion order.
func TestObjectKeysIncludesIndexedProperties(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `Object.keys([1, 2, 3]).join(",");`)
	if got := v.ToStringValue(); got != "0,1,2" {
		t.Errorf("Object.keys([1,2,3]) joined = %q, want %q", got, "0,1,2")
	}
	v = eval(t, in, `
		var o = {};
		o.name = "n";
		o[1] = "y";
		o[0] = "x";
		Object.keys(o).join(",");
	`)
	if got := v.ToStringValue(); got != "0,1,name" {
		t.Errorf("Object.keys(o) joined = %q, want %q", got, "0,1,name")
	}
}

// TestObjectFreezePreservesNonEnumerableAttribute checks that freezing a
// non-enumerable own property doesn't flip it to enumerable.
func TestObjectFreezePreservesNonEnumerableAttribute(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `
		var o = {};
		Object.defineProperty(o, "hidden", { value: 1, enumerable: false, configurable: true });
		Object.freeze(o);
		var keys = [];
		for (var k in o) { keys.push(k); }
		keys.length;
	`)
	if got := v.AsNumber(); got != 0 {
		t.Errorf("expected \"hidden\" to remain non-enumerable after freeze, for-in yielded %v keys", got)
	}
}

// TestInspectRendersArrayHolesAsUndefined covers a sparse array: a hole
// must print as "undefined", not leak the zero Value's internal type.
func TestInspectRendersArrayHolesAsUndefined(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `var a = []; a[2] = 1; a;`)
	out := Inspect(in.Heap(), v)
	if out != "[ undefined, undefined, 1 ]" {
		t.Errorf("Inspect(a) = %q, want %q", out, "[ undefined, undefined, 1 ]")
	}
}

func TestSymbolForReturnsSameSymbolForSameKey(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `Symbol.for("x") === Symbol.for("x");`)
	if !v.AsBoolean() {
		t.Errorf("expected Symbol.for to intern by key")
	}
}

func TestErrorSubtypeInstanceofError(t *testing.T) {
	in := newRuntime(t)
	v := eval(t, in, `(new TypeError("boom")) instanceof Error;`)
	if !v.AsBoolean() {
		t.Errorf("expected a TypeError instance to be an instanceof Error")
	}
}
