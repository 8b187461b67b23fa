package value

import (
	"math"
	"math/big"
	"testing"
)

func TestSingletons(t *testing.T) {
	if !Undefined.IsUndefined() {
		t.Errorf("Undefined.IsUndefined() = false")
	}
	if !Null.IsNull() {
		t.Errorf("Null.IsNull() = false")
	}
	if !Empty.IsEmpty() {
		t.Errorf("Empty.IsEmpty() = false")
	}
	if !True.AsBoolean() {
		t.Errorf("True.AsBoolean() = false")
	}
	if False.AsBoolean() {
		t.Errorf("False.AsBoolean() = true")
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"undefined", Undefined, false},
		{"null", Null, false},
		{"zero", Number(0), false},
		{"negzero", Number(math.Copysign(0, -1)), false},
		{"nan", Number(math.NaN()), false},
		{"one", Number(1), true},
		{"emptystring", String(""), false},
		{"nonemptystring", String("x"), true},
		{"falsebool", False, false},
		{"truebool", True, true},
		{"zerobigint", BigInt(big.NewInt(0)), false},
		{"nonzerobigint", BigInt(big.NewInt(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsTruthy(); got != tt.want {
				t.Errorf("IsTruthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrictlyEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same number", Number(1), Number(1), true},
		{"diff number", Number(1), Number(2), false},
		{"nan never equal", Number(math.NaN()), Number(math.NaN()), false},
		{"string equal", String("a"), String("a"), true},
		{"string diff", String("a"), String("b"), false},
		{"diff types", Number(1), String("1"), false},
		{"null null", Null, Null, true},
		{"undefined undefined", Undefined, Undefined, true},
		{"null undefined", Null, Undefined, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.StrictlyEquals(tt.b); got != tt.want {
				t.Errorf("StrictlyEquals() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameValueZero(t *testing.T) {
	if !Number(math.NaN()).SameValueZero(Number(math.NaN())) {
		t.Errorf("NaN SameValueZero NaN should be true")
	}
	if Number(math.NaN()).StrictlyEquals(Number(math.NaN())) {
		t.Errorf("NaN StrictlyEquals NaN should be false")
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want float64
	}{
		{"number", Number(3.5), 3.5},
		{"true", True, 1},
		{"false", False, 0},
		{"null", Null, 0},
		{"emptystring", String(""), 0},
		{"numericstring", String("42"), 42},
		{"hexstring", String("0x1A"), 26},
		{"whitespacestring", String("  7  "), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.ToNumber()
			if math.IsNaN(tt.want) {
				if !math.IsNaN(got) {
					t.Errorf("ToNumber() = %v, want NaN", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ToNumber() = %v, want %v", got, tt.want)
			}
		})
	}
	if !math.IsNaN(Undefined.ToNumber()) {
		t.Errorf("Undefined.ToNumber() should be NaN")
	}
	if !math.IsNaN(String("not a number").ToNumber()) {
		t.Errorf("invalid numeric string should be NaN")
	}
}

func TestToStringValue(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"undefined", Undefined, "undefined"},
		{"null", Null, "null"},
		{"true", True, "true"},
		{"false", False, "false"},
		{"integer", Number(42), "42"},
		{"float", Number(3.5), "3.5"},
		{"string", String("hi"), "hi"},
		{"bigint", BigInt(big.NewInt(9)), "9"},
		{"verysmall", Number(1e-9), "1e-9"},
		{"verylarge", Number(1e21), "1e+21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.ToStringValue(); got != tt.want {
				t.Errorf("ToStringValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSymbolIdentity(t *testing.T) {
	a := Symbol("x")
	b := Symbol("x")
	if a.StrictlyEquals(b) {
		t.Errorf("distinct symbols with same description must not be ===")
	}
	if !a.StrictlyEquals(a) {
		t.Errorf("a symbol must be === to itself")
	}
}
