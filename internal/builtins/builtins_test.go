// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package builtins

import (
	"bytes"
	"math"
	"testing"

	"nickandperla.net/rpn/internal/value"
)

func populated() (map[string]*value.Func, map[string]any, *bytes.Buffer) {
	out := &bytes.Buffer{}
	functions := make(map[string]*value.Func)
	variables := make(map[string]any)
	Populate(functions, variables, out)
	return functions, variables, out
}

func call(t *testing.T, functions map[string]*value.Func, name string, args ...any) any {
	t.Helper()
	f, ok := functions[name]
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	got, err := f.Call(args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return got
}

func TestPopulateRegistersPathsAndAliases(t *testing.T) {
	functions, variables, _ := populated()

	for _, name := range []string{
		"math.sqrt", "sqrt", "operator.add", "+", "==", "!=", "*", "-",
		"/", "div", "log", "builtins.len", "len", "max", "min", "str",
	} {
		if _, ok := functions[name]; !ok {
			t.Errorf("function %q not registered", name)
		}
	}

	// Short names are also bound as variables for use in expressions.
	if _, ok := variables["sqrt"]; !ok {
		t.Error("sqrt not bound as a variable")
	}

	// The abbreviations point at the same registry entries.
	if functions["+"] != functions["operator.add"] {
		t.Error("+ is not operator.add")
	}
}

func TestConstants(t *testing.T) {
	_, variables, _ := populated()

	pi, ok := variables["pi"].(float64)
	if !ok || pi < 3.14 || pi > 3.15 {
		t.Errorf("pi = %v", variables["pi"])
	}
	for _, name := range []string{"e", "inf", "nan", "tau"} {
		if _, ok := variables[name]; !ok {
			t.Errorf("constant %q not bound", name)
		}
	}
}

func TestMathFunctions(t *testing.T) {
	functions, _, _ := populated()

	if got := call(t, functions, "math.sqrt", int64(16)); got != 4.0 {
		t.Errorf("sqrt(16) = %v", got)
	}
	if got := call(t, functions, "math.floor", 3.7); got != int64(3) {
		t.Errorf("floor(3.7) = %v", got)
	}
	if got := call(t, functions, "math.ceil", 3.2); got != int64(4) {
		t.Errorf("ceil(3.2) = %v", got)
	}
	if got := call(t, functions, "math.factorial", int64(5)); got != int64(120) {
		t.Errorf("factorial(5) = %v", got)
	}
	if got := call(t, functions, "math.gcd", int64(12), int64(18)); got != int64(6) {
		t.Errorf("gcd(12, 18) = %v", got)
	}
	got := call(t, functions, "math.log", math.E)
	if f, _ := value.AsFloat(got); f < 0.999 || f > 1.001 {
		t.Errorf("log(e) = %v", got)
	}
}

func TestOperatorFunctions(t *testing.T) {
	functions, _, _ := populated()

	if got := call(t, functions, "+", int64(20), int64(22)); got != int64(42) {
		t.Errorf("+ = %v", got)
	}
	if got := call(t, functions, "==", int64(3), 3.0); got != true {
		t.Errorf("== = %v", got)
	}
	if got := call(t, functions, "operator.lt", int64(3), int64(4)); got != true {
		t.Errorf("lt = %v", got)
	}
	if got := call(t, functions, "operator.neg", int64(5)); got != int64(-5) {
		t.Errorf("neg = %v", got)
	}
}

func TestGeneralFunctions(t *testing.T) {
	functions, _, _ := populated()

	if got := call(t, functions, "len", "hello"); got != int64(5) {
		t.Errorf("len = %v", got)
	}
	if got := call(t, functions, "max", []any{int64(3), int64(9), int64(4)}); got != int64(9) {
		t.Errorf("max = %v", got)
	}
	if got := call(t, functions, "max", int64(3), int64(9)); got != int64(9) {
		t.Errorf("max two args = %v", got)
	}
	if got := call(t, functions, "builtins.sum", []any{int64(1), int64(2), int64(3)}); got != int64(6) {
		t.Errorf("sum = %v", got)
	}
	if got := call(t, functions, "str", int64(7)); got != "7" {
		t.Errorf("str = %v", got)
	}
	if got := call(t, functions, "builtins.int", "42"); got != int64(42) {
		t.Errorf("int = %v", got)
	}
	if got := call(t, functions, "builtins.sorted", []any{int64(3), int64(1), int64(2)}); !value.Equal(got, []any{int64(1), int64(2), int64(3)}) {
		t.Errorf("sorted = %v", got)
	}
	if got := call(t, functions, "range", int64(3)); !value.Equal(got, []any{int64(0), int64(1), int64(2)}) {
		t.Errorf("range = %v", got)
	}
	if got := call(t, functions, "builtins.ord", "A"); got != int64(65) {
		t.Errorf("ord = %v", got)
	}
}

func TestPrintWritesOutput(t *testing.T) {
	functions, _, out := populated()

	call(t, functions, "print", "hello", int64(42))
	if got := out.String(); got != "hello 42\n" {
		t.Errorf("print output = %q", got)
	}
}

func TestMaxNotIterable(t *testing.T) {
	functions, _, _ := populated()
	f := functions["max"]
	if _, err := f.Call([]any{int64(5)}); err == nil {
		t.Error("max of a bare int should error")
	}
}
