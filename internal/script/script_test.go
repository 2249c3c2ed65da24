// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package script

import (
	"strings"
	"testing"

	"nickandperla.net/rpn/internal/value"
)

func TestEvalLiterals(t *testing.T) {
	ev := New()
	env := MapEnv{}

	cases := []struct {
		src  string
		want any
	}{
		{"42", int64(42)},
		{"3.5", 3.5},
		{"'hello'", "hello"},
		{`"world"`, "world"},
		{"true", true},
		{"False", false},
		{"nil", nil},
		{"None", nil},
	}
	for _, c := range cases {
		got, err := ev.Eval(c.src, env)
		if err != nil {
			t.Fatalf("Eval(%q): %s", c.src, err)
		}
		if !value.Equal(got, c.want) && got != c.want {
			t.Errorf("Eval(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestEvalArithmetic(t *testing.T) {
	ev := New()
	env := MapEnv{}

	cases := []struct {
		src  string
		want any
	}{
		{"3 + 4", int64(7)},
		{"10 - 2 * 3", int64(4)},
		{"(10 - 2) * 3", int64(24)},
		{"7 / 2", 3.5},
		{"7 // 2", int64(3)},
		{"-7 // 2", int64(-4)},
		{"7 % 3", int64(1)},
		{"-7 % 3", int64(2)},
		{"2 ** 10", int64(1024)},
		{"2 ** 3 ** 2", int64(512)},
		{"-3 + 5", int64(2)},
		{"'ab' + 'cd'", "abcd"},
		{"'ab' * 3", "ababab"},
	}
	for _, c := range cases {
		got, err := ev.Eval(c.src, env)
		if err != nil {
			t.Fatalf("Eval(%q): %s", c.src, err)
		}
		if !value.Equal(got, c.want) {
			t.Errorf("Eval(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestEvalComparisons(t *testing.T) {
	ev := New()
	env := MapEnv{}

	cases := []struct {
		src  string
		want bool
	}{
		{"3 < 4", true},
		{"4 <= 4", true},
		{"5 > 6", false},
		{"3 == 3.0", true},
		{"3 != 4", true},
		{"1 < 2 < 3", true},
		{"1 < 3 < 2", false},
		{"'a' < 'b'", true},
	}
	for _, c := range cases {
		got, err := ev.Eval(c.src, env)
		if err != nil {
			t.Fatalf("Eval(%q): %s", c.src, err)
		}
		if got != c.want {
			t.Errorf("Eval(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestEvalCollections(t *testing.T) {
	ev := New()
	env := MapEnv{}

	got, err := ev.Eval("[1, 2, 3][1]", env)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(2) {
		t.Errorf("index = %v, want 2", got)
	}

	got, err = ev.Eval("[1, 2, 3][-1]", env)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(3) {
		t.Errorf("negative index = %v, want 3", got)
	}

	if _, err = ev.Eval("[1][5]", env); err == nil ||
		err.Error() != "list index out of range" {
		t.Errorf("out of range error = %v", err)
	}

	got, err = ev.Eval("{'a': 27, 'b': 28}['b']", env)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(28) {
		t.Errorf("dict index = %v, want 28", got)
	}

	got, err = ev.Eval("'hello'[1]", env)
	if err != nil {
		t.Fatal(err)
	}
	if got != "e" {
		t.Errorf("string index = %v, want e", got)
	}
}

func TestEvalVariables(t *testing.T) {
	ev := New()
	env := MapEnv{"x": int64(10)}

	got, err := ev.Eval("x * 2", env)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(20) {
		t.Errorf("x * 2 = %v, want 20", got)
	}

	_, err = ev.Eval("missing + 1", env)
	if err == nil || err.Error() != "name 'missing' is not defined" {
		t.Errorf("undefined name error = %v", err)
	}
}

func TestExecAssignment(t *testing.T) {
	ev := New()
	env := MapEnv{}

	if err := ev.Exec("a = 6 * 7", env); err != nil {
		t.Fatal(err)
	}
	if v, _ := env.Get("a"); v != int64(42) {
		t.Errorf("a = %v, want 42", v)
	}

	if err := ev.Exec("b = a + 1", env); err != nil {
		t.Fatal(err)
	}
	if v, _ := env.Get("b"); v != int64(43) {
		t.Errorf("b = %v, want 43", v)
	}
}

func TestLambda(t *testing.T) {
	ev := New()
	env := MapEnv{}

	got, err := ev.Eval("lambda x: x + 1", env)
	if err != nil {
		t.Fatal(err)
	}
	fn, ok := got.(value.Callable)
	if !ok {
		t.Fatalf("lambda did not produce a callable: %T", got)
	}
	if fn.NArgs() != 1 {
		t.Errorf("NArgs = %d, want 1", fn.NArgs())
	}
	out, err := fn.Call([]any{int64(41)})
	if err != nil {
		t.Fatal(err)
	}
	if out != int64(42) {
		t.Errorf("call = %v, want 42", out)
	}

	// Closures see the enclosing environment.
	env.Set("base", int64(100))
	got, err = ev.Eval("(lambda n: base + n)(5)", env)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(105) {
		t.Errorf("closure call = %v, want 105", got)
	}
}

func TestCallRegisteredFunc(t *testing.T) {
	ev := New()
	add := value.NewFunc("operator", "add", 2, func(args []any) (any, error) {
		return value.Add(args[0], args[1])
	})
	env := MapEnv{"add": add}

	got, err := ev.Eval("add(20, 22)", env)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Errorf("add(20, 22) = %v, want 42", got)
	}
}

func TestCallErrors(t *testing.T) {
	ev := New()
	add := value.NewFunc("operator", "add", 2, func(args []any) (any, error) {
		return value.Add(args[0], args[1])
	})
	boom := value.NewFunc("registered", "boom", 0, func([]any) (any, error) {
		panic("kaboom")
	})
	env := MapEnv{"add": add, "boom": boom}

	_, err := ev.Eval("add(1)", env)
	if err == nil || !strings.Contains(err.Error(), "needs 2 arguments, got 1") {
		t.Errorf("arity error = %v", err)
	}

	// A panicking callable surfaces as an error, not a crash.
	_, err = ev.Eval("boom()", env)
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("panic error = %v", err)
	}

	_, err = ev.Eval("3(4)", env)
	if err == nil || !strings.Contains(err.Error(), "not callable") {
		t.Errorf("non-callable error = %v", err)
	}
}

func TestIncompleteInput(t *testing.T) {
	ev := New()
	env := MapEnv{}

	for _, src := range []string{"[1,", "(3 +", "{'a':"} {
		_, err := ev.Eval(src, env)
		if err == nil {
			t.Fatalf("Eval(%q) unexpectedly succeeded", src)
		}
		if !IsIncomplete(err) {
			t.Errorf("Eval(%q) error not marked incomplete: %s", src, err)
		}
	}

	_, err := ev.Eval("3 +* 4", env)
	if err == nil {
		t.Fatal("bad operator sequence unexpectedly succeeded")
	}
	if IsIncomplete(err) && !strings.Contains(err.Error(), "<EOF>") {
		t.Errorf("non-truncated error marked incomplete: %s", err)
	}
}

func TestParseEng(t *testing.T) {
	cases := []struct {
		src  string
		want float64
		ok   bool
	}{
		{"10k", 10000, true},
		{"10K", 10000, true},
		{"2.5M", 2.5e6, true},
		{"3u", 3e-6, true},
		{"7G", 7e9, true},
		{"1m", 1e-3, true},
		{"10", 0, false},
		{"k", 0, false},
		{"1e3k", 0, false},
		{"xk", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseEng(c.src)
		if ok != c.ok {
			t.Errorf("ParseEng(%q) ok = %v, want %v", c.src, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseEng(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}
