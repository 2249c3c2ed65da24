// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value defines the heterogeneous values a calculator stack can
// hold: numbers, strings, booleans, nil, lists, dicts, callables and
// pending variable references.
package value

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"
)

// NArgsVariadic marks a callable that consumes however many stack items
// the caller specifies (or the whole stack with the all modifier).
const NArgsVariadic = -1

// Callable is implemented by anything the calculator can invoke.
type Callable interface {
	// Name returns the callable's bare name.
	Name() string
	// NArgs returns the declared positional arity, or NArgsVariadic.
	NArgs() int
	// Call invokes the callable.
	Call(args []any) (any, error)
}

// Func is a function registry entry: a named callable with a declaring
// module and a declared arity. Immutable once created.
type Func struct {
	ModuleName string
	FuncName   string
	nArgs      int
	impl       func(args []any) (any, error)
}

// NewFunc creates a Func from an explicit implementation and arity.
func NewFunc(moduleName, name string, nArgs int, impl func(args []any) (any, error)) *Func {
	return &Func{ModuleName: moduleName, FuncName: name, nArgs: nArgs, impl: impl}
}

// Name returns the function's bare name.
func (f *Func) Name() string { return f.FuncName }

// NArgs returns the declared positional arity.
func (f *Func) NArgs() int { return f.nArgs }

// Path returns the module-qualified name.
func (f *Func) Path() string { return f.ModuleName + "." + f.FuncName }

// Call invokes the underlying implementation. Fewer arguments than the
// declared arity is an error; extra arguments are passed through for
// implementations that accept them.
func (f *Func) Call(args []any) (any, error) {
	if f.nArgs >= 0 && len(args) < f.nArgs {
		return nil, fmt.Errorf("%s() needs %d argument%s, got %d",
			f.FuncName, f.nArgs, plural(f.nArgs), len(args))
	}
	return f.impl(args)
}

func (f *Func) String() string {
	return fmt.Sprintf("Function(%s (calls %s with %d arg%s))",
		f.FuncName, f.Path(), f.nArgs, plural(f.nArgs))
}

// NewReflected wraps an arbitrary Go function as a Func, converting
// stack values to the function's parameter types at call time. If nArgs
// is negative the arity is inferred from the signature: the number of
// declared parameters, or NArgsVariadic for a variadic function. If
// name is empty the function's own name is used.
func NewReflected(moduleName, name string, fn any, nArgs int) (*Func, error) {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("cannot register %T: not a function", fn)
	}
	if name == "" {
		name = funcName(v)
	}
	if nArgs < 0 {
		if t.IsVariadic() {
			nArgs = NArgsVariadic
		} else {
			nArgs = t.NumIn()
		}
	}
	impl := func(args []any) (any, error) {
		return callReflected(v, t, args)
	}
	return NewFunc(moduleName, name, nArgs, impl), nil
}

// CountArgs returns the positional arity of fn, or def if it cannot be
// determined. Callables report their own arity; plain Go functions are
// inspected by reflection.
func CountArgs(fn any, def int) int {
	if c, ok := fn.(Callable); ok {
		return c.NArgs()
	}
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return def
	}
	if t.IsVariadic() {
		return NArgsVariadic
	}
	return t.NumIn()
}

// IsCallable reports whether v can be invoked by the calculator.
func IsCallable(v any) bool {
	_, ok := v.(Callable)
	return ok
}

func funcName(v reflect.Value) string {
	full := runtime.FuncForPC(v.Pointer()).Name()
	if i := strings.LastIndex(full, "."); i >= 0 {
		full = full[i+1:]
	}
	return strings.TrimSuffix(full, "-fm")
}

func callReflected(v reflect.Value, t reflect.Type, args []any) (any, error) {
	var want int
	if t.IsVariadic() {
		if len(args) < t.NumIn()-1 {
			return nil, fmt.Errorf("needs at least %d argument%s, got %d",
				t.NumIn()-1, plural(t.NumIn()-1), len(args))
		}
		want = len(args)
	} else {
		if len(args) != t.NumIn() {
			return nil, fmt.Errorf("needs %d argument%s, got %d",
				t.NumIn(), plural(t.NumIn()), len(args))
		}
		want = t.NumIn()
	}

	in := make([]reflect.Value, want)
	for i := 0; i < want; i++ {
		var pt reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(i)
		}
		cv, err := convertArg(args[i], pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %s", i+1, err)
		}
		in[i] = cv
	}

	out := v.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if isErrorValue(out[0]) {
			return nil, asError(out[0])
		}
		return normalize(out[0].Interface()), nil
	default:
		if !isErrorValue(out[len(out)-1]) {
			return nil, fmt.Errorf("unsupported return signature %s", t)
		}
		if err := asError(out[len(out)-1]); err != nil {
			return nil, err
		}
		return normalize(out[0].Interface()), nil
	}
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

func isErrorValue(v reflect.Value) bool {
	return v.Type().Implements(errType)
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if pt.Kind() == reflect.Interface && pt.NumMethod() == 0 {
		if arg == nil {
			return reflect.Zero(pt), nil
		}
		return reflect.ValueOf(arg), nil
	}
	if arg == nil {
		switch pt.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", pt)
	}

	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}

	switch pt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, ok := AsInt(arg); ok {
			return reflect.ValueOf(n).Convert(pt), nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := AsFloat(arg); ok {
			return reflect.ValueOf(f).Convert(pt), nil
		}
	}
	if av.Type().ConvertibleTo(pt) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", Repr(arg), pt)
}

// normalize folds Go numeric types down to the calculator's int64/float64
// value model.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return float64(n)
	}
	return v
}

// VarRef is a pending variable reference: a stack entry that is looked
// up live in the variable mapping rather than captured at push time.
type VarRef struct {
	VarName string
	Vars    map[string]any
}

// Value returns the variable's current value.
func (r VarRef) Value() any { return r.Vars[r.VarName] }

func (r VarRef) String() string {
	return fmt.Sprintf("Variable(%s, current value: %s)", r.VarName, Repr(r.Value()))
}

// Iterate expands v into its elements. Lists yield their items, strings
// their characters, dicts their keys in sorted order. The second return
// is false when v is not iterable.
func Iterate(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		copy(out, t)
		return out, true
	case string:
		out := make([]any, 0, len(t))
		for _, r := range t {
			out = append(out, string(r))
		}
		return out, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return out, true
	}
	return nil, false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
