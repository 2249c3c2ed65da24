// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package builtins supplies the calculator's initial function registry:
// a curated set of math, operator and general-purpose functions, short
// aliases for the common ones, and a handful of constants. Names keep
// their familiar module-qualified paths (math.sqrt, operator.add) so
// both the long and short spellings work as commands.
package builtins

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"nickandperla.net/rpn/internal/value"
)

// Populate fills functions with the builtin registry and variables with
// the builtin names and constants. Functions are registered under both
// their module-qualified path and their bare name; bare names are also
// bound as variables so expressions can reference them. out receives
// the output of the print function.
func Populate(functions map[string]*value.Func, variables map[string]any, out io.Writer) {
	for _, f := range registry(out) {
		functions[f.Path()] = f
		if _, ok := functions[f.FuncName]; !ok {
			functions[f.FuncName] = f
		}
		if _, ok := variables[f.FuncName]; !ok {
			variables[f.FuncName] = f
		}
	}

	for long, shorts := range abbrevs {
		f, ok := functions[long]
		if !ok {
			continue
		}
		for _, short := range shorts {
			if _, exists := functions[short]; !exists {
				functions[short] = f
			}
			if _, exists := variables[short]; !exists {
				variables[short] = f
			}
		}
	}

	for name, v := range constants {
		if _, exists := variables[name]; !exists {
			variables[name] = v
		}
	}
}

// abbrevs maps module-qualified names to their short spellings.
var abbrevs = map[string][]string{
	"math.log":         {"log"},
	"operator.add":     {"+"},
	"operator.eq":      {"=="},
	"operator.mul":     {"*"},
	"operator.ne":      {"!="},
	"operator.sub":     {"-"},
	"operator.truediv": {"/", "div"},
}

var constants = map[string]any{
	"e":   math.E,
	"inf": math.Inf(1),
	"nan": math.NaN(),
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
}

func registry(out io.Writer) []*value.Func {
	fns := mathFuncs()
	fns = append(fns, operatorFuncs()...)
	fns = append(fns, generalFuncs(out)...)
	return fns
}

// mathFn wraps a one-argument float function.
func mathFn(name string, fn func(float64) float64) *value.Func {
	return value.NewFunc("math", name, 1, func(args []any) (any, error) {
		f, ok := value.AsFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("must be a number, not %s", value.TypeName(args[0]))
		}
		return fn(f), nil
	})
}

func mathFn2(name string, fn func(float64, float64) float64) *value.Func {
	return value.NewFunc("math", name, 2, func(args []any) (any, error) {
		a, aok := value.AsFloat(args[0])
		b, bok := value.AsFloat(args[1])
		if !aok || !bok {
			return nil, fmt.Errorf("must be numbers, not %s and %s",
				value.TypeName(args[0]), value.TypeName(args[1]))
		}
		return fn(a, b), nil
	})
}

func mathFuncs() []*value.Func {
	fns := []*value.Func{}
	for name, fn := range map[string]func(float64) float64{
		"acos":    math.Acos,
		"acosh":   math.Acosh,
		"asin":    math.Asin,
		"asinh":   math.Asinh,
		"atan":    math.Atan,
		"atanh":   math.Atanh,
		"cbrt":    math.Cbrt,
		"cos":     math.Cos,
		"cosh":    math.Cosh,
		"degrees": func(f float64) float64 { return f * 180 / math.Pi },
		"erf":     math.Erf,
		"erfc":    math.Erfc,
		"exp":     math.Exp,
		"expm1":   math.Expm1,
		"fabs":    math.Abs,
		"gamma":   math.Gamma,
		"log":     math.Log,
		"log10":   math.Log10,
		"log1p":   math.Log1p,
		"log2":    math.Log2,
		"radians": func(f float64) float64 { return f * math.Pi / 180 },
		"sin":     math.Sin,
		"sinh":    math.Sinh,
		"sqrt":    math.Sqrt,
		"tan":     math.Tan,
		"tanh":    math.Tanh,
	} {
		fns = append(fns, mathFn(name, fn))
	}

	for name, fn := range map[string]func(float64, float64) float64{
		"atan2": math.Atan2,
		"fmod":  math.Mod,
		"hypot": math.Hypot,
		"pow":   math.Pow,
	} {
		fns = append(fns, mathFn2(name, fn))
	}

	fns = append(fns,
		// ceil, floor and trunc keep integral results integral.
		value.NewFunc("math", "ceil", 1, func(args []any) (any, error) {
			f, ok := value.AsFloat(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return int64(math.Ceil(f)), nil
		}),
		value.NewFunc("math", "floor", 1, func(args []any) (any, error) {
			f, ok := value.AsFloat(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return int64(math.Floor(f)), nil
		}),
		value.NewFunc("math", "trunc", 1, func(args []any) (any, error) {
			f, ok := value.AsFloat(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return int64(math.Trunc(f)), nil
		}),
		value.NewFunc("math", "factorial", 1, func(args []any) (any, error) {
			n, ok := value.AsInt(args[0])
			if !ok || n < 0 {
				return nil, fmt.Errorf("factorial() only accepts non-negative integers")
			}
			var out int64 = 1
			for i := int64(2); i <= n; i++ {
				out *= i
			}
			return out, nil
		}),
		value.NewFunc("math", "gcd", 2, func(args []any) (any, error) {
			a, aok := value.AsInt(args[0])
			b, bok := value.AsInt(args[1])
			if !aok || !bok {
				return nil, fmt.Errorf("gcd() only accepts integers")
			}
			for b != 0 {
				a, b = b, a%b
			}
			if a < 0 {
				a = -a
			}
			return a, nil
		}),
		value.NewFunc("math", "isnan", 1, func(args []any) (any, error) {
			f, ok := value.AsFloat(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return math.IsNaN(f), nil
		}),
		value.NewFunc("math", "isinf", 1, func(args []any) (any, error) {
			f, ok := value.AsFloat(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return math.IsInf(f, 0), nil
		}),
	)
	return fns
}

func notANumber(v any) error {
	return fmt.Errorf("must be a number, not %s", value.TypeName(v))
}

func opFn(name string, fn func(a, b any) (any, error)) *value.Func {
	return value.NewFunc("operator", name, 2, func(args []any) (any, error) {
		return fn(args[0], args[1])
	})
}

func cmpFn(name string, fn func(a, b any) (bool, error)) *value.Func {
	return value.NewFunc("operator", name, 2, func(args []any) (any, error) {
		return fn(args[0], args[1])
	})
}

func operatorFuncs() []*value.Func {
	return []*value.Func{
		opFn("add", value.Add),
		opFn("sub", value.Sub),
		opFn("mul", value.Mul),
		opFn("truediv", value.TrueDiv),
		opFn("floordiv", value.FloorDiv),
		opFn("mod", value.Mod),
		opFn("pow", value.Pow),
		value.NewFunc("operator", "neg", 1, func(args []any) (any, error) {
			return value.Neg(args[0])
		}),
		value.NewFunc("operator", "abs", 1, func(args []any) (any, error) {
			return absValue(args[0])
		}),
		value.NewFunc("operator", "not_", 1, func(args []any) (any, error) {
			return !value.Truthy(args[0]), nil
		}),
		value.NewFunc("operator", "eq", 2, func(args []any) (any, error) {
			return value.Equal(args[0], args[1]), nil
		}),
		value.NewFunc("operator", "ne", 2, func(args []any) (any, error) {
			return !value.Equal(args[0], args[1]), nil
		}),
		cmpFn("lt", value.Less),
		cmpFn("gt", func(a, b any) (bool, error) { return value.Less(b, a) }),
		cmpFn("le", func(a, b any) (bool, error) {
			gt, err := value.Less(b, a)
			return !gt, err
		}),
		cmpFn("ge", func(a, b any) (bool, error) {
			lt, err := value.Less(a, b)
			return !lt, err
		}),
	}
}

func absValue(v any) (any, error) {
	switch t := v.(type) {
	case int64:
		if t < 0 {
			return -t, nil
		}
		return t, nil
	case bool:
		n, _ := value.AsInt(t)
		return n, nil
	case float64:
		return math.Abs(t), nil
	}
	return nil, notANumber(v)
}

// iterableArgs expands a single iterable argument, matching the usual
// max/min/sum calling conventions: one argument must be iterable, more
// than one is used as given.
func iterableArgs(name string, args []any) ([]any, error) {
	if len(args) != 1 {
		return args, nil
	}
	items, ok := value.Iterate(args[0])
	if !ok {
		return nil, fmt.Errorf("%s(): %s is not iterable", name, value.TypeName(args[0]))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s() arg is an empty sequence", name)
	}
	return items, nil
}

func generalFuncs(out io.Writer) []*value.Func {
	return []*value.Func{
		value.NewFunc("builtins", "abs", 1, func(args []any) (any, error) {
			return absValue(args[0])
		}),
		value.NewFunc("builtins", "all", 1, func(args []any) (any, error) {
			items, ok := value.Iterate(args[0])
			if !ok {
				return nil, fmt.Errorf("all(): %s is not iterable", value.TypeName(args[0]))
			}
			for _, it := range items {
				if !value.Truthy(it) {
					return false, nil
				}
			}
			return true, nil
		}),
		value.NewFunc("builtins", "any", 1, func(args []any) (any, error) {
			items, ok := value.Iterate(args[0])
			if !ok {
				return nil, fmt.Errorf("any(): %s is not iterable", value.TypeName(args[0]))
			}
			for _, it := range items {
				if value.Truthy(it) {
					return true, nil
				}
			}
			return false, nil
		}),
		value.NewFunc("builtins", "bool", 1, func(args []any) (any, error) {
			return value.Truthy(args[0]), nil
		}),
		value.NewFunc("builtins", "chr", 1, func(args []any) (any, error) {
			n, ok := value.AsInt(args[0])
			if !ok {
				return nil, fmt.Errorf("chr() requires an integer")
			}
			return string(rune(n)), nil
		}),
		value.NewFunc("builtins", "float", 1, func(args []any) (any, error) {
			if s, ok := args[0].(string); ok {
				f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, fmt.Errorf("could not convert string to float: %s", value.Repr(s))
				}
				return f, nil
			}
			f, ok := value.AsFloat(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return f, nil
		}),
		value.NewFunc("builtins", "int", 1, func(args []any) (any, error) {
			switch t := args[0].(type) {
			case string:
				n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid literal for int(): %s", value.Repr(t))
				}
				return n, nil
			case float64:
				return int64(math.Trunc(t)), nil
			}
			n, ok := value.AsInt(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return n, nil
		}),
		value.NewFunc("builtins", "len", 1, func(args []any) (any, error) {
			switch t := args[0].(type) {
			case string:
				return int64(len([]rune(t))), nil
			case []any:
				return int64(len(t)), nil
			case map[string]any:
				return int64(len(t)), nil
			}
			return nil, fmt.Errorf("%s has no length", value.TypeName(args[0]))
		}),
		value.NewFunc("builtins", "max", 1, func(args []any) (any, error) {
			items, err := iterableArgs("max", args)
			if err != nil {
				return nil, err
			}
			best := items[0]
			for _, it := range items[1:] {
				gt, err := value.Less(best, it)
				if err != nil {
					return nil, err
				}
				if gt {
					best = it
				}
			}
			return best, nil
		}),
		value.NewFunc("builtins", "min", 1, func(args []any) (any, error) {
			items, err := iterableArgs("min", args)
			if err != nil {
				return nil, err
			}
			best := items[0]
			for _, it := range items[1:] {
				lt, err := value.Less(it, best)
				if err != nil {
					return nil, err
				}
				if lt {
					best = it
				}
			}
			return best, nil
		}),
		value.NewFunc("builtins", "ord", 1, func(args []any) (any, error) {
			s, ok := args[0].(string)
			if !ok || len([]rune(s)) != 1 {
				return nil, fmt.Errorf("ord() expected a character, got %s", value.Repr(args[0]))
			}
			return int64([]rune(s)[0]), nil
		}),
		value.NewFunc("builtins", "print", 1, func(args []any) (any, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = value.Str(a)
			}
			fmt.Fprintln(out, strings.Join(parts, " "))
			return nil, nil
		}),
		value.NewFunc("builtins", "range", 1, func(args []any) (any, error) {
			var start, stop, step int64 = 0, 0, 1
			ints := make([]int64, len(args))
			for i, a := range args {
				n, ok := value.AsInt(a)
				if !ok {
					return nil, fmt.Errorf("range() requires integers")
				}
				ints[i] = n
			}
			switch len(args) {
			case 1:
				stop = ints[0]
			case 2:
				start, stop = ints[0], ints[1]
			case 3:
				start, stop, step = ints[0], ints[1], ints[2]
				if step == 0 {
					return nil, fmt.Errorf("range() step must not be zero")
				}
			default:
				return nil, fmt.Errorf("range() takes 1 to 3 arguments")
			}
			var items []any
			if step > 0 {
				for i := start; i < stop; i += step {
					items = append(items, i)
				}
			} else {
				for i := start; i > stop; i += step {
					items = append(items, i)
				}
			}
			return items, nil
		}),
		value.NewFunc("builtins", "repr", 1, func(args []any) (any, error) {
			return value.Repr(args[0]), nil
		}),
		value.NewFunc("builtins", "round", 1, func(args []any) (any, error) {
			f, ok := value.AsFloat(args[0])
			if !ok {
				return nil, notANumber(args[0])
			}
			return int64(math.RoundToEven(f)), nil
		}),
		value.NewFunc("builtins", "sorted", 1, func(args []any) (any, error) {
			items, ok := value.Iterate(args[0])
			if !ok {
				return nil, fmt.Errorf("sorted(): %s is not iterable", value.TypeName(args[0]))
			}
			var sortErr error
			sort.SliceStable(items, func(i, j int) bool {
				lt, err := value.Less(items[i], items[j])
				if err != nil && sortErr == nil {
					sortErr = err
				}
				return lt
			})
			if sortErr != nil {
				return nil, sortErr
			}
			return items, nil
		}),
		value.NewFunc("builtins", "str", 1, func(args []any) (any, error) {
			return value.Str(args[0]), nil
		}),
		value.NewFunc("builtins", "sum", 1, func(args []any) (any, error) {
			items, err := iterableArgs("sum", args)
			if err != nil {
				return nil, err
			}
			total := items[0]
			for _, it := range items[1:] {
				total, err = value.Add(total, it)
				if err != nil {
					return nil, err
				}
			}
			return total, nil
		}),
	}
}

// List converts its argument to a list, matching the behavior of the
// list command when pushed as a function.
func List() *value.Func {
	return value.NewFunc("builtins", "list", 1, func(args []any) (any, error) {
		items, ok := value.Iterate(args[0])
		if !ok {
			return []any{args[0]}, nil
		}
		return items, nil
	})
}
