// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// AsInt converts v to an int64 if it is integer-valued (int64 or bool).
func AsInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsFloat converts v to a float64 if it is numeric.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// IsNumber reports whether v is a numeric value.
func IsNumber(v any) bool {
	_, ok := AsFloat(v)
	return ok
}

// TypeName returns a short name for v's type, used in error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	case Callable:
		return "function"
	case VarRef:
		return "variable"
	}
	return fmt.Sprintf("%T", v)
}

func opTypeError(op string, a, b any) error {
	return fmt.Errorf("unsupported operand types for %s: %s and %s",
		op, TypeName(a), TypeName(b))
}

// Add adds two values: integer addition stays integral, mixed numerics
// promote to float, strings and lists concatenate.
func Add(a, b any) (any, error) {
	if ai, ok := AsInt(a); ok {
		if bi, ok := AsInt(b); ok {
			return ai + bi, nil
		}
	}
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			return af + bf, nil
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as + bs, nil
		}
	}
	if al, ok := a.([]any); ok {
		if bl, ok := b.([]any); ok {
			out := make([]any, 0, len(al)+len(bl))
			out = append(out, al...)
			out = append(out, bl...)
			return out, nil
		}
	}
	return nil, opTypeError("+", a, b)
}

// Sub subtracts b from a.
func Sub(a, b any) (any, error) {
	if ai, ok := AsInt(a); ok {
		if bi, ok := AsInt(b); ok {
			return ai - bi, nil
		}
	}
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			return af - bf, nil
		}
	}
	return nil, opTypeError("-", a, b)
}

// Mul multiplies two values. A string or list times an integer repeats
// it, matching the usual sequence semantics.
func Mul(a, b any) (any, error) {
	if ai, ok := AsInt(a); ok {
		if bi, ok := AsInt(b); ok {
			return ai * bi, nil
		}
	}
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			return af * bf, nil
		}
	}
	if s, n, ok := seqAndCount(a, b); ok {
		switch t := s.(type) {
		case string:
			if n < 0 {
				n = 0
			}
			return strings.Repeat(t, int(n)), nil
		case []any:
			out := make([]any, 0, len(t)*int(max64(n, 0)))
			for i := int64(0); i < n; i++ {
				out = append(out, t...)
			}
			return out, nil
		}
	}
	return nil, opTypeError("*", a, b)
}

func seqAndCount(a, b any) (any, int64, bool) {
	if n, ok := AsInt(b); ok {
		switch a.(type) {
		case string, []any:
			return a, n, true
		}
	}
	if n, ok := AsInt(a); ok {
		switch b.(type) {
		case string, []any:
			return b, n, true
		}
	}
	return nil, 0, false
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// TrueDiv divides a by b, always producing a float.
func TrueDiv(a, b any) (any, error) {
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if !aok || !bok {
		return nil, opTypeError("/", a, b)
	}
	if bf == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	return af / bf, nil
}

// FloorDiv divides a by b, rounding toward negative infinity. Integer
// operands stay integral.
func FloorDiv(a, b any) (any, error) {
	if ai, ok := AsInt(a); ok {
		if bi, ok := AsInt(b); ok {
			if bi == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			q := ai / bi
			if ai%bi != 0 && (ai < 0) != (bi < 0) {
				q--
			}
			return q, nil
		}
	}
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if !aok || !bok {
		return nil, opTypeError("//", a, b)
	}
	if bf == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	return math.Floor(af / bf), nil
}

// Mod computes a modulo b with the sign of the divisor.
func Mod(a, b any) (any, error) {
	if ai, ok := AsInt(a); ok {
		if bi, ok := AsInt(b); ok {
			if bi == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			r := ai % bi
			if r != 0 && (r < 0) != (bi < 0) {
				r += bi
			}
			return r, nil
		}
	}
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if !aok || !bok {
		return nil, opTypeError("%", a, b)
	}
	if bf == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	r := math.Mod(af, bf)
	if r != 0 && (r < 0) != (bf < 0) {
		r += bf
	}
	return r, nil
}

// Pow raises a to the power b. Integer base and non-negative integer
// exponent stay integral.
func Pow(a, b any) (any, error) {
	if ai, ok := AsInt(a); ok {
		if bi, ok := AsInt(b); ok && bi >= 0 {
			var out int64 = 1
			for i := int64(0); i < bi; i++ {
				out *= ai
			}
			return out, nil
		}
	}
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if !aok || !bok {
		return nil, opTypeError("**", a, b)
	}
	return math.Pow(af, bf), nil
}

// Neg negates a numeric value.
func Neg(a any) (any, error) {
	if ai, ok := a.(int64); ok {
		return -ai, nil
	}
	if af, ok := AsFloat(a); ok {
		return -af, nil
	}
	return nil, fmt.Errorf("unsupported operand type for unary -: %s", TypeName(a))
}

// Equal compares two values, treating numerically equal ints and floats
// as equal and comparing lists and dicts element-wise.
func Equal(a, b any) bool {
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			return af == bf
		}
		return false
	}
	switch at := a.(type) {
	case string:
		bs, ok := b.(string)
		return ok && at == bs
	case nil:
		return b == nil
	case []any:
		bl, ok := b.([]any)
		if !ok || len(at) != len(bl) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bl[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bm, ok := b.(map[string]any)
		if !ok || len(at) != len(bm) {
			return false
		}
		for k, v := range at {
			bv, ok := bm[k]
			if !ok || !Equal(v, bv) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Less reports whether a orders before b. Only numbers order against
// numbers and strings against strings.
func Less(a, b any) (bool, error) {
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			return af < bf, nil
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as < bs, nil
		}
	}
	return false, fmt.Errorf("cannot order %s and %s", TypeName(a), TypeName(b))
}

// Truthy reports the truth value of v: zero, empty and nil are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
