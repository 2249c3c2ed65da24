package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Repr returns the display form of a value, round-tripping with the
// expression-language literal syntax where one exists: strings are
// single-quoted, lists bracketed, dicts braced with sorted keys.
func Repr(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return FormatFloat(t)
	case string:
		return "'" + strings.ReplaceAll(t, "'", `\'`) + "'"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = Repr(k) + ": " + Repr(t[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Func:
		return t.String()
	case VarRef:
		return t.String()
	case Callable:
		return fmt.Sprintf("<function %s>", t.Name())
	}
	return fmt.Sprintf("%v", v)
}

// Str returns the string form of a value: strings unquoted, everything
// else as Repr. Used by join and print-style commands.
func Str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Repr(v)
}

// FormatFloat formats a float, keeping a trailing .0 on integral values
// so stack output distinguishes 7 from 7.0.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
