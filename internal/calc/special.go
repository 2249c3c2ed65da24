// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package calc

import (
	"fmt"
	"sort"
	"strings"

	"nickandperla.net/rpn/internal/builtins"
	"nickandperla.net/rpn/internal/value"
)

// registerSpecials installs the special commands, each under all of
// its names.
func registerSpecials(c *Calculator) {
	for _, s := range []struct {
		names []string
		fn    SpecialFunc
	}{
		{[]string{"apply"}, specialApply},
		{[]string{"clear", "c"}, specialClear},
		{[]string{"dup", "d"}, specialDup},
		{[]string{"functions"}, specialFunctions},
		{[]string{"join"}, specialJoin},
		{[]string{"list"}, specialList},
		{[]string{"map"}, specialMap},
		{[]string{"pop"}, specialPop},
		{[]string{"print", "p"}, specialPrint},
		{[]string{"quit", "q"}, specialQuit},
		{[]string{"reduce"}, specialReduce},
		{[]string{"reverse"}, specialReverse},
		{[]string{"stack", "s", "f"}, specialStack},
		{[]string{"store"}, specialStore},
		{[]string{"swap"}, specialSwap},
		{[]string{"undo"}, specialUndo},
		{[]string{"variables"}, specialVariables},
	} {
		for _, name := range s.names {
			c.RegisterSpecial(name, s.fn)
		}
	}
}

func specialQuit(c *Calculator, mods Modifiers, count int) (any, error) {
	return noValue, ErrEndOfSession
}

func specialFunctions(c *Calculator, mods Modifiers, count int) (any, error) {
	names := make([]string, 0, len(c.functions))
	for name := range c.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.report(name, c.functions[name])
	}
	return noValue, nil
}

func specialStack(c *Calculator, mods Modifiers, count int) (any, error) {
	c.PrintStack()
	return noValue, nil
}

func specialVariables(c *Calculator, mods Modifiers, count int) (any, error) {
	names := make([]string, 0, len(c.variables))
	for name := range c.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.report(fmt.Sprintf("%s: %s", name, value.Repr(c.variables[name])))
	}
	return noValue, nil
}

func specialClear(c *Calculator, mods Modifiers, count int) (any, error) {
	if len(c.stack) > 0 {
		if mods.PreserveStack {
			c.err("The /= modifier makes no sense with clear")
		} else {
			c.finalize(nil, mods, finalizeArgs{nPop: len(c.stack), noValue: true})
		}
	}
	return noValue, nil
}

func specialDup(c *Calculator, mods Modifiers, count int) (any, error) {
	if len(c.stack) == 0 {
		return nil, fmt.Errorf("Cannot duplicate (stack is empty)")
	}
	if mods.PreserveStack {
		return nil, fmt.Errorf("The /= modifier makes no sense with dup")
	}
	if count == noCount {
		count = 1
	}
	v := c.stack[len(c.stack)-1]
	c.finalize(v, mods, finalizeArgs{repeat: count})
	return v, nil
}

func specialUndo(c *Calculator, mods Modifiers, count int) (any, error) {
	if c.previousStack == nil {
		return nil, fmt.Errorf("No undo saved")
	}
	if mods.PreserveStack {
		return nil, fmt.Errorf("The /= modifier makes no sense with undo")
	}
	if mods.Print {
		return nil, fmt.Errorf("The /p modifier makes no sense with undo")
	}
	c.restoreState()
	return noValue, nil
}

func specialPrint(c *Calculator, mods Modifiers, count int) (any, error) {
	c.PrintTop()
	return noValue, nil
}

func specialApply(c *Calculator, mods Modifiers, count int) (any, error) {
	fn, args, err := c.findCallableAndArgs("apply", mods, count)
	if err != nil {
		return nil, err
	}
	result, err := callSafely(fn, args)
	if err != nil {
		return nil, err
	}
	c.finalize(result, mods, finalizeArgs{nPop: len(args) + 1})
	return result, nil
}

func specialJoin(c *Calculator, mods Modifiers, count int) (any, error) {
	sep, args, err := c.findStringAndArgs("join", mods, count)
	if err != nil {
		return nil, err
	}
	nPop := len(args) + 1
	if len(args) == 1 {
		// A single argument is joined over its own elements, not
		// over a one-item list.
		items, ok := value.Iterate(args[0])
		if !ok {
			return nil, fmt.Errorf("%s is not iterable", value.TypeName(args[0]))
		}
		args = items
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Str(a)
	}
	result := strings.Join(parts, sep)
	c.finalize(result, mods, finalizeArgs{nPop: nPop})
	return result, nil
}

func specialReduce(c *Calculator, mods Modifiers, count int) (any, error) {
	fn, args, err := c.findCallableAndArgs("reduce", mods, count)
	if err != nil {
		return nil, err
	}
	nPop := len(args) + 1
	if len(args) == 1 {
		items, ok := value.Iterate(args[0])
		if !ok {
			return nil, fmt.Errorf("%s is not iterable", value.TypeName(args[0]))
		}
		args = items
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("reduce() of empty iterable with no initial value")
	}
	acc := args[0]
	for _, a := range args[1:] {
		acc, err = callSafely(fn, []any{acc, a})
		if err != nil {
			return nil, err
		}
	}
	c.finalize(acc, mods, finalizeArgs{nPop: nPop})
	return acc, nil
}

func specialMap(c *Calculator, mods Modifiers, count int) (any, error) {
	fn, args, err := c.findCallableAndArgs("map", mods, count)
	if err != nil {
		return nil, err
	}
	nPop := len(args) + 1
	extend := true
	if len(args) == 1 {
		// Mapping over a single stack item maps over its elements
		// and pushes one list; mapping over several items pushes
		// each mapped value separately.
		items, ok := value.Iterate(args[0])
		if !ok {
			return nil, fmt.Errorf("%s is not iterable", value.TypeName(args[0]))
		}
		args = items
		extend = false
	}
	mapped := make([]any, len(args))
	for i, a := range args {
		mapped[i], err = callSafely(fn, []any{a})
		if err != nil {
			return nil, err
		}
	}
	c.finalize(mapped, mods, finalizeArgs{nPop: nPop, extend: extend})
	return mapped, nil
}

func specialPop(c *Calculator, mods Modifiers, count int) (any, error) {
	nArgs := count
	if count == noCount {
		if mods.All {
			nArgs = len(c.stack)
		} else {
			nArgs = 1
		}
	}
	if len(c.stack) < nArgs {
		return nil, fmt.Errorf("Cannot pop %d item%s (stack length is %d)",
			nArgs, plural(nArgs), len(c.stack))
	}
	var v any
	if nArgs == 1 {
		v = c.stack[len(c.stack)-1]
	} else {
		popped := make([]any, nArgs)
		copy(popped, c.stack[len(c.stack)-nArgs:])
		v = popped
	}
	c.finalize(v, mods, finalizeArgs{nPop: nArgs, noValue: true})
	return v, nil
}

func specialReverse(c *Calculator, mods Modifiers, count int) (any, error) {
	nArgs := count
	if count == noCount {
		if mods.All {
			nArgs = len(c.stack)
		} else {
			nArgs = 2
		}
	}
	if len(c.stack) >= nArgs && nArgs > 1 {
		reversed := make([]any, nArgs)
		for i := 0; i < nArgs; i++ {
			reversed[i] = c.stack[len(c.stack)-1-i]
		}
		c.finalize(reversed, mods, finalizeArgs{nPop: nArgs, extend: true})
		return reversed, nil
	}
	return nil, fmt.Errorf("Cannot reverse %d item%s (stack length is %d)",
		nArgs, plural(nArgs), len(c.stack))
}

func specialSwap(c *Calculator, mods Modifiers, count int) (any, error) {
	if len(c.stack) < 2 {
		return nil, fmt.Errorf("Cannot swap (stack needs 2 items)")
	}
	top := c.stack[len(c.stack)-1]
	under := c.stack[len(c.stack)-2]
	c.finalize([]any{top, under}, mods, finalizeArgs{nPop: 2, extend: true})
	return noValue, nil
}

func specialList(c *Calculator, mods Modifiers, count int) (any, error) {
	if mods.Push {
		fn := builtins.List()
		c.finalize(fn, mods, finalizeArgs{})
		return fn, nil
	}
	if len(c.stack) == 0 {
		return nil, fmt.Errorf("Cannot run list (stack is empty)")
	}

	nArgs := count
	if count == noCount {
		if mods.All {
			nArgs = len(c.stack)
		} else {
			nArgs = 1
		}
	}

	var v []any
	if nArgs == 1 {
		top := c.stack[len(c.stack)-1]
		if items, ok := value.Iterate(top); ok {
			v = items
		} else {
			v = []any{top}
		}
	} else {
		if len(c.stack) < nArgs {
			return nil, fmt.Errorf("Cannot list %d item%s (stack length is %d)",
				nArgs, plural(nArgs), len(c.stack))
		}
		v = make([]any, nArgs)
		copy(v, c.stack[len(c.stack)-nArgs:])
	}
	c.finalize(v, mods, finalizeArgs{nPop: nArgs})
	return v, nil
}

func specialStore(c *Calculator, mods Modifiers, count int) (any, error) {
	name, args, err := c.findStringAndArgs("store", mods, count)
	if err != nil {
		return nil, err
	}
	var v any
	if len(args) == 1 {
		v = args[0]
	} else {
		v = args
	}
	c.SetVariable(name, v)
	c.finalize(nil, mods, finalizeArgs{nPop: len(args) + 1, noValue: true})
	return noValue, nil
}
