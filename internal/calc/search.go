// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package calc

import "nickandperla.net/rpn/internal/value"

// findWithArgs looks for a stack item satisfying predicate, plus the
// arguments that go with it. Without a count or the reverse modifier,
// the search walks down from the top of the stack, collecting
// non-matching items as arguments until the predicate matches. With
// the reverse modifier the item must be on top and its arguments sit
// beneath it. With an explicit count the item must sit exactly count
// items down.
func (c *Calculator) findWithArgs(command, description string,
	predicate func(any) bool, defaultArgCount func(any) int,
	mods Modifiers, count int) (any, []any, error) {

	stackLen := len(c.stack)

	if stackLen < 2 || (count != noCount && stackLen < count+1) {
		return nil, nil, stackErrorf("Cannot run %q (stack has only %d item%s)",
			command, stackLen, plural(stackLen))
	}

	var item any
	var args []any

	if mods.Reverse {
		item = c.stack[stackLen-1]

		if !predicate(item) {
			return nil, nil, stackErrorf("Top stack item (%s) is not %s",
				value.Repr(item), description)
		}

		if count == noCount {
			if mods.All {
				count = stackLen - 1
			} else {
				count = defaultArgCount(item)
			}
		}

		nArgsAvail := stackLen - 1
		if nArgsAvail < count {
			return nil, nil, stackErrorf(
				"Cannot run %q with %d argument%s (stack has only %d item%s available)",
				command, count, plural(count), nArgsAvail, plural(nArgsAvail))
		}

		args = c.stack[stackLen-count-1 : stackLen-1]
	} else if count == noCount {
		if mods.All {
			item = c.stack[0]
			args = c.stack[1:]
		} else {
			found := false
			var collected []any
			for i := stackLen - 1; i >= 0; i-- {
				if predicate(c.stack[i]) {
					item = c.stack[i]
					found = true
					break
				}
				collected = append(collected, c.stack[i])
			}
			if !found {
				return nil, nil, stackErrorf("Could not find %s item on stack",
					description)
			}
			// Collected top-down; arguments keep stack order.
			args = make([]any, len(collected))
			for i, a := range collected {
				args[len(collected)-1-i] = a
			}
		}
	} else {
		item = c.stack[stackLen-count-1]

		if !predicate(item) {
			return nil, nil, stackErrorf(
				"Cannot run %q with %d argument%s. Stack item (%s) is not %s",
				command, count, plural(count), value.Repr(item), description)
		}

		args = c.stack[stackLen-count:]
	}

	return item, c.convertStackArgs(args), nil
}

// findCallableAndArgs looks for a callable and its arguments on the
// stack.
func (c *Calculator) findCallableAndArgs(command string, mods Modifiers, count int) (value.Callable, []any, error) {
	item, args, err := c.findWithArgs(command, "callable", value.IsCallable,
		func(v any) int {
			n := value.CountArgs(v, 1)
			if n < 0 {
				n = 1
			}
			return n
		}, mods, count)
	if err != nil {
		return nil, nil, err
	}
	return item.(value.Callable), args, nil
}

// findStringAndArgs looks for a string and its arguments on the stack.
func (c *Calculator) findStringAndArgs(command string, mods Modifiers, count int) (string, []any, error) {
	item, args, err := c.findWithArgs(command, "a string",
		func(v any) bool {
			_, ok := v.(string)
			return ok
		},
		func(any) int { return 1 }, mods, count)
	if err != nil {
		return "", nil, err
	}
	return item.(string), args, nil
}
