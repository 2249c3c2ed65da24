// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package calc

import (
	"sort"
	"strings"
)

// Modifiers adjust how a single command is dispatched and finalized.
type Modifiers struct {
	// All applies the command to the whole stack.
	All bool
	// ForceCommand skips function and variable lookup.
	ForceCommand bool
	// Debug toggles debug output.
	Debug bool
	// Iterate expands an iterable result into a list before pushing.
	Iterate bool
	// NoSplit turns line splitting off for subsequent input.
	NoSplit bool
	// PreserveStack leaves the stack untouched by the command.
	PreserveStack bool
	// Print prints the command's value.
	Print bool
	// AutoPrint toggles automatic printing of command values.
	AutoPrint bool
	// Push pushes a function or variable itself instead of running it.
	Push bool
	// Reverse reverses the order arguments are taken from the stack.
	Reverse bool
	// Split turns line splitting on for subsequent input.
	Split bool
}

// modifierLetters maps each modifier letter to a setter. The letters
// form the modifier alphabet accepted after the : separator.
var modifierLetters = map[rune]func(*Modifiers){
	'*': func(m *Modifiers) { m.All = true },
	'c': func(m *Modifiers) { m.ForceCommand = true },
	'D': func(m *Modifiers) { m.Debug = true },
	'i': func(m *Modifiers) { m.Iterate = true },
	'n': func(m *Modifiers) { m.NoSplit = true },
	'=': func(m *Modifiers) { m.PreserveStack = true },
	'p': func(m *Modifiers) { m.Print = true },
	'P': func(m *Modifiers) { m.AutoPrint = true },
	'!': func(m *Modifiers) { m.Push = true },
	'r': func(m *Modifiers) { m.Reverse = true },
	's': func(m *Modifiers) { m.Split = true },
}

// ParseModifiers converts a string of modifier letters into a
// Modifiers value. Repeated letters are allowed; unknown letters are
// collected and reported together, sorted. Incompatible combinations
// are rejected.
func ParseModifiers(s string) (Modifiers, error) {
	var m Modifiers
	seen := make(map[rune]bool)
	var unknown []string

	for _, letter := range s {
		if seen[letter] {
			continue
		}
		seen[letter] = true
		if set, ok := modifierLetters[letter]; ok {
			set(&m)
		} else {
			unknown = append(unknown, string(letter))
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Modifiers{}, &UnknownModifiersError{Letters: unknown}
	}

	if m.Push && m.PreserveStack {
		return Modifiers{}, &IncompatibleModifiersError{
			Message: "= (preserve stack) makes no sense with ! (push)"}
	}
	if m.Split && m.NoSplit {
		return Modifiers{}, &IncompatibleModifiersError{
			Message: "s (split lines) makes no sense with n (do not split lines)"}
	}

	return m, nil
}

// String returns the modifier letters in sorted order.
func (m Modifiers) String() string {
	var letters []string
	for letter, set := range map[rune]bool{
		'*': m.All,
		'c': m.ForceCommand,
		'D': m.Debug,
		'i': m.Iterate,
		'n': m.NoSplit,
		'=': m.PreserveStack,
		'p': m.Print,
		'P': m.AutoPrint,
		'!': m.Push,
		'r': m.Reverse,
		's': m.Split,
	} {
		if set {
			letters = append(letters, string(letter))
		}
	}
	sort.Strings(letters)
	return strings.Join(letters, "")
}
