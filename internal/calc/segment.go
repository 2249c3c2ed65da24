// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package calc

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// noCount marks a command given without an explicit :N count.
const noCount = -1

const modifierSeparator = ":"

var countRE = regexp.MustCompile(`\d+`)

// Command is one command extracted from an input line, with its
// modifiers and optional count.
type Command struct {
	Command string
	Mods    Modifiers
	Count   int
}

// findModifiers looks for a modifier suffix in field. It returns the
// offset of the separator (-1 when no valid suffix is present), the
// parsed modifiers and the count (noCount if absent).
//
// The rightmost separator is used, and the suffix only counts as
// modifiers when everything after it is modifier letters, digits or
// whitespace. Anything else means the colon belongs to the command
// itself, e.g. the colon inside a dict literal.
func findModifiers(field string) (int, Modifiers, int, error) {
	index := strings.LastIndex(field, modifierSeparator)
	if index == -1 {
		return -1, Modifiers{}, noCount, nil
	}

	rest := field[index+1:]

	count := noCount
	if loc := countRE.FindStringIndex(rest); loc != nil {
		n, err := strconv.Atoi(rest[loc[0]:loc[1]])
		if err == nil {
			count = n
			rest = rest[:loc[0]] + rest[loc[1]:]
		}
	}

	var letters []rune
	for _, r := range rest {
		if _, ok := modifierLetters[r]; ok {
			letters = append(letters, r)
		} else if !unicode.IsSpace(r) {
			// Unknown character after the separator: not a
			// modifier suffix after all.
			return -1, Modifiers{}, noCount, nil
		}
	}

	mods, err := ParseModifiers(string(letters))
	if err != nil {
		return -1, Modifiers{}, noCount, err
	}
	return index, mods, count, nil
}

// Segmenter splits an input line into commands lazily, so commands
// before a malformed one still run.
type Segmenter struct {
	fields []string
	idx    int
	done   bool
}

// NewSegmenter prepares line for command extraction. When splitLines
// is true the line is split into fields on separator (whitespace when
// separator is empty); otherwise the whole line is one field.
func NewSegmenter(line string, splitLines bool, separator string) *Segmenter {
	var fields []string
	trimmed := strings.TrimSpace(line)
	if !splitLines {
		fields = []string{trimmed}
	} else if separator == "" {
		fields = strings.Fields(trimmed)
	} else {
		fields = strings.Split(trimmed, separator)
	}
	return &Segmenter{fields: fields}
}

// Next returns the next command. The second return is false when the
// line is exhausted. A modifier parse error ends the iteration.
func (s *Segmenter) Next() (Command, bool, error) {
	if s.done || s.idx >= len(s.fields) {
		return Command{}, false, nil
	}

	field := s.fields[s.idx]

	index, mods, count, err := findModifiers(field)
	if err != nil {
		s.done = true
		return Command{}, false, err
	}

	var command string
	if index == -1 {
		// No modifiers in this field. A modifier-only next field
		// (separator at offset zero) attaches to this command,
		// letting a command and its modifiers be separated by
		// whitespace even with line splitting on.
		command = field
		if s.idx+1 < len(s.fields) {
			nextIndex, nextMods, nextCount, err := findModifiers(s.fields[s.idx+1])
			if err != nil {
				s.done = true
				return Command{}, false, err
			}
			if nextIndex == 0 {
				mods = nextMods
				count = nextCount
				s.idx++
			}
		}
	} else {
		command = strings.TrimSpace(field[:index])
	}

	if strings.HasPrefix(command, "#") {
		// A comment: discard the rest of the line.
		s.done = true
		return Command{Command: "", Mods: mods, Count: count}, true, nil
	}

	s.idx++
	return Command{Command: command, Mods: mods, Count: count}, true, nil
}
