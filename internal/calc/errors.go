// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package calc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEndOfSession is returned by Execute when a command asks the
// calculator to stop, e.g. quit.
var ErrEndOfSession = errors.New("end of session")

// CommandError is a failure while executing a command. It can carry
// several messages, each reported on its own line.
type CommandError struct {
	Messages []string
}

func commandErrorf(format string, args ...any) *CommandError {
	return &CommandError{Messages: []string{fmt.Sprintf(format, args...)}}
}

func (e *CommandError) Error() string { return strings.Join(e.Messages, "\n") }

// StackError is a failure while looking for a command's arguments on
// the stack.
type StackError struct {
	Message string
}

func stackErrorf(format string, args ...any) *StackError {
	return &StackError{Message: fmt.Sprintf(format, args...)}
}

func (e *StackError) Error() string { return e.Message }

// UnknownModifiersError reports modifier letters that are not part of
// the modifier alphabet.
type UnknownModifiersError struct {
	Letters []string
}

func (e *UnknownModifiersError) Error() string {
	return "Unknown modifiers: " + strings.Join(e.Letters, ", ")
}

// IncompatibleModifiersError reports a modifier combination that makes
// no sense.
type IncompatibleModifiersError struct {
	Message string
}

func (e *IncompatibleModifiersError) Error() string {
	return "Incompatible modifiers: " + e.Message
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
