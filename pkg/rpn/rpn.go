// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package rpn

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"nickandperla.net/rpn/internal/calc"
	"nickandperla.net/rpn/internal/store"
)

// ErrEndOfSession is returned by Execute when a command asked the
// calculator to stop, e.g. quit.
var ErrEndOfSession = calc.ErrEndOfSession

// Runtime is the calculator runtime: a calculator plus optional
// persistence for history and saved sessions.
type Runtime struct {
	calc       *calc.Calculator
	store      store.Store
	storeErr   error
	transcript bytes.Buffer

	out        io.Writer
	errOut     io.Writer
	autoPrint  bool
	splitLines bool
	separator  string
	debug      bool
}

// New creates a new calculator runtime with the given options.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		out:        os.Stdout,
		errOut:     os.Stderr,
		splitLines: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.storeErr != nil {
		fmt.Fprintf(r.errOut, "Could not open store: %s\n", r.storeErr)
	}

	r.calc = calc.New(
		calc.WithOutput(r.out),
		calc.WithErrOutput(r.errOut),
		calc.WithAutoPrint(r.autoPrint),
		calc.WithSplitLines(r.splitLines),
		calc.WithSeparator(r.separator),
		calc.WithDebug(r.debug),
	)

	return r
}

// Execute runs a line of commands. It returns false when a command
// failed, and calc.ErrEndOfSession when the session should stop. The
// line is recorded in the history and the session transcript.
func (r *Runtime) Execute(line string) (bool, error) {
	if strings.TrimSpace(line) != "" {
		r.transcript.WriteString(line)
		r.transcript.WriteByte('\n')
		if r.store != nil {
			if err := r.store.AppendLine(line); err != nil {
				fmt.Fprintf(r.errOut, "Could not record history: %s\n", err)
			}
		}
	}
	return r.calc.Execute(line)
}

// Batch reads and executes commands from reader. When finalPrint is
// true the stack is printed after the last command.
func (r *Runtime) Batch(reader io.Reader, finalPrint bool) error {
	return r.calc.Batch(reader, finalPrint)
}

// ExecuteFile runs the commands in a file, without a final print.
// Used for startup files.
func (r *Runtime) ExecuteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Batch(f, false)
}

// Stack returns a copy of the calculator stack, bottom first.
func (r *Runtime) Stack() []any {
	return r.calc.Stack()
}

// Register adds a Go function to the calculator's function registry.
// The arity is inferred when nArgs is negative.
func (r *Runtime) Register(fn any, name string, nArgs int) error {
	return r.calc.Register(fn, name, nArgs)
}

// History returns up to limit recorded input lines, oldest first. It
// returns nil without a store.
func (r *Runtime) History(limit int) ([]string, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.Lines(limit)
}

// SaveSession stores the transcript of the current session under
// name.
func (r *Runtime) SaveSession(name string) error {
	if r.store == nil {
		return fmt.Errorf("no store configured")
	}
	return r.store.SaveSession(name, r.transcript.Bytes())
}

// ReplaySession executes a previously saved session transcript.
func (r *Runtime) ReplaySession(name string) error {
	if r.store == nil {
		return fmt.Errorf("no store configured")
	}
	transcript, err := r.store.LoadSession(name)
	if err != nil {
		return err
	}
	if transcript == nil {
		return fmt.Errorf("no session named %q", name)
	}
	scanner := bufio.NewScanner(bytes.NewReader(transcript))
	for scanner.Scan() {
		if _, err := r.Execute(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Sessions lists the saved session names.
func (r *Runtime) Sessions() ([]string, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.Sessions()
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
