// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package calc implements the calculator: a value stack, a variable
// mapping, and a command dispatcher that resolves each input token
// against the function registry, the variables, the special commands
// and finally the expression evaluator, in that order.
package calc

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"nickandperla.net/rpn/internal/builtins"
	"nickandperla.net/rpn/internal/script"
	"nickandperla.net/rpn/internal/value"
)

// noValue is the sentinel commands return when they produced nothing
// printable.
var noValue = &struct{ name string }{"no value"}

// SpecialFunc is a special command implementation. Specials receive
// the calculator itself and manage the stack directly.
type SpecialFunc func(c *Calculator, mods Modifiers, count int) (any, error)

// Calculator holds the stack, the variables and the function
// registries, and executes command lines against them. Not safe for
// concurrent use; each session owns one Calculator.
type Calculator struct {
	stack     []any
	variables map[string]any
	functions map[string]*value.Func
	special   map[string]SpecialFunc

	previousStack     []any
	previousVariables map[string]any

	splitLines bool
	separator  string
	autoPrint  bool
	debugOn    bool

	outw io.Writer
	errw io.Writer

	evaluator *script.Evaluator
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithAutoPrint starts the calculator with automatic printing of
// command values.
func WithAutoPrint(on bool) Option {
	return func(c *Calculator) { c.autoPrint = on }
}

// WithSplitLines controls whether input lines are split into fields.
func WithSplitLines(on bool) Option {
	return func(c *Calculator) { c.splitLines = on }
}

// WithSeparator sets the field separator. Empty means whitespace.
func WithSeparator(sep string) Option {
	return func(c *Calculator) { c.separator = sep }
}

// WithOutput directs command output to w.
func WithOutput(w io.Writer) Option {
	return func(c *Calculator) { c.outw = w }
}

// WithErrOutput directs error and debug output to w.
func WithErrOutput(w io.Writer) Option {
	return func(c *Calculator) { c.errw = w }
}

// WithDebug starts the calculator with debug output on.
func WithDebug(on bool) Option {
	return func(c *Calculator) { c.debugOn = on }
}

// New creates a Calculator with the builtin functions, the special
// commands and the standard constants loaded.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		variables:  make(map[string]any),
		functions:  make(map[string]*value.Func),
		special:    make(map[string]SpecialFunc),
		splitLines: true,
		outw:       io.Discard,
		errw:       io.Discard,
		evaluator:  script.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	registerSpecials(c)
	builtins.Populate(c.functions, c.variables, c.outw)
	return c
}

// Len returns the stack depth.
func (c *Calculator) Len() int { return len(c.stack) }

// Stack returns a copy of the stack, bottom first.
func (c *Calculator) Stack() []any {
	out := make([]any, len(c.stack))
	copy(out, c.stack)
	return out
}

// Variable returns the value of a variable.
func (c *Calculator) Variable(name string) (any, bool) {
	v, ok := c.variables[name]
	return v, ok
}

// SetVariable sets the value of a variable.
func (c *Calculator) SetVariable(name string, v any) {
	c.variables[name] = v
}

// Register adds fn to the function registry under name (fn's own name
// when empty), with the given arity (inferred when negative).
func (c *Calculator) Register(fn any, name string, nArgs int) error {
	f, err := value.NewReflected("registered", name, fn, nArgs)
	if err != nil {
		return err
	}
	if _, ok := c.functions[f.FuncName]; ok {
		c.debug("Registering new functionality for already known function named %q.", f.FuncName)
	}
	c.functions[f.FuncName] = f
	return nil
}

// RegisterSpecial adds a special command under name.
func (c *Calculator) RegisterSpecial(name string, fn SpecialFunc) {
	c.special[name] = fn
}

func (c *Calculator) report(args ...any) {
	fmt.Fprintln(c.outw, args...)
}

func (c *Calculator) err(args ...any) {
	fmt.Fprintln(c.errw, args...)
}

func (c *Calculator) debug(format string, args ...any) {
	if c.debugOn {
		fmt.Fprintf(c.errw, "      # "+format+"\n", args...)
	}
}

// PrintStack prints the whole stack.
func (c *Calculator) PrintStack() {
	c.report(value.Repr(c.stack))
}

// PrintTop prints the top stack item.
func (c *Calculator) PrintTop() {
	if len(c.stack) == 0 {
		c.err("Cannot print top of stack item (stack is empty)")
		return
	}
	c.report(value.Repr(c.stack[len(c.stack)-1]))
}

// saveState snapshots the stack and variables for undo.
func (c *Calculator) saveState() {
	c.previousStack = make([]any, len(c.stack))
	copy(c.previousStack, c.stack)
	c.previousVariables = make(map[string]any, len(c.variables))
	for k, v := range c.variables {
		c.previousVariables[k] = v
	}
}

// restoreState reinstates the last snapshot. The variable map is
// restored in place so pushed variable references stay live.
func (c *Calculator) restoreState() {
	c.stack = make([]any, len(c.previousStack))
	copy(c.stack, c.previousStack)
	for k := range c.variables {
		delete(c.variables, k)
	}
	for k, v := range c.previousVariables {
		c.variables[k] = v
	}
}

type finalizeArgs struct {
	nPop    int
	extend  bool
	repeat  int
	noValue bool
}

// finalize applies the outcome of a successful command to the stack:
// snapshot for undo, pop consumed arguments, push the result. All
// stack mutation funnels through here, after the command has already
// succeeded, so a failed command never touches the stack.
func (c *Calculator) finalize(result any, mods Modifiers, fa finalizeArgs) {
	repeat := fa.repeat
	if repeat == 0 {
		repeat = 1
	}

	if (fa.nPop > 0 || !fa.noValue) && !mods.PreserveStack {
		c.saveState()
		if fa.nPop > 0 {
			c.stack = c.stack[:len(c.stack)-fa.nPop]
		}
	}

	if mods.Iterate {
		if items, ok := value.Iterate(result); ok {
			result = items
		}
	}

	if !mods.PreserveStack && !fa.noValue {
		for i := 0; i < repeat; i++ {
			if fa.extend {
				c.stack = append(c.stack, result.([]any)...)
			} else {
				c.stack = append(c.stack, result)
			}
		}
	}
}

// Execute runs a line of commands, stopping at the first error. It
// returns true when every command ran cleanly. The error return is
// ErrEndOfSession when a command asked the calculator to stop, and nil
// otherwise; command failures are reported, not returned.
func (c *Calculator) Execute(line string) (bool, error) {
	seg := NewSegmenter(line, c.splitLines, c.separator)

	for {
		cmd, ok, err := seg.Next()
		if err != nil {
			c.err(err.Error())
			return false, nil
		}
		if !ok {
			return true, nil
		}

		ok, err = c.executeOne(cmd)
		if err != nil {
			return false, err
		}
		if !ok {
			if pending, more, _ := seg.Next(); more {
				c.debug("Ignoring commands from %q on due to previous error", pending.Command)
			}
			return false, nil
		}
	}
}

func (c *Calculator) executeOne(cmd Command) (bool, error) {
	mods, count := cmd.Mods, cmd.Count

	if mods.Split {
		if !c.splitLines {
			c.debug("Line splitting switched ON")
		}
		c.splitLines = true
	} else if mods.NoSplit {
		if c.splitLines {
			c.debug("Line splitting switched OFF")
		}
		c.splitLines = false
	}

	if mods.All {
		stackLen := len(c.stack)
		if count != noCount && count != stackLen {
			c.err(fmt.Sprintf(
				"* modifier conflicts with explicit count %d (stack has %d item%s)",
				count, stackLen, plural(stackLen)))
			return false, nil
		}
	}

	if mods.AutoPrint {
		c.toggleAutoPrint()
	}
	if mods.Debug {
		c.toggleDebug()
	}

	if cmd.Command == "" {
		c.debug("Empty command")
		return true, nil
	}

	if count == 0 {
		c.debug("Count was zero - nothing to do!")
		return true, nil
	}

	v, handled, err := c.dispatch(cmd.Command, mods, count)
	if err == ErrEndOfSession {
		return false, err
	}
	if err == nil && !handled {
		err = commandErrorf("Could not find a way to execute %q", cmd.Command)
	}
	if err != nil {
		switch e := err.(type) {
		case *CommandError:
			for _, msg := range e.Messages {
				c.err(msg)
			}
		default:
			c.err(err.Error())
		}
		return false, nil
	}

	if v != noValue && (mods.Print || c.autoPrint) {
		c.report(value.Repr(v))
	}
	return true, nil
}

// dispatch resolves command through the four-stage chain.
func (c *Calculator) dispatch(command string, mods Modifiers, count int) (any, bool, error) {
	for _, try := range []func(string, Modifiers, int) (any, bool, error){
		c.tryFunction,
		c.tryVariable,
		c.trySpecial,
		c.tryEvalExec,
	} {
		v, handled, err := try(command, mods, count)
		if handled || err != nil {
			return v, handled, err
		}
	}
	return noValue, false, nil
}

func (c *Calculator) tryFunction(command string, mods Modifiers, count int) (any, bool, error) {
	if mods.ForceCommand {
		return noValue, false, nil
	}

	fn, ok := c.functions[command]
	if !ok {
		c.debug("%q is not a known function", command)
		return noValue, false, nil
	}

	c.debug("Found function %q", command)

	if mods.Push {
		c.finalize(fn, mods, finalizeArgs{})
		return fn, true, nil
	}

	return c.runFunction(command, mods, count, fn)
}

// runFunction pulls arguments off the stack and calls fn.
func (c *Calculator) runFunction(command string, mods Modifiers, count int, fn value.Callable) (any, bool, error) {
	nArgs := count
	if count == noCount {
		if mods.All {
			nArgs = len(c.stack)
		} else {
			nArgs = fn.NArgs()
			if nArgs < 0 {
				nArgs = 1
			}
		}
	}

	if len(c.stack) < nArgs {
		return noValue, false, commandErrorf(
			"Not enough args on stack! (%s needs %d arg%s, stack has %d item%s)",
			command, nArgs, plural(nArgs), len(c.stack), plural(len(c.stack)))
	}

	var args []any
	if nArgs > 0 {
		args = c.convertStackArgs(c.stack[len(c.stack)-nArgs:])
	}

	if mods.Reverse {
		// Reversed, the top of stack becomes the first argument
		// instead of the last.
		for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
			args[i], args[j] = args[j], args[i]
		}
	}

	c.debug("Calling %s with %s", fn.Name(), value.Repr(args))
	result, err := callSafely(fn, args)
	if err != nil {
		strs := make([]string, len(args))
		for i, a := range args {
			strs[i] = value.Str(a)
		}
		return noValue, false, commandErrorf("Exception running %s(%s): %s",
			fn.Name(), strings.Join(strs, ", "), err)
	}

	c.finalize(result, mods, finalizeArgs{nPop: nArgs})
	return result, true, nil
}

// callSafely invokes fn, turning a panic into an error.
func callSafely(fn value.Callable, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn.Call(args)
}

func (c *Calculator) tryVariable(command string, mods Modifiers, count int) (any, bool, error) {
	if mods.ForceCommand {
		return noValue, false, nil
	}

	v, ok := c.variables[command]
	if !ok {
		c.debug("%q is not a variable", command)
		return noValue, false, nil
	}

	c.debug("%q is a variable (value %s)", command, value.Repr(v))

	if fn, isCallable := v.(value.Callable); isCallable {
		if !mods.Push {
			return c.runFunction(command, mods, count, fn)
		}
		// Pushing a callable variable pushes the callable itself, so
		// apply and friends can find it on the stack.
	} else if mods.Push {
		v = value.VarRef{VarName: command, Vars: c.variables}
	}

	if count == noCount {
		count = 1
	}
	pushed := make([]any, count)
	for i := range pushed {
		pushed[i] = v
	}
	c.finalize(pushed, mods, finalizeArgs{extend: true})
	return v, true, nil
}

func (c *Calculator) trySpecial(command string, mods Modifiers, count int) (any, bool, error) {
	if fn, ok := c.special[command]; ok {
		v, err := fn(c, mods, count)
		if err == ErrEndOfSession {
			return noValue, false, err
		}
		if err != nil {
			return noValue, false, commandErrorf(
				"Could not run special command %q: %s", command, err)
		}
		return v, true, nil
	}

	if mods.ForceCommand {
		return noValue, false, commandErrorf("Unknown special command: %s", command)
	}
	return noValue, false, nil
}

// tryEvalExec is the last resort: evaluate the command as an
// expression, then as an engineering-notation number, then as an
// assignment statement.
func (c *Calculator) tryEvalExec(command string, mods Modifiers, count int) (any, bool, error) {
	env := script.MapEnv(c.variables)

	var messages []string
	possibleWhitespace := false

	v, err := c.evaluator.Eval(command, env)
	if err == nil {
		c.debug("eval %s worked: %s", command, value.Repr(v))
		repeat := count
		if repeat == noCount {
			repeat = 1
		}
		c.finalize(v, mods, finalizeArgs{repeat: repeat})
		return v, true, nil
	}

	messages = append(messages, fmt.Sprintf("Could not eval(%q): %s", command, err))
	if c.splitLines && script.IsIncomplete(err) {
		possibleWhitespace = true
	}

	if f, ok := script.ParseEng(command); ok {
		c.debug("engineering notation %s worked: %s", command, value.Repr(f))
		repeat := count
		if repeat == noCount {
			repeat = 1
		}
		c.finalize(f, mods, finalizeArgs{repeat: repeat})
		return f, true, nil
	}

	if err := c.evaluator.Exec(command, env); err != nil {
		messages = append(messages, fmt.Sprintf("Could not exec(%q): %s", command, err))
		if !possibleWhitespace && c.splitLines && script.IsIncomplete(err) {
			possibleWhitespace = true
		}
		if possibleWhitespace {
			messages = append(messages,
				"Did you accidentally include whitespace in a command line?")
		}
		return noValue, false, &CommandError{Messages: messages}
	}

	c.debug("exec(%q) worked.", command)
	return noValue, true, nil
}

// convertStackArgs prepares stack items for use as call arguments:
// variable references are resolved to their current values.
func (c *Calculator) convertStackArgs(items []any) []any {
	args := make([]any, len(items))
	for i, item := range items {
		if ref, ok := item.(value.VarRef); ok {
			args[i] = c.variables[ref.VarName]
		} else {
			args[i] = item
		}
	}
	return args
}

func (c *Calculator) toggleAutoPrint() {
	if c.autoPrint {
		c.debug("Auto print off")
		c.autoPrint = false
	} else {
		c.autoPrint = true
		c.debug("Auto print on")
	}
}

func (c *Calculator) toggleDebug() {
	if c.debugOn {
		c.debug("Debug off")
		c.debugOn = false
	} else {
		c.debugOn = true
		c.debug("Debug on")
	}
}

// Batch reads commands line by line from r and executes them. When
// finalPrint is true the stack (or its only item) is printed at the
// end.
func (c *Calculator) Batch(r io.Reader, finalPrint bool) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if _, err := c.Execute(scanner.Text()); err == ErrEndOfSession {
			break
		} else if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if finalPrint && len(c.stack) > 0 {
		if len(c.stack) == 1 {
			c.PrintTop()
		} else {
			c.PrintStack()
		}
	}
	return nil
}
