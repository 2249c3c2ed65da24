// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package script implements the restricted expression language the
// calculator evaluates unrecognized command tokens with. It supports
// literals (numbers, strings, booleans, nil, lists, dicts), arithmetic
// with the usual precedence, comparisons, indexing, calls, lambda
// expressions and single-name assignment statements. It is deliberately
// not a general-purpose interpreter: no attribute access, definitions,
// imports or control flow.
package script

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/rpn/internal/value"
)

// Env is a mutable name-to-value environment expressions evaluate in.
type Env interface {
	Get(name string) (any, bool)
	Set(name string, v any)
}

// MapEnv is the simplest Env: a plain map.
type MapEnv map[string]any

// Get retrieves a value by name.
func (m MapEnv) Get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Set stores a value by name.
func (m MapEnv) Set(name string, v any) { m[name] = v }

// childEnv overlays lambda parameters on an enclosing environment.
type childEnv struct {
	vars   map[string]any
	parent Env
}

func (c *childEnv) Get(name string) (any, bool) {
	if v, ok := c.vars[name]; ok {
		return v, ok
	}
	return c.parent.Get(name)
}

func (c *childEnv) Set(name string, v any) { c.vars[name] = v }

// IncompleteError marks input that ended mid-expression, e.g. an
// unclosed bracket or a dangling operator. The calculator uses it to
// suggest that whitespace splitting may have cut a literal in half.
type IncompleteError struct {
	Err error
}

func (e *IncompleteError) Error() string { return e.Err.Error() }

func (e *IncompleteError) Unwrap() error { return e.Err }

// IsIncomplete reports whether err marks truncated input.
func IsIncomplete(err error) bool {
	var ie *IncompleteError
	return errors.As(err, &ie)
}

func wrapParse(err error) error {
	if err != nil && strings.Contains(err.Error(), "<EOF>") {
		return &IncompleteError{Err: err}
	}
	return err
}

// Evaluator parses and evaluates script snippets. Stateless: all state
// lives in the Env the caller passes.
type Evaluator struct{}

// New creates an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval evaluates src as an expression against env.
func (e *Evaluator) Eval(src string, env Env) (any, error) {
	tree, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, wrapParse(err)
	}
	return evalExpr(tree, env)
}

// Exec executes src as an assignment statement against env.
func (e *Evaluator) Exec(src string, env Env) error {
	tree, err := stmtParser.ParseString("", src)
	if err != nil {
		return wrapParse(err)
	}
	v, err := evalExpr(tree.Value, env)
	if err != nil {
		return err
	}
	env.Set(tree.Name, v)
	return nil
}

// Lambda is a first-class function literal. It closes over the
// environment it was evaluated in; parameters shadow enclosing names.
type Lambda struct {
	Params []string
	body   *exprNode
	env    Env
}

// Name implements value.Callable.
func (l *Lambda) Name() string { return "<lambda>" }

// NArgs implements value.Callable.
func (l *Lambda) NArgs() int { return len(l.Params) }

// Call implements value.Callable.
func (l *Lambda) Call(args []any) (any, error) {
	if len(args) != len(l.Params) {
		return nil, fmt.Errorf("<lambda> takes %d argument%s, got %d",
			len(l.Params), plural(len(l.Params)), len(args))
	}
	child := &childEnv{vars: make(map[string]any, len(args)), parent: l.env}
	for i, p := range l.Params {
		child.vars[p] = args[i]
	}
	return evalExpr(l.body, child)
}

func (l *Lambda) String() string { return "<function <lambda>>" }

func evalExpr(n *exprNode, env Env) (any, error) {
	return evalComparison(n.Cmp, env)
}

func evalComparison(n *comparison, env Env) (any, error) {
	left, err := evalAdditive(n.Left, env)
	if err != nil || len(n.Ops) == 0 {
		return left, err
	}
	for _, op := range n.Ops {
		right, err := evalAdditive(op.Term, env)
		if err != nil {
			return nil, err
		}
		ok, err := compare(op.Op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return false, nil
		}
		left = right
	}
	return true, nil
}

func compare(op string, a, b any) (bool, error) {
	switch op {
	case "==":
		return value.Equal(a, b), nil
	case "!=":
		return !value.Equal(a, b), nil
	case "<":
		return value.Less(a, b)
	case ">":
		return value.Less(b, a)
	case "<=":
		gt, err := value.Less(b, a)
		return !gt, err
	case ">=":
		lt, err := value.Less(a, b)
		return !lt, err
	}
	return false, fmt.Errorf("unknown comparison %q", op)
}

func evalAdditive(n *additive, env Env) (any, error) {
	left, err := evalMultiplicative(n.Left, env)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		right, err := evalMultiplicative(op.Term, env)
		if err != nil {
			return nil, err
		}
		switch op.Op {
		case "+":
			left, err = value.Add(left, right)
		case "-":
			left, err = value.Sub(left, right)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func evalMultiplicative(n *multiplicative, env Env) (any, error) {
	left, err := evalUnary(n.Left, env)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		right, err := evalUnary(op.Term, env)
		if err != nil {
			return nil, err
		}
		switch op.Op {
		case "*":
			left, err = value.Mul(left, right)
		case "/":
			left, err = value.TrueDiv(left, right)
		case "//":
			left, err = value.FloorDiv(left, right)
		case "%":
			left, err = value.Mod(left, right)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func evalUnary(n *unary, env Env) (any, error) {
	if n.Power != nil {
		return evalPower(n.Power, env)
	}
	v, err := evalUnary(n.Expr, env)
	if err != nil {
		return nil, err
	}
	if n.Op == "-" {
		return value.Neg(v)
	}
	return v, nil
}

func evalPower(n *power, env Env) (any, error) {
	base, err := evalPostfix(n.Base, env)
	if err != nil || n.Exp == nil {
		return base, err
	}
	exp, err := evalUnary(n.Exp, env)
	if err != nil {
		return nil, err
	}
	return value.Pow(base, exp)
}

func evalPostfix(n *postfix, env Env) (any, error) {
	v, err := evalPrimary(n.Primary, env)
	if err != nil {
		return nil, err
	}
	for _, t := range n.Tails {
		if t.Call != nil {
			v, err = evalCall(v, t.Call, env)
		} else {
			v, err = evalIndex(v, t.Index, env)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func evalCall(callee any, call *callTail, env Env) (any, error) {
	c, ok := callee.(value.Callable)
	if !ok {
		return nil, fmt.Errorf("%s is not callable", value.TypeName(callee))
	}
	args := make([]any, len(call.Args))
	for i, a := range call.Args {
		v, err := evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return callGuarded(c, args)
}

// callGuarded invokes c, turning a panic into an error.
func callGuarded(c value.Callable, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return c.Call(args)
}

func evalIndex(container any, idx *indexTail, env Env) (any, error) {
	key, err := evalExpr(idx.Index, env)
	if err != nil {
		return nil, err
	}
	switch t := container.(type) {
	case []any:
		i, ok := value.AsInt(key)
		if !ok {
			return nil, fmt.Errorf("list indices must be integers, not %s", value.TypeName(key))
		}
		if i < 0 {
			i += int64(len(t))
		}
		if i < 0 || i >= int64(len(t)) {
			return nil, fmt.Errorf("list index out of range")
		}
		return t[i], nil
	case string:
		i, ok := value.AsInt(key)
		if !ok {
			return nil, fmt.Errorf("string indices must be integers, not %s", value.TypeName(key))
		}
		runes := []rune(t)
		if i < 0 {
			i += int64(len(runes))
		}
		if i < 0 || i >= int64(len(runes)) {
			return nil, fmt.Errorf("string index out of range")
		}
		return string(runes[i]), nil
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, not %s", value.TypeName(key))
		}
		v, ok := t[k]
		if !ok {
			return nil, fmt.Errorf("key %s not found", value.Repr(k))
		}
		return v, nil
	}
	return nil, fmt.Errorf("%s is not subscriptable", value.TypeName(container))
}

func evalPrimary(n *primary, env Env) (any, error) {
	switch {
	case n.Lambda != nil:
		return &Lambda{Params: n.Lambda.Params, body: n.Lambda.Body, env: env}, nil
	case n.Float != nil:
		return *n.Float, nil
	case n.Int != nil:
		return *n.Int, nil
	case n.Str != nil:
		return string(*n.Str), nil
	case n.True:
		return true, nil
	case n.False:
		return false, nil
	case n.Nil:
		return nil, nil
	case n.List != nil:
		items := make([]any, len(n.List.Items))
		for i, it := range n.List.Items {
			v, err := evalExpr(it, env)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case n.Dict != nil:
		out := make(map[string]any, len(n.Dict.Pairs))
		for _, p := range n.Dict.Pairs {
			k, err := evalExpr(p.Key, env)
			if err != nil {
				return nil, err
			}
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings, not %s", value.TypeName(k))
			}
			v, err := evalExpr(p.Val, env)
			if err != nil {
				return nil, err
			}
			out[ks] = v
		}
		return out, nil
	case n.Sub != nil:
		return evalExpr(n.Sub, env)
	case n.Ident != nil:
		v, ok := env.Get(*n.Ident)
		if !ok {
			return nil, fmt.Errorf("name '%s' is not defined", *n.Ident)
		}
		return v, nil
	}
	return nil, fmt.Errorf("empty expression")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
