// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package script

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Float", Pattern: `\d+\.\d*(?:[eE][-+]?\d+)?|\.\d+(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `\*\*|//|==|!=|<=|>=|[-+*/%<>=()\[\]{},:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	exprParser = participle.MustBuild[exprNode](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	stmtParser = participle.MustBuild[stmtNode](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// stmtNode is the one statement form the language has: assignment.
type stmtNode struct {
	Name  string    `parser:"@Ident '='"`
	Value *exprNode `parser:"@@"`
}

type exprNode struct {
	Cmp *comparison `parser:"@@"`
}

// comparisons chain: a < b < c holds iff both links hold.
type comparison struct {
	Left *additive `parser:"@@"`
	Ops  []*cmpOp  `parser:"@@*"`
}

type cmpOp struct {
	Op   string    `parser:"@('=='|'!='|'<='|'>='|'<'|'>')"`
	Term *additive `parser:"@@"`
}

type additive struct {
	Left *multiplicative `parser:"@@"`
	Ops  []*addOp        `parser:"@@*"`
}

type addOp struct {
	Op   string          `parser:"@('+'|'-')"`
	Term *multiplicative `parser:"@@"`
}

type multiplicative struct {
	Left *unary   `parser:"@@"`
	Ops  []*mulOp `parser:"@@*"`
}

type mulOp struct {
	Op   string `parser:"@('*'|'//'|'/'|'%')"`
	Term *unary `parser:"@@"`
}

type unary struct {
	Op    string `parser:"( @('-'|'+')"`
	Expr  *unary `parser:"  @@ )"`
	Power *power `parser:"| @@"`
}

// power is right-associative: 2**3**2 is 2**(3**2).
type power struct {
	Base *postfix `parser:"@@"`
	Exp  *unary   `parser:"( '**' @@ )?"`
}

type postfix struct {
	Primary *primary `parser:"@@"`
	Tails   []*tail  `parser:"@@*"`
}

type tail struct {
	Call  *callTail  `parser:"  @@"`
	Index *indexTail `parser:"| @@"`
}

type callTail struct {
	LParen string      `parser:"@'('"`
	Args   []*exprNode `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type indexTail struct {
	Index *exprNode `parser:"'[' @@ ']'"`
}

type lambdaLit struct {
	Params []string  `parser:"'lambda' ( @Ident ( ',' @Ident )* )? ':'"`
	Body   *exprNode `parser:"@@"`
}

type primary struct {
	Lambda *lambdaLit `parser:"  @@"`
	Float  *float64   `parser:"| @Float"`
	Int    *int64     `parser:"| @Int"`
	Str    *strLit    `parser:"| @String"`
	True   bool       `parser:"| @('true'|'True')"`
	False  bool       `parser:"| @('false'|'False')"`
	Nil    bool       `parser:"| @('nil'|'None')"`
	List   *listLit   `parser:"| @@"`
	Dict   *dictLit   `parser:"| @@"`
	Sub    *exprNode  `parser:"| '(' @@ ')'"`
	Ident  *string    `parser:"| @Ident"`
}

type listLit struct {
	LBracket string      `parser:"@'['"`
	Items    []*exprNode `parser:"( @@ ( ',' @@ )* ','? )? ']'"`
}

type dictLit struct {
	LBrace string      `parser:"@'{'"`
	Pairs  []*dictPair `parser:"( @@ ( ',' @@ )* ','? )? '}'"`
}

type dictPair struct {
	Key *exprNode `parser:"@@ ':'"`
	Val *exprNode `parser:"@@"`
}

// strLit strips the surrounding quotes and unescapes the quote character.
type strLit string

func (s *strLit) Capture(values []string) error {
	v := values[0]
	quote := string(v[0])
	body := v[1 : len(v)-1]
	body = strings.ReplaceAll(body, `\`+quote, quote)
	body = strings.ReplaceAll(body, `\\`, `\`)
	*s = strLit(body)
	return nil
}
