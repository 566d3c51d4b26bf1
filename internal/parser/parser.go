// Package parser implements ALAN-2022's C4 stage: a single-pass,
// single-lookahead recursive-descent parser whose routines also carry
// out inline type checking and drive internal/codegen as they go
// (spec.md §4.4). There is no separate AST: each grammar routine
// recognises its production and emits code for it in the same pass,
// matching the original compiler's syntax-directed structure.
package parser

import (
	"github.com/alan-2022/alanc/internal/codegen"
	"github.com/alan-2022/alanc/internal/diag"
	"github.com/alan-2022/alanc/internal/scanner"
	"github.com/alan-2022/alanc/internal/symtab"
	"github.com/alan-2022/alanc/internal/token"
	"github.com/alan-2022/alanc/internal/valtype"
)

// parser holds the single piece of mutable state every grammar routine
// shares: the lookahead token, the scanner it comes from, the symbol
// table, and the emitter.
type parser struct {
	s   *scanner.Scanner
	tok token.Token

	sym *symtab.Table
	gen *codegen.Emitter

	className string

	// curReturn is the enclosing function's return type while parsing
	// its body, or valtype.None while parsing a procedure or the
	// top-level program body (spec.md §4.4's leave rule).
	curReturn valtype.Type
	// curIsFunc is true while parsing the body of a function (a
	// callable with a return type) and false for a procedure or the
	// top-level body; leave checks it to decide whether a value is
	// required or forbidden.
	curIsFunc bool

	// sawLeave records whether a value-carrying leave was parsed
	// anywhere in the function currently being parsed (spec.md §8:
	// "missing leave in a function body with declared return type is
	// an error"). Reachability isn't tracked across if/while branches;
	// any leave with a matching value anywhere in the body satisfies
	// this, matching a single-pass parser's natural granularity.
	sawLeave bool
}

// Result is everything a successful parse produced: the program's
// class name and the finished Jasmin source text.
type Result struct {
	ClassName string
	Jasmin    []byte
}

// Parse runs the parser to completion over the token stream from sc,
// emitting into a fresh emitter named after the program's declared
// name. It is the single boundary that converts internal/diag's
// panic-based fatal errors back into a normal Go error; every routine
// below it calls diag.Fatalf freely.
func Parse(sc *scanner.Scanner) (res *Result, err error) {
	defer diag.Recover(&err)

	p := &parser{
		s:   sc,
		sym: symtab.New(),
	}
	p.advance()

	res = p.source()

	return res, nil
}

func (p *parser) advance() {
	p.tok = p.s.Next()
}

func (p *parser) at(k token.Kind) bool {
	return p.tok.Kind == k
}

// expect consumes the current token if it has kind k, otherwise aborts
// with a syntactic diagnostic. It returns the consumed token so
// callers can read its Lexeme/Num/Str.
func (p *parser) expect(k token.Kind) token.Token {
	if p.tok.Kind != k {
		diag.Fatalf(diag.Syntactic, p.tok.Pos, "expected %s, found %s", k, p.tok.Kind)
	}

	t := p.tok
	p.advance()

	return t
}

func (p *parser) errorf(format string, args ...any) {
	diag.Fatalf(diag.Syntactic, p.tok.Pos, format, args...)
}

// typeErrorf reports a semantic violation at the current lookahead's
// position. Use typeErrorAt instead when the offending construct
// starts earlier than the lookahead (e.g. an already-consumed name).
func (p *parser) typeErrorf(format string, args ...any) {
	diag.Fatalf(diag.Semantic, p.tok.Pos, format, args...)
}

func (p *parser) typeErrorAt(pos token.Pos, format string, args ...any) {
	diag.Fatalf(diag.Semantic, pos, format, args...)
}

// source = "source" id { funcdef } body .
func (p *parser) source() *Result {
	p.expect(token.SOURCE)
	name := p.expect(token.ID).Lexeme

	p.className = name
	p.gen = codegen.New(name)

	for p.at(token.FUNCTION) {
		p.funcdef()
	}

	p.gen.OpenMain()
	p.curReturn = valtype.None
	p.curIsFunc = false
	p.body()
	p.gen.EmitReturnVoid()
	p.gen.CloseSubroutine(p.sym.CurrentLocalsWidth())

	return &Result{ClassName: name, Jasmin: p.gen.Flush()}
}

// funcdef = "function" id "(" [ type id { "," type id } ] ")"
//
//	[ "to" type ] body .
func (p *parser) funcdef() {
	p.expect(token.FUNCTION)
	nameTok := p.expect(token.ID)
	name := nameTok.Lexeme

	p.expect(token.OPEN_PAREN)

	var params []valtype.Type

	type paramDecl struct {
		name string
		t    valtype.Type
		pos  token.Pos
	}

	var decls []paramDecl

	if !p.at(token.CLOSE_PAREN) {
		t := p.typeSpec()
		pt := p.tok
		decls = append(decls, paramDecl{name: p.expect(token.ID).Lexeme, t: t, pos: pt.Pos})
		params = append(params, t)

		for p.at(token.COMMA) {
			p.advance()
			t := p.typeSpec()
			pt := p.tok
			decls = append(decls, paramDecl{name: p.expect(token.ID).Lexeme, t: t, pos: pt.Pos})
			params = append(params, t)
		}
	}

	p.expect(token.CLOSE_PAREN)

	ret := valtype.None

	if p.at(token.TO) {
		p.advance()
		ret = p.typeSpec()
	}

	prop := valtype.NewCallable(ret, params)
	if !p.sym.OpenSubroutine(name, prop) {
		p.typeErrorAt(nameTok.Pos, "%q already declared in this scope", name)
	}

	for _, d := range decls {
		if _, ok := p.sym.InsertVar(d.name, d.t); !ok {
			p.typeErrorAt(d.pos, "parameter %q redeclared", d.name)
		}
	}

	p.gen.OpenSubroutine(name, params, ret)

	p.curReturn = ret
	p.curIsFunc = ret.Base != valtype.NONE
	p.sawLeave = false

	p.body()

	if p.curIsFunc && !p.sawLeave {
		p.typeErrorAt(nameTok.Pos, "function %q with declared return type %s must leave a value", name, ret)
	}

	if ret.Base == valtype.NONE {
		p.gen.EmitReturnVoid()
	}

	p.gen.CloseSubroutine(p.sym.CurrentLocalsWidth())
	p.sym.CloseSubroutine()
}

// typeSpec = ("boolean" | "integer") [ "array" ] .
func (p *parser) typeSpec() valtype.Type {
	var base valtype.Base

	switch p.tok.Kind {
	case token.BOOLEAN:
		base = valtype.BOOLEAN
	case token.INTEGER:
		base = valtype.INTEGER
	default:
		p.errorf("expected a type, found %s", p.tok.Kind)
	}

	p.advance()

	if p.at(token.ARRAY) {
		p.advance()

		return valtype.Array(base)
	}

	return valtype.Type{Base: base}
}

// body = "begin" { vardef } statements "end" .
func (p *parser) body() {
	p.expect(token.BEGIN)

	for p.at(token.BOOLEAN) || p.at(token.INTEGER) {
		p.vardef()
	}

	p.statements()
	p.expect(token.END)
}

// vardef = type id { "," id } ";" .
func (p *parser) vardef() {
	t := p.typeSpec()

	nameTok := p.expect(token.ID)
	if _, ok := p.sym.InsertVar(nameTok.Lexeme, t); !ok {
		p.typeErrorAt(nameTok.Pos, "%q already declared in this scope", nameTok.Lexeme)
	}

	for p.at(token.COMMA) {
		p.advance()

		nameTok := p.expect(token.ID)
		if _, ok := p.sym.InsertVar(nameTok.Lexeme, t); !ok {
			p.typeErrorAt(nameTok.Pos, "%q already declared in this scope", nameTok.Lexeme)
		}
	}

	p.expect(token.SEMICOLON)
}

// statements = "relax" | statement { ";" statement } .
func (p *parser) statements() {
	if p.at(token.RELAX) {
		p.advance()

		return
	}

	p.statement()

	for p.at(token.SEMICOLON) {
		p.advance()
		p.statement()
	}
}

// statement = assign | call | if | input | leave | output | while .
func (p *parser) statement() {
	switch p.tok.Kind {
	case token.ID:
		p.assign()
	case token.CALL:
		p.callStatement()
	case token.IF:
		p.ifStatement()
	case token.GET:
		p.input()
	case token.LEAVE:
		p.leave()
	case token.PUT:
		p.output()
	case token.WHILE:
		p.whileStatement()
	default:
		p.errorf("expected a statement, found %s", p.tok.Kind)
	}
}
