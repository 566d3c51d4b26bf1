package parser

import (
	"github.com/alan-2022/alanc/internal/token"
	"github.com/alan-2022/alanc/internal/valtype"
)

// lookupVar resolves an identifier to its property record, aborting
// with a semantic diagnostic if it is undeclared. Most statement forms
// (assign, get, call) need exactly this.
func (p *parser) lookupVar(nameTok token.Token) *valtype.IDprop {
	prop, ok := p.sym.Find(nameTok.Lexeme)
	if !ok {
		p.typeErrorAt(nameTok.Pos, "%q is not declared", nameTok.Lexeme)
	}

	return prop
}

func (p *parser) lookupCallable(nameTok token.Token) *valtype.IDprop {
	prop := p.lookupVar(nameTok)
	if !prop.Type.IsCallable() {
		p.typeErrorAt(nameTok.Pos, "%q is not a function or procedure", nameTok.Lexeme)
	}

	return prop
}

// assign = id [ "[" simple "]" ] ":=" ( expr | "array" simple ) .
func (p *parser) assign() {
	nameTok := p.expect(token.ID)
	prop := p.lookupVar(nameTok)

	if prop.Type.IsCallable() {
		p.typeErrorAt(nameTok.Pos, "%q is a function or procedure, not a variable", nameTok.Lexeme)
	}

	subscripted := p.at(token.OPEN_BRACKET)

	if subscripted {
		if !prop.Type.IsArray {
			p.typeErrorAt(nameTok.Pos, "%q is not an array", nameTok.Lexeme)
		}

		p.gen.LoadLocal(prop.Offset, prop.Type)
		p.advance()

		idxT := p.simple()
		if idxT.Base != valtype.INTEGER || idxT.IsArray {
			p.typeErrorf("array subscript must be integer, found %s", idxT)
		}

		p.expect(token.CLOSE_BRACKET)
	}

	p.expect(token.GETS)

	if p.at(token.ARRAY) {
		if subscripted {
			p.typeErrorf("cannot allocate into an array element")
		}

		if !prop.Type.IsArray {
			p.typeErrorAt(nameTok.Pos, "%q is not an array", nameTok.Lexeme)
		}

		p.advance()

		lenT := p.simple()
		if lenT.Base != valtype.INTEGER || lenT.IsArray {
			p.typeErrorf("array length must be integer, found %s", lenT)
		}

		p.gen.ArrayNew(prop.Type.Base)
		p.gen.StoreLocal(prop.Offset, prop.Type)

		return
	}

	rt := p.expr()

	if subscripted {
		elem := valtype.Type{Base: prop.Type.Base}
		if !rt.Equal(elem) {
			p.typeErrorf("incompatible types (expected %s, found %s)", elem, rt)
		}

		p.gen.ArrayStore(prop.Type.Base)

		return
	}

	if !rt.Equal(prop.Type) {
		p.typeErrorf("incompatible types (expected %s, found %s)", prop.Type, rt)
	}

	p.gen.StoreLocal(prop.Offset, prop.Type)
}

// call = "call" id "(" [ expr { "," expr } ] ")" .
func (p *parser) callStatement() {
	p.expect(token.CALL)

	nameTok := p.expect(token.ID)
	prop := p.lookupCallable(nameTok)
	p.emitCallArgs(nameTok, prop)

	if prop.Type.Base != valtype.NONE {
		p.gen.EmitPop()
	}
}

// emitCallArgs parses a call's parenthesized argument list, type-checks
// it against the already-resolved callable prop, and emits the
// argument pushes followed by the invocation. nameTok is only used for
// diagnostic positions. Shared by the call statement and a factor's
// function call.
func (p *parser) emitCallArgs(nameTok token.Token, prop *valtype.IDprop) {
	p.expect(token.OPEN_PAREN)

	var argTypes []valtype.Type

	if !p.at(token.CLOSE_PAREN) {
		argTypes = append(argTypes, p.expr())

		for p.at(token.COMMA) {
			p.advance()
			argTypes = append(argTypes, p.expr())
		}
	}

	p.expect(token.CLOSE_PAREN)

	if len(argTypes) != prop.NParams {
		p.typeErrorAt(nameTok.Pos, "%q expects %d argument(s), found %d", nameTok.Lexeme, prop.NParams, len(argTypes))
	}

	for i, at := range argTypes {
		if !at.Equal(prop.Params[i]) {
			p.typeErrorAt(nameTok.Pos, "%q argument %d: expected %s, found %s", nameTok.Lexeme, i+1, prop.Params[i], at)
		}
	}

	p.gen.EmitCall(p.className, nameTok.Lexeme, prop.Params, prop.Type)
}

// if = "if" expr "then" statements
//
//	{ "elsif" expr "then" statements }
//	[ "else" statements ] "end" .
func (p *parser) ifStatement() {
	p.expect(token.IF)

	chain := p.gen.NewIfChain()

	p.condition()
	chain.StartBranch()
	p.expect(token.THEN)
	p.statements()
	chain.EndBranch()

	for p.at(token.ELSIF) {
		p.advance()
		p.condition()
		chain.StartBranch()
		p.expect(token.THEN)
		p.statements()
		chain.EndBranch()
	}

	if p.at(token.ELSE) {
		p.advance()
		p.statements()
	}

	p.expect(token.END)
	chain.End()
}

// while = "while" expr "do" statements "end" .
func (p *parser) whileStatement() {
	p.expect(token.WHILE)

	loop := p.gen.NewWhileLoop()
	p.condition()
	loop.GuardFailed()
	p.expect(token.DO)
	p.statements()
	p.expect(token.END)
	loop.End()
}

// condition parses an expr and requires it to be boolean, as both if
// and while guards do.
func (p *parser) condition() {
	t := p.expr()
	if t.Base != valtype.BOOLEAN || t.IsArray {
		p.typeErrorf("condition must be boolean, found %s", t)
	}
}

// input = "get" id [ "[" simple "]" ] .
func (p *parser) input() {
	p.expect(token.GET)

	nameTok := p.expect(token.ID)
	prop := p.lookupVar(nameTok)

	if prop.Type.IsCallable() {
		p.typeErrorAt(nameTok.Pos, "%q is a function or procedure, not a variable", nameTok.Lexeme)
	}

	if p.at(token.OPEN_BRACKET) {
		if !prop.Type.IsArray {
			p.typeErrorAt(nameTok.Pos, "%q is not an array", nameTok.Lexeme)
		}

		p.gen.LoadLocal(prop.Offset, prop.Type)
		p.advance()

		idxT := p.simple()
		if idxT.Base != valtype.INTEGER || idxT.IsArray {
			p.typeErrorf("array subscript must be integer, found %s", idxT)
		}

		p.expect(token.CLOSE_BRACKET)

		elem := valtype.Type{Base: prop.Type.Base}
		p.gen.EmitRead(p.className, elem)
		p.gen.ArrayStore(prop.Type.Base)

		return
	}

	if prop.Type.IsArray {
		p.typeErrorAt(nameTok.Pos, "%q is an array; a subscript is required", nameTok.Lexeme)
	}

	p.gen.EmitRead(p.className, prop.Type)
	p.gen.StoreLocal(prop.Offset, prop.Type)
}

// leave = "leave" [ expr ] .
func (p *parser) leave() {
	p.expect(token.LEAVE)

	if !p.startsExpr() {
		if p.curIsFunc {
			p.typeErrorf("function must leave a value of type %s", p.curReturn)
		}

		p.gen.EmitReturnVoid()

		return
	}

	t := p.expr()

	if !p.curIsFunc {
		p.typeErrorf("leave with a value is only valid inside a function")
	}

	if !t.Equal(p.curReturn) {
		p.typeErrorf("leave value has type %s, function returns %s", t, p.curReturn)
	}

	p.sawLeave = true

	p.gen.EmitReturnValue(p.curReturn)
}

// output = "put" (string | expr) { "." (string | expr) } .
func (p *parser) output() {
	p.expect(token.PUT)
	p.outputItem()

	for p.at(token.CONCATENATE) {
		p.advance()
		p.outputItem()
	}
}

func (p *parser) outputItem() {
	if p.at(token.STRING) {
		s := string(p.tok.Str)
		p.advance()
		p.gen.EmitPrintString(s)

		return
	}

	t := p.expr()
	if t.IsArray || (t.Base != valtype.INTEGER && t.Base != valtype.BOOLEAN) {
		p.typeErrorf("put requires a string or scalar expression, found %s", t)
	}

	p.gen.EmitPrintValue(t)
}

// startsExpr reports whether the lookahead token can begin an expr,
// i.e. is in simple's FIRST set.
func (p *parser) startsExpr() bool {
	switch p.tok.Kind {
	case token.MINUS, token.ID, token.NUMBER, token.OPEN_PAREN, token.NOT, token.TRUE, token.FALSE:
		return true
	default:
		return false
	}
}
