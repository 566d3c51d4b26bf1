package parser

import (
	"github.com/alan-2022/alanc/internal/codegen"
	"github.com/alan-2022/alanc/internal/token"
	"github.com/alan-2022/alanc/internal/valtype"
)

// expr = simple [ relop simple ] .
func (p *parser) expr() valtype.Type {
	lt := p.simple()

	op, isRel := relops[p.tok.Kind]
	if !isRel {
		return lt
	}

	opTok := p.tok
	p.advance()

	rt := p.simple()

	if opTok.Kind == token.EQUAL || opTok.Kind == token.NOT_EQUAL {
		if !lt.Equal(rt) || lt.IsArray || rt.IsArray {
			p.typeErrorAt(opTok.Pos, "cannot compare %s and %s", lt, rt)
		}
	} else {
		if lt.Base != valtype.INTEGER || lt.IsArray || rt.Base != valtype.INTEGER || rt.IsArray {
			p.typeErrorAt(opTok.Pos, "relational operator requires integer operands, found %s and %s", lt, rt)
		}
	}

	p.gen.EmitRelOp(op)

	return valtype.Boolean
}

var relops = map[token.Kind]codegen.BinOp{
	token.EQUAL:         codegen.Eq,
	token.NOT_EQUAL:     codegen.Ne,
	token.LESS:          codegen.Lt,
	token.LESS_EQUAL:    codegen.Le,
	token.GREATER:       codegen.Gt,
	token.GREATER_EQUAL: codegen.Ge,
}

// simple = [ "-" ] term { addop term } .
func (p *parser) simple() valtype.Type {
	neg := p.at(token.MINUS)
	negPos := p.tok.Pos

	if neg {
		p.advance()
	}

	t := p.term()

	if neg {
		if t.Base != valtype.INTEGER || t.IsArray {
			p.typeErrorAt(negPos, "unary - requires an integer operand, found %s", t)
		}

		p.gen.EmitNeg()
	}

	for {
		var op codegen.BinOp

		switch p.tok.Kind {
		case token.PLUS:
			op = codegen.Add
		case token.MINUS:
			op = codegen.Sub
		case token.OR:
			op = codegen.Or
		default:
			return t
		}

		opTok := p.tok
		p.advance()

		rt := p.term()

		if opTok.Kind == token.OR {
			if t.Base != valtype.BOOLEAN || t.IsArray || rt.Base != valtype.BOOLEAN || rt.IsArray {
				p.typeErrorAt(opTok.Pos, "or requires boolean operands, found %s and %s", t, rt)
			}
		} else {
			if t.Base != valtype.INTEGER || t.IsArray || rt.Base != valtype.INTEGER || rt.IsArray {
				p.typeErrorAt(opTok.Pos, "%s requires integer operands, found %s and %s", opTok.Kind, t, rt)
			}
		}

		p.gen.EmitArith(op)
		t = rt
	}
}

// term = factor { mulop factor } .
func (p *parser) term() valtype.Type {
	t := p.factor()

	for {
		var op codegen.BinOp

		switch p.tok.Kind {
		case token.MULTIPLY:
			op = codegen.Mul
		case token.DIVIDE:
			op = codegen.Div
		case token.REMAINDER:
			op = codegen.Rem
		case token.AND:
			op = codegen.And
		default:
			return t
		}

		opTok := p.tok
		p.advance()

		rt := p.factor()

		if opTok.Kind == token.AND {
			if t.Base != valtype.BOOLEAN || t.IsArray || rt.Base != valtype.BOOLEAN || rt.IsArray {
				p.typeErrorAt(opTok.Pos, "and requires boolean operands, found %s and %s", t, rt)
			}
		} else {
			if t.Base != valtype.INTEGER || t.IsArray || rt.Base != valtype.INTEGER || rt.IsArray {
				p.typeErrorAt(opTok.Pos, "%s requires integer operands, found %s and %s", opTok.Kind, t, rt)
			}
		}

		p.gen.EmitArith(op)
		t = rt
	}
}

// factor = id [ "[" simple "]" | "(" [ expr {"," expr} ] ")" ]
//
//	| number | "(" expr ")" | "not" factor | "true" | "false" .
func (p *parser) factor() valtype.Type {
	switch p.tok.Kind {
	case token.ID:
		return p.idFactor()
	case token.NUMBER:
		n := p.tok.Num
		p.advance()
		p.gen.LoadConstInt(n)

		return valtype.Integer
	case token.OPEN_PAREN:
		p.advance()

		t := p.expr()
		p.expect(token.CLOSE_PAREN)

		return t
	case token.NOT:
		notPos := p.tok.Pos
		p.advance()

		t := p.factor()
		if t.Base != valtype.BOOLEAN || t.IsArray {
			p.typeErrorAt(notPos, "not requires a boolean operand, found %s", t)
		}

		p.gen.EmitNot()

		return valtype.Boolean
	case token.TRUE:
		p.advance()
		p.gen.LoadConstBool(true)

		return valtype.Boolean
	case token.FALSE:
		p.advance()
		p.gen.LoadConstBool(false)

		return valtype.Boolean
	}

	p.errorf("expected an expression, found %s", p.tok.Kind)
	panic("unreachable")
}

// idFactor parses the three forms an identifier can start in a
// factor: a plain variable reference, an array subscript, or a
// function call.
func (p *parser) idFactor() valtype.Type {
	nameTok := p.expect(token.ID)
	prop := p.lookupVar(nameTok)

	switch {
	case p.at(token.OPEN_BRACKET):
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
		p.gen.ArrayLoad(prop.Type.Base)

		return elem

	case p.at(token.OPEN_PAREN):
		if !prop.Type.IsCallable() {
			p.typeErrorAt(nameTok.Pos, "%q is not a function", nameTok.Lexeme)
		}

		if !prop.Type.IsFunction() {
			p.typeErrorAt(nameTok.Pos, "%q is a procedure and cannot be used in an expression", nameTok.Lexeme)
		}

		retType := prop.Type
		retType.Callable = false
		p.emitCallArgs(nameTok, prop)

		return retType

	default:
		if prop.Type.IsCallable() {
			p.typeErrorAt(nameTok.Pos, "%q is a function or procedure; call it with ( )", nameTok.Lexeme)
		}

		if prop.Type.IsArray {
			p.typeErrorAt(nameTok.Pos, "%q is an array; a subscript is required", nameTok.Lexeme)
		}

		p.gen.LoadLocal(prop.Offset, prop.Type)

		return prop.Type
	}
}
