package codegen

import (
	"strconv"
	"strings"

	"github.com/alan-2022/alanc/internal/valtype"
)

// LoadLocal pushes a local variable's value (aload for an array
// reference, iload for a scalar).
func (e *Emitter) LoadLocal(offset uint32, t valtype.Type) {
	if t.IsArray {
		e.emit("aload %d", offset)
	} else {
		e.emit("iload %d", offset)
	}

	e.push(1)
}

// StoreLocal pops the top of stack into a local variable (astore for
// an array reference, istore for a scalar).
func (e *Emitter) StoreLocal(offset uint32, t valtype.Type) {
	if t.IsArray {
		e.emit("astore %d", offset)
	} else {
		e.emit("istore %d", offset)
	}

	e.pop(1)
}

// LoadConstInt pushes an integer literal using the narrowest available
// Jasmin push form.
func (e *Emitter) LoadConstInt(n int32) {
	switch {
	case n >= -1 && n <= 5:
		e.emit("iconst_%s", iconstSuffix(n))
	case n >= -128 && n <= 127:
		e.emit("bipush %d", n)
	case n >= -32768 && n <= 32767:
		e.emit("sipush %d", n)
	default:
		e.emit("ldc %d", n)
	}

	e.push(1)
}

func iconstSuffix(n int32) string {
	if n == -1 {
		return "m1"
	}

	return strconv.Itoa(int(n))
}

// LoadConstBool pushes a boolean literal as a 0/1 int.
func (e *Emitter) LoadConstBool(v bool) {
	if v {
		e.emit("iconst_1")
	} else {
		e.emit("iconst_0")
	}

	e.push(1)
}

// BinOp is an arithmetic, logical, or relational binary operator.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
)

// arithMnemonic covers the operators that compile to a single
// stack-machine instruction.
var arithMnemonic = map[BinOp]string{
	Add: "iadd",
	Sub: "isub",
	Mul: "imul",
	Div: "idiv",
	Rem: "irem",
	And: "iand",
	Or:  "ior",
}

// cmpMnemonic covers the relational operators, which have no direct
// stack-machine push form and are materialized via EmitRelOp instead.
var cmpMnemonic = map[BinOp]string{
	Eq: "if_icmpeq",
	Ne: "if_icmpne",
	Lt: "if_icmplt",
	Le: "if_icmple",
	Gt: "if_icmpgt",
	Ge: "if_icmpge",
}

// EmitArith emits a two-operand arithmetic or boolean instruction; both
// operands must already be on the stack.
func (e *Emitter) EmitArith(op BinOp) {
	e.emit(arithMnemonic[op])
	e.pop(1)
}

// EmitNeg negates the top-of-stack integer in place.
func (e *Emitter) EmitNeg() {
	e.emit("ineg")
}

// EmitNot computes logical negation of a 0/1 boolean on top of stack
// via XOR with 1 (spec.md §4.4: not only applies to boolean operands).
func (e *Emitter) EmitNot() {
	e.emit("iconst_1")
	e.push(1)
	e.emit("ixor")
	e.pop(1)
}

// EmitRelOp materializes a relational comparison's boolean result on
// the stack: both operands are consumed, then exactly one of
// iconst_0/iconst_1 is pushed depending on the comparison outcome.
// This is the classic compare-branch-push-goto-push pattern Jasmin
// needs because the JVM has no direct "push comparison result"
// instruction.
func (e *Emitter) EmitRelOp(op BinOp) {
	trueLabel := e.NewLabel()
	endLabel := e.NewLabel()

	e.emit("%s %s", cmpMnemonic[op], trueLabel)
	e.pop(2)
	e.referenceForward(trueLabel)

	e.emit("iconst_0")
	e.push(1)
	e.emit("goto %s", endLabel)
	e.pop(1)
	e.referenceForward(endLabel)

	e.Define(trueLabel)
	e.emit("iconst_1")
	e.push(1)

	e.Define(endLabel)
}

// LoadString pushes a string literal (also interning it in the pool).
func (e *Emitter) LoadString(s string) {
	e.internString(s)
	e.emit("ldc %s", jasminStringLiteral(s))
	e.push(1)
}

func jasminStringLiteral(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(s[i])
		}
	}

	b.WriteByte('"')

	return b.String()
}

// EmitPrintString prints a string literal already known at compile
// time (a "put" statement's string-literal case).
func (e *Emitter) EmitPrintString(s string) {
	e.emit("getstatic java/lang/System/out Ljava/io/PrintStream;")
	e.push(1)
	e.LoadString(s)
	e.emit("invokevirtual java/io/PrintStream/print(Ljava/lang/String;)V")
	e.pop(2)
}

// EmitPrintValue prints whatever scalar value is already on top of
// the stack, using the JVM overload matching t.
func (e *Emitter) EmitPrintValue(t valtype.Type) {
	e.emit("getstatic java/lang/System/out Ljava/io/PrintStream;")
	e.push(1)
	e.emit("swap")

	if t.Base == valtype.BOOLEAN {
		e.emit("invokevirtual java/io/PrintStream/print(Z)V")
	} else {
		e.emit("invokevirtual java/io/PrintStream/print(I)V")
	}

	e.pop(2)
}

// EmitRead reads one scalar value from standard input via the class's
// static Scanner field and leaves it on the stack.
func (e *Emitter) EmitRead(class string, t valtype.Type) {
	e.emit("getstatic %s/in Ljava/util/Scanner;", class)
	e.push(1)

	if t.Base == valtype.BOOLEAN {
		e.emit("invokevirtual java/util/Scanner/nextBoolean()Z")
	} else {
		e.emit("invokevirtual java/util/Scanner/nextInt()I")
	}
}

// ArrayNew allocates a fresh array whose length is on top of the stack,
// with elements of the given base type.
func (e *Emitter) ArrayNew(base valtype.Base) {
	if base == valtype.BOOLEAN {
		e.emit("newarray boolean")
	} else {
		e.emit("newarray int")
	}
}

// ArrayLoad pops an index and an array reference and pushes the
// element.
func (e *Emitter) ArrayLoad(base valtype.Base) {
	if base == valtype.BOOLEAN {
		e.emit("baload")
	} else {
		e.emit("iaload")
	}

	e.pop(1)
}

// ArrayStore pops a value, an index, and an array reference and
// stores the value.
func (e *Emitter) ArrayStore(base valtype.Base) {
	if base == valtype.BOOLEAN {
		e.emit("bastore")
	} else {
		e.emit("iastore")
	}

	e.pop(3)
}

// EmitCall invokes a user subroutine; all arguments must already be
// pushed in declaration order. The arguments are popped; a function
// (ret.Base != NONE) then pushes one result, a procedure pushes nothing.
func (e *Emitter) EmitCall(class, name string, params []valtype.Type, ret valtype.Type) {
	e.emit("invokestatic %s/%s%s", class, name, methodDescriptor(params, ret))
	e.pop(len(params))

	if ret.Base != valtype.NONE {
		e.push(1)
	}
}

// EmitReturnValue returns the top-of-stack value from a function.
func (e *Emitter) EmitReturnValue(t valtype.Type) {
	if t.IsArray {
		e.emit("areturn")
	} else {
		e.emit("ireturn")
	}

	e.pop(1)
}

// EmitReturnVoid returns from a procedure or the main program body.
func (e *Emitter) EmitReturnVoid() {
	e.emit("return")
}

// EmitPop discards the top-of-stack value, used when a call statement
// invokes a function and ignores its result.
func (e *Emitter) EmitPop() {
	e.emit("pop")
	e.pop(1)
}

// EmitGoto emits an unconditional jump.
func (e *Emitter) EmitGoto(label string) {
	e.emit("goto %s", label)
	e.referenceForward(label)
}

// EmitIfFalse pops the top-of-stack boolean and jumps to label when it
// is false (0). Used to lower if/while guards.
func (e *Emitter) EmitIfFalse(label string) {
	e.emit("ifeq %s", label)
	e.pop(1)
	e.referenceForward(label)
}
