// Package valtype defines ALAN-2022's value types and the per-identifier
// property record stored in the symbol table.
package valtype

// Base is the scalar base kind of a ValType.
type Base int

const (
	NONE Base = iota
	INTEGER
	BOOLEAN
)

func (b Base) String() string {
	switch b {
	case INTEGER:
		return "integer"
	case BOOLEAN:
		return "boolean"
	default:
		return "none"
	}
}

// Type is the product of a base kind and an is-array bit, plus a
// Callable marker used only on symbol table entries for functions and
// procedures (spec.md §3's ValType).
type Type struct {
	Base     Base
	IsArray  bool
	Callable bool
}

var (
	Integer = Type{Base: INTEGER}
	Boolean = Type{Base: BOOLEAN}
	None    = Type{Base: NONE}
)

// Array returns the array-of-t type for a scalar base t.
func Array(base Base) Type {
	return Type{Base: base, IsArray: true}
}

// Callable returns the callable marker for a return type (NONE for a
// procedure, otherwise a function returning ret, which may itself be
// an array type).
func Callable(ret Type) Type {
	ret.Callable = true

	return ret
}

func (t Type) IsCallable() bool { return t.Callable }

func (t Type) IsProcedure() bool { return t.Callable && t.Base == NONE }

func (t Type) IsFunction() bool { return t.Callable && t.Base != NONE }

func (t Type) Scalar() bool { return !t.IsArray && !t.Callable && t.Base != NONE }

func (t Type) String() string {
	s := t.Base.String()
	if t.IsArray {
		s += " array"
	}

	return s
}

// Equal reports whether two value types denote the same scalar or array
// element type; it ignores the Callable marker, which is never
// meaningful on an expression's type.
func (t Type) Equal(o Type) bool {
	return t.Base == o.Base && t.IsArray == o.IsArray
}

// IDprop is the property record the symbol table stores for each
// in-scope identifier: its type, its storage offset (a local-variable
// slot for variables, or a fixed marker for callables), and, for
// callables, the ordered parameter types.
type IDprop struct {
	Type    Type
	Offset  uint32
	NParams int
	Params  []Type
}

// NewVar builds the property record for a variable or array at the
// given local-variable slot.
func NewVar(t Type, offset uint32) *IDprop {
	return &IDprop{Type: t, Offset: offset}
}

// NewCallable builds the property record for a function or procedure.
// Offset is fixed at 1 per spec.md §3 ("1 for callables"). ret is
// None for a procedure.
func NewCallable(ret Type, params []Type) *IDprop {
	return &IDprop{
		Type:    Callable(ret),
		Offset:  1,
		NParams: len(params),
		Params:  params,
	}
}
