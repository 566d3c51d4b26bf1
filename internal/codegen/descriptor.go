package codegen

import "github.com/alan-2022/alanc/internal/valtype"

// descriptor renders a ValType as a JVM type descriptor fragment
// (integer -> I, boolean -> Z, arrays get a leading '[', none -> V).
func descriptor(t valtype.Type) string {
	var d string

	switch t.Base {
	case valtype.BOOLEAN:
		d = "Z"
	case valtype.INTEGER:
		d = "I"
	default:
		d = "V"
	}

	if t.IsArray {
		return "[" + d
	}

	return d
}

// methodDescriptor renders a callable's full JVM method descriptor, e.g.
// (II)Z for a function taking two integers and returning a boolean.
func methodDescriptor(params []valtype.Type, ret valtype.Type) string {
	s := "("

	for _, p := range params {
		s += descriptor(p)
	}

	s += ")" + descriptor(ret)

	return s
}
